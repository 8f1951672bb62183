// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package status

import (
	"fmt"

	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/httperrors"
)

// FromError converts an operation failure into the message shown to the user.
// Remote errors surface the server's message verbatim; network errors never do.
func FromError(err error) Message {
	return Message{Severity: Error, Text: describe(err)}
}

// PublishError publishes FromError(err) on c.
func (c *Channel) PublishError(err error) {
	msg := FromError(err)
	c.Publish(msg.Severity, msg.Text)
}

func describe(err error) string {
	if err == nil {
		return ""
	}
	switch apperrors.KindOf(err) {
	case apperrors.Unauthenticated:
		return "You're not logged in. Run 'tripmart login' to get started."
	case apperrors.Network:
		return httperrors.Summary(err)
	case apperrors.Remote:
		if msg := apperrors.MessageOf(err); msg != "" {
			return msg
		}
		return fmt.Sprintf("Request failed with status %d", apperrors.StatusOf(err))
	case apperrors.Malformed:
		return "The server sent a response that could not be understood."
	case apperrors.Canceled:
		return "Operation canceled."
	default:
		return apperrors.MessageOf(err)
	}
}
