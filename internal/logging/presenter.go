// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"strconv"

	apperrors "tripmart/cli/internal/errors"
)

// PresentError renders the last error line of a failed command. Typed errors
// show their user message, with the HTTP status for server rejections; other
// errors show their full text. Secrets are masked in both cases.
func PresentError(prefix string, err error) string {
	if err == nil {
		return ""
	}
	msg := apperrors.MessageOf(err)
	if status := apperrors.StatusOf(err); status != 0 {
		msg += " (HTTP " + strconv.Itoa(status) + ")"
	}
	return Mask(prefix + ": " + msg)
}
