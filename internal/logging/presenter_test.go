// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "tripmart/cli/internal/errors"
)

func TestPresentError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error is masked", errors.New("rejected token=abc.def"), "Error: rejected token=***"},
		{"typed error shows its message", apperrors.Wrap(apperrors.Network, "request could not complete", errors.New("dial tcp: refused")), "Error: request could not complete"},
		{"remote error carries the status", fmt.Errorf("save: %w", apperrors.RemoteError(409, "name already taken")), "Error: name already taken (HTTP 409)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PresentError("Error", tt.err))
		})
	}
}
