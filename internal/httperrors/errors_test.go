// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{"nil", nil, CauseGeneric},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), CauseTimeout},
		{"client timeout text", errors.New("Client.Timeout exceeded while awaiting headers"), CauseTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.example"}, CauseDNS},
		{"refused errno", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), CauseConnectionRefused},
		{"refused text", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), CauseConnectionRefused},
		{"tls", errors.New("x509: certificate signed by unknown authority"), CauseTLS},
		{"other", errors.New("unexpected EOF"), CauseGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestSummary_AlwaysMentionsConnection(t *testing.T) {
	for _, err := range []error{
		context.DeadlineExceeded,
		&net.DNSError{Err: "no such host"},
		syscall.ECONNREFUSED,
		errors.New("tls: handshake failure"),
		errors.New("server said: secret internals"),
	} {
		s := Summary(err)
		assert.Contains(t, s, "connection")
		assert.NotContains(t, s, "secret internals")
	}
}

func TestExtractHostFromURL(t *testing.T) {
	assert.Equal(t, "api.tripmart.app:8443", ExtractHostFromURL("https://api.tripmart.app:8443/api"))
	assert.Equal(t, "server", ExtractHostFromURL("not a url"))
	assert.Equal(t, "server", ExtractHostFromURL(""))
}
