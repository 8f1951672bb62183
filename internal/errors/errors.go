// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure the client can observe (missing credential, server rejection,
// transport failure, bad input) is expressed as an *E carrying a machine-readable
// Kind so callers can decide what to show without parsing message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Unauthenticated indicates that no session credential is available.
	Unauthenticated Kind = "unauthenticated"
	// Remote indicates that the server answered with a non-2xx status.
	Remote Kind = "remote"
	// Network indicates that the request never completed (offline, DNS, timeout, TLS).
	Network Kind = "network"
	// Validation indicates that input was rejected before any request was issued.
	Validation Kind = "validation"
	// Malformed indicates a response body that does not have the expected shape.
	Malformed Kind = "malformed"
	// EditInProgress indicates an attempt to start a second concurrent draft.
	EditInProgress Kind = "edit_in_progress"
	// NotFound indicates an identifier that is not present in the loaded collection.
	NotFound Kind = "not_found"
	// Canceled indicates an operation abandoned because its context ended or it was superseded.
	Canceled Kind = "canceled"
)

// E wraps an error with kind and human-friendly message.
// Status is the HTTP status code for Remote errors and zero otherwise.
type E struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *E) Error() string {
	prefix := string(e.Kind)
	if e.Status != 0 {
		prefix = fmt.Sprintf("%s (%d)", e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf is New with fmt-style formatting of the message.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// RemoteError builds the error for a non-2xx response.
func RemoteError(status int, msg string) *E {
	return &E{Kind: Remote, Status: status, Message: msg}
}

// KindOf returns the Kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status attached to err, or zero.
func StatusOf(err error) int {
	var e *E
	if stderrors.As(err, &e) {
		return e.Status
	}
	return 0
}

// MessageOf returns the human-friendly message of the first *E in err's chain,
// falling back to err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
