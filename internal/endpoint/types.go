// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import "fmt"

// Info contains parsed information about an API base URL.
type Info struct {
	Scheme   string
	Host     string
	Port     string
	BasePath string
	Original string
}

// String returns the normalized base URL.
func (i *Info) String() string {
	s := i.Scheme + "://" + i.Host
	if i.Port != "" {
		s += ":" + i.Port
	}
	return s + i.BasePath
}

// ParseError represents an error that occurred while parsing a base URL.
type ParseError struct {
	Input  string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid API URL: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid API URL: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(input, reason, hint string) *ParseError {
	return &ParseError{Input: input, Reason: reason, Hint: hint}
}
