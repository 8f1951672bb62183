// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend is the client's only way to reach the Tripmart REST API.
// Every call goes through Gateway, which attaches the session credential,
// normalizes failures into the internal/errors taxonomy and decodes nothing
// beyond checking that a body is JSON. Callers own the payload shapes.
package backend

import (
	"context"
	"encoding/json"
	"net/url"
)

// Sender issues one authenticated JSON request. Implementations must not
// retry, cache or deduplicate calls.
type Sender interface {
	Send(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error)
}

// Uploader issues one authenticated multipart/form-data request.
type Uploader interface {
	Upload(ctx context.Context, method, path string, fields map[string]string, file *File) (json.RawMessage, error)
}

// CredentialSource supplies the bearer token for each request.
// An empty token with a nil error means "not logged in".
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialSource that always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func(ctx context.Context) (string, error)

func (f CredentialFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// API defines the account operations the CLI depends on.
type API interface {
	Sender
	Uploader
	// Login exchanges username and password for an access token.
	Login(ctx context.Context, username, password string) (accessToken string, err error)
	// Logout invalidates the current access token on the backend.
	Logout(ctx context.Context) error
	// GetMe retrieves the current user's profile.
	GetMe(ctx context.Context) (map[string]any, error)
	// Health probes the API without credentials.
	Health(ctx context.Context) error
}

var _ API = (*Gateway)(nil)
