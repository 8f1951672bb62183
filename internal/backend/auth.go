// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	apperrors "tripmart/cli/internal/errors"
)

const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/auth/logout"
	healthPath = "/api/health"
)

// Login calls POST /api/auth/login with {username, password}.
// This is the only request that goes out without a bearer credential.
func (g *Gateway) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperrors.New(apperrors.Validation, "username and password are required")
	}
	b, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", apperrors.Wrap(apperrors.Validation, "request body cannot be encoded", err)
	}

	var issued string
	raw, err := g.do(ctx, call{
		method:      http.MethodPost,
		path:        loginPath,
		body:        bytes.NewReader(b),
		contentType: "application/json",
		onHeaders: func(h http.Header) {
			issued = findBearerTokenInHeaders(h)
		},
	})
	if err != nil {
		return "", err
	}
	if issued != "" {
		return issued, nil
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", apperrors.Wrap(apperrors.Malformed, "login response is not an object", err)
	}
	token := extractAccessToken(result)
	if token == "" {
		return "", apperrors.New(apperrors.Malformed, "no token in login response")
	}
	return token, nil
}

// Logout calls POST /api/auth/logout with the current credential and clears
// the cached profile regardless of the outcome.
func (g *Gateway) Logout(ctx context.Context) error {
	g.meMu.Lock()
	g.meCache = nil
	g.meMu.Unlock()

	_, err := g.Send(ctx, http.MethodPost, logoutPath, nil, nil)
	return err
}

// Health calls GET /api/health without credentials. Any 2xx means reachable.
func (g *Gateway) Health(ctx context.Context) error {
	_, err := g.do(ctx, call{method: http.MethodGet, path: healthPath})
	if apperrors.Is(err, apperrors.Malformed) {
		// Plain-text "OK" bodies are fine here.
		return nil
	}
	return err
}
