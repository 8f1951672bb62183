// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/logging"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// File is the file part of a multipart upload. Field is the resource's fixed
// form field name ("image" or "photo").
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Gateway implements API over REST endpoints.
type Gateway struct {
	// baseURL is the base URL for all HTTP requests (e.g., "https://api.tripmart.app")
	baseURL string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	// creds supplies the bearer token; it is injected, never read from ambient storage
	creds     CredentialSource
	logger    *slog.Logger
	userAgent string

	// meCache stores the profile from GET /api/users/me for the life of the process
	meMu        sync.Mutex
	meCache     map[string]any
	meCacheTime time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(c *http.Client) Option { return func(g *Gateway) { g.client = c } }

// WithTimeout sets the request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.client = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *slog.Logger) Option { return func(g *Gateway) { g.logger = l } }

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option { return func(g *Gateway) { g.userAgent = ua } }

// New creates a Gateway for baseURL. creds may be nil, in which case every
// authenticated call fails with Unauthenticated.
func New(baseURL string, creds CredentialSource, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
		creds:     creds,
		logger:    logging.Discard(),
		userAgent: "tripmart-cli",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL returns the normalized base URL.
func (g *Gateway) BaseURL() string { return g.baseURL }

// Send issues an authenticated request. body, when non-nil, is encoded as JSON.
// On 2xx it returns the raw JSON payload (nil for an empty body).
func (g *Gateway) Send(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Validation, "request body cannot be encoded", err)
		}
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}
	return g.do(ctx, call{method: method, path: path, query: query, body: reader, contentType: contentType, authenticated: true})
}

// Upload issues an authenticated multipart/form-data request carrying fields
// and, when file is non-nil, one file part.
func (g *Gateway) Upload(ctx context.Context, method, path string, fields map[string]string, file *File) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, apperrors.Wrap(apperrors.Validation, "cannot encode form field "+k, err)
		}
	}
	if file != nil {
		if file.Field == "" {
			return nil, apperrors.New(apperrors.Validation, "upload field name is required")
		}
		part, err := mw.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Validation, "cannot encode file part", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, apperrors.Wrap(apperrors.Validation, "cannot read "+file.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, apperrors.Wrap(apperrors.Validation, "cannot encode form", err)
	}
	return g.do(ctx, call{method: method, path: path, body: &buf, contentType: mw.FormDataContentType(), authenticated: true})
}

// call describes one round trip.
type call struct {
	method        string
	path          string
	query         url.Values
	body          io.Reader
	contentType   string
	authenticated bool
	// onHeaders, when set, sees the response headers of a 2xx response
	onHeaders func(http.Header)
}

// do performs the round trip and maps every failure onto the error taxonomy.
func (g *Gateway) do(ctx context.Context, c call) (json.RawMessage, error) {
	method := c.method
	var token string
	if c.authenticated {
		if g.creds == nil {
			return nil, apperrors.New(apperrors.Unauthenticated, "no session credential")
		}
		t, err := g.creds.Token(ctx)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Unauthenticated, "session credential unavailable", err)
		}
		if t == "" {
			return nil, apperrors.New(apperrors.Unauthenticated, "no session credential")
		}
		token = t
	}

	target := g.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, c.body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Validation, "invalid request", err)
	}
	g.setStandardHeaders(req)
	if c.contentType != "" {
		req.Header.Set("Content-Type", c.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.Canceled, "request canceled", ctx.Err())
		}
		g.logger.DebugContext(ctx, "request failed", "method", method, "url", logging.Mask(target), "error", logging.Mask(err.Error()))
		return nil, apperrors.Wrap(apperrors.Network, "request could not complete", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.Canceled, "request canceled", ctx.Err())
		}
		return nil, apperrors.Wrap(apperrors.Network, "response could not be read", err)
	}

	g.logger.DebugContext(ctx, "request",
		"method", method,
		"url", logging.Mask(target),
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.RemoteError(resp.StatusCode, remoteMessage(data, resp.StatusCode))
	}
	if c.onHeaders != nil {
		c.onHeaders(resp.Header)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, apperrors.New(apperrors.Malformed, "response is not valid JSON")
	}
	return json.RawMessage(trimmed), nil
}

// setStandardHeaders adds the headers every request carries.
func (g *Gateway) setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// remoteMessage extracts the server-authored message from an error payload.
func remoteMessage(data []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err == nil {
		for _, key := range []string{"message", "error", "msg"} {
			switch v := payload[key].(type) {
			case string:
				if s := strings.TrimSpace(v); s != "" {
					return s
				}
			case map[string]any:
				if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
