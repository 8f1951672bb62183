// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"strings"
)

// parseBearerToken extracts token from a value like "Bearer <token>" case-insensitively.
// Returns the token string without the "Bearer " prefix, or empty string if invalid format.
func parseBearerToken(value string) string {
	v := strings.TrimSpace(value)
	if len(v) < 7 {
		return ""
	}
	if strings.EqualFold(v[0:6], "bearer") {
		if rest := strings.TrimSpace(v[6:]); rest != "" {
			return rest
		}
	}
	return ""
}

// findBearerTokenInHeaders looks for a token issued through the Authorization header.
func findBearerTokenInHeaders(h http.Header) string {
	return parseBearerToken(h.Get("Authorization"))
}

// extractAccessToken finds the access token in a login response payload.
// The backend has answered with token, accessToken and access_token at
// different times, sometimes nested under data or user.
func extractAccessToken(result map[string]any) string {
	for _, key := range []string{"token", "accessToken", "access_token"} {
		if v, ok := result[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	for _, key := range []string{"data", "user"} {
		if nested, ok := result[key].(map[string]any); ok {
			if t := extractAccessToken(nested); t != "" {
				return t
			}
		}
	}
	return ""
}
