// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client reads out of an access token. The signature is
// not verified; only the server can do that.
type Claims struct {
	Subject   string
	Username  string
	Role      string
	ExpiresAt time.Time
}

// ParseClaims decodes a JWT access token. It reports false for opaque tokens.
func ParseClaims(token string) (Claims, bool) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), mc); err != nil {
		return Claims{}, false
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	c.Username = firstString(mc, "username", "name", "email")
	if c.Subject == "" {
		c.Subject = firstString(mc, "id", "_id", "userId")
	}
	c.Role = firstString(mc, "role", "type", "userType")
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, true
}

// Expired reports whether the token carries an expiry at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Account returns the best human-readable identity.
func (c Claims) Account() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Subject
}

func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := mc[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
