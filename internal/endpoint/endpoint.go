// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package endpoint parses and normalizes the API base URL the client talks to.
package endpoint

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

var portPattern = regexp.MustCompile(`^\d{1,5}$`)

// Parse parses a base URL such as "api.tripmart.app", "http://localhost:8000"
// or "https://example.com/tripmart/api". A missing scheme means https, or
// http for loopback hosts. A trailing "/api" segment is dropped because
// every request path already starts with it.
func Parse(raw string) (*Info, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return nil, NewParseError(raw, "empty URL", "provide the API address, e.g. https://api.tripmart.app")
	}

	withScheme := input
	if !strings.Contains(input, "://") {
		withScheme = "https://" + input
		if isLoopback(hostOf(input)) {
			withScheme = "http://" + input
		}
	}

	u, err := url.Parse(withScheme)
	if err != nil {
		return nil, NewParseError(raw, "cannot parse URL", "use the form https://host[:port][/path]")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, NewParseError(raw, "unsupported scheme "+u.Scheme, "use http:// or https://")
	}
	if u.User != nil {
		return nil, NewParseError(raw, "credentials in URL", "remove user:password@; log in with 'tripmart login' instead")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, NewParseError(raw, "query or fragment in URL", "the base URL must not contain ? or #")
	}
	host := u.Hostname()
	if host == "" {
		return nil, NewParseError(raw, "missing host", "use the form https://host[:port]")
	}
	port := u.Port()
	if port != "" && !portPattern.MatchString(port) {
		return nil, NewParseError(raw, "invalid port number: "+port, "port must be numeric")
	}
	if strings.HasSuffix(u.Host, ":") {
		return nil, NewParseError(raw, "empty port", "remove the trailing colon or add a port")
	}

	base := strings.TrimRight(u.EscapedPath(), "/")
	base = strings.TrimSuffix(base, "/api")

	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return &Info{
		Scheme:   scheme,
		Host:     strings.ToLower(host),
		Port:     port,
		BasePath: base,
		Original: raw,
	}, nil
}

// Normalize returns the canonical form of raw.
func Normalize(raw string) (string, error) {
	info, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return info.String(), nil
}

// Validate checks raw without normalizing it.
func Validate(raw string) error {
	_, err := Parse(raw)
	return err
}

func hostOf(s string) string {
	h := s
	if i := strings.IndexAny(h, "/?#"); i >= 0 {
		h = h[:i]
	}
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
