// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package catalog declares the marketplace resources the client can browse.
// Each Resource is pure data: endpoints, filter fields, table columns,
// toggleable flags and how command-line values are typed.
package catalog

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"tripmart/cli/internal/collection"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/query"
)

// AttrKind tells how a "key=value" assignment is converted before sending.
type AttrKind int

const (
	AttrString AttrKind = iota
	AttrNumber
	AttrBool
	AttrURL
	AttrDate
	AttrList
)

func (k AttrKind) String() string {
	switch k {
	case AttrNumber:
		return "number"
	case AttrBool:
		return "true/false"
	case AttrURL:
		return "URL"
	case AttrDate:
		return "date"
	case AttrList:
		return "comma-separated list"
	default:
		return "text"
	}
}

// Resource describes one collection endpoint of the API.
type Resource struct {
	Name       string
	Singular   string
	Path       string
	SearchPath string
	IDField    string
	Fields     query.FieldMap
	Columns    []string
	Toggles    []string
	Attrs      map[string]AttrKind
	Required   []string
	// UploadField is the multipart field for an attached file; empty when
	// the resource takes no file.
	UploadField string
	DateSort    *collection.DateSort
}

// CollectionSpec returns the view declaration of r.
func (r Resource) CollectionSpec() collection.Spec {
	return collection.Spec{
		Name:       r.Name,
		Singular:   r.Singular,
		ListPath:   r.Path,
		SearchPath: r.SearchPath,
		IDField:    r.IDField,
		Fields:     r.Fields,
		DateSort:   r.DateSort,
	}
}

// ItemPath returns the update/delete path of one record.
func (r Resource) ItemPath(id string) string {
	return r.CollectionSpec().ItemPath(id)
}

// CanToggle reports whether field is one of r's boolean flags.
func (r Resource) CanToggle(field string) bool {
	for _, t := range r.Toggles {
		if t == field {
			return true
		}
	}
	return false
}

// Coerce converts a raw command-line value for key into the JSON type the
// server expects. Keys r does not declare are sent as text.
func (r Resource) Coerce(key, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	kind := r.Attrs[key]
	if raw == "" && kind != AttrString {
		return nil, nil
	}
	switch kind {
	case AttrNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, apperrors.Newf(apperrors.Validation, "%s must be a number, got %q", key, raw)
		}
		return n, nil
	case AttrBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.Newf(apperrors.Validation, "%s must be true or false, got %q", key, raw)
		}
		return b, nil
	case AttrURL:
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, apperrors.Newf(apperrors.Validation, "%s must be an http(s) URL, got %q", key, raw)
		}
		return u.String(), nil
	case AttrDate:
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, raw); err == nil {
				if layout == time.RFC3339 {
					return t.UTC().Format(time.RFC3339), nil
				}
				return t.Format("2006-01-02"), nil
			}
		}
		return nil, apperrors.Newf(apperrors.Validation, "%s must be a date (YYYY-MM-DD), got %q", key, raw)
	case AttrList:
		var out []any
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return raw, nil
	}
}

// Assign parses "key=value" pairs into typed values. Later pairs win.
func (r Resource) Assign(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.Newf(apperrors.Validation, "expected key=value, got %q", p)
		}
		if key == r.IDField {
			return nil, apperrors.Newf(apperrors.Validation, "%s cannot be set", key)
		}
		v, err := r.Coerce(key, value)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// Validate reports required attributes that are missing or empty in record.
func (r Resource) Validate(record map[string]any) error {
	var missing []string
	for _, key := range r.Required {
		v, ok := record[key]
		if !ok || v == nil {
			missing = append(missing, key)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return apperrors.Newf(apperrors.Validation, "missing required %s: %s", plural(len(missing), "field", "fields"), strings.Join(missing, ", "))
	}
	return nil
}

// ValidateDraft adapts Validate to an edit draft.
func (r Resource) ValidateDraft(d collection.Item) error { return r.Validate(d) }

// Describe lists the typed attributes of r for help output.
func (r Resource) Describe() []string {
	keys := make([]string, 0, len(r.Attrs))
	for k := range r.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%s (%s)", k, r.Attrs[k])
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
