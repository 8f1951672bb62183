// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package query turns a Descriptor (filter-field name to scalar value, built
// from user input) into the query string of a filter-sort-search endpoint.
// Each resource declares a FieldMap; the encoder is shared by all of them.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "tripmart/cli/internal/errors"
)

// Kind describes how a descriptor value is validated and formatted.
type Kind int

const (
	String Kind = iota
	Number
	Date
	Order
)

// Param binds a descriptor key to the query parameter a resource understands.
type Param struct {
	Name string
	Kind Kind
}

// FieldMap maps descriptor keys to parameters.
type FieldMap map[string]Param

// Keys returns the descriptor keys of fm in sorted order.
func (fm FieldMap) Keys() []string {
	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Descriptor is constructed fresh for each search and never persisted.
type Descriptor map[string]any

const dateLayout = "2006-01-02"

// Encode validates d against fm and returns the query parameters.
// Empty values are omitted. Unknown keys, malformed numbers or dates, an order
// outside {asc, desc} and a min bound above its max bound are Validation errors.
func Encode(d Descriptor, fm FieldMap) (url.Values, error) {
	out := url.Values{}
	numbers := make(map[string]float64)

	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		param, ok := fm[key]
		if !ok {
			return nil, apperrors.Newf(apperrors.Validation, "unsupported filter %q (supported: %s)", key, strings.Join(fm.Keys(), ", "))
		}
		raw, present := scalar(d[key])
		if !present {
			continue
		}

		switch param.Kind {
		case Number:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, apperrors.Newf(apperrors.Validation, "%s must be a number, got %q", key, raw)
			}
			if n < 0 {
				return nil, apperrors.Newf(apperrors.Validation, "%s must not be negative", key)
			}
			numbers[key] = n
			out.Set(param.Name, strconv.FormatFloat(n, 'f', -1, 64))
		case Date:
			t, err := parseDate(raw)
			if err != nil {
				return nil, apperrors.Newf(apperrors.Validation, "%s must be a date (YYYY-MM-DD), got %q", key, raw)
			}
			out.Set(param.Name, t.Format(dateLayout))
		case Order:
			o := strings.ToLower(raw)
			if o != "asc" && o != "desc" {
				return nil, apperrors.Newf(apperrors.Validation, "%s must be asc or desc, got %q", key, raw)
			}
			out.Set(param.Name, o)
		default:
			out.Set(param.Name, raw)
		}
	}

	if err := checkBounds(numbers); err != nil {
		return nil, err
	}
	return out, nil
}

// scalar renders v as a trimmed string. It reports false for nil and empty values.
func scalar(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case *string:
		if x == nil {
			return "", false
		}
		s = *x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		s = x.Format(dateLayout)
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// parseDate accepts calendar dates only; filters have day granularity.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// checkBounds rejects minX > maxX pairs such as minPrice/maxPrice.
func checkBounds(numbers map[string]float64) error {
	for key, lo := range numbers {
		if !strings.HasPrefix(key, "min") {
			continue
		}
		partner := "max" + strings.TrimPrefix(key, "min")
		if hi, ok := numbers[partner]; ok && lo > hi {
			return apperrors.Newf(apperrors.Validation, "%s (%v) is greater than %s (%v)", key, lo, partner, hi)
		}
	}
	return nil
}

// ParseAssignments parses "key=value" pairs into a Descriptor.
// Later assignments of the same key win.
func ParseAssignments(pairs []string) (Descriptor, error) {
	d := Descriptor{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.Newf(apperrors.Validation, "expected key=value, got %q", p)
		}
		d[key] = strings.TrimSpace(value)
	}
	return d, nil
}
