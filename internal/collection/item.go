// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package collection

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Item is one record of a collection. Attributes are untyped from the
// client's point of view; only the id field is interpreted.
type Item map[string]any

// ID returns the identifier stored under field, rendered as a string.
// Numeric identifiers are formatted without exponent or trailing zeros.
func (it Item) ID(field string) string {
	switch v := it[field].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// Clone returns a shallow copy. Nested values are shared, so callers must
// replace top-level keys rather than mutate nested maps or slices.
func (it Item) Clone() Item {
	if it == nil {
		return nil
	}
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

func cloneAll(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
