// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package collection

import (
	"bytes"
	"encoding/json"

	apperrors "tripmart/cli/internal/errors"
)

// listWrappers are the object keys under which some endpoints nest the array.
var listWrappers = []string{"items", "data", "results"}

// itemWrappers are the object keys under which some endpoints nest a single record.
var itemWrappers = []string{"item", "data", "result"}

func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodeList accepts a top-level array or an object wrapping one under a
// known key. An empty body or null yields an empty list.
func decodeList(raw json.RawMessage, resource string) ([]Item, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Item{}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []Item
		if err := decodeJSON(trimmed, &items); err != nil {
			return nil, apperrors.Wrap(apperrors.Malformed, "list response is not an array of objects", err)
		}
		for _, it := range items {
			if it == nil {
				return nil, apperrors.New(apperrors.Malformed, "list response contains a null entry")
			}
		}
		if items == nil {
			items = []Item{}
		}
		return items, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := decodeJSON(trimmed, &obj); err != nil {
			return nil, apperrors.Wrap(apperrors.Malformed, "list response is not valid", err)
		}
		for _, key := range append(listWrappers, resource) {
			inner, ok := obj[key]
			if !ok {
				continue
			}
			t := bytes.TrimSpace(inner)
			if len(t) > 0 && (t[0] == '[' || bytes.Equal(t, []byte("null"))) {
				return decodeList(t, resource)
			}
		}
	}
	return nil, apperrors.New(apperrors.Malformed, "list response has an unexpected shape")
}

// matchItem finds the record with the given id in a mutation response, either
// at the top level or nested under one known key.
func matchItem(raw json.RawMessage, idField, id string, wrappers ...string) (Item, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var top Item
	if err := decodeJSON(trimmed, &top); err != nil {
		return nil, false
	}
	if top.ID(idField) == id {
		return top, true
	}
	for _, key := range append(itemWrappers, wrappers...) {
		nested, ok := top[key].(map[string]any)
		if !ok {
			continue
		}
		if it := Item(nested); it.ID(idField) == id {
			return it, true
		}
	}
	return nil, false
}

// decodeCreated returns the record a create endpoint answered with. Unlike
// matchItem the id is not known in advance, so any object carrying idField
// qualifies.
func decodeCreated(raw json.RawMessage, idField string, wrappers ...string) (Item, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var top Item
	if err := decodeJSON(trimmed, &top); err != nil {
		return nil, false
	}
	if top.ID(idField) != "" {
		return top, true
	}
	for _, key := range append(itemWrappers, wrappers...) {
		if nested, ok := top[key].(map[string]any); ok && Item(nested).ID(idField) != "" {
			return Item(nested), true
		}
	}
	return nil, false
}
