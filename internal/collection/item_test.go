// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package collection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemID(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{"string", Item{"_id": " 65f0c2 "}, "65f0c2"},
		{"json number", Item{"_id": json.Number("42")}, "42"},
		{"float", Item{"_id": 7.0}, "7"},
		{"int", Item{"_id": 9}, "9"},
		{"missing", Item{"name": "x"}, ""},
		{"unsupported", Item{"_id": true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.ID("_id"))
		})
	}
}

func TestMatchItem(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{"top level", `{"_id":"a","archived":true}`, true},
		{"data wrapper", `{"data":{"_id":"a"}}`, true},
		{"singular wrapper", `{"product":{"_id":"a"}}`, true},
		{"other id", `{"_id":"b"}`, false},
		{"message only", `{"message":"Updated"}`, false},
		{"array", `[{"_id":"a"}]`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := matchItem(json.RawMessage(tt.raw), "_id", "a", "product")
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
