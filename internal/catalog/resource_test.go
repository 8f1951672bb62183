// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tripmart/cli/internal/errors"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{
		"activities", "complaints", "historical-places", "itineraries", "products", "promo-codes", "users",
	}, Names())

	for _, r := range All() {
		t.Run(r.Name, func(t *testing.T) {
			assert.Equal(t, "_id", r.IDField)
			assert.Equal(t, "/api/"+r.Name, r.Path)
			assert.Equal(t, "/api/"+r.Name+"/filter-sort-search", r.SearchPath)
			assert.NotEmpty(t, r.Columns)
			assert.NotEmpty(t, r.Fields)
			for _, toggle := range r.Toggles {
				assert.Equal(t, AttrBool, r.Attrs[toggle], "toggle %s must be a bool attribute", toggle)
			}
			for _, req := range r.Required {
				assert.Contains(t, r.Attrs, req)
			}
		})
	}

	_, ok := Lookup("spaceships")
	assert.False(t, ok)
}

func TestUploadFields(t *testing.T) {
	products, _ := Lookup("products")
	places, _ := Lookup("historical-places")
	complaints, _ := Lookup("complaints")

	assert.Equal(t, "image", products.UploadField)
	assert.Equal(t, "photo", places.UploadField)
	assert.Empty(t, complaints.UploadField)
	require.NotNil(t, complaints.DateSort)
	assert.Equal(t, "date", complaints.DateSort.Field)
}

func TestAssign(t *testing.T) {
	r, _ := Lookup("activities")

	got, err := r.Assign([]string{
		"name=Sunset kayak",
		"price=49.90",
		"bookingOpen=true",
		"date=2025-07-14",
		"tags=outdoor, water ,",
		"notes=bring a towel",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":        "Sunset kayak",
		"price":       49.9,
		"bookingOpen": true,
		"date":        "2025-07-14",
		"tags":        []any{"outdoor", "water"},
		"notes":       "bring a towel",
	}, got)
}

func TestAssign_Rejects(t *testing.T) {
	activities, _ := Lookup("activities")
	places, _ := Lookup("historical-places")

	tests := []struct {
		name  string
		r     Resource
		pairs []string
	}{
		{"no equals", activities, []string{"price"}},
		{"bad number", activities, []string{"price=cheap"}},
		{"NaN", activities, []string{"price=NaN"}},
		{"Inf", activities, []string{"price=Inf"}},
		{"infinity", activities, []string{"price=-infinity"}},
		{"bad bool", activities, []string{"bookingOpen=maybe"}},
		{"bad date", activities, []string{"date=14/07/2025"}},
		{"bad url", places, []string{"website=ftp://example.com"}},
		{"id", activities, []string{"_id=abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.Assign(tt.pairs)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.Validation))
		})
	}
}

func TestValidate(t *testing.T) {
	r, _ := Lookup("products")

	assert.NoError(t, r.Validate(map[string]any{"name": "Mug", "price": 5.0, "quantity": 3.0}))

	err := r.Validate(map[string]any{"name": "  ", "price": 5.0})
	require.Error(t, err)
	assert.Equal(t, "missing required fields: name, quantity", apperrors.MessageOf(err))
}

func TestCanToggleAndItemPath(t *testing.T) {
	r, _ := Lookup("promo-codes")
	assert.True(t, r.CanToggle("active"))
	assert.False(t, r.CanToggle("discount"))
	assert.Equal(t, "/api/promo-codes/a%2Fb", r.ItemPath("a/b"))
}
