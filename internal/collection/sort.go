// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package collection

import (
	"sort"
	"strings"
	"time"
)

// DateSort orders a collection client-side by a date attribute.
type DateSort struct {
	Field      string
	Descending bool
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseItemDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortByDate sorts items in place. Ties keep their current relative order;
// items without a parsable date go last.
func sortByDate(items []Item, ds DateSort) {
	type keyed struct {
		item Item
		at   time.Time
		ok   bool
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		at, ok := parseItemDate(it[ds.Field])
		ks[i] = keyed{item: it, at: at, ok: ok}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if !a.ok || !b.ok {
			return a.ok && !b.ok
		}
		if ds.Descending {
			return a.at.After(b.at)
		}
		return a.at.Before(b.at)
	})
	for i := range ks {
		items[i] = ks[i].item
	}
}
