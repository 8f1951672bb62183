// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render prints collection items as terminal tables or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tripmart/cli/internal/collection"
)

// Format selects the output encoding.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
)

const maxCell = 40

// Items writes items in format. columns picks the table columns; with no
// columns every attribute of the first item is shown.
func Items(w io.Writer, format Format, columns []string, items []collection.Item) error {
	if format == JSON {
		return writeJSON(w, items)
	}
	if len(columns) == 0 && len(items) > 0 {
		columns = keysOf(items[0])
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c
		configs[i] = table.ColumnConfig{Number: i + 1, WidthMax: maxCell, WidthMaxEnforcer: text.Trim}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)
	for _, it := range items {
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[i] = Cell(it[c])
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

// Item writes one record as a two-column attribute table, or JSON.
func Item(w io.Writer, format Format, item collection.Item) error {
	if format == JSON {
		return writeJSON(w, item)
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"field", "value"})
	for _, k := range keysOf(item) {
		t.AppendRow(table.Row{k, Cell(item[k])})
	}
	t.Render()
	return nil
}

// Cell formats an attribute value for a table cell.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Cell(e)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if name, ok := x["name"].(string); ok {
			return name
		}
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// keysOf returns the keys of it with "_id" and "id" first.
func keysOf(it collection.Item) []string {
	keys := make([]string, 0, len(it))
	for k := range it {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func rank(k string) int {
	switch k {
	case "_id", "id":
		return 0
	case "name", "title":
		return 1
	default:
		return 2
	}
}
