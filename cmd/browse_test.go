// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBrowser struct {
	calls []string
}

func (f *fakeBrowser) record(s string) error { f.calls = append(f.calls, s); return nil }

func (f *fakeBrowser) List(context.Context) error { return f.record("list") }
func (f *fakeBrowser) Search(_ context.Context, pairs []string) error {
	return f.record("search " + strings.Join(pairs, ","))
}
func (f *fakeBrowser) Show(id string) error       { return f.record("show " + id) }
func (f *fakeBrowser) Edit(id string) error       { return f.record("edit " + id) }
func (f *fakeBrowser) Set(k, v string) error      { return f.record("set " + k + "=" + v) }
func (f *fakeBrowser) Draft() error               { return f.record("draft") }
func (f *fakeBrowser) Save(context.Context) error { return f.record("save") }
func (f *fakeBrowser) Cancel() error              { return f.record("cancel") }
func (f *fakeBrowser) Status() error              { return f.record("status") }
func (f *fakeBrowser) Remove(_ context.Context, id string) error {
	return f.record("rm " + id)
}
func (f *fakeBrowser) Toggle(_ context.Context, id, field string) error {
	return f.record("toggle " + id + " " + field)
}

func silence(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunBrowse_Dispatch(t *testing.T) {
	silence(t)
	input := strings.Join([]string{
		"help",
		"list",
		"search minPrice=10 order=asc",
		"show p1",
		"edit p1",
		"set name Sunset kayak tour",
		"draft",
		"save",
		"cancel",
		"rm p2",
		"toggle p3 archived",
		"status",
		"",
		"exit",
		"list",
	}, "\n")

	b := &fakeBrowser{}
	runBrowse(context.Background(), b, func() string { return "products" }, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{
		"list",
		"search minPrice=10,order=asc",
		"show p1",
		"edit p1",
		"set name=Sunset kayak tour",
		"draft",
		"save",
		"cancel",
		"rm p2",
		"toggle p3 archived",
		"status",
	}, b.calls, "nothing runs after exit")
}

func TestRunBrowse_UsageErrorsIssueNoCalls(t *testing.T) {
	lines := silence(t)
	input := "show\nedit\nset name\nrm\ntoggle p1\nfoobar\nquit\n"

	b := &fakeBrowser{}
	runBrowse(context.Background(), b, func() string { return "s" }, bufio.NewScanner(strings.NewReader(input)))

	assert.Empty(t, b.calls)
	assert.Contains(t, *lines, "Usage: toggle <id> <field>")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunBrowse_StopsAtEOF(t *testing.T) {
	silence(t)
	b := &fakeBrowser{}
	runBrowse(context.Background(), b, func() string { return "s" }, bufio.NewScanner(strings.NewReader("list")))
	assert.Equal(t, []string{"list"}, b.calls)
}
