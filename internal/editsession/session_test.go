// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package editsession

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmart/cli/internal/collection"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/status"
)

type sentCall struct {
	method string
	path   string
	body   any
}

type fakeSender struct {
	mu      sync.Mutex
	calls   []sentCall
	handler func(c sentCall) (json.RawMessage, error)
}

func (f *fakeSender) Send(_ context.Context, method, path string, body any, _ url.Values) (json.RawMessage, error) {
	c := sentCall{method: method, path: path, body: body}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	return f.handler(c)
}

func (f *fakeSender) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

const itineraries = `[
	{"_id":"it1","name":"Old Town walk","price":40,"tags":["history","food"]},
	{"_id":"it2","name":"Harbor cruise","price":65}
]`

var itinerarySpec = collection.Spec{
	Name:     "itineraries",
	Singular: "itinerary",
	ListPath: "/api/itineraries",
}

func setup(t *testing.T, opts ...Option) (*Session, *collection.View, *fakeSender, *status.Channel) {
	t.Helper()
	fs := &fakeSender{handler: func(sentCall) (json.RawMessage, error) { return json.RawMessage(itineraries), nil }}
	ch := status.NewChannel(nil)
	view := collection.New(fs, itinerarySpec, ch)
	require.NoError(t, view.Load(context.Background()))
	return New(view, fs, nil, ch, opts...), view, fs, ch
}

func snapshot(t *testing.T, v *collection.View, id string) []byte {
	t.Helper()
	item, ok := v.Get(id)
	require.True(t, ok)
	b, err := json.Marshal(item)
	require.NoError(t, err)
	return b
}

func TestCancel_LeavesItemUnchanged(t *testing.T) {
	s, view, fs, _ := setup(t)
	before := snapshot(t, view, "it1")

	require.NoError(t, s.Begin("it1"))
	require.NoError(t, s.SetField("name", "Night walk"))
	require.NoError(t, s.SetField("price", 55))
	require.NoError(t, s.SetField("tags", []string{"night"}))
	require.NoError(t, s.SetField("extra", true))

	draft, ok := s.Draft()
	require.True(t, ok)
	assert.Equal(t, "Night walk", draft["name"])

	s.Cancel()

	assert.Equal(t, before, snapshot(t, view, "it1"))
	assert.Equal(t, Viewing, s.State())
	_, ok = s.Draft()
	assert.False(t, ok)
	assert.Equal(t, 0, fs.count(http.MethodPut))
}

func TestSave_ReplacesWithServerObject(t *testing.T) {
	s, view, fs, ch := setup(t)
	var sent any
	fs.handler = func(c sentCall) (json.RawMessage, error) {
		sent = c.body
		return json.RawMessage(`{"_id":"it1","name":"Night walk","price":55,"updatedAt":"2025-05-01T10:00:00Z"}`), nil
	}

	require.NoError(t, s.Begin("it1"))
	require.NoError(t, s.SetField("name", "Night walk"))
	updated, err := s.Save(context.Background())
	require.NoError(t, err)

	sentDraft, ok := sent.(collection.Item)
	require.True(t, ok)
	assert.Equal(t, "Night walk", sentDraft["name"])
	assert.Contains(t, sentDraft, "tags", "the full draft is sent")

	assert.Equal(t, "2025-05-01T10:00:00Z", updated["updatedAt"])
	got, _ := view.Get("it1")
	assert.Equal(t, updated, got)
	assert.Equal(t, Viewing, s.State())
	msg, _ := ch.Current()
	assert.Equal(t, status.Success, msg.Severity)
}

func TestSave_FailureKeepsDraftAndDoesNotRetry(t *testing.T) {
	s, view, fs, ch := setup(t)
	before := snapshot(t, view, "it1")
	fs.handler = func(sentCall) (json.RawMessage, error) {
		return nil, apperrors.RemoteError(403, "Only the guide who created this itinerary can edit it")
	}

	require.NoError(t, s.Begin("it1"))
	require.NoError(t, s.SetField("price", 10))
	_, err := s.Save(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1, fs.count(http.MethodPut))
	assert.Equal(t, Editing, s.State())
	draft, ok := s.Draft()
	require.True(t, ok)
	assert.Equal(t, 10, draft["price"])
	assert.Equal(t, before, snapshot(t, view, "it1"))
	msg, _ := ch.Current()
	assert.Equal(t, status.Message{Severity: status.Error, Text: "Only the guide who created this itinerary can edit it"}, msg)
}

func TestBegin_SecondItemRejected(t *testing.T) {
	s, _, _, ch := setup(t)

	require.NoError(t, s.Begin("it1"))
	require.NoError(t, s.SetField("name", "kept"))

	err := s.Begin("it2")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.EditInProgress))
	msg, _ := ch.Current()
	assert.Equal(t, status.Error, msg.Severity)

	// Same item again keeps the draft.
	require.NoError(t, s.Begin("it1"))
	draft, _ := s.Draft()
	assert.Equal(t, "kept", draft["name"])

	id, active := s.Active()
	assert.True(t, active)
	assert.Equal(t, "it1", id)

	s.Cancel()
	assert.NoError(t, s.Begin("it2"))
}

func TestBegin_UnknownID(t *testing.T) {
	s, _, _, _ := setup(t)
	err := s.Begin("nope")
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.Equal(t, Viewing, s.State())
}

func TestSetField_Rules(t *testing.T) {
	s, _, _, _ := setup(t)

	assert.True(t, apperrors.Is(s.SetField("name", "x"), apperrors.Validation), "no draft yet")

	require.NoError(t, s.Begin("it1"))
	assert.True(t, apperrors.Is(s.SetField("_id", "other"), apperrors.Validation))
}

func TestSave_ValidatorBlocksRequest(t *testing.T) {
	s, _, fs, _ := setup(t, WithValidator(func(d collection.Item) error {
		if d["name"] == "" {
			return apperrors.New(apperrors.Validation, "name is required")
		}
		return nil
	}))

	require.NoError(t, s.Begin("it2"))
	require.NoError(t, s.SetField("name", ""))
	_, err := s.Save(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.Validation))
	assert.Equal(t, 0, fs.count(http.MethodPut))
	assert.Equal(t, Editing, s.State())
}

func TestSave_AmbiguousResponseRefetches(t *testing.T) {
	s, view, fs, _ := setup(t)
	fs.handler = func(c sentCall) (json.RawMessage, error) {
		if c.method == http.MethodPut {
			return json.RawMessage(`{"message":"Itinerary updated"}`), nil
		}
		return json.RawMessage(`[{"_id":"it1","name":"Renamed"},{"_id":"it2","name":"Harbor cruise"}]`), nil
	}

	require.NoError(t, s.Begin("it1"))
	require.NoError(t, s.SetField("name", "Renamed"))
	updated, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated["name"])
	assert.Equal(t, 2, fs.count(http.MethodGet))
	assert.Equal(t, 2, view.Len())
}

func TestSave_CustomUpdatePath(t *testing.T) {
	fs := &fakeSender{handler: func(sentCall) (json.RawMessage, error) { return json.RawMessage(itineraries), nil }}
	view := collection.New(fs, itinerarySpec, nil)
	require.NoError(t, view.Load(context.Background()))

	var path string
	s := New(view, fs, func(id string) string { return "/api/itineraries/" + id + "/details" }, nil)
	fs.handler = func(c sentCall) (json.RawMessage, error) {
		path = c.path
		return json.RawMessage(`{"_id":"it2","name":"Harbor cruise"}`), nil
	}

	require.NoError(t, s.Begin("it2"))
	_, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/itineraries/it2/details", path)
}
