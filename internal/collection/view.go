// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package collection implements the remote list behind every resource screen:
// a View fetches a collection from one endpoint, keeps it in server order,
// re-fetches it with filter parameters and applies single-item mutations
// using the record the server returns.
//
// A View is safe for concurrent use. Each fetch is numbered; issuing a new
// fetch cancels the previous one and only the latest fetch may replace the
// list. A successful mutation also advances the number, so a slower fetch
// that started before it can never overwrite the mutated list.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"tripmart/cli/internal/backend"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/logging"
	"tripmart/cli/internal/query"
	"tripmart/cli/internal/status"
)

// State is the lifecycle state of a View.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrSuperseded is returned by a fetch whose response arrived after a
	// newer fetch or a mutation; its result was discarded.
	ErrSuperseded = apperrors.New(apperrors.Canceled, "superseded by a newer request")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = apperrors.New(apperrors.Canceled, "view closed")
)

// Spec declares the endpoints and shape of one resource.
type Spec struct {
	// Name is the plural resource name, e.g. "products". It is also accepted
	// as the key wrapping a list response.
	Name string
	// Singular labels one record in status messages, e.g. "product".
	Singular string
	// ListPath serves GET (list) and POST (create), e.g. "/api/products".
	ListPath string
	// SearchPath serves GET with filter parameters.
	SearchPath string
	// IDField is the attribute holding the identifier. Defaults to "_id".
	IDField string
	// Fields maps search descriptor keys to query parameters.
	Fields query.FieldMap
	// DateSort, when set, is applied after every successful fetch.
	DateSort *DateSort
}

// ItemPath returns the update/delete path of the record with the given id.
func (s Spec) ItemPath(id string) string {
	return strings.TrimRight(s.ListPath, "/") + "/" + url.PathEscape(id)
}

func (s Spec) label() string {
	if s.Singular != "" {
		return s.Singular
	}
	return s.Name
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger for fetch and mutation debug lines.
func WithLogger(l *slog.Logger) Option { return func(v *View) { v.logger = l } }

// View owns the list of one resource screen.
type View struct {
	sender backend.Sender
	spec   Spec
	status *status.Channel
	logger *slog.Logger

	mu      sync.Mutex
	items   []Item
	state   State
	settled State
	err     error
	seq     uint64
	cancel  context.CancelFunc
	closed  bool

	// last fetch, repeated by Refresh
	lastPath  string
	lastQuery url.Values
}

// New creates an Idle view. ch may be nil when no status surface exists.
func New(sender backend.Sender, spec Spec, ch *status.Channel, opts ...Option) *View {
	if spec.IDField == "" {
		spec.IDField = "_id"
	}
	if spec.SearchPath == "" {
		spec.SearchPath = spec.ListPath
	}
	if ch == nil {
		ch = status.NewChannel(nil)
	}
	v := &View{
		sender: sender,
		spec:   spec,
		status: ch,
		logger: logging.Discard(),
		items:  []Item{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Spec returns the resource declaration, including the current date order.
func (v *View) Spec() Spec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.spec
}

// Status returns the channel the view publishes to.
func (v *View) Status() *status.Channel { return v.status }

// State returns the current lifecycle state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the error of the last failed fetch, or nil.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Items returns a copy of the list in server order.
func (v *View) Items() []Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneAll(v.items)
}

// Len returns the number of items held.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.items)
}

// Get returns a copy of the item with the given id.
func (v *View) Get(id string) (Item, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.indexLocked(id); i >= 0 {
		return v.items[i].Clone(), true
	}
	return nil, false
}

func (v *View) indexLocked(id string) int {
	for i, it := range v.items {
		if it.ID(v.spec.IDField) == id {
			return i
		}
	}
	return -1
}

// Load fetches the unfiltered collection.
func (v *View) Load(ctx context.Context) error {
	return v.fetch(ctx, v.spec.ListPath, nil)
}

// Search validates d, encodes it with the resource's field map and fetches
// the filtered collection. The server decides which items match and in which
// order; the client never filters again. An invalid descriptor issues no
// request and leaves the list untouched.
func (v *View) Search(ctx context.Context, d query.Descriptor) error {
	q, err := query.Encode(d, v.spec.Fields)
	if err != nil {
		v.status.PublishError(err)
		return err
	}
	return v.fetch(ctx, v.spec.SearchPath, q)
}

// Refresh repeats the last fetch, or performs Load when nothing was fetched yet.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	path, q := v.lastPath, v.lastQuery
	v.mu.Unlock()
	if path == "" {
		return v.Load(ctx)
	}
	return v.fetch(ctx, path, q)
}

func (v *View) fetch(ctx context.Context, path string, q url.Values) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	seq := v.seq
	fctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	if v.state != Loading {
		v.settled = v.state
	}
	v.state = Loading
	v.lastPath, v.lastQuery = path, q
	dateSort := v.spec.DateSort
	v.mu.Unlock()
	defer cancel()

	v.status.Clear()
	raw, err := v.sender.Send(fctx, http.MethodGet, path, nil, q)
	var items []Item
	if err == nil {
		items, err = v.decode(raw, dateSort)
	}

	v.mu.Lock()
	if v.closed || seq != v.seq {
		v.mu.Unlock()
		v.logger.DebugContext(ctx, "dropping stale response", "resource", v.spec.Name, "seq", seq)
		return ErrSuperseded
	}
	v.cancel = nil
	if err != nil {
		// Prior items stay as they were.
		v.state = Failed
		v.err = err
		v.mu.Unlock()
		v.logger.DebugContext(ctx, "fetch failed", "resource", v.spec.Name, "seq", seq, "error", err)
		v.status.PublishError(err)
		return err
	}
	v.items = items
	v.state = Loaded
	v.err = nil
	v.mu.Unlock()

	v.logger.DebugContext(ctx, "fetch complete", "resource", v.spec.Name, "seq", seq, "count", len(items))
	if len(items) == 0 {
		v.status.Info(fmt.Sprintf("No %s found.", v.spec.Name))
	}
	return nil
}

func (v *View) decode(raw json.RawMessage, dateSort *DateSort) ([]Item, error) {
	items, err := decodeList(raw, v.spec.Name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		id := it.ID(v.spec.IDField)
		if id == "" {
			return nil, apperrors.Newf(apperrors.Malformed, "%s without %s in list response", v.spec.label(), v.spec.IDField)
		}
		if _, dup := seen[id]; dup {
			return nil, apperrors.Newf(apperrors.Malformed, "duplicate %s %q in list response", v.spec.IDField, id)
		}
		seen[id] = struct{}{}
	}
	if dateSort != nil {
		sortByDate(items, *dateSort)
	}
	return items, nil
}

// SortByDate re-sorts the held items by the resource's date field. Ties keep
// their current relative order.
func (v *View) SortByDate(descending bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.spec.DateSort == nil {
		return apperrors.Newf(apperrors.Validation, "%s cannot be sorted by date", v.spec.Name)
	}
	ds := *v.spec.DateSort
	ds.Descending = descending
	v.spec.DateSort = &ds
	sortByDate(v.items, ds)
	return nil
}

// invalidateLocked makes any in-flight fetch stale after a mutation and puts
// the view back in the state it had before that fetch began.
func (v *View) invalidateLocked() {
	v.seq++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.state == Loading {
		v.state = v.settled
	}
}

// Replace swaps the held item that has the same id as item.
func (v *View) Replace(item Item) error {
	id := item.ID(v.spec.IDField)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	i := v.indexLocked(id)
	if i < 0 {
		return apperrors.Newf(apperrors.NotFound, "%s %s is not in the list", v.spec.label(), id)
	}
	v.items[i] = item.Clone()
	v.invalidateLocked()
	return nil
}

func (v *View) require(id string) error {
	v.mu.Lock()
	closed := v.closed
	found := v.indexLocked(id) >= 0
	v.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !found {
		err := apperrors.Newf(apperrors.NotFound, "%s %s is not in the list", v.spec.label(), id)
		v.status.PublishError(err)
		return err
	}
	return nil
}

// Remove deletes the item on the server and then drops it from the list.
// On failure the list is left untouched.
func (v *View) Remove(ctx context.Context, id string) error {
	if err := v.require(id); err != nil {
		return err
	}
	v.status.Clear()
	if _, err := v.sender.Send(ctx, http.MethodDelete, v.spec.ItemPath(id), nil, nil); err != nil {
		v.status.PublishError(err)
		return err
	}

	v.mu.Lock()
	if i := v.indexLocked(id); i >= 0 {
		v.items = append(v.items[:i:i], v.items[i+1:]...)
	}
	v.invalidateLocked()
	v.mu.Unlock()

	v.status.Success(fmt.Sprintf("Deleted %s %s.", v.spec.label(), id))
	return nil
}

// ToggleFlag asks the server to invert a boolean attribute. The list is
// patched with the record the server returns, never by flipping the local
// value; the server may refuse or alter the transition.
func (v *View) ToggleFlag(ctx context.Context, id, field string) (Item, error) {
	if err := v.require(id); err != nil {
		return nil, err
	}
	item, _ := v.Get(id)
	current := false
	switch b := item[field].(type) {
	case nil:
	case bool:
		current = b
	default:
		err := apperrors.Newf(apperrors.Validation, "%s is not a true/false field", field)
		v.status.PublishError(err)
		return nil, err
	}

	v.status.Clear()
	raw, err := v.sender.Send(ctx, http.MethodPut, v.spec.ItemPath(id), map[string]any{field: !current}, nil)
	if err != nil {
		v.status.PublishError(err)
		return nil, err
	}
	updated, err := v.ApplyResponse(ctx, id, raw)
	if err != nil {
		return nil, err
	}
	v.status.Success(fmt.Sprintf("%s %s: %s is now %v.", capitalize(v.spec.label()), id, field, updated[field]))
	return updated, nil
}

// ApplyResponse patches the list with the record returned by a mutation of
// id. When the response does not carry that record the view refetches with
// the last parameters instead.
func (v *View) ApplyResponse(ctx context.Context, id string, raw json.RawMessage) (Item, error) {
	if item, ok := matchItem(raw, v.spec.IDField, id, v.spec.Singular); ok {
		if err := v.Replace(item); err == nil {
			return item.Clone(), nil
		}
	}
	v.logger.DebugContext(ctx, "mutation response is ambiguous, refetching", "resource", v.spec.Name, "id", id)
	if err := v.Refresh(ctx); err != nil {
		return nil, err
	}
	item, ok := v.Get(id)
	if !ok {
		err := apperrors.Newf(apperrors.NotFound, "%s %s is no longer listed", v.spec.label(), id)
		v.status.PublishError(err)
		return nil, err
	}
	return item, nil
}

// Create posts a new record and appends the server's copy to the list. With a
// file the request is multipart and body values are sent as form fields;
// the sender must then also implement backend.Uploader.
func (v *View) Create(ctx context.Context, body map[string]any, file *backend.File) (Item, error) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	v.status.Clear()
	var (
		raw json.RawMessage
		err error
	)
	if file == nil {
		raw, err = v.sender.Send(ctx, http.MethodPost, v.spec.ListPath, body, nil)
	} else {
		up, ok := v.sender.(backend.Uploader)
		if !ok {
			err = apperrors.New(apperrors.Validation, "file uploads are not supported by this connection")
		} else {
			raw, err = up.Upload(ctx, http.MethodPost, v.spec.ListPath, formFields(body), file)
		}
	}
	if err != nil {
		v.status.PublishError(err)
		return nil, err
	}

	created, ok := decodeCreated(raw, v.spec.IDField, v.spec.Singular)
	if !ok {
		v.logger.DebugContext(ctx, "create response is ambiguous, refetching", "resource", v.spec.Name)
		if err := v.Refresh(ctx); err != nil {
			return nil, err
		}
		v.status.Success(fmt.Sprintf("Created %s.", v.spec.label()))
		return nil, nil
	}

	v.mu.Lock()
	if i := v.indexLocked(created.ID(v.spec.IDField)); i >= 0 {
		v.items[i] = created.Clone()
	} else {
		v.items = append(v.items, created.Clone())
	}
	v.invalidateLocked()
	if v.state == Idle {
		v.state = Loaded
	}
	v.mu.Unlock()

	v.status.Success(fmt.Sprintf("Created %s %s.", v.spec.label(), created.ID(v.spec.IDField)))
	return created, nil
}

// Close cancels any in-flight fetch; later completions are discarded.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func formFields(body map[string]any) map[string]string {
	out := make(map[string]string, len(body))
	for k, val := range body {
		switch x := val.(type) {
		case nil:
		case string:
			out[k] = x
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case []any, map[string]any:
			b, _ := json.Marshal(x)
			out[k] = string(b)
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
