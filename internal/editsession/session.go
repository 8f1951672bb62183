// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package editsession manages the single draft a screen may hold while one
// record of its collection is being edited.
package editsession

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"tripmart/cli/internal/backend"
	"tripmart/cli/internal/collection"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/logging"
	"tripmart/cli/internal/status"
)

// State is the lifecycle state of a Session.
type State int

const (
	Viewing State = iota
	Editing
	Saving
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

// Validator checks a draft before Save issues any request.
type Validator func(draft collection.Item) error

// Option configures a Session.
type Option func(*Session)

// WithValidator installs a check that must pass before a save is sent.
func WithValidator(fn Validator) Option { return func(s *Session) { s.validate = fn } }

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// Session holds at most one draft. It is safe for concurrent use.
type Session struct {
	view       *collection.View
	sender     backend.Sender
	updatePath func(id string) string
	status     *status.Channel
	validate   Validator
	logger     *slog.Logger

	mu    sync.Mutex
	state State
	id    string
	draft collection.Item
}

// New creates a Session editing records of view. updatePath may be nil, in
// which case the view's item path is used.
func New(view *collection.View, sender backend.Sender, updatePath func(id string) string, ch *status.Channel, opts ...Option) *Session {
	if updatePath == nil {
		updatePath = view.Spec().ItemPath
	}
	if ch == nil {
		ch = view.Status()
	}
	s := &Session{
		view:       view,
		sender:     sender,
		updatePath: updatePath,
		status:     ch,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active returns the id of the record being edited.
func (s *Session) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.state != Viewing
}

// Begin starts editing the record with the given id. It fails with
// EditInProgress while another record's draft exists; beginning the same
// record again keeps the current draft.
func (s *Session) Begin(id string) error {
	item, ok := s.view.Get(id)
	if !ok {
		err := apperrors.Newf(apperrors.NotFound, "%s is not in the list", id)
		s.status.PublishError(err)
		return err
	}
	return s.BeginItem(item)
}

// BeginItem starts editing item. The draft is a shallow copy.
func (s *Session) BeginItem(item collection.Item) error {
	id := item.ID(s.view.Spec().IDField)
	if id == "" {
		return apperrors.New(apperrors.Validation, "record has no identifier")
	}

	s.mu.Lock()
	if s.state != Viewing {
		current := s.id
		s.mu.Unlock()
		if current == id {
			return nil
		}
		err := apperrors.Newf(apperrors.EditInProgress, "already editing %s; save or cancel it first", current)
		s.status.PublishError(err)
		return err
	}
	s.state = Editing
	s.id = id
	s.draft = item.Clone()
	s.mu.Unlock()

	s.status.Clear()
	s.logger.Debug("edit started", "id", id)
	return nil
}

// SetField changes one attribute of the draft. The listed record is not touched.
func (s *Session) SetField(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state == Viewing:
		return apperrors.New(apperrors.Validation, "no edit in progress")
	case s.state == Saving:
		return apperrors.New(apperrors.EditInProgress, "save in progress")
	case name == s.view.Spec().IDField:
		return apperrors.Newf(apperrors.Validation, "%s cannot be edited", name)
	}
	s.draft[name] = value
	return nil
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() (collection.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Viewing {
		return nil, false
	}
	return s.draft.Clone(), true
}

// Save sends the full draft. On success the listed record is replaced with
// the server's copy and the session returns to Viewing. On failure the
// draft is kept so the input is not lost. Save is never retried.
func (s *Session) Save(ctx context.Context) (collection.Item, error) {
	s.mu.Lock()
	switch s.state {
	case Viewing:
		s.mu.Unlock()
		return nil, apperrors.New(apperrors.Validation, "no edit in progress")
	case Saving:
		s.mu.Unlock()
		return nil, apperrors.New(apperrors.EditInProgress, "save in progress")
	}
	id := s.id
	draft := s.draft.Clone()
	s.state = Saving
	s.mu.Unlock()

	s.status.Clear()
	if s.validate != nil {
		if err := s.validate(draft); err != nil {
			s.restore(Editing)
			s.status.PublishError(err)
			return nil, err
		}
	}

	raw, err := s.sender.Send(ctx, http.MethodPut, s.updatePath(id), draft, nil)
	if err != nil {
		s.restore(Editing)
		s.logger.Debug("save failed", "id", id, "error", err)
		s.status.PublishError(err)
		return nil, err
	}

	// The server accepted the draft; the session is done even if the list
	// has to be refetched to show the result.
	s.restore(Viewing)
	updated, err := s.view.ApplyResponse(ctx, id, raw)
	if err != nil {
		return nil, err
	}
	s.status.Success(fmt.Sprintf("Saved %s.", id))
	return updated, nil
}

// Cancel discards the draft without any request. It has no effect while a
// save is in flight.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Saving {
		return
	}
	s.state = Viewing
	s.id = ""
	s.draft = nil
}

func (s *Session) restore(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if state == Viewing {
		s.id = ""
		s.draft = nil
	}
}
