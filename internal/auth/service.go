// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides authentication services for the Tripmart CLI.
// It owns the session credential: it is written at login, read on every
// request through Credentials and cleared at logout. The token itself is
// kept in the OS keychain together with a small state record used for
// offline whoami.
package auth

import (
	"context"
	"strings"
	"time"

	"tripmart/cli/internal/backend"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/keychain"
)

// Service centralizes authentication-related operations against the backend
// and local secure storage/state.
type Service struct {
	be  backend.API
	km  *keychain.Manager
	now func() time.Time
}

// NewService constructs an auth Service.
func NewService(be backend.API, km *keychain.Manager) *Service {
	return &Service{be: be, km: km, now: time.Now}
}

// Credentials returns the credential source requests are signed with. A token
// whose embedded expiry has passed is treated as absent, so no request is
// issued with it.
func Credentials(km *keychain.Manager) backend.CredentialSource {
	return credentials(km, time.Now)
}

func credentials(km *keychain.Manager, now func() time.Time) backend.CredentialSource {
	return backend.CredentialFunc(func(context.Context) (string, error) {
		token, err := km.LoadAccessToken()
		if err != nil || token == "" {
			return "", err
		}
		if c, ok := ParseClaims(token); ok && c.Expired(now()) {
			return "", apperrors.New(apperrors.Unauthenticated, "session expired")
		}
		return token, nil
	})
}

// Identity is the result of whoami.
type Identity struct {
	Account   string
	Role      string
	ExpiresAt time.Time
	// Offline is set when the profile could not be fetched and the stored
	// state was used instead.
	Offline bool
	Profile map[string]any
}

// LoginWithPassword exchanges username and password for a token and stores it.
func (s *Service) LoginWithPassword(ctx context.Context, username, password string) (State, error) {
	token, err := s.be.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return State{}, err
	}
	return s.store(ctx, token, strings.TrimSpace(username))
}

// LoginWithToken stores a token obtained elsewhere (e.g. copied from the web app).
func (s *Service) LoginWithToken(ctx context.Context, token string) (State, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return State{}, apperrors.New(apperrors.Validation, "token is empty")
	}
	if c, ok := ParseClaims(token); ok && c.Expired(s.now()) {
		return State{}, apperrors.New(apperrors.Validation, "token has already expired")
	}
	st, err := s.store(ctx, token, "")
	if err != nil {
		return State{}, err
	}
	return st, nil
}

func (s *Service) store(ctx context.Context, token, fallbackAccount string) (State, error) {
	if err := s.km.SaveAccessToken(token); err != nil {
		return State{}, err
	}

	st := State{LoggedIn: true, Account: fallbackAccount}
	if c, ok := ParseClaims(token); ok {
		if a := c.Account(); a != "" {
			st.Account = a
		}
		st.Role = c.Role
		st.ExpiresAt = c.ExpiresAt
	}

	// The profile is authoritative for account and role. A rejected token
	// is not kept.
	profile, err := s.be.GetMe(ctx)
	switch {
	case err == nil:
		mergeProfile(&st, profile)
	case apperrors.Is(err, apperrors.Remote) && (apperrors.StatusOf(err) == 401 || apperrors.StatusOf(err) == 403):
		_ = s.km.ClearAuth()
		return State{}, err
	}

	if st.Account == "" {
		st.Account = "user"
	}
	if err := SaveState(s.km, st); err != nil {
		return State{}, err
	}
	return st, nil
}

// WhoAmI reports who the stored credential belongs to. It fails with
// Unauthenticated when no usable token is stored. When the server cannot
// be reached the stored state is returned with Offline set.
func (s *Service) WhoAmI(ctx context.Context) (Identity, error) {
	token, err := s.km.LoadAccessToken()
	if err != nil {
		return Identity{}, err
	}
	if token == "" {
		return Identity{}, apperrors.New(apperrors.Unauthenticated, "no session credential")
	}
	claims, hasClaims := ParseClaims(token)
	if hasClaims && claims.Expired(s.now()) {
		return Identity{}, apperrors.New(apperrors.Unauthenticated, "session expired")
	}

	st, _ := LoadState(s.km)
	id := Identity{Account: st.Account, Role: st.Role, ExpiresAt: st.ExpiresAt}
	if hasClaims {
		if a := claims.Account(); a != "" && id.Account == "" {
			id.Account = a
		}
		if id.Role == "" {
			id.Role = claims.Role
		}
		id.ExpiresAt = claims.ExpiresAt
	}

	profile, err := s.be.GetMe(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.Network) {
			id.Offline = true
			return id, nil
		}
		return Identity{}, err
	}
	merged := st
	mergeProfile(&merged, profile)
	id.Account, id.Role, id.Profile = merged.Account, merged.Role, profile
	if id.Account == "" {
		id.Account = "user"
	}
	return id, nil
}

// Logout performs remote logout (best-effort) and clears local credentials/state.
func (s *Service) Logout(ctx context.Context) error {
	if token, err := s.km.LoadAccessToken(); err == nil && token != "" {
		_ = s.be.Logout(ctx)
	}
	return s.km.ClearAuth()
}

func mergeProfile(st *State, profile map[string]any) {
	for _, key := range []string{"username", "email", "name"} {
		if v, ok := profile[key].(string); ok && v != "" {
			st.Account = v
			break
		}
	}
	for _, key := range []string{"role", "type", "userType"} {
		if v, ok := profile[key].(string); ok && v != "" {
			st.Role = v
			break
		}
	}
}
