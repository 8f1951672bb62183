// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmart/cli/internal/backend"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/keychain"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

type fakeAPI struct {
	token    string
	meStatus int
	me       map[string]any
	logouts  int
}

func (f *fakeAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid username or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": f.token})
	})
	r.Get("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if f.meStatus != 0 {
			w.WriteHeader(f.meStatus)
			_, _ = w.Write([]byte(`{"message":"Invalid token"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(f.me)
	})
	r.Post("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logouts++
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func newService(t *testing.T, api *fakeAPI) (*Service, *keychain.Manager) {
	t.Helper()
	srv := httptest.NewServer(api.router())
	t.Cleanup(srv.Close)
	km := keychain.NewManager(keyring.NewArrayKeyring(nil))
	gw := backend.New(srv.URL, Credentials(km))
	return NewService(gw, km), km
}

func TestLoginWithPassword(t *testing.T) {
	token := signed(t, jwt.MapClaims{"id": "u1", "role": "tourist", "exp": time.Now().Add(time.Hour).Unix()})
	api := &fakeAPI{token: token, me: map[string]any{"username": "amira", "role": "seller"}}
	svc, km := newService(t, api)

	st, err := svc.LoginWithPassword(context.Background(), " amira ", "secret")
	require.NoError(t, err)
	assert.True(t, st.LoggedIn)
	assert.Equal(t, "amira", st.Account)
	assert.Equal(t, "seller", st.Role, "the profile wins over token claims")

	stored, err := km.LoadAccessToken()
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	saved, err := LoadState(km)
	require.NoError(t, err)
	assert.Equal(t, st.Account, saved.Account)
	assert.Equal(t, st.Role, saved.Role)
	assert.True(t, saved.ExpiresAt.Equal(st.ExpiresAt))
}

func TestLoginWithPassword_Rejected(t *testing.T) {
	svc, km := newService(t, &fakeAPI{token: "x"})

	_, err := svc.LoginWithPassword(context.Background(), "amira", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", apperrors.MessageOf(err))
	token, _ := km.LoadAccessToken()
	assert.Empty(t, token)
}

func TestLoginWithToken_RejectedByServerIsNotKept(t *testing.T) {
	svc, km := newService(t, &fakeAPI{meStatus: http.StatusUnauthorized})

	_, err := svc.LoginWithToken(context.Background(), "opaque-token")
	require.Error(t, err)
	token, _ := km.LoadAccessToken()
	assert.Empty(t, token)
}

func TestLoginWithToken_Expired(t *testing.T) {
	svc, _ := newService(t, &fakeAPI{})
	expired := signed(t, jwt.MapClaims{"username": "amira", "exp": time.Now().Add(-time.Minute).Unix()})

	_, err := svc.LoginWithToken(context.Background(), expired)
	assert.True(t, apperrors.Is(err, apperrors.Validation))
}

func TestWhoAmI(t *testing.T) {
	api := &fakeAPI{me: map[string]any{"user": map[string]any{"email": "guide@example.com", "role": "tour_guide"}}}
	svc, _ := newService(t, api)

	_, err := svc.WhoAmI(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.Unauthenticated))

	_, err = svc.LoginWithToken(context.Background(), "opaque")
	require.NoError(t, err)

	id, err := svc.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "guide@example.com", id.Account)
	assert.Equal(t, "tour_guide", id.Role)
	assert.False(t, id.Offline)
}

func TestWhoAmI_Offline(t *testing.T) {
	km := keychain.NewManager(keyring.NewArrayKeyring(nil))
	require.NoError(t, km.SaveAccessToken("opaque"))
	require.NoError(t, SaveState(km, State{LoggedIn: true, Account: "amira", Role: "seller"}))

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	svc := NewService(backend.New(srv.URL, Credentials(km)), km)

	id, err := svc.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.True(t, id.Offline)
	assert.Equal(t, "amira", id.Account)
	assert.Equal(t, "seller", id.Role)
}

func TestLogout(t *testing.T) {
	api := &fakeAPI{me: map[string]any{"username": "amira"}}
	svc, km := newService(t, api)
	_, err := svc.LoginWithToken(context.Background(), "opaque")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, 1, api.logouts)
	token, _ := km.LoadAccessToken()
	assert.Empty(t, token)
	st, _ := LoadState(km)
	assert.False(t, st.LoggedIn)

	// Logging out again issues no request.
	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, 1, api.logouts)
}

func TestCredentials_ExpiredTokenIsAbsent(t *testing.T) {
	km := keychain.NewManager(keyring.NewArrayKeyring(nil))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token := signed(t, jwt.MapClaims{"exp": now.Add(-time.Second).Unix()})
	require.NoError(t, km.SaveAccessToken(token))

	_, err := credentials(km, func() time.Time { return now }).Token(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.Unauthenticated))

	fresh := signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	require.NoError(t, km.SaveAccessToken(fresh))
	got, err := credentials(km, func() time.Time { return now }).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c, ok := ParseClaims(signed(t, jwt.MapClaims{"sub": "u9", "email": "a@b.c", "userType": "advertiser", "exp": exp.Unix()}))
	require.True(t, ok)
	assert.Equal(t, "u9", c.Subject)
	assert.Equal(t, "a@b.c", c.Account())
	assert.Equal(t, "advertiser", c.Role)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(exp.Add(-time.Second)))
	assert.True(t, c.Expired(exp))

	_, ok = ParseClaims("not-a-jwt")
	assert.False(t, ok)
}
