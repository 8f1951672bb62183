// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken(t *testing.T) {
	m := NewManager(keyring.NewArrayKeyring(nil))

	token, err := m.LoadAccessToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, m.SaveAccessToken("tok-1"))
	token, err = m.LoadAccessToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	assert.Error(t, m.SaveAccessToken("  "))
}

func TestAuthStateAndClear(t *testing.T) {
	m := NewManager(keyring.NewArrayKeyring(nil))

	data, err := m.LoadAuthState()
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, m.SaveAccessToken("tok"))
	require.NoError(t, m.SaveAuthState([]byte(`{"logged_in":true}`)))

	require.NoError(t, m.ClearAuth())
	token, _ := m.LoadAccessToken()
	assert.Empty(t, token)
	data, _ = m.LoadAuthState()
	assert.Nil(t, data)

	// Clearing twice is fine.
	assert.NoError(t, m.ClearAuth())
}

func TestAllowedBackends_Override(t *testing.T) {
	assert.Equal(t, []keyring.BackendType{keyring.FileBackend}, allowedBackends(Options{Backend: "file"}))
	assert.NotEmpty(t, allowedBackends(Options{}))
}

func TestOpen_UnknownBackendKeepsCause(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	_, err := Open(Options{Backend: "no-such-backend"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, keyring.ErrNoAvailImpl))
	assert.Contains(t, err.Error(), `"no-such-backend"`)
	assert.NotContains(t, err.Error(), PasswordEnv)
}
