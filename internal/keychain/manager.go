// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for tripmart.
// This module manages all interactions with the OS credential store: the
// session access token and the serialized auth state (account and role).
// Nothing else the client handles is secret.
//
// The package picks a native backend per OS (macOS Keychain, Windows
// Credential Manager, Secret Service or KWallet on Linux) and falls back to
// pass and finally an encrypted file under the XDG state directory.
package keychain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"

	"tripmart/cli/internal/xdg"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "tripmart"

// PasswordEnv supplies the passphrase of the file backend non-interactively.
const PasswordEnv = "TRIPMART_KEYRING_PASSWORD"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAccessToken = "auth_access_token"
	KeyAuthState   = "auth_state"
)

// Options selects the keyring backend.
type Options struct {
	// Backend forces one backend by name (e.g. "file", "pass",
	// "secret-service"). Empty means the platform default order.
	Backend string
}

// NewManager wraps an already opened keyring. Tests pass keyring.NewArrayKeyring.
func NewManager(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// Open opens the OS keyring according to opts.
func Open(opts Options) (*Manager, error) {
	ring, err := openRing(opts)
	if err != nil {
		return nil, err
	}
	return NewManager(ring), nil
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call with opts.
// If initialization fails, it will retry on subsequent calls.
func GetManager(opts Options) (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := Open(opts)
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

func allowedBackends(opts Options) []keyring.BackendType {
	if b := strings.TrimSpace(opts.Backend); b != "" {
		return []keyring.BackendType{keyring.BackendType(b)}
	}
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend, keyring.FileBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}
	default:
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
	}
}

// openRing opens the keyring with the allowed backends in preference order.
func openRing(opts Options) (keyring.Keyring, error) {
	stateDir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}

	cfg := keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          allowedBackends(opts),
		KeychainTrustApplication: true,
		LibSecretCollectionName:  ServiceName,
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		FileDir:                  filepath.Join(stateDir, "keyring"),
		FilePasswordFunc:         filePassword,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if b := strings.TrimSpace(opts.Backend); b != "" {
			return nil, fmt.Errorf("credential store %q is not available (%w); check keyring_backend", b, err)
		}
		return nil, fmt.Errorf("no usable credential store found (%w); set %s to use the encrypted file store", err, PasswordEnv)
	}
	return ring, nil
}

func filePassword(prompt string) (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// SaveAccessToken stores the session access token.
// This method is thread-safe.
func (m *Manager) SaveAccessToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("empty access token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: KeyAccessToken, Data: []byte(token), Label: "Tripmart access token"})
}

// LoadAccessToken retrieves the access token. A missing token yields "" and
// a nil error. This method is thread-safe.
func (m *Manager) LoadAccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyAccessToken)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(it.Data)), nil
}

// SaveAuthState stores serialized auth state in the keychain.
// This method is thread-safe.
func (m *Manager) SaveAuthState(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: KeyAuthState, Data: data, Label: "Tripmart session"})
}

// LoadAuthState retrieves serialized auth state. Missing state yields nil data.
// This method is thread-safe.
func (m *Manager) LoadAuthState() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyAuthState)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it.Data, nil
}

// ClearAuth removes all auth-related secrets from the keychain.
// Missing entries are not an error. This method is thread-safe.
func (m *Manager) ClearAuth() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range []string{KeyAccessToken, KeyAuthState} {
		if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
