// Package xdg provides helpers to resolve XDG Base Directory paths for tripmart.
// Configuration lives under the config dir; the file keyring backend and
// other machine-local state live under the state dir.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "tripmart"

// ConfigDir returns the XDG config directory for tripmart.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/tripmart when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for tripmart.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/tripmart when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
