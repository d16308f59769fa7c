// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package xdg resolves XDG Base Directory locations for AQIDash.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "aqidash"

// File names inside the application directories.
const (
	ConfigFileName   = "config.yaml"
	DatabaseFileName = "users.db"
)

// ConfigDir returns the AQIDash config directory.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the AQIDash data directory.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DataDir() (string, error) {
	return appDir("XDG_DATA_HOME", ".local", "share")
}

// ConfigFile returns the path of the default config file. The file may not
// exist.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// DatabaseFile returns the default SQLite credential store path.
func DatabaseFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFileName), nil
}

// EnsureDir creates path and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.Code("XDG_MKDIR_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

func appDir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", oops.Code("XDG_NO_HOME").With("env", env).Wrap(err)
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...), nil
}
