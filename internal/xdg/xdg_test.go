// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqidash/aqidash/pkg/errutil"
)

func TestConfigDir_EnvVar(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/aqidash", got)
}

func TestConfigDir_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/testuser")

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/testuser/.config/aqidash", got)
}

func TestDataDir_EnvVar(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	got, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/data/aqidash", got)
}

func TestDataDir_Default(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/testuser")

	got, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/testuser/.local/share/aqidash", got)
}

func TestDataDir_NoHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "")

	_, err := DataDir()
	errutil.AssertErrorCode(t, err, "XDG_NO_HOME")
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	got, err := ConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/aqidash/config.yaml", got)
}

func TestDatabaseFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	got, err := DatabaseFile()
	require.NoError(t, err)
	assert.Equal(t, "/custom/data/aqidash/users.db", got)
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, EnsureDir(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	require.NoError(t, EnsureDir(path), "idempotent")
}

func TestEnsureDir_UnderFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	err := EnsureDir(filepath.Join(file, "sub"))
	errutil.AssertErrorCode(t, err, "XDG_MKDIR_FAILED")
}
