// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqidash/aqidash/internal/auth"
	"github.com/aqidash/aqidash/internal/config"
	"github.com/aqidash/aqidash/internal/store"
	"github.com/aqidash/aqidash/pkg/errutil"
)

func TestOpenUserRepository_PostgresRetriesBeforeMigrating(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cfg := config.StoreConfig{
		Driver:      store.DriverPostgres,
		DSN:         "postgres://aqidash@127.0.0.1:1/aqidash?sslmode=disable&connect_timeout=1",
		AutoMigrate: true,
	}

	_, _, err := openUserRepository(ctx, cfg, slog.New(slog.DiscardHandler))
	errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	attempts, ok := oopsErr.Context()["attempts"].(int)
	require.True(t, ok, "attempts missing from %v", oopsErr.Context())
	assert.Greater(t, attempts, 1)
}

func TestOpenUserRepository_SQLiteFileDSN(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := filepath.Join(t.TempDir(), "nested")

	cfg := config.StoreConfig{
		Driver:      store.DriverSQLite,
		DSN:         "file:" + filepath.Join(dir, "users.db") + "?mode=rwc",
		AutoMigrate: true,
	}

	users, release, err := openUserRepository(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(release)

	require.NoError(t, users.Ping(context.Background()))
	assert.DirExists(t, dir)
	assert.FileExists(t, filepath.Join(dir, "users.db"))
	assert.NoDirExists(t, "file:")
}

func TestMigrateCommand_ImportLegacy(t *testing.T) {
	isolate(t)
	legacy := filepath.Join(t.TempDir(), "users.db")
	target := filepath.Join(t.TempDir(), "aqidash.db")

	digest, err := auth.NewSHA256Hasher().Hash("secret1")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", legacy)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT UNIQUE, email TEXT UNIQUE, password TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username, email, password) VALUES ('alice', 'a@x.com', ?)`, digest)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := execute(t, "migrate", "import-legacy", legacy, "--db-dsn", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 account(s), skipped 0")

	out, err = execute(t, "migrate", "import-legacy", legacy, "--db-dsn", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 account(s), skipped 1")
}

func TestMigrateCommand_ImportLegacyMissingFile(t *testing.T) {
	isolate(t)

	_, err := execute(t, "migrate", "import-legacy", filepath.Join(t.TempDir(), "nope.db"),
		"--db-dsn", filepath.Join(t.TempDir(), "aqidash.db"))
	errutil.AssertErrorCode(t, err, "DB_NOT_FOUND")
}
