// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqidash/aqidash/internal/auth"
	"github.com/aqidash/aqidash/internal/auth/sqlite"
	"github.com/aqidash/aqidash/internal/store"
	"github.com/aqidash/aqidash/pkg/errutil"
)

// newLegacyDB writes a users.db in the layout of the first release and
// returns its path.
func newLegacyDB(t *testing.T, rows ...[3]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		username TEXT UNIQUE,
		email TEXT UNIQUE,
		password TEXT
	)`)
	require.NoError(t, err)
	for _, r := range rows {
		_, err = db.Exec(`INSERT INTO users (username, email, password) VALUES (?, ?, ?)`, r[0], r[1], r[2])
		require.NoError(t, err)
	}
	return path
}

func sha256Digest(t *testing.T, password string) string {
	t.Helper()
	digest, err := auth.NewSHA256Hasher().Hash(password)
	require.NoError(t, err)
	return digest
}

func TestImportLegacy(t *testing.T) {
	ctx := context.Background()
	path := newLegacyDB(t,
		[3]any{"alice", "a@x.com", sha256Digest(t, "secret1")},
		[3]any{"bob", nil, sha256Digest(t, "secret2")},
		[3]any{"carol", "c@x.com", sha256Digest(t, "secret3")},
	)

	src, err := store.OpenSQLiteReadOnly(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	dst := newRepo(t)
	_, err = dst.Create(ctx, mustUser(t, "carol", "c@x.com", "existing"))
	require.NoError(t, err)

	result, err := sqlite.ImportLegacy(ctx, src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, sqlite.ImportResult{Imported: 1, Skipped: 2}, result)

	svc, err := auth.NewService(dst, auth.NewArgon2idHasher())
	require.NoError(t, err)
	got, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	carol, err := dst.FindByEmail(ctx, "c@x.com")
	require.NoError(t, err)
	assert.Equal(t, "existing", carol.PasswordHash, "existing accounts are not overwritten")

	again, err := sqlite.ImportLegacy(ctx, src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, sqlite.ImportResult{Imported: 0, Skipped: 3}, again)
}

func TestImportLegacy_NotLegacyLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "current.db")
	migrator, err := store.NewMigrator(store.DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	src, err := store.OpenSQLiteReadOnly(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	_, err = sqlite.ImportLegacy(ctx, src, newRepo(t), nil)
	errutil.AssertErrorCode(t, err, "LEGACY_READ_FAILED")
}
