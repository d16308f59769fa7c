// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqidash/aqidash/pkg/errutil"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		dsn    string
		want   string
	}{
		{"sqlite absolute path", DriverSQLite, "/var/lib/aqidash/users.db", "sqlite:///var/lib/aqidash/users.db"},
		{"sqlite relative path", DriverSQLite, "users.db", "sqlite://users.db"},
		{"sqlite file prefix stripped", DriverSQLite, "file:users.db", "sqlite://users.db"},
		{"sqlite url kept", DriverSQLite, "sqlite://users.db", "sqlite://users.db"},
		{"postgres scheme", DriverPostgres, "postgres://u:p@db:5432/aqidash", "pgx5://u:p@db:5432/aqidash"},
		{"postgresql scheme", DriverPostgres, "postgresql://db/aqidash", "pgx5://db/aqidash"},
		{"pgx5 scheme kept", DriverPostgres, "pgx5://db/aqidash", "pgx5://db/aqidash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MigrateURL(tt.driver, tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrateURL_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		dsn    string
	}{
		{"empty dsn", DriverSQLite, ""},
		{"unknown driver", "mysql", "mysql://db"},
		{"postgres without scheme", DriverPostgres, "host=db dbname=aqidash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MigrateURL(tt.driver, tt.dsn)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "MIGRATION_CONFIG_INVALID")
		})
	}
}

func TestNewMigrator_UnknownDriver(t *testing.T) {
	_, err := NewMigrator("mysql", "mysql://localhost/aqidash")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_CONFIG_INVALID")
}

// A postgresql:// DSN must reach the pgx5 driver; the failure is a
// connection error rather than an unknown driver.
func TestNewMigrator_PostgresqlScheme(t *testing.T) {
	_, err := NewMigrator(DriverPostgres, "postgresql://localhost:1/testdb?connect_timeout=1")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	assert.NotContains(t, err.Error(), "unknown driver")
}

func TestMigrationVersions(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			versions, err := MigrationVersions(driver)
			require.NoError(t, err)
			assert.Equal(t, []uint{1}, versions)

			// Mutating the result must not affect later calls.
			versions[0] = 99
			again, err := MigrationVersions(driver)
			require.NoError(t, err)
			assert.Equal(t, []uint{1}, again)
		})
	}
}

func TestMigrationName(t *testing.T) {
	name, err := MigrationName(DriverSQLite, 1)
	require.NoError(t, err)
	assert.Equal(t, "000001_create_users", name)

	name, err = MigrationName(DriverPostgres, 42)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestMigrationsFS_EveryUpHasDown(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		entries, err := migrationsFS.ReadDir(migrationsDir(driver))
		require.NoError(t, err)

		files := make(map[string]bool, len(entries))
		for _, e := range entries {
			files[e.Name()] = true
		}
		for name := range files {
			var version uint
			_, err := fmt.Sscanf(name, "%06d", &version)
			require.NoError(t, err, "%s/%s", driver, name)
			if base, ok := cutSuffix(name, ".up.sql"); ok {
				assert.True(t, files[base+".down.sql"], "%s/%s has no down migration", driver, name)
			}
		}
	}
}

func cutSuffix(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || s[len(s)-len(suffix):] != suffix {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}

// mockMigrate implements migrateIface for testing.
type mockMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	versionVal     uint
	versionErr     error
	dirty          bool
	forceErr       error
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error                    { return m.upErr }
func (m *mockMigrate) Down() error                  { return m.downErr }
func (m *mockMigrate) Steps(_ int) error            { return m.stepsErr }
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Force(_ int) error            { return m.forceErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDbErr }

func TestMigrator_Up_Success(t *testing.T) {
	m := &Migrator{m: &mockMigrate{}}
	err := m.Up()
	require.NoError(t, err)
}

func TestMigrator_Up_NoChange(t *testing.T) {
	m := &Migrator{m: &mockMigrate{upErr: migrate.ErrNoChange}}
	err := m.Up()
	require.NoError(t, err, "ErrNoChange should be treated as success")
}

func TestMigrator_Up_Error(t *testing.T) {
	m := &Migrator{m: &mockMigrate{upErr: errors.New("database locked")}}
	err := m.Up()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
}

func TestMigrator_Down_Success(t *testing.T) {
	m := &Migrator{m: &mockMigrate{}}
	err := m.Down()
	require.NoError(t, err)
}

func TestMigrator_Down_NoChange(t *testing.T) {
	m := &Migrator{m: &mockMigrate{downErr: migrate.ErrNoChange}}
	err := m.Down()
	require.NoError(t, err)
}

func TestMigrator_Down_Error(t *testing.T) {
	m := &Migrator{m: &mockMigrate{downErr: errors.New("constraint violation")}}
	err := m.Down()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
}

func TestMigrator_Steps_Success(t *testing.T) {
	m := &Migrator{m: &mockMigrate{}}
	err := m.Steps(3)
	require.NoError(t, err)
}

func TestMigrator_Steps_NoChange(t *testing.T) {
	m := &Migrator{m: &mockMigrate{stepsErr: migrate.ErrNoChange}}
	err := m.Steps(-1)
	require.NoError(t, err)
}

func TestMigrator_Steps_ZeroIsNoOp(t *testing.T) {
	// golang-migrate returns ErrNoChange when n=0, which our wrapper
	// treats as success. This documents that Steps(0) is a safe no-op.
	m := &Migrator{m: &mockMigrate{stepsErr: migrate.ErrNoChange}}
	err := m.Steps(0)
	require.NoError(t, err, "Steps(0) should be a no-op returning nil")
}

func TestMigrator_Steps_Error(t *testing.T) {
	m := &Migrator{m: &mockMigrate{stepsErr: errors.New("invalid step")}}
	err := m.Steps(5)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_STEPS_FAILED")
}

func TestMigrator_Version_Success(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionVal: 7, dirty: false}}
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(7), version)
	assert.False(t, dirty)
}

func TestMigrator_Version_Dirty(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionVal: 5, dirty: true}}
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(5), version)
	assert.True(t, dirty)
}

func TestMigrator_Version_NilVersion(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
	version, dirty, err := m.Version()
	require.NoError(t, err, "ErrNilVersion should return 0, false, nil")
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)
}

func TestMigrator_Version_Error(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionErr: errors.New("connection lost")}}
	_, _, err := m.Version()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
}

func TestMigrator_Force_Success(t *testing.T) {
	m := &Migrator{m: &mockMigrate{}}
	err := m.Force(5)
	require.NoError(t, err)
}

func TestMigrator_Force_Error(t *testing.T) {
	m := &Migrator{m: &mockMigrate{forceErr: errors.New("invalid version")}}
	err := m.Force(5)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_FORCE_FAILED")
}

func TestMigrator_Force_NegativeVersionRejected(t *testing.T) {
	m := &Migrator{m: &mockMigrate{}}
	err := m.Force(-1)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_VERSION")
}

func TestMigrator_Close_Success(t *testing.T) {
	m := &Migrator{m: &mockMigrate{}}
	err := m.Close()
	require.NoError(t, err)
}

func TestMigrator_Close_SourceError(t *testing.T) {
	m := &Migrator{m: &mockMigrate{closeSourceErr: errors.New("source close failed")}}
	err := m.Close()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	errutil.AssertErrorContext(t, err, "component", "source")
}

func TestMigrator_Close_DatabaseError(t *testing.T) {
	m := &Migrator{m: &mockMigrate{closeDbErr: errors.New("db close failed")}}
	err := m.Close()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	errutil.AssertErrorContext(t, err, "component", "database")
}

func TestMigrator_Close_BothErrors(t *testing.T) {
	// When both source and database close fail, we should report both errors
	m := &Migrator{m: &mockMigrate{
		closeSourceErr: errors.New("source close failed"),
		closeDbErr:     errors.New("db close failed"),
	}}
	err := m.Close()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	errutil.AssertErrorContext(t, err, "component", "both")
	// The error message should contain both original errors
	assert.Contains(t, err.Error(), "source close failed")
	assert.Contains(t, err.Error(), "db close failed")
}

func TestMigrator_PendingMigrations(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}, driver: DriverSQLite}
	pending, err := m.PendingMigrations()
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, pending)

	m = &Migrator{m: &mockMigrate{versionVal: 1}, driver: DriverSQLite}
	pending, err = m.PendingMigrations()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrator_PendingMigrations_VersionError(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionErr: errors.New("connection lost")}}
	_, err := m.PendingMigrations()
	require.Error(t, err)
	// Error should include operation context for debugging
	errutil.AssertErrorContext(t, err, "operation", "get pending migrations")
}

func TestMigrator_AppliedMigrations(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionVal: 1}, driver: DriverPostgres}
	applied, err := m.AppliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, applied)

	m = &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}, driver: DriverPostgres}
	applied, err = m.AppliedMigrations()
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrator_AppliedMigrations_VersionError(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionErr: errors.New("connection lost")}}
	_, err := m.AppliedMigrations()
	require.Error(t, err)
	// Error should include operation context for debugging
	errutil.AssertErrorContext(t, err, "operation", "get applied migrations")
}

// closedMock implements migrateIface and returns errors after Close() is called.
// This simulates the behavior of golang-migrate after resources are released.
type closedMock struct {
	closed bool
}

var errMigratorClosed = errors.New("migrator is closed")

func (m *closedMock) Up() error {
	if m.closed {
		return errMigratorClosed
	}
	return nil
}

func (m *closedMock) Down() error {
	if m.closed {
		return errMigratorClosed
	}
	return nil
}

func (m *closedMock) Steps(_ int) error {
	if m.closed {
		return errMigratorClosed
	}
	return nil
}

func (m *closedMock) Version() (uint, bool, error) {
	if m.closed {
		return 0, false, errMigratorClosed
	}
	return 1, false, nil
}

func (m *closedMock) Force(_ int) error {
	if m.closed {
		return errMigratorClosed
	}
	return nil
}

func (m *closedMock) Close() (error, error) {
	m.closed = true
	return nil, nil
}

// TestMigrator_MethodsAfterClose verifies that calling Migrator methods after Close()
// returns errors instead of panicking. This documents the expected behavior when
// the underlying golang-migrate resources have been released.
func TestMigrator_MethodsAfterClose(t *testing.T) {
	tests := []struct {
		name   string
		method func(*Migrator) error
	}{
		{
			name: "Up after Close",
			method: func(m *Migrator) error {
				return m.Up()
			},
		},
		{
			name: "Down after Close",
			method: func(m *Migrator) error {
				return m.Down()
			},
		},
		{
			name: "Steps after Close",
			method: func(m *Migrator) error {
				return m.Steps(1)
			},
		},
		{
			name: "Version after Close",
			method: func(m *Migrator) error {
				_, _, err := m.Version()
				return err
			},
		},
		{
			name: "Force after Close",
			method: func(m *Migrator) error {
				return m.Force(1)
			},
		},
		{
			name: "PendingMigrations after Close",
			method: func(m *Migrator) error {
				_, err := m.PendingMigrations()
				return err
			},
		},
		{
			name: "AppliedMigrations after Close",
			method: func(m *Migrator) error {
				_, err := m.AppliedMigrations()
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &closedMock{}
			migrator := &Migrator{m: mock}

			// Close the migrator first
			err := migrator.Close()
			require.NoError(t, err, "Close should succeed")

			// Now call the method - it should return an error, not panic
			err = tt.method(migrator)
			require.Error(t, err, "calling %s after Close should return an error", tt.name)
		})
	}
}

func TestMigrator_SQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	m, err := NewMigrator(DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Up is idempotent.
	require.NoError(t, m.Up())

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Zero(t, count)

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	assert.Error(t, err, "users table should be dropped")
}

func TestMigrator_SQLiteRefusesLegacyUsersTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT UNIQUE, email TEXT UNIQUE, password TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	m, err := NewMigrator(DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	err = m.Up()
	errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
}

func TestOpenSQLiteReadOnly(t *testing.T) {
	ctx := context.Background()

	_, err := OpenSQLiteReadOnly(ctx, filepath.Join(t.TempDir(), "missing.db"))
	errutil.AssertErrorCode(t, err, "DB_NOT_FOUND")

	path := filepath.Join(t.TempDir(), "users.db")
	rw, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = rw.Exec(`CREATE TABLE t (v TEXT)`)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := OpenSQLiteReadOnly(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ro.Close() })

	_, err = ro.Exec(`INSERT INTO t (v) VALUES ('x')`)
	assert.Error(t, err, "read-only handle must not write")
}

func BenchmarkMigrationVersions(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := MigrationVersions(DriverSQLite); err != nil {
			b.Fatal(err)
		}
	}
}
