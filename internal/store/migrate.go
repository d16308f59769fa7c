// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package store

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	// Register pgx/v5 and sqlite database drivers for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migration versions per driver, computed once since the embedded FS is immutable.
var (
	versionCacheMu sync.Mutex
	versionCache   = map[string][]uint{}
)

// migrateIface abstracts golang-migrate so migrator behaviour can be tested
// without a database.
type migrateIface interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Close() (source error, database error)
}

// Migrator wraps golang-migrate for database schema management.
type Migrator struct {
	m      migrateIface
	driver string
}

// NewMigrator creates a Migrator for driver ("sqlite" or "postgres").
// For sqlite dsn is the database file path; for postgres it is a
// postgres:// or postgresql:// connection string.
func NewMigrator(driver, dsn string) (*Migrator, error) {
	migrateURL, err := MigrateURL(driver, dsn)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, migrationsDir(driver))
	if err != nil {
		return nil, oops.Code("MIGRATION_SOURCE_FAILED").
			With("operation", "create migration source").
			With("driver", driver).
			Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL)
	if err != nil {
		_ = source.Close() //nolint:errcheck // init error takes precedence
		return nil, oops.Code("MIGRATION_INIT_FAILED").
			With("operation", "initialize migrator").
			With("driver", driver).
			Wrap(err)
	}

	return &Migrator{m: m, driver: driver}, nil
}

// MigrateURL converts a configured DSN into the URL golang-migrate expects.
func MigrateURL(driver, dsn string) (string, error) {
	if dsn == "" {
		return "", oops.Code("MIGRATION_CONFIG_INVALID").With("driver", driver).Errorf("dsn is required")
	}
	switch driver {
	case DriverSQLite:
		if strings.HasPrefix(dsn, "sqlite://") {
			return dsn, nil
		}
		return "sqlite://" + strings.TrimPrefix(dsn, "file:"), nil
	case DriverPostgres:
		if rest, found := strings.CutPrefix(dsn, "postgres://"); found {
			return "pgx5://" + rest, nil
		}
		if rest, found := strings.CutPrefix(dsn, "postgresql://"); found {
			return "pgx5://" + rest, nil
		}
		if strings.HasPrefix(dsn, "pgx5://") {
			return dsn, nil
		}
		return "", oops.Code("MIGRATION_CONFIG_INVALID").
			With("driver", driver).
			Errorf("postgres dsn must use the postgres:// scheme")
	default:
		return "", oops.Code("MIGRATION_CONFIG_INVALID").
			With("driver", driver).
			Errorf("unsupported driver %q", driver)
	}
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").With("driver", m.driver).Wrap(err)
	}
	return nil
}

// Down rolls back all migrations. This drops the users table.
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_DOWN_FAILED").With("driver", m.driver).Wrap(err)
	}
	return nil
}

// Steps applies n migrations. Positive n migrates up, negative n migrates down.
func (m *Migrator) Steps(n int) error {
	if err := m.m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_STEPS_FAILED").With("steps", n).Wrap(err)
	}
	return nil
}

// Version returns the current migration version and dirty state.
// Returns version 0 with dirty=false if no migrations have been applied.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("MIGRATION_VERSION_FAILED").Wrap(err)
	}
	return version, dirty, nil
}

// Force sets the migration version without running migrations.
// Use only to recover from a dirty state after fixing the database by hand.
func (m *Migrator) Force(version int) error {
	if version < 0 {
		return oops.Code("INVALID_VERSION").Errorf("version must be non-negative, got %d", version)
	}
	if err := m.m.Force(version); err != nil {
		return oops.Code("MIGRATION_FORCE_FAILED").With("version", version).Wrap(err)
	}
	return nil
}

// Close releases resources.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil && dbErr != nil {
		return oops.Code("MIGRATION_CLOSE_FAILED").
			With("component", "both").
			Errorf("source: %v; database: %v", srcErr, dbErr)
	}
	if srcErr != nil {
		return oops.Code("MIGRATION_CLOSE_FAILED").With("component", "source").Wrap(srcErr)
	}
	if dbErr != nil {
		return oops.Code("MIGRATION_CLOSE_FAILED").With("component", "database").Wrap(dbErr)
	}
	return nil
}

// PendingMigrations returns the versions Up would apply, ascending.
func (m *Migrator) PendingMigrations() ([]uint, error) {
	currentVersion, _, err := m.Version()
	if err != nil {
		return nil, oops.With("operation", "get pending migrations").Wrap(err)
	}

	allVersions, err := MigrationVersions(m.driver)
	if err != nil {
		return nil, oops.With("operation", "get pending migrations").Wrap(err)
	}

	var pending []uint
	for _, v := range allVersions {
		if v > currentVersion {
			pending = append(pending, v)
		}
	}
	return pending, nil
}

// AppliedMigrations returns the versions already applied, ascending.
func (m *Migrator) AppliedMigrations() ([]uint, error) {
	currentVersion, _, err := m.Version()
	if err != nil {
		return nil, oops.With("operation", "get applied migrations").Wrap(err)
	}
	if currentVersion == 0 {
		return nil, nil
	}

	allVersions, err := MigrationVersions(m.driver)
	if err != nil {
		return nil, oops.With("operation", "get applied migrations").Wrap(err)
	}

	var applied []uint
	for _, v := range allVersions {
		if v <= currentVersion {
			applied = append(applied, v)
		}
	}
	return applied, nil
}

// MigrationVersions returns every embedded migration version for driver,
// ascending. The returned slice is a copy.
func MigrationVersions(driver string) ([]uint, error) {
	versionCacheMu.Lock()
	defer versionCacheMu.Unlock()

	cached, ok := versionCache[driver]
	if !ok {
		loaded, err := loadMigrationVersions(driver)
		if err != nil {
			return nil, err
		}
		versionCache[driver] = loaded
		cached = loaded
	}

	result := make([]uint, len(cached))
	copy(result, cached)
	return result, nil
}

// loadMigrationVersions parses version numbers from the embedded file names.
// Files not matching NNNNNN_name.up.sql are logged and skipped.
func loadMigrationVersions(driver string) ([]uint, error) {
	entries, err := migrationsFS.ReadDir(migrationsDir(driver))
	if err != nil {
		return nil, oops.Code("MIGRATION_LIST_FAILED").
			With("operation", "read migrations dir").
			With("driver", driver).
			Wrap(err)
	}

	versionSet := make(map[uint]struct{})
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var version uint
		if _, err := fmt.Sscanf(name, "%06d", &version); err != nil {
			slog.Warn("migration file name doesn't match expected format, skipping",
				"filename", name,
				"expected_format", "NNNNNN_name.up.sql",
				"error", err)
			continue
		}
		versionSet[version] = struct{}{}
	}

	versions := make([]uint, 0, len(versionSet))
	for v := range versionSet {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

// MigrationName returns the NNNNNN_name of a migration, or "" when driver
// has no migration with that version.
func MigrationName(driver string, version uint) (string, error) {
	entries, err := migrationsFS.ReadDir(migrationsDir(driver))
	if err != nil {
		return "", oops.Code("MIGRATION_READ_FAILED").
			With("operation", "read migrations dir").
			With("driver", driver).
			Wrap(err)
	}

	prefix := fmt.Sprintf("%06d_", version)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".up.sql") {
			return strings.TrimSuffix(name, ".up.sql"), nil
		}
	}
	return "", nil
}

func migrationsDir(driver string) string {
	return path.Join("migrations", driver)
}
