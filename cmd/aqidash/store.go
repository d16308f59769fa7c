// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/auth"
	"github.com/aqidash/aqidash/internal/auth/postgres"
	"github.com/aqidash/aqidash/internal/auth/sqlite"
	"github.com/aqidash/aqidash/internal/config"
	"github.com/aqidash/aqidash/internal/store"
	"github.com/aqidash/aqidash/internal/xdg"
)

// openUserRepository connects the configured credential store and applies
// migrations when auto_migrate is set. PostgreSQL is reached with retries
// before migrating. The returned func releases the connection.
func openUserRepository(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (auth.UserRepository, func(), error) {
	switch cfg.Driver {
	case store.DriverSQLite:
		if err := ensureSQLiteDir(cfg); err != nil {
			return nil, nil, err
		}
		if err := autoMigrate(ctx, cfg, logger); err != nil {
			return nil, nil, err
		}
		db, err := store.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), func() { _ = db.Close() }, nil
	case store.DriverPostgres:
		pool, err := store.OpenPostgres(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := autoMigrate(ctx, cfg, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewUserRepository(pool), pool.Close, nil
	default:
		return nil, nil, oops.Code("CONFIG_INVALID").With("driver", cfg.Driver).Errorf("unsupported driver %q", cfg.Driver)
	}
}

func autoMigrate(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) error {
	if !cfg.AutoMigrate {
		return nil
	}
	if err := migrateUp(cfg); err != nil {
		return err
	}
	logger.InfoContext(ctx, "database migrations applied", "driver", cfg.Driver)
	return nil
}

// ensureSQLiteDir creates the directory holding the sqlite database file.
func ensureSQLiteDir(cfg config.StoreConfig) error {
	if cfg.Driver != store.DriverSQLite {
		return nil
	}
	return xdg.EnsureDir(filepath.Dir(store.SQLitePath(cfg.DSN)))
}

func migrateUp(cfg config.StoreConfig) (err error) {
	m, err := store.NewMigrator(cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return m.Up()
}
