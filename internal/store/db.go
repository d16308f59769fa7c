// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package store opens the credential database and manages its schema.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	// Register the pure-Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLite connection pragmas. A single connection serialises writers; the
// busy timeout covers other processes holding the file lock.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// Postgres connect retry policy.
const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// SQLiteDSN returns the database/sql DSN for the database file at path.
func SQLiteDSN(path string) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

// SQLitePath returns the database file named by a sqlite DSN, without a
// sqlite:// or file: scheme and without query parameters.
func SQLitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

// OpenSQLite opens the SQLite database file at path.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, oops.Code("DB_CONFIG_INVALID").Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("driver", DriverSQLite).With("path", path).Wrap(err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("DB_CONNECT_FAILED").With("driver", DriverSQLite).With("path", path).Wrap(err)
	}
	return db, nil
}

// OpenSQLiteReadOnly opens an existing SQLite database file without
// writing to it. Pragmas that change the file are not applied.
func OpenSQLiteReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, oops.Code("DB_NOT_FOUND").With("driver", DriverSQLite).With("path", path).Wrap(err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("driver", DriverSQLite).With("path", path).Wrap(err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("DB_CONNECT_FAILED").With("driver", DriverSQLite).With("path", path).Wrap(err)
	}
	return db, nil
}

// OpenPostgres connects to PostgreSQL, retrying while the server comes up.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, oops.Code("DB_CONFIG_INVALID").Errorf("postgres dsn is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("driver", DriverPostgres).Wrap(err)
	}

	attempt := 0
	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewExponential(connectBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if pingErr := pool.Ping(ctx); pingErr != nil {
			logger.WarnContext(ctx, "database not reachable yet", "attempt", attempt, "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("driver", DriverPostgres).
			With("attempts", attempt).
			Wrap(err)
	}
	return pool, nil
}
