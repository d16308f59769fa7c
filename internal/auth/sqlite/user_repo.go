// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package sqlite implements auth.UserRepository on a SQLite database file.
// Timestamps are stored as Unix milliseconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aqidash/aqidash/internal/auth"
)

// UserRepository implements auth.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository. db should come from
// store.OpenSQLite so writes are serialised on one connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const selectUser = `
	SELECT id, username, email, password_hash, created_at, updated_at
	FROM users
`

// Create inserts user and sets its ID.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.UnixMilli(),
		user.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, oops.With("username", user.Username).Wrap(auth.ErrDuplicateKey)
		}
		return 0, oops.
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, oops.With("operation", "read inserted id").Wrap(err)
	}
	user.ID = id
	return id, nil
}

// FindByCredentials looks up username and returns the user only when check
// accepts the stored hash.
func (r *UserRepository) FindByCredentials(ctx context.Context, username string, check auth.CredentialCheck) (*auth.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.With("username", username).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.
			With("operation", "find user by username").
			With("username", username).
			Wrap(err)
	}
	if check == nil || !check(user.PasswordHash) {
		return nil, oops.With("username", username).Wrap(auth.ErrNotFound)
	}
	return user, nil
}

// FindByEmail returns the user owning email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.With("email", email).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.
			With("operation", "find user by email").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// UpdatePassword replaces the password hash of the user owning email.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ?
		WHERE email = ?
	`, passwordHash, time.Now().UTC().UnixMilli(), email)
	if err != nil {
		return false, oops.
			With("operation", "update password").
			With("email", email).
			Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, oops.With("operation", "read rows affected").Wrap(err)
	}
	return n > 0, nil
}

// Ping checks the database file is readable.
func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return oops.With("operation", "ping").Wrap(err)
	}
	return nil
}

func scanUser(row *sql.Row) (*auth.User, error) {
	var (
		u                auth.User
		created, updated int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created, &updated); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with operation context
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	u.UpdatedAt = time.UnixMilli(updated).UTC()
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}

var _ auth.UserRepository = (*UserRepository)(nil)
