// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package postgres implements auth.UserRepository on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/auth"
)

// poolIface is the subset of *pgxpool.Pool used by UserRepository.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

const selectUser = `
	SELECT id, username, email, password_hash, created_at, updated_at
	FROM users
`

// Create inserts user and sets its ID.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, oops.
				With("username", user.Username).
				With("constraint", pgErr.ConstraintName).
				Wrap(auth.ErrDuplicateKey)
		}
		return 0, oops.
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	user.ID = id
	return id, nil
}

// FindByCredentials looks up username and returns the user only when check
// accepts the stored hash.
func (r *UserRepository) FindByCredentials(ctx context.Context, username string, check auth.CredentialCheck) (*auth.User, error) {
	user, err := r.scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
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
	user, err := r.scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
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
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now()
		WHERE email = $2
	`, passwordHash, email)
	if err != nil {
		return false, oops.
			With("operation", "update password").
			With("email", email).
			Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Ping checks the connection.
func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return oops.With("operation", "ping").Wrap(err)
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with operation context
	}
	return &u, nil
}

var _ auth.UserRepository = (*UserRepository)(nil)
