// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
)

// User is a stored account. PasswordHash is a one-way digest and is never
// rendered by String or LogValue.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated User. The ID is assigned by the repository.
func NewUser(username, email, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateUsername checks that a username is present. Any other string is
// stored as entered.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code(CodeInvalidInput).With("field", "username").Errorf("username cannot be empty")
	}
	return nil
}

// ValidateEmail checks that an email is present. The address format is not
// checked.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code(CodeInvalidInput).With("field", "email").Errorf("email cannot be empty")
	}
	return nil
}

// String implements fmt.Stringer without the password hash.
func (u User) String() string {
	return fmt.Sprintf("User{ID:%d Username:%q Email:%q}", u.ID, u.Username, u.Email)
}

// LogValue implements slog.LogValuer without the password hash.
func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("id", u.ID),
		slog.String("username", u.Username),
		slog.String("email", u.Email),
	)
}

// CredentialCheck reports whether a stored password hash matches the
// password being presented. Repositories call it at most once per lookup.
type CredentialCheck func(passwordHash string) bool

// UserRepository is the credential store.
//
// Implementations wrap driver failures without an error code; the service
// assigns codes. Lookups that match nothing return ErrNotFound.
type UserRepository interface {
	// Create inserts a user and returns its new ID, also setting user.ID.
	// Returns ErrDuplicateKey if the username or email is taken.
	Create(ctx context.Context, user *User) (int64, error)

	// FindByCredentials returns the user with the given username whose
	// stored hash satisfies check. An unknown username and a failed check
	// both return ErrNotFound.
	FindByCredentials(ctx context.Context, username string, check CredentialCheck) (*User, error)

	// FindByEmail returns the user owning email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword replaces the hash of the user owning email and
	// reports whether a record was updated.
	UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
