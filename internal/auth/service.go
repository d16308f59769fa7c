// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aqidash/aqidash/internal/auth"

// dummyPassword is hashed once per Service so that logins for unknown
// usernames still pay for a password verification.
//
//nolint:gosec // G101: not a credential, it never matches a stored user.
const dummyPassword = "aqidash-unknown-user"

// Service provides registration, login and password reset.
type Service struct {
	users     UserRepository
	hasher    PasswordHasher
	logger    *slog.Logger
	tracer    trace.Tracer
	dummyHash string
}

// NewService creates a Service with a no-op logger.
// Returns an error if any required dependency is nil.
func NewService(users UserRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(users, hasher, slog.New(slog.DiscardHandler))
}

// NewServiceWithLogger creates a Service with the provided logger.
// Returns an error if any required dependency is nil.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, oops.With("operation", "hash dummy password").Wrap(err)
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		dummyHash: dummyHash,
	}, nil
}

// Register creates a user. Both passwords must match; the username and
// email must be unused.
func (s *Service) Register(ctx context.Context, username, email, password, confirmPassword string) (*User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Register")
	defer span.End()

	if password != confirmPassword {
		return nil, s.fail(span, oops.Code(CodePasswordMismatch).Errorf("passwords do not match"))
	}
	if password == "" {
		return nil, s.fail(span, oops.Code(CodeInvalidInput).With("field", "password").Errorf("password cannot be empty"))
	}

	// Validate before paying for a hash.
	if _, err := NewUser(username, email, "pending"); err != nil {
		return nil, s.fail(span, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.fail(span, oops.Code(CodeInvalidInput).With("operation", "hash password").Wrap(err))
	}

	user, err := NewUser(username, email, hash)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.String("auth.username", user.Username))

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			s.logger.InfoContext(ctx, "registration rejected", "reason", "duplicate credential", "username", user.Username)
			return nil, s.fail(span, oops.Code(CodeDuplicateCredential).
				With("username", user.Username).
				Errorf("username or email already exists"))
		}
		return nil, s.fail(span, oops.Code(CodeStorageUnavailable).
			With("operation", "create user").
			Wrap(err))
	}

	s.logger.InfoContext(ctx, "user registered", "user", *user)
	return user, nil
}

// Login verifies username and password and returns the stored username.
// An unknown username and a wrong password fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	username = strings.TrimSpace(username)
	span.SetAttributes(attribute.String("auth.username", username))

	checked := false
	user, err := s.users.FindByCredentials(ctx, username, func(hash string) bool {
		checked = true
		ok, verifyErr := s.hasher.Verify(password, hash)
		if verifyErr != nil {
			s.logger.WarnContext(ctx, "stored password hash is unreadable", "username", username, "error", verifyErr)
			return false
		}
		return ok
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if !checked {
				// Keep response time independent of whether the username exists.
				_, _ = s.hasher.Verify(password, s.dummyHash) //nolint:errcheck // result is discarded
			}
			s.logger.InfoContext(ctx, "login rejected", "username", username)
			return "", s.fail(span, oops.Code(CodeInvalidCredentials).Errorf("invalid username or password"))
		}
		return "", s.fail(span, oops.Code(CodeStorageUnavailable).
			With("operation", "find by credentials").
			Wrap(err))
	}

	s.logger.InfoContext(ctx, "user logged in", "user", *user)
	return user.Username, nil
}

// ResetPassword replaces the password of the user owning email. The stored
// hash is untouched unless both passwords match and the email is known.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	ctx, span := s.tracer.Start(ctx, "auth.ResetPassword")
	defer span.End()

	if newPassword != confirmPassword {
		return s.fail(span, oops.Code(CodePasswordMismatch).Errorf("passwords do not match"))
	}
	if newPassword == "" {
		return s.fail(span, oops.Code(CodeInvalidInput).With("field", "password").Errorf("new password cannot be empty"))
	}

	email = strings.TrimSpace(email)
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.fail(span, oops.Code(CodeUnknownEmail).Errorf("email not found"))
		}
		return s.fail(span, oops.Code(CodeStorageUnavailable).
			With("operation", "find by email").
			Wrap(err))
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.fail(span, oops.Code(CodeInvalidInput).With("operation", "hash password").Wrap(err))
	}

	updated, err := s.users.UpdatePassword(ctx, email, hash)
	if err != nil {
		return s.fail(span, oops.Code(CodeStorageUnavailable).
			With("operation", "update password").
			Wrap(err))
	}
	if !updated {
		return s.fail(span, oops.Code(CodeUnknownEmail).Errorf("email not found"))
	}

	s.logger.InfoContext(ctx, "password reset", "email", email)
	return nil
}

// Ping reports whether the credential store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.users.Ping(ctx); err != nil {
		return oops.Code(CodeStorageUnavailable).With("operation", "ping").Wrap(err)
	}
	return nil
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, KindOf(err).String())
	return err
}
