// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package auth provides the credential store contract and the
// registration, login and password reset operations built on it.
//
// # Domain Types
//
// A User is created with NewUser, which trims and validates the username
// and email and requires a non-empty password hash. Repository
// implementations receive pre-validated users.
//
// # Services
//
// Service enforces the password and email rules above a UserRepository:
//   - Register - creates a user when both passwords match and the store accepts it
//   - Login - verifies a username/password pair without revealing which part failed
//   - ResetPassword - replaces the hash of the user owning an email
//
// Plaintext passwords never leave the service; they are passed through a
// PasswordHasher before any storage or comparison.
//
// # Errors
//
// Failures carry stable oops codes (see the Code* constants). KindOf maps
// any error returned by this package to its Kind.
package auth
