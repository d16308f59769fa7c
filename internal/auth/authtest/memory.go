// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package authtest provides an in-memory credential store for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/auth"
)

// MemoryUserRepository is an in-memory auth.UserRepository.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*auth.User

	// PingErr, when set, is returned by Ping and every other operation.
	PingErr error
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]*auth.User)}
}

// Create implements auth.UserRepository.
func (r *MemoryUserRepository) Create(_ context.Context, user *auth.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.PingErr != nil {
		return 0, r.PingErr
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, oops.With("username", user.Username).Wrap(auth.ErrDuplicateKey)
		}
	}

	r.nextID++
	stored := *user
	stored.ID = r.nextID
	r.users[stored.ID] = &stored
	user.ID = stored.ID
	return stored.ID, nil
}

// FindByCredentials implements auth.UserRepository.
func (r *MemoryUserRepository) FindByCredentials(_ context.Context, username string, check auth.CredentialCheck) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.PingErr != nil {
		return nil, r.PingErr
	}
	for _, u := range r.users {
		if u.Username == username {
			if check == nil || !check(u.PasswordHash) {
				return nil, auth.ErrNotFound
			}
			found := *u
			return &found, nil
		}
	}
	return nil, auth.ErrNotFound
}

// FindByEmail implements auth.UserRepository.
func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.PingErr != nil {
		return nil, r.PingErr
	}
	if u := r.byEmail(email); u != nil {
		found := *u
		return &found, nil
	}
	return nil, auth.ErrNotFound
}

// UpdatePassword implements auth.UserRepository.
func (r *MemoryUserRepository) UpdatePassword(_ context.Context, email, passwordHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.PingErr != nil {
		return false, r.PingErr
	}
	u := r.byEmail(email)
	if u == nil {
		return false, nil
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Ping implements auth.UserRepository.
func (r *MemoryUserRepository) Ping(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.PingErr
}

// Users returns copies of all stored users ordered by ID.
func (r *MemoryUserRepository) Users() []auth.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]auth.User, 0, len(r.users))
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out
}

// SetPingErr sets PingErr under the repository lock.
func (r *MemoryUserRepository) SetPingErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PingErr = err
}

func (r *MemoryUserRepository) byEmail(email string) *auth.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

var _ auth.UserRepository = (*MemoryUserRepository)(nil)
