// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package mocks provides testify mocks for the auth interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aqidash/aqidash/internal/auth"
)

// MockUserRepository is a mock of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository whose expectations are
// asserted when the test ends.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks auth.UserRepository.Create.
func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) (int64, error) {
	ret := m.Called(ctx, user)
	if fn, ok := ret.Get(0).(func(context.Context, *auth.User) (int64, error)); ok {
		return fn(ctx, user)
	}
	return ret.Get(0).(int64), ret.Error(1)
}

// FindByCredentials mocks auth.UserRepository.FindByCredentials. A
// function return value receives the check so tests can drive it.
func (m *MockUserRepository) FindByCredentials(ctx context.Context, username string, check auth.CredentialCheck) (*auth.User, error) {
	ret := m.Called(ctx, username, check)
	if fn, ok := ret.Get(0).(func(context.Context, string, auth.CredentialCheck) (*auth.User, error)); ok {
		return fn(ctx, username, check)
	}
	var user *auth.User
	if ret.Get(0) != nil {
		user = ret.Get(0).(*auth.User)
	}
	return user, ret.Error(1)
}

// FindByEmail mocks auth.UserRepository.FindByEmail.
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	ret := m.Called(ctx, email)
	var user *auth.User
	if ret.Get(0) != nil {
		user = ret.Get(0).(*auth.User)
	}
	return user, ret.Error(1)
}

// UpdatePassword mocks auth.UserRepository.UpdatePassword.
func (m *MockUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error) {
	ret := m.Called(ctx, email, passwordHash)
	return ret.Bool(0), ret.Error(1)
}

// Ping mocks auth.UserRepository.Ping.
func (m *MockUserRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockPasswordHasher is a mock of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations are
// asserted when the test ends.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash mocks auth.PasswordHasher.Hash.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	ret := m.Called(password)
	return ret.String(0), ret.Error(1)
}

// Verify mocks auth.PasswordHasher.Verify.
func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	ret := m.Called(password, hash)
	return ret.Bool(0), ret.Error(1)
}

var (
	_ auth.UserRepository = (*MockUserRepository)(nil)
	_ auth.PasswordHasher = (*MockPasswordHasher)(nil)
)
