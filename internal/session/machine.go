// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/auth"
)

// Notices shown after successful transitions.
const (
	NoticeRegistered    = "Account created successfully!"
	NoticePasswordReset = "Password reset successfully! Redirecting to login..."
	noticeWelcomeFormat = "Welcome, %s!"
)

// Authenticator performs the credential checks behind form intents.
// *auth.Service implements it.
type Authenticator interface {
	Register(ctx context.Context, username, email, password, confirmPassword string) (*auth.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error
}

// Form carries the fields submitted with an intent. Fields an intent does
// not use are ignored.
type Form struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Result is the outcome of a successful dispatch.
type Result struct {
	State  State
	Notice string
}

type edge struct {
	from   Page
	intent Intent
}

type step func(ctx context.Context, m *Machine, s State, f Form) (Result, error)

// transitions is the complete transition table. Any (page, intent) pair
// missing here is an invalid transition.
var transitions = map[edge]step{
	{PageRegister, IntentRegisterSubmit}:      registerSubmit,
	{PageRegister, IntentGotoLogin}:           moveTo(PageLogin),
	{PageLogin, IntentLoginSubmit}:            loginSubmit,
	{PageLogin, IntentGotoReset}:              moveTo(PageResetPassword),
	{PageResetPassword, IntentResetSubmit}:    resetSubmit,
	{PageDescription, IntentExploreDashboard}: moveTo(PageDashboard),
	{PageDashboard, IntentBackToDescription}:  moveTo(PageDescription),
	{PageRegister, IntentLogout}:              logout,
	{PageLogin, IntentLogout}:                 logout,
	{PageResetPassword, IntentLogout}:         logout,
	{PageDescription, IntentLogout}:           logout,
	{PageDashboard, IntentLogout}:             logout,
}

// Machine applies intents to session states.
type Machine struct {
	auth   Authenticator
	logger *slog.Logger
}

// NewMachine creates a Machine with a no-op logger.
func NewMachine(a Authenticator) (*Machine, error) {
	return NewMachineWithLogger(a, slog.New(slog.DiscardHandler))
}

// NewMachineWithLogger creates a Machine with the provided logger.
func NewMachineWithLogger(a Authenticator, logger *slog.Logger) (*Machine, error) {
	if a == nil {
		return nil, oops.Errorf("authenticator is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Machine{auth: a, logger: logger}, nil
}

// Dispatch applies intent to s. On failure the returned Result holds s
// unchanged alongside the error, so callers can always render Result.State.
func (m *Machine) Dispatch(ctx context.Context, s State, intent Intent, form Form) (Result, error) {
	s = s.Normalize()

	next, ok := transitions[edge{from: s.Page, intent: intent}]
	if !ok {
		return Result{State: s}, invalidTransition(s, intent)
	}

	res, err := next(ctx, m, s, form)
	if err != nil {
		m.logger.DebugContext(ctx, "intent rejected", "session", s, "intent", intent.String(), "error", err)
		return Result{State: s}, err
	}

	m.logger.DebugContext(ctx, "intent applied",
		"session", res.State,
		"intent", intent.String(),
		"from", s.Page.String())
	return res, nil
}

func invalidTransition(s State, intent Intent) error {
	return oops.Code(CodeInvalidTransition).
		With("page", s.Page.String()).
		With("intent", intent.String()).
		Errorf("intent %s is not allowed on page %s", intent, s.Page)
}

func moveTo(page Page) step {
	return func(_ context.Context, _ *Machine, s State, _ Form) (Result, error) {
		s.Page = page
		return Result{State: s}, nil
	}
}

func registerSubmit(ctx context.Context, m *Machine, s State, f Form) (Result, error) {
	if _, err := m.auth.Register(ctx, f.Username, f.Email, f.Password, f.ConfirmPassword); err != nil {
		return Result{}, err //nolint:wrapcheck // auth errors carry their own codes
	}
	s.Page = PageLogin
	return Result{State: s, Notice: NoticeRegistered}, nil
}

func loginSubmit(ctx context.Context, m *Machine, s State, f Form) (Result, error) {
	username, err := m.auth.Login(ctx, f.Username, f.Password)
	if err != nil {
		return Result{}, err //nolint:wrapcheck // auth errors carry their own codes
	}
	s.User = username
	s.Page = PageDescription
	return Result{State: s, Notice: fmt.Sprintf(noticeWelcomeFormat, username)}, nil
}

func resetSubmit(ctx context.Context, m *Machine, s State, f Form) (Result, error) {
	if err := m.auth.ResetPassword(ctx, f.Email, f.Password, f.ConfirmPassword); err != nil {
		return Result{}, err //nolint:wrapcheck // auth errors carry their own codes
	}
	s.Page = PageLogin
	return Result{State: s, Notice: NoticePasswordReset}, nil
}

func logout(_ context.Context, _ *Machine, s State, _ Form) (Result, error) {
	if !s.Authenticated() {
		return Result{}, invalidTransition(s, IntentLogout)
	}
	s.User = ""
	s.Page = PageLogin
	return Result{State: s}, nil
}
