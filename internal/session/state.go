// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package session

import (
	"log/slog"

	"github.com/oklog/ulid/v2"
)

// State is the navigation state of one browser session.
type State struct {
	// ID identifies the browser session in logs. It survives login and logout.
	ID ulid.ULID
	// User is the signed-in username, or "" when signed out.
	User string
	Page Page
}

// NewState returns the initial state: signed out on the register page.
func NewState() State {
	return State{ID: ulid.Make(), Page: PageRegister}
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.User != ""
}

// Normalize returns s with pages that need a signed-in user replaced by
// the login page when nobody is signed in.
func (s State) Normalize() State {
	if !s.Page.Valid() {
		s.Page = PageRegister
	}
	if s.Page.RequiresAuth() && !s.Authenticated() {
		s.Page = PageLogin
	}
	return s
}

// Allowed returns the intents that have a transition from s, in
// declaration order.
func (s State) Allowed() []Intent {
	var out []Intent
	for _, intent := range Intents() {
		if _, ok := transitions[edge{from: s.Page, intent: intent}]; !ok {
			continue
		}
		if intent == IntentLogout && !s.Authenticated() {
			continue
		}
		out = append(out, intent)
	}
	return out
}

// LogValue implements slog.LogValuer.
func (s State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", s.ID.String()),
		slog.String("user", s.User),
		slog.String("page", s.Page.String()),
	)
}
