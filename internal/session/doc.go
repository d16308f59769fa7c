// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package session tracks which page a browser session is on and who is
// signed in.
//
// A State is an immutable value. Machine.Dispatch takes the current State
// and an Intent reported by the presentation layer and returns the next
// State; nothing is stored server-side. Intents that have no transition
// from the current page fail with CodeInvalidTransition and leave the
// State unchanged, as do failed form validations.
//
// Codec carries a State between requests in a signed JWT. Tokens that are
// missing, tampered with or expired decode to a fresh State.
package session
