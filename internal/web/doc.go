// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package web serves the AQIDash pages. Every page is rendered from the
// session state carried in a signed cookie; forms post intents that the
// session machine applies to that state.
package web
