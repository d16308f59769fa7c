// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package session

// Error codes.
const (
	CodeInvalidTransition = "SESSION_INVALID_TRANSITION"
	CodeUnknownIntent     = "SESSION_UNKNOWN_INTENT"
	CodeUnknownPage       = "SESSION_UNKNOWN_PAGE"
	CodeInvalidToken      = "SESSION_INVALID_TOKEN"
	CodeEncodeFailed      = "SESSION_ENCODE_FAILED"
)
