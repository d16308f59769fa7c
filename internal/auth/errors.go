// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned by repositories when no record matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned by repositories when a username or email is
// already taken.
var ErrDuplicateKey = errors.New("duplicate key")

// Error codes attached to service errors.
const (
	CodePasswordMismatch    = "AUTH_PASSWORD_MISMATCH"
	CodeDuplicateCredential = "AUTH_DUPLICATE_CREDENTIAL"
	CodeInvalidCredentials  = "AUTH_INVALID_CREDENTIALS"
	CodeUnknownEmail        = "AUTH_UNKNOWN_EMAIL"
	CodeStorageUnavailable  = "AUTH_STORAGE_UNAVAILABLE"
	CodeInvalidInput        = "AUTH_INVALID_INPUT"
)

// Kind classifies service failures.
type Kind int

// Error kinds.
const (
	KindNone Kind = iota
	KindPasswordMismatch
	KindDuplicateCredential
	KindInvalidCredentials
	KindUnknownEmail
	KindStorageUnavailable
	KindInvalidInput
	KindUnknown
)

var kindNames = map[Kind]string{
	KindNone:                "none",
	KindPasswordMismatch:    "password_mismatch",
	KindDuplicateCredential: "duplicate_credential",
	KindInvalidCredentials:  "invalid_credentials",
	KindUnknownEmail:        "unknown_email",
	KindStorageUnavailable:  "storage_unavailable",
	KindInvalidInput:        "invalid_input",
	KindUnknown:             "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

var codeKinds = map[string]Kind{
	CodePasswordMismatch:    KindPasswordMismatch,
	CodeDuplicateCredential: KindDuplicateCredential,
	CodeInvalidCredentials:  KindInvalidCredentials,
	CodeUnknownEmail:        KindUnknownEmail,
	CodeStorageUnavailable:  KindStorageUnavailable,
	CodeInvalidInput:        KindInvalidInput,
}

// KindOf returns the Kind of err. A nil error is KindNone; errors without
// a known code are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindUnknown
	}
	code, _ := oopsErr.Code().(string)
	if kind, ok := codeKinds[code]; ok {
		return kind
	}
	return KindUnknown
}
