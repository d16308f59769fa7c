// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package web

import (
	"net/http"

	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/auth"
	"github.com/aqidash/aqidash/internal/session"
	"github.com/aqidash/aqidash/pkg/errutil"
)

// Messages shown for failed intents.
const (
	MsgPasswordMismatch    = "Passwords do not match!"
	MsgDuplicateCredential = "Username or Email already exists! Try Again"
	MsgInvalidCredentials  = "Invalid Username or Password!"
	MsgUnknownEmail        = "Email not found!"
	MsgInvalidInput        = "Please fill in every field with a valid value."
	MsgInvalidTransition   = "That action is not available on this page."
	MsgUnavailable         = "Something went wrong. Please try again later."
	MsgDatasetMissing      = "Dataset not found."
	MsgDatasetUnreadable   = "Dataset could not be read."
)

// OutcomeInvalidTransition labels intents rejected by the transition table.
const OutcomeInvalidTransition = "invalid_transition"

var fieldMessages = map[string]string{
	"username": "Please enter a username.",
	"email":    "Please enter an email address.",
	"password": "Please enter a password.",
}

// failure describes how a rejected intent is reported.
type failure struct {
	message string
	status  int
	outcome string
}

func classify(err error) failure {
	if errutil.Code(err) == session.CodeInvalidTransition {
		return failure{MsgInvalidTransition, http.StatusConflict, OutcomeInvalidTransition}
	}

	kind := auth.KindOf(err)
	f := failure{status: http.StatusUnprocessableEntity, outcome: kind.String()}
	switch kind {
	case auth.KindPasswordMismatch:
		f.message = MsgPasswordMismatch
	case auth.KindDuplicateCredential:
		f.message = MsgDuplicateCredential
	case auth.KindInvalidCredentials:
		f.message = MsgInvalidCredentials
		f.status = http.StatusUnauthorized
	case auth.KindUnknownEmail:
		f.message = MsgUnknownEmail
	case auth.KindInvalidInput:
		f.message = MsgInvalidInput
		if oopsErr, ok := oops.AsOops(err); ok {
			if field, ok := oopsErr.Context()["field"].(string); ok {
				if msg, ok := fieldMessages[field]; ok {
					f.message = msg
				}
			}
		}
	default:
		f.message = MsgUnavailable
		f.status = http.StatusServiceUnavailable
	}
	return f
}
