// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package session

import (
	"github.com/samber/oops"
)

// Page is the screen a session is on.
type Page int

// Pages. PageRegister is the zero value and the initial page.
const (
	PageRegister Page = iota
	PageLogin
	PageResetPassword
	PageDescription
	PageDashboard
)

var pageNames = [...]string{
	PageRegister:      "register",
	PageLogin:         "login",
	PageResetPassword: "reset_password",
	PageDescription:   "description",
	PageDashboard:     "dashboard",
}

// Pages returns every page in declaration order.
func Pages() []Page {
	return []Page{PageRegister, PageLogin, PageResetPassword, PageDescription, PageDashboard}
}

func (p Page) String() string {
	if p.Valid() {
		return pageNames[p]
	}
	return "unknown"
}

// Valid reports whether p is a declared page.
func (p Page) Valid() bool {
	return p >= PageRegister && p <= PageDashboard
}

// RequiresAuth reports whether only a signed-in user may view p.
func (p Page) RequiresAuth() bool {
	return p == PageDescription || p == PageDashboard
}

// ParsePage converts a page name to a Page.
func ParsePage(name string) (Page, error) {
	for i, n := range pageNames {
		if n == name {
			return Page(i), nil
		}
	}
	return 0, oops.Code(CodeUnknownPage).With("page", name).Errorf("unknown page %q", name)
}

// Intent is a user action reported by the presentation layer.
type Intent int

// Intents.
const (
	IntentRegisterSubmit Intent = iota
	IntentGotoLogin
	IntentLoginSubmit
	IntentGotoReset
	IntentResetSubmit
	IntentExploreDashboard
	IntentBackToDescription
	IntentLogout
)

var intentNames = [...]string{
	IntentRegisterSubmit:    "register_submit",
	IntentGotoLogin:         "goto_login",
	IntentLoginSubmit:       "login_submit",
	IntentGotoReset:         "goto_reset",
	IntentResetSubmit:       "reset_submit",
	IntentExploreDashboard:  "explore_dashboard",
	IntentBackToDescription: "back_to_description",
	IntentLogout:            "logout",
}

// Intents returns every intent in declaration order.
func Intents() []Intent {
	out := make([]Intent, len(intentNames))
	for i := range intentNames {
		out[i] = Intent(i)
	}
	return out
}

func (i Intent) String() string {
	if i >= 0 && int(i) < len(intentNames) {
		return intentNames[i]
	}
	return "unknown"
}

// ParseIntent converts an intent name to an Intent.
func ParseIntent(name string) (Intent, error) {
	for i, n := range intentNames {
		if n == name {
			return Intent(i), nil
		}
	}
	return 0, oops.Code(CodeUnknownIntent).With("intent", name).Errorf("unknown intent %q", name)
}
