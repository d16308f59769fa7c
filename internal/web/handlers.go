// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/observability"
	"github.com/aqidash/aqidash/internal/session"
)

// Form field names posted with intents.
const (
	fieldUsername        = "username"
	fieldEmail           = "email"
	fieldPassword        = "password"
	fieldConfirmPassword = "confirm_password"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st, fresh := s.loadState(r)
	if fresh {
		if !s.saveState(w, r, st) {
			return
		}
	}
	s.render(w, r, http.StatusOK, st, s.newPageData(st))
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := session.ParseIntent(chi.URLParam(r, "intent"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := session.Form{
		Username:        r.PostForm.Get(fieldUsername),
		Email:           r.PostForm.Get(fieldEmail),
		Password:        r.PostForm.Get(fieldPassword),
		ConfirmPassword: r.PostForm.Get(fieldConfirmPassword),
	}

	st, _ := s.loadState(r)
	res, dispatchErr := s.machine.Dispatch(r.Context(), st, intent, form)

	if !s.saveState(w, r, res.State) {
		return
	}

	data := s.newPageData(res.State)
	if dispatchErr != nil {
		f := classify(dispatchErr)
		s.recordIntent(intent, f.outcome)
		if f.status >= http.StatusInternalServerError {
			s.logError(r, "intent failed", dispatchErr)
		}
		data.Error = f.message
		data.Form = formEcho{Username: form.Username, Email: form.Email}
		s.render(w, r, f.status, res.State, data)
		return
	}

	s.recordIntent(intent, observability.OutcomeOK)
	data.Notice = res.Notice
	s.render(w, r, http.StatusOK, res.State, data)
}

func (s *Server) recordIntent(intent session.Intent, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordIntent(intent.String(), outcome)
	}
}

// loadState decodes the session cookie. fresh is true when the request
// carried no usable cookie and a new state was started.
func (s *Server) loadState(r *http.Request) (st session.State, fresh bool) {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil {
		return session.NewState(), true
	}
	st, err = s.codec.Decode(c.Value)
	if err != nil {
		s.logger.DebugContext(r.Context(), "discarding session cookie", "error", err)
		return st, true
	}
	return st, false
}

// saveState writes st to the session cookie. It reports false after
// writing an error response.
func (s *Server) saveState(w http.ResponseWriter, r *http.Request, st session.State) bool {
	token, err := s.codec.Encode(st)
	if err != nil {
		s.logError(r, "encode session", oops.With("session", st.ID.String()).Wrap(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.codec.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}
