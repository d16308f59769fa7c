// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package web

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/content"
	"github.com/aqidash/aqidash/internal/dataset"
	"github.com/aqidash/aqidash/internal/observability"
	"github.com/aqidash/aqidash/internal/session"
	"github.com/aqidash/aqidash/pkg/errutil"
)

// Config holds presentation settings.
type Config struct {
	CookieName string
	Secure     bool
	EmbedURL   string
	EmbedTitle string
}

// Deps are the collaborators of a Server. Dataset and Metrics may be nil.
type Deps struct {
	Machine *session.Machine
	Codec   *session.Codec
	Content *content.Content
	Dataset *dataset.Source
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Server is the AQIDash web front end.
type Server struct {
	cfg       Config
	machine   *session.Machine
	codec     *session.Codec
	content   *content.Content
	dataset   *dataset.Source
	metrics   *observability.Metrics
	logger    *slog.Logger
	templates map[session.Page]*template.Template
	router    chi.Router
}

// New creates a Server. A nil Logger discards logs.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Machine == nil {
		return nil, oops.Errorf("session machine is required")
	}
	if deps.Codec == nil {
		return nil, oops.Errorf("session codec is required")
	}
	if deps.Content == nil {
		return nil, oops.Errorf("content is required")
	}
	if cfg.CookieName == "" {
		return nil, oops.Errorf("cookie name is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		machine:   deps.Machine,
		codec:     deps.Codec,
		content:   deps.Content,
		dataset:   deps.Dataset,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		templates: templates,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	if s.metrics != nil {
		r.Use(instrument(s.metrics))
	}
	r.Use(middleware.Recoverer)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		// staticFS is embedded; Sub only fails on an invalid name.
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	r.Get("/", s.handleIndex)
	r.Post("/intents/{intent}", s.handleIntent)
	return r
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	errutil.LogErrorContext(r.Context(), logger, msg, err)
}
