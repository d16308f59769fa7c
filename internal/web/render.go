// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/content"
	"github.com/aqidash/aqidash/internal/dataset"
	"github.com/aqidash/aqidash/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// parseTemplates builds one template set per page, each combining the
// layout with that page's "content" block.
func parseTemplates() (map[session.Page]*template.Template, error) {
	out := make(map[session.Page]*template.Template, len(session.Pages()))
	for _, p := range session.Pages() {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+p.String()+".html")
		if err != nil {
			return nil, oops.Code("WEB_TEMPLATE_INVALID").With("page", p.String()).Wrap(err)
		}
		out[p] = t
	}
	return out, nil
}

// formEcho holds the form fields that are safe to render back.
type formEcho struct {
	Username string
	Email    string
}

type datasetView struct {
	Name    string
	Columns []string
	Rows    [][]string
	Warning string
}

type pageData struct {
	Page          string
	User          string
	Authenticated bool
	Notice        string
	Error         string
	Form          formEcho
	Content       *content.Content
	EmbedURL      string
	EmbedTitle    string
	Dataset       *datasetView
}

func (s *Server) newPageData(st session.State) pageData {
	return pageData{
		Page:          st.Page.String(),
		User:          st.User,
		Authenticated: st.Authenticated(),
	}
}

// render writes the page for st. Page-specific data is filled in here so
// handlers only decide the state, status and flash messages.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, st session.State, data pageData) {
	switch st.Page {
	case session.PageDescription:
		data.Content = s.content
	case session.PageDashboard:
		data.EmbedURL = s.cfg.EmbedURL
		data.EmbedTitle = s.cfg.EmbedTitle
		data.Dataset = s.loadDataset(r)
	}

	t, ok := s.templates[st.Page]
	if !ok {
		s.logger.ErrorContext(r.Context(), "no template for page", "page", st.Page.String())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		s.logError(r, "render page", oops.Code("WEB_RENDER_FAILED").With("page", st.Page.String()).Wrap(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) loadDataset(r *http.Request) *datasetView {
	if s.dataset == nil {
		return &datasetView{Warning: MsgDatasetMissing}
	}
	table, err := s.dataset.Load()
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			return &datasetView{Name: s.dataset.Name(), Warning: MsgDatasetMissing}
		}
		s.logError(r, "load dataset", err)
		return &datasetView{Name: s.dataset.Name(), Warning: MsgDatasetUnreadable}
	}
	return &datasetView{Name: s.dataset.Name(), Columns: table.Columns, Rows: table.Rows}
}
