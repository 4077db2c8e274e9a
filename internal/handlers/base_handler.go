package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	authmw "github.com/studentportal/webapp/internal/auth/middleware"
	"github.com/studentportal/webapp/internal/flash"
	"github.com/studentportal/webapp/internal/views"
	"go.uber.org/zap"
)

// Renderer is the interface that wraps page rendering
type Renderer interface {
	// Method Render writes the named page.
	//
	// "name" parameter selects the page template, see the views.Page* constants.
	// "page" parameter is the data passed to the template.
	//
	// If the template fails, nothing is written and the error is returned.
	Render(w io.Writer, name string, page *views.Page) error
}

// BaseHandler holds what every page handler needs
type BaseHandler struct {
	logger *zap.Logger
	views  Renderer
}

// render writes a full HTML page.
// The current session and any queued notices are added to the page before rendering.
func (h *BaseHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, page *views.Page) {
	if sess, ok := authmw.GetSession(r.Context()); ok {
		page.Session = sess
	}
	page.Flashes = append(flash.Pop(w, r), page.Flashes...)

	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, page); err != nil {
		h.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError writes the error page for a status code
func (h *BaseHandler) renderError(w http.ResponseWriter, r *http.Request, status int) {
	h.render(w, r, status, views.PageError, &views.Page{
		Title: http.StatusText(status),
		Data:  views.ErrorData{Status: status, Message: http.StatusText(status)},
	})
}

// serverError logs an unexpected error and writes the 500 page
func (h *BaseHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	h.renderError(w, r, http.StatusInternalServerError)
}

// redirect queues a notice and redirects with 303 See Other
func (h *BaseHandler) redirect(w http.ResponseWriter, r *http.Request, location string, category flash.Category, message string) {
	flash.Add(w, r, category, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// parseForm parses a submitted form and writes a 400 page when the body is unreadable
func (h *BaseHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse form", zap.String("path", r.URL.Path), zap.Error(err))
		h.renderError(w, r, http.StatusBadRequest)
		return false
	}
	return true
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}
