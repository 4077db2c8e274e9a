package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	authmw "github.com/studentportal/webapp/internal/auth/middleware"
	"github.com/studentportal/webapp/internal/views"
	"go.uber.org/zap"
)

// PagesHandler serves the static content pages
type PagesHandler struct {
	BaseHandler
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(renderer Renderer, logger *zap.Logger) *PagesHandler {
	return &PagesHandler{
		BaseHandler: BaseHandler{logger: logger, views: renderer},
	}
}

// RegisterRoutes registers the content page routes
func (h *PagesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.With(authmw.Require(authmw.LoginRequired)).Get("/projects", h.Projects)
}

// Home handles GET /
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageIndex, &views.Page{Title: "Home"})
}

// About handles GET /about
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageAbout, &views.Page{Title: "About"})
}

// Projects handles GET /projects, members only
func (h *PagesHandler) Projects(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageProjects, &views.Page{Title: "Projects"})
}

// NotFound renders the 404 page for unmatched routes
func (h *PagesHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound)
}

// MethodNotAllowed renders the 405 page
func (h *PagesHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed)
}
