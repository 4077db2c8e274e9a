package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studentportal/webapp/internal/flash"
	"github.com/studentportal/webapp/internal/forms"
	"github.com/studentportal/webapp/internal/models"
	"github.com/studentportal/webapp/internal/services"
	"github.com/studentportal/webapp/internal/views"
	"go.uber.org/zap"
)

// RectangleHandler serves the rectangle calculator
type RectangleHandler struct {
	BaseHandler
}

// NewRectangleHandler creates a new rectangle handler
func NewRectangleHandler(renderer Renderer, logger *zap.Logger) *RectangleHandler {
	return &RectangleHandler{
		BaseHandler: BaseHandler{logger: logger, views: renderer},
	}
}

// RegisterRoutes registers the calculator routes
func (h *RectangleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/rectangle", h.Show)
	r.Post("/rectangle", h.Calculate)
}

// Show handles GET /rectangle
func (h *RectangleHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageRectangle, &views.Page{
		Title: "Rectangle Calculator",
		Data:  views.RectangleData{},
	})
}

// Calculate handles POST /rectangle.
// The measure computed depends on which submit button was pressed; with neither, only the form is shown.
func (h *RectangleHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	form := forms.NewRectangleForm(r)
	page := &views.Page{
		Title: "Rectangle Calculator",
		Form:  form,
		Data:  views.RectangleData{},
	}

	if page.Errors = form.Validate(); page.Errors != nil || form.Operation == "" {
		h.render(w, r, http.StatusOK, views.PageRectangle, page)
		return
	}

	length, width := form.Values()
	result, err := services.CalculateRectangle(length, width, form.Operation)
	if errors.Is(err, models.ErrInvalidDimensions) {
		page.Flashes = append(page.Flashes, flash.Message{
			Category: flash.Danger,
			Message:  "The dimensions are too large to calculate.",
		})
		h.render(w, r, http.StatusOK, views.PageRectangle, page)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	page.Data = views.RectangleData{Result: result}
	h.render(w, r, http.StatusOK, views.PageRectangle, page)
}
