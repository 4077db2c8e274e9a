package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studentportal/webapp/internal/flash"
	"github.com/studentportal/webapp/internal/forms"
	"github.com/studentportal/webapp/internal/metrics"
	"github.com/studentportal/webapp/internal/models"
	"github.com/studentportal/webapp/internal/views"
	"go.uber.org/zap"
)

// WeatherService is the interface that wraps the weather lookup
type WeatherService interface {
	// Method Lookup returns the current weather for a city.
	//
	// "city" parameter is the place name as typed by the user.
	//
	// Returns models.ErrCityNotFound when the city cannot be resolved and
	// models.ErrWeatherUnavailable when the upstream services fail.
	Lookup(ctx context.Context, city string) (*models.WeatherReport, error)
}

// WeatherHandler serves the weather report page
type WeatherHandler struct {
	BaseHandler
	service WeatherService
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(svc WeatherService, renderer Renderer, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		BaseHandler: BaseHandler{logger: logger, views: renderer},
		service:     svc,
	}
}

// RegisterRoutes registers the weather routes
func (h *WeatherHandler) RegisterRoutes(r chi.Router) {
	r.Get("/weatherreport", h.Show)
	r.Post("/weatherreport", h.Lookup)
}

// Show handles GET /weatherreport
func (h *WeatherHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageWeather, &views.Page{
		Title: "Weather Report",
		Data:  views.WeatherData{},
	})
}

// Lookup handles POST /weatherreport
func (h *WeatherHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	form := forms.NewWeatherForm(r)
	page := &views.Page{
		Title: "Weather Report",
		Form:  form,
		Data:  views.WeatherData{},
	}

	if page.Errors = form.Validate(); page.Errors != nil {
		h.render(w, r, http.StatusOK, views.PageWeather, page)
		return
	}

	report, err := h.service.Lookup(r.Context(), form.City)
	switch {
	case err == nil:
		metrics.RecordWeatherLookup(metrics.OutcomeSuccess)
		page.Data = views.WeatherData{Report: report}
	case errors.Is(err, models.ErrCityNotFound):
		metrics.RecordWeatherLookup(metrics.OutcomeNotFound)
		page.Flashes = append(page.Flashes, flash.Message{
			Category: flash.Danger,
			Message:  fmt.Sprintf("City '%s' not found.", form.City),
		})
	default:
		metrics.RecordWeatherLookup(metrics.OutcomeUnavailable)
		page.Flashes = append(page.Flashes, flash.Message{
			Category: flash.Danger,
			Message:  "Could not retrieve weather data. Please try again later.",
		})
	}

	h.render(w, r, http.StatusOK, views.PageWeather, page)
}
