package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger is the interface that wraps a database liveness check
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the service and its database are reachable
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{logger: logger},
		db:          db,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
}

// Health handles GET /healthz
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}
