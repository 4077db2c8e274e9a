// Package server assembles the HTTP router and its middleware chain
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	authmw "github.com/studentportal/webapp/internal/auth/middleware"
	"github.com/studentportal/webapp/internal/config"
	"github.com/studentportal/webapp/internal/handlers"
	loggerMiddleware "github.com/studentportal/webapp/internal/logger/middleware"
	"github.com/studentportal/webapp/internal/metrics"
	"github.com/studentportal/webapp/internal/middlewares"
	"github.com/studentportal/webapp/internal/views"
	"go.uber.org/zap"
)

// maxRequestSize caps form bodies
const maxRequestSize = 1 << 20 // 1MB

// RouteRegistrar is implemented by every handler that owns routes
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// Options holds everything the router is built from
type Options struct {
	Logger    *zap.Logger
	Sessions  authmw.SessionLoader
	RateLimit config.RateLimitConfig
	// Pages renders the 404 and 405 pages
	Pages  *handlers.PagesHandler
	Routes []RouteRegistrar
}

// NewRouter builds the application router
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(opts.Logger))
	r.Use(middlewares.RecoveryMiddleware(opts.Logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(httprate.LimitByIP(opts.RateLimit.Requests, opts.RateLimit.Window))
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))
	r.Use(http.NewCrossOriginProtection().Handler)
	r.Use(authmw.SessionMiddleware(opts.Sessions, opts.Logger))

	// Set before routes so mounted subrouters inherit them
	r.NotFound(opts.Pages.NotFound)
	r.MethodNotAllowed(opts.Pages.MethodNotAllowed)

	r.Handle("/static/*", http.StripPrefix("/static/", views.Static()))

	opts.Pages.RegisterRoutes(r)
	for _, rr := range opts.Routes {
		rr.RegisterRoutes(r)
	}

	return r
}
