package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/studentportal/webapp/internal/config"
	"github.com/studentportal/webapp/internal/database"
	"github.com/studentportal/webapp/internal/handlers"
	"github.com/studentportal/webapp/internal/jobs"
	"github.com/studentportal/webapp/internal/logger"
	"github.com/studentportal/webapp/internal/metrics"
	"github.com/studentportal/webapp/internal/repositories"
	"github.com/studentportal/webapp/internal/server"
	"github.com/studentportal/webapp/internal/services"
	"github.com/studentportal/webapp/internal/session"
	"github.com/studentportal/webapp/internal/views"
	"github.com/studentportal/webapp/internal/weather"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Student Portal", zap.String("db_driver", cfg.Database.Driver))

	// Connect to database
	db, err := database.Connect(cfg.Database.Driver, cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db, cfg.Database.Driver); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize session store
	store, cleaner, err := newSessionStore(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	if cleaner != nil {
		cleaner.Start()
	}

	tokenGenerator := session.NewTokenGenerator(cfg.Session.Secret, cfg.Session.TTL)
	sessions := session.NewManager(store, tokenGenerator, cfg.Session.TTL, cfg.Session.CookieSecure, logger.Logger)

	renderer, err := views.New()
	if err != nil {
		logger.Logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)

	// Initialize services
	weatherClient := weather.NewClient(cfg.Weather.GeocodingURL, cfg.Weather.ForecastURL, cfg.Weather.Timeout, cfg.Weather.RequestsPerSecond)
	authService := services.NewAuthService(userRepo, cfg.AdminCode, logger.Logger)
	adminService := services.NewAdminService(userRepo, logger.Logger)
	weatherService := services.NewWeatherService(weatherClient, logger.Logger)

	// Setup router
	router := server.NewRouter(server.Options{
		Logger:    logger.Logger,
		Sessions:  sessions,
		RateLimit: cfg.RateLimit,
		Pages:     handlers.NewPagesHandler(renderer, logger.Logger),
		Routes: []server.RouteRegistrar{
			handlers.NewRectangleHandler(renderer, logger.Logger),
			handlers.NewWeatherHandler(weatherService, renderer, logger.Logger),
			handlers.NewAuthHandler(authService, sessions, renderer, logger.Logger),
			handlers.NewAdminHandler(adminService, sessions, renderer, logger.Logger),
			handlers.NewHealthHandler(db, logger.Logger),
		},
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Metrics get their own listener so the public port never exposes them
	var metricsSrv *http.Server
	if cfg.Metrics.Port != 0 {
		metricsSrv = metrics.NewServer(cfg.Metrics.Port)
		go func() {
			logger.Logger.Info("Metrics server starting", zap.Int("port", cfg.Metrics.Port))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Logger.Fatal("Metrics server failed to start", zap.Error(err))
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Logger.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}
	if cleaner != nil {
		cleaner.Stop(ctx)
	}

	logger.Logger.Info("Server exited")
}

// newSessionStore builds the configured session store.
// The in-memory store needs a cleaner to purge expired sessions; Redis expires keys itself.
func newSessionStore(cfg *config.Config) (session.Store, *jobs.SessionCleaner, error) {
	if cfg.Session.Store == config.SessionStoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return session.NewRedisStore(client), nil, nil
	}

	store := session.NewMemoryStore()
	cleaner, err := jobs.NewSessionCleaner(store, cfg.Session.CleanupSchedule, logger.Logger)
	if err != nil {
		return nil, nil, err
	}
	return store, cleaner, nil
}
