package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-comments/backend/internal/logger"
	"github.com/anonto42/nano-comments/backend/internal/router"
	"github.com/anonto42/nano-comments/backend/pkg/config"
	"github.com/anonto42/nano-comments/backend/pkg/firebase"
	"github.com/anonto42/nano-comments/backend/pkg/relay"
	"github.com/anonto42/nano-comments/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", slog.String("error", err.Error()))
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize databases", slog.String("error", err.Error()))
	}
	defer db.CloseDB()

	// Initialize the notification relay
	bus, err := newRelay(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize relay", slog.String("error", err.Error()))
	}
	defer bus.Close()

	// Initialize Firebase
	var firebaseAuth *auth.Client
	if cfg.AuthProvider == "firebase" {
		firebaseAuth, err = firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase", slog.String("error", err.Error()))
		}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	gateway, err := router.SetupRoutes(e, router.Dependencies{
		Config:       cfg,
		DB:           db,
		Relay:        bus,
		FirebaseAuth: firebaseAuth,
	})
	if err != nil {
		logger.Fatal("Failed to set up routes", slog.String("error", err.Error()))
	}
	if err := gateway.Start(ctx); err != nil {
		logger.Fatal("Failed to subscribe to notification relay", slog.String("error", err.Error()))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: promhttp.Handler(),
	}

	go func() {
		logger.Info("Starting metrics server", slog.String("port", cfg.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	go func() {
		logger.Info("Starting server", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("Server exited")
}

// newRelay connects to Redis, or falls back to an in-process relay when REDIS_URL is unset.
// The in-process relay only reaches connections of this replica.
func newRelay(ctx context.Context, cfg *config.Config) (relay.Relay, error) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, using in-process relay; run a single replica only")
		return relay.NewMemory(), nil
	}
	r, err := relay.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to Redis relay")
	return r, nil
}
