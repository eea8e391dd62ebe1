package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mushinbuys/leadform/internal/api/router"
	"github.com/mushinbuys/leadform/internal/app/bootstrap"
	appconfig "github.com/mushinbuys/leadform/internal/config"
	"github.com/mushinbuys/leadform/internal/http/handlers"
	httpmiddleware "github.com/mushinbuys/leadform/internal/http/middleware"
	"github.com/mushinbuys/leadform/internal/observability/metrics"
	"github.com/mushinbuys/leadform/internal/session"
	"github.com/mushinbuys/leadform/internal/validation"
	"github.com/mushinbuys/leadform/pkg/logging"
)

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"snapshot_backend", cfg.SnapshotBackend,
	)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := bootstrap.BuildSnapshotBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open snapshot store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	formMetrics := metrics.NewFormMetrics(prometheus.DefaultRegisterer)
	tracker := bootstrap.BuildTracker(cfg, formMetrics, logger)

	secret := cfg.SessionSecret
	if secret == "" {
		logger.Warn("SESSION_SECRET not set; using an ephemeral development secret")
		secret = "leadform-dev-" + time.Now().Format(time.RFC3339Nano)
	}
	sessions := session.NewManager(session.Config{
		Secret:      []byte(secret),
		TTL:         cfg.SessionTTL,
		IdleTimeout: cfg.SessionIdleTimeout,
	}, bootstrap.ControllerFactory(bootstrap.Deps{
		Config:    cfg,
		Snapshots: backend.Store,
		API:       bootstrap.BuildLeadAPI(cfg),
		Tracker:   tracker,
		Capture:   bootstrap.LogCapture(logger),
		Metrics:   formMetrics,
		Logger:    logger,
	}), formMetrics, logger)
	go sessions.Run(ctx)
	go bootstrap.RunSnapshotPruner(ctx, backend.Postgres, cfg.SnapshotTTL, cfg.SnapshotPruneInterval, logger)

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go limiter.Run(ctx)
	}

	r := router.New(&router.Config{
		Logger:             logger,
		FormHandler:        handlers.NewFormHandler(sessions, validation.New(), logger),
		Sessions:           sessions,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LeadAPITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := tracker.Close(shutdownCtx); err != nil {
		logger.Warn("tracking queue not drained", "error", err)
	}
	logger.Info("server stopped")
}
