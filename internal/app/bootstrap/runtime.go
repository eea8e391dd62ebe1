// Package bootstrap assembles the runtime collaborators from configuration.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/mushinbuys/leadform/internal/config"
	"github.com/mushinbuys/leadform/internal/form"
	"github.com/mushinbuys/leadform/internal/leadapi"
	"github.com/mushinbuys/leadform/internal/leads"
	"github.com/mushinbuys/leadform/internal/observability/metrics"
	"github.com/mushinbuys/leadform/internal/session"
	"github.com/mushinbuys/leadform/internal/snapshot"
	"github.com/mushinbuys/leadform/internal/tracking"
	"github.com/mushinbuys/leadform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// SnapshotBackend is the store chosen by SNAPSHOT_BACKEND plus whatever must
// be closed on shutdown.
type SnapshotBackend struct {
	Store    snapshot.Store
	Postgres *snapshot.PostgresStore
	closers  []func()
}

// Close releases the backend's connections.
func (b *SnapshotBackend) Close() {
	for _, fn := range b.closers {
		fn()
	}
}

// BuildSnapshotBackend opens the configured snapshot store.
func BuildSnapshotBackend(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*SnapshotBackend, error) {
	switch cfg.SnapshotBackend {
	case appconfig.SnapshotRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, fmt.Errorf("bootstrap: redis unavailable at %s", cfg.RedisAddr)
		}
		return &SnapshotBackend{
			Store:   snapshot.NewRedisStore(client, cfg.SnapshotTTL),
			closers: []func(){func() { _ = client.Close() }},
		}, nil
	case appconfig.SnapshotPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: open postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		store := snapshot.NewPostgresStore(pool)
		return &SnapshotBackend{Store: store, Postgres: store, closers: []func(){pool.Close}}, nil
	case appconfig.SnapshotMemory, "":
		logger.Warn("using in-memory snapshots; form progress is lost on restart")
		return &SnapshotBackend{Store: snapshot.NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}

// RunSnapshotPruner deletes postgres snapshots older than the TTL on each
// interval until ctx is done.
func RunSnapshotPruner(ctx context.Context, store *snapshot.PostgresStore, ttl, interval time.Duration, logger *logging.Logger) {
	if store == nil || ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Prune(ctx, time.Now().Add(-ttl))
			if err != nil {
				logger.Warn("snapshot prune failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("pruned stale form snapshots", "count", n)
			}
		}
	}
}

// BuildLeadAPI returns the intake client.
func BuildLeadAPI(cfg *appconfig.Config) *leadapi.Client {
	return leadapi.New(&http.Client{Timeout: cfg.LeadAPITimeout}, leadapi.Config{
		BaseURL: cfg.LeadAPIBaseURL,
		Timeout: cfg.LeadAPITimeout,
	})
}

// BuildTracker fans events out to metrics and, when configured, GA4. The
// result must be closed on shutdown to flush queued events.
func BuildTracker(cfg *appconfig.Config, m *metrics.FormMetrics, logger *logging.Logger) *tracking.Async {
	sinks := tracking.Multi{tracking.NewMetricsTracker(m)}
	ga := tracking.NewGA4(&http.Client{Timeout: 5 * time.Second}, tracking.GA4Config{
		MeasurementID: cfg.GAMeasurementID,
		APISecret:     cfg.GAAPISecret,
	})
	if ga.Enabled() {
		sinks = append(sinks, ga)
	} else {
		logger.Info("GA4 tracking disabled")
	}
	return tracking.NewAsync(sinks, cfg.TrackingQueueSize, logger)
}

// LogCapture records in-progress leads past the first step at debug level.
func LogCapture(logger *logging.Logger) form.CaptureHook {
	return form.CaptureFunc(func(_ context.Context, s leads.FormState) {
		logger.Debug("lead progress captured",
			"lead_id", s.LeadID,
			"has_contact", s.FirstName != "" && s.Email != "",
			"condition", s.PropertyCondition,
			"timeframe", s.Timeframe,
		)
	})
}

// Deps are the shared collaborators every form controller receives.
type Deps struct {
	Config    *appconfig.Config
	Snapshots snapshot.Store
	API       form.LeadAPI
	Tracker   tracking.Tracker
	Capture   form.CaptureHook
	Metrics   *metrics.FormMetrics
	Logger    *logging.Logger
}

// ControllerFactory builds per-session controllers bound to their snapshot key.
func ControllerFactory(d Deps) session.Factory {
	return func(ctx context.Context, sessionID string) *form.Controller {
		key := snapshot.KeyFor(d.Config.SnapshotKeyPrefix, sessionID)
		return form.New(ctx, form.Options{
			SessionID: sessionID,
			Snapshots: snapshot.Bind(d.Snapshots, key),
			API:       d.API,
			Tracker:   d.Tracker,
			Capture:   d.Capture,
			Metrics:   d.Metrics,
			Logger:    d.Logger,

			Conversion: tracking.ConversionTarget{
				ID:    d.Config.AdsConversionID,
				Label: d.Config.AdsConversionLabel,
			},
		})
	}
}
