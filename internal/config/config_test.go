package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "SNAPSHOT_BACKEND", "SESSION_TTL", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "LEAD_API_BASE_URL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SnapshotBackend != SnapshotMemory {
		t.Fatalf("expected memory snapshot backend, got %s", cfg.SnapshotBackend)
	}
	if cfg.SnapshotKeyPrefix != "leadFormData" {
		t.Fatalf("expected default key prefix, got %s", cfg.SnapshotKeyPrefix)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 10 {
		t.Fatalf("expected default rate, got %v", cfg.RateLimitRPS)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LEAD_API_BASE_URL", "https://api.example.com/")
	t.Setenv("LEAD_API_TIMEOUT", "3s")
	t.Setenv("SNAPSHOT_BACKEND", " Redis ")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TRACKING_QUEUE_SIZE", "not-a-number")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.LeadAPIBaseURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.LeadAPIBaseURL)
	}
	if cfg.LeadAPITimeout != 3*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.LeadAPITimeout)
	}
	if cfg.SnapshotBackend != SnapshotRedis || !cfg.RedisTLSEnabled {
		t.Fatalf("expected redis backend with TLS, got %s tls=%v", cfg.SnapshotBackend, cfg.RedisTLSEnabled)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate override, got %v", cfg.RateLimitRPS)
	}
	if cfg.TrackingQueueSize != 256 {
		t.Fatalf("expected bad int to fall back, got %d", cfg.TrackingQueueSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Env:             "production",
		SnapshotBackend: "dynamo",
		LeadAPIBaseURL:  "http://localhost",
		GAMeasurementID: "G-123",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"SNAPSHOT_BACKEND", "SESSION_SECRET", "GA_API_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %q", want, err.Error())
		}
	}

	cfg = &Config{SnapshotBackend: SnapshotPostgres, LeadAPIBaseURL: "http://localhost"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}
