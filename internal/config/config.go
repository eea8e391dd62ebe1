package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot backends.
const (
	SnapshotMemory   = "memory"
	SnapshotRedis    = "redis"
	SnapshotPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Lead intake API
	LeadAPIBaseURL string
	LeadAPITimeout time.Duration

	// Snapshot persistence
	SnapshotBackend       string
	SnapshotKeyPrefix     string
	SnapshotTTL           time.Duration
	SnapshotPruneInterval time.Duration
	RedisAddr             string
	RedisPassword         string
	RedisTLSEnabled       bool
	DatabaseURL           string

	// Sessions
	SessionSecret      string
	SessionTTL         time.Duration
	SessionIdleTimeout time.Duration

	// HTTP edge
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Analytics
	GAMeasurementID    string
	GAAPISecret        string
	AdsConversionID    string
	AdsConversionLabel string
	TrackingQueueSize  int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LeadAPIBaseURL: strings.TrimRight(getEnv("LEAD_API_BASE_URL", "http://localhost:3000"), "/"),
		LeadAPITimeout: getEnvAsDuration("LEAD_API_TIMEOUT", 10*time.Second),

		SnapshotBackend:       strings.ToLower(strings.TrimSpace(getEnv("SNAPSHOT_BACKEND", SnapshotMemory))),
		SnapshotKeyPrefix:     getEnv("SNAPSHOT_KEY_PREFIX", "leadFormData"),
		SnapshotTTL:           getEnvAsDuration("SNAPSHOT_TTL", 30*24*time.Hour),
		SnapshotPruneInterval: getEnvAsDuration("SNAPSHOT_PRUNE_INTERVAL", time.Hour),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisTLSEnabled:       getEnvAsBool("REDIS_TLS", false),
		DatabaseURL:           getEnv("DATABASE_URL", ""),

		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionTTL:         getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		SessionIdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		GAMeasurementID:    getEnv("GA_MEASUREMENT_ID", ""),
		GAAPISecret:        getEnv("GA_API_SECRET", ""),
		AdsConversionID:    getEnv("GOOGLE_ADS_ID", ""),
		AdsConversionLabel: getEnv("GOOGLE_ADS_CONVERSION_LABEL", ""),
		TrackingQueueSize:  getEnvAsInt("TRACKING_QUEUE_SIZE", 256),
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	var errs []error
	switch c.SnapshotBackend {
	case SnapshotMemory:
	case SnapshotRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis snapshot backend"))
		}
	case SnapshotPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres snapshot backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SNAPSHOT_BACKEND %q", c.SnapshotBackend))
	}
	if c.IsProduction() && c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	}
	if c.LeadAPIBaseURL == "" {
		errs = append(errs, errors.New("LEAD_API_BASE_URL is required"))
	}
	if (c.GAMeasurementID == "") != (c.GAAPISecret == "") {
		errs = append(errs, errors.New("GA_MEASUREMENT_ID and GA_API_SECRET must be set together"))
	}
	return errors.Join(errs...)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
