// Package config loads chief configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database. An empty DatabaseURL selects local SQLite mode.
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string
	LocalMode      bool

	// Redis prediction cache; empty disables Redis.
	RedisURL           string
	PredictionCacheTTL time.Duration

	// RabbitMQ; empty keeps events in-process.
	RabbitMQURL string

	// Scheduling and prediction policy
	Timezone                  string
	Location                  *time.Location
	SchedulerSlackMinutes     int
	NotifyConfidenceThreshold int
	CatalogPath               string

	// Outbox
	OutboxPollInterval    time.Duration
	OutboxBatchSize       int
	OutboxMaxRetries      int
	OutboxRetentionDays   int
	OutboxCleanupInterval time.Duration

	// Worker
	WorkerHTTPAddr         string
	NotifySweepInterval    time.Duration
	NotifySweepConcurrency int
	NotifyScopes           []string

	// Alternative plan generator
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	NarrativeTimeout    time.Duration
	NarrativeRatePerSec float64

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load reads configuration. It fails only on values that cannot be
// interpreted, such as an unknown time zone.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", ""),

		RedisURL:           getEnv("REDIS_URL", ""),
		PredictionCacheTTL: getDurationEnv("PREDICTION_CACHE_TTL", time.Hour),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		Timezone:                  getEnv("CHIEF_TIMEZONE", "UTC"),
		SchedulerSlackMinutes:     getIntEnv("SCHEDULER_SLACK_MINUTES", 10),
		NotifyConfidenceThreshold: getIntEnv("NOTIFY_CONFIDENCE_THRESHOLD", 50),
		CatalogPath:               getEnv("CATALOG_PATH", ""),

		OutboxPollInterval:    getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:       getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:      getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:   getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval: getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),

		WorkerHTTPAddr:         getEnv("WORKER_HTTP_ADDR", "0.0.0.0:8081"),
		NotifySweepInterval:    getDurationEnv("NOTIFY_SWEEP_INTERVAL", 5*time.Minute),
		NotifySweepConcurrency: getIntEnv("NOTIFY_SWEEP_CONCURRENCY", 8),
		NotifyScopes:           getListEnv("NOTIFY_SCOPES"),

		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		NarrativeTimeout:    getDurationEnv("NARRATIVE_TIMEOUT", 20*time.Second),
		NarrativeRatePerSec: getFloatEnv("NARRATIVE_RATE_LIMIT", 1),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	cfg.LocalMode = cfg.DatabaseURL == "" || cfg.DatabaseDriver == "sqlite"
	if cfg.DatabaseDriver == "" {
		if cfg.LocalMode {
			cfg.DatabaseDriver = "sqlite"
		} else {
			cfg.DatabaseDriver = "postgres"
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CHIEF_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.SchedulerSlackMinutes < 0 {
		return nil, fmt.Errorf("SCHEDULER_SLACK_MINUTES must not be negative, got %d", cfg.SchedulerSlackMinutes)
	}
	if cfg.NotifyConfidenceThreshold < 0 || cfg.NotifyConfidenceThreshold > 100 {
		return nil, fmt.Errorf("NOTIFY_CONFIDENCE_THRESHOLD must be within 0..100, got %d", cfg.NotifyConfidenceThreshold)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// NarrativeEnabled reports whether an alternative plan generator is configured.
func (c *Config) NarrativeEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
