// Package config provides application configuration management from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	StoreDriver      string
	DataDir          string
	APIPort          string
	APIHost          string
	LogLevel         string
	Env              string
	DevAuthBypass    bool
	AdminSecret      string
	RateLimitEnabled bool
	WorkerInterval   time.Duration
	WorkerMetrics    string
	SeedFile         string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
		DataDir:          getEnv("DATA_DIR", filepath.Join(".", "data")),
		APIPort:          getEnv("API_PORT", "8080"),
		APIHost:          getEnv("API_HOST", "0.0.0.0"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Env:              strings.ToLower(getEnv("ENV", "dev")),
		DevAuthBypass:    strings.ToLower(getEnv("DEV_AUTH_BYPASS", "false")) == "true",
		AdminSecret:      getEnv("ADMIN_SECRET", ""),
		RateLimitEnabled: strings.ToLower(getEnv("RATE_LIMIT_ENABLED", "true")) != "false",
		WorkerMetrics:    getEnv("WORKER_METRICS_ADDR", ":9091"),
		SeedFile:         getEnv("SEED_FILE", ""),
	}

	interval, err := time.ParseDuration(getEnv("WORKER_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("WORKER_INTERVAL must be positive, got %s", interval)
	}
	cfg.WorkerInterval = interval

	switch cfg.StoreDriver {
	case DriverFile:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDev reports whether the service runs with ENV=dev
func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

// DevBypassAllowed reports whether requests without credentials may act as
// the first user. Both a non-production ENV and DEV_AUTH_BYPASS=true are required.
func (c *Config) DevBypassAllowed() bool {
	return !c.IsProduction() && c.DevAuthBypass
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
