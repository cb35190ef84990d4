package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Test with default values
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIPort != "8080" {
		t.Errorf("expected default APIPort=8080, got %s", cfg.APIPort)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel=info, got %s", cfg.LogLevel)
	}

	if cfg.StoreDriver != DriverFile {
		t.Errorf("expected default StoreDriver=file, got %s", cfg.StoreDriver)
	}

	if cfg.WorkerInterval != 5*time.Minute {
		t.Errorf("expected default WorkerInterval=5m, got %s", cfg.WorkerInterval)
	}

	if cfg.WorkerMetrics != ":9091" {
		t.Errorf("expected default WorkerMetrics=:9091, got %s", cfg.WorkerMetrics)
	}

	if !cfg.RateLimitEnabled {
		t.Error("expected rate limiting enabled by default")
	}

	if cfg.DevAuthBypass {
		t.Error("expected dev auth bypass disabled by default")
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_AUTH_BYPASS", "true")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("WORKER_INTERVAL", "30s")
	t.Setenv("WORKER_METRICS_ADDR", "127.0.0.1:9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIPort != "9000" {
		t.Errorf("expected APIPort=9000, got %s", cfg.APIPort)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", cfg.LogLevel)
	}

	if !cfg.DevAuthBypass {
		t.Error("expected DevAuthBypass=true")
	}

	if cfg.RateLimitEnabled {
		t.Error("expected RateLimitEnabled=false")
	}

	if cfg.WorkerInterval != 30*time.Second {
		t.Errorf("expected WorkerInterval=30s, got %s", cfg.WorkerInterval)
	}

	if cfg.WorkerMetrics != "127.0.0.1:9100" {
		t.Errorf("expected WorkerMetrics=127.0.0.1:9100, got %s", cfg.WorkerMetrics)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"bad interval", map[string]string{"WORKER_INTERVAL": "soon"}},
		{"negative interval", map[string]string{"WORKER_INTERVAL": "-1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ENV", "production")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.IsProduction() || cfg.IsDev() {
		t.Errorf("expected production env, got %s", cfg.Env)
	}
}

func TestDevBypassAllowed(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		bypass string
		want   bool
	}{
		{"flag unset", "development", "", false},
		{"flag false", "development", "false", false},
		{"production blocks flag", "production", "true", false},
		{"both gates open", "development", "true", true},
		{"default env", "", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			t.Setenv("DEV_AUTH_BYPASS", tt.bypass)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if got := cfg.DevBypassAllowed(); got != tt.want {
				t.Errorf("DevBypassAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}
