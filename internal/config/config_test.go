// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/registry")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("read timeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("auto_migrate should default to true")
	}
	if cfg.JWT.AccessTokenExpire != 15*time.Minute {
		t.Errorf("access token expire = %v, want 15m", cfg.JWT.AccessTokenExpire)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should default to enabled")
	}
	if cfg.Otel.Enabled {
		t.Error("otel should default to disabled")
	}
	if !cfg.IsDevelopment() {
		t.Errorf("environment = %q, want development", cfg.App.Environment)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
log:
  level: debug
  format: text
rate_limit:
  requests: 50
  burst: 10
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090 from file", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.RateLimit.Requests != 50 || cfg.RateLimit.Burst != 10 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	// untouched keys keep their defaults
	if cfg.Server.IdleTimeout != 120*time.Second {
		t.Errorf("idle timeout = %v, want default", cfg.Server.IdleTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "7777")
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, env must win over file", cfg.Server.Port)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level = %q, want error", cfg.Log.Level)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env: map[string]string{
				"REDIS_URL": "redis://localhost:6379/0",
			},
		},
		{
			name: "missing redis url",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost:5432/registry",
			},
		},
		{
			name: "cors wildcard with credentials",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost:5432/registry",
				"REDIS_URL":    "redis://localhost:6379/0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var path string
			if tt.name == "cors wildcard with credentials" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				yaml := "cors:\n  allowed_origins:\n    - \"*\"\n  allow_credentials: true\n"
				if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
					t.Fatalf("write config: %v", err)
				}
			}

			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAddress(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8443}
	if got := s.Address(); got != "127.0.0.1:8443" {
		t.Errorf("Address() = %q", got)
	}
}
