package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.SessionCookie != "sweatmarket_session" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.EnforceSender {
		t.Fatalf("expected enforce_sender to default to true")
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "addr: \":9000\"\nws_rate_limit: 10\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SWEATMARKET_LOG_LEVEL", "warn")
	t.Setenv("SWEATMARKET_WS_IDLE_TIMEOUT", "30s")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.WSRateLimit != 10 {
		t.Fatalf("expected ws_rate_limit 10, got %d", cfg.WSRateLimit)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env to override file, got %q", cfg.LogLevel)
	}
	if cfg.WSIdleTimeout != 30*time.Second {
		t.Fatalf("expected idle timeout from env, got %v", cfg.WSIdleTimeout)
	}
}

func TestUpdateFromKeepsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":7000", DatabasePath: "other.db"})

	if cfg.Addr != ":7000" || cfg.DatabasePath != "other.db" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("zero override should not clear shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}
