package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/givehope")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.GlobalRateLimit != "100-M" {
		t.Errorf("GlobalRateLimit = %q, want 100-M", cfg.GlobalRateLimit)
	}
	if cfg.PresetReloadInterval != time.Minute {
		t.Errorf("PresetReloadInterval = %v, want 1m", cfg.PresetReloadInterval)
	}
	if cfg.RabbitMQPrefetch != 1 {
		t.Errorf("RabbitMQPrefetch = %d, want 1", cfg.RabbitMQPrefetch)
	}
	if cfg.RabbitMQURL != "" {
		t.Errorf("RabbitMQURL should default to empty, got %q", cfg.RabbitMQURL)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PRESET_RELOAD_INTERVAL", "30s")
	t.Setenv("RABBITMQ_PREFETCH", "8")
	t.Setenv("ENABLE_HSTS", "true")
	t.Setenv("SERVER_DEBUG_MODE", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.PresetReloadInterval != 30*time.Second {
		t.Errorf("PresetReloadInterval = %v", cfg.PresetReloadInterval)
	}
	if cfg.RabbitMQPrefetch != 8 {
		t.Errorf("RabbitMQPrefetch = %d", cfg.RabbitMQPrefetch)
	}
	if !cfg.EnableHSTS || !cfg.ServerDebugMode {
		t.Error("boolean overrides not applied")
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("PRESET_RELOAD_INTERVAL", "soonish")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PresetReloadInterval != time.Minute {
		t.Errorf("invalid duration should fall back to default, got %v", cfg.PresetReloadInterval)
	}
}
