package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.DBType != "sqlite" {
		t.Errorf("expected sqlite, got %q", cfg.DBType)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("expected 1m sweep interval, got %v", cfg.SweepInterval)
	}
	if cfg.SweepGrace != time.Hour {
		t.Errorf("expected 1h grace, got %v", cfg.SweepGrace)
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a development JWT secret")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.SweepInterval)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("expected env secret, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfigProductionNeedsSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without JWT_SECRET in production")
	}
}
