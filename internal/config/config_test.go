package config

import (
	"os"
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg = applyDefaults(cfg)

	if cfg.HTTP.Addr != ":8081" {
		t.Errorf("expected :8081, got %s", cfg.HTTP.Addr)
	}
	if cfg.Refresh.Interval != 5*time.Minute {
		t.Errorf("expected 5m refresh interval, got %v", cfg.Refresh.Interval)
	}
	if cfg.Simulation.Interval != time.Minute {
		t.Errorf("expected 1m simulation interval, got %v", cfg.Simulation.Interval)
	}
	if cfg.Simulation.Volatility != 5.0 {
		t.Errorf("expected default volatility 5.0, got %v", cfg.Simulation.Volatility)
	}
	if cfg.PriceFeed.FetchTimeout != 15*time.Second {
		t.Errorf("expected 15s fetch timeout, got %v", cfg.PriceFeed.FetchTimeout)
	}
	if cfg.Store.Backend != "postgres" {
		t.Errorf("expected postgres backend, got %s", cfg.Store.Backend)
	}
}

func TestConfig_CooldownDefaultsToInterval(t *testing.T) {
	cfg := Config{}
	cfg.Refresh.Interval = 2 * time.Minute
	cfg = applyDefaults(cfg)

	if cfg.Refresh.Cooldown != 2*time.Minute {
		t.Errorf("expected cooldown to default to refresh interval, got %v", cfg.Refresh.Cooldown)
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("REFRESH_INTERVAL", "90s")
	os.Setenv("STORE_BACKEND", "sqlite")
	defer func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("REFRESH_INTERVAL")
		os.Unsetenv("STORE_BACKEND")
	}()

	cfg := Config{}
	cfg = applyEnv(cfg)

	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.HTTP.Addr)
	}
	if cfg.Refresh.Interval != 90*time.Second {
		t.Errorf("expected 90s, got %v", cfg.Refresh.Interval)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.Store.Backend)
	}
}

func TestConfig_LoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFromFile("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if cfg.HTTP.Addr == "" {
		t.Error("expected defaults to be applied")
	}
}
