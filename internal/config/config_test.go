package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.MaxWorkers != 6 {
		t.Fatalf("expected 6 workers, got %d", cfg.MaxWorkers)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", cfg.MaxRetries)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.FailThreshold != 0.10 {
		t.Fatalf("expected 0.10 threshold, got %v", cfg.FailThreshold)
	}
	if cfg.WindowDays != 365 {
		t.Fatalf("expected 365 window days, got %d", cfg.WindowDays)
	}
	if cfg.UserAgent == "" {
		t.Fatal("expected a default user agent")
	}
	if cfg.Breaker.Enabled {
		t.Fatal("breaker should be disabled by default")
	}
	if got := cfg.CacheDir; got != filepath.Join(".", "cache") {
		t.Fatalf("unexpected default cache dir %q", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_USER_AGENT", "rankings-bot/2.0")
	t.Setenv("MAX_WORKERS", "3")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "12")
	t.Setenv("DATA_DIR", "/var/lib/youthrank")
	t.Setenv("CACHE_DIR", "/tmp/profiles")
	t.Setenv("UPSTREAM_CB_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.UserAgent != "rankings-bot/2.0" {
		t.Fatalf("unexpected user agent %q", cfg.UserAgent)
	}
	if cfg.MaxWorkers != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.MaxWorkers)
	}
	if cfg.HTTPTimeout != 12*time.Second {
		t.Fatalf("expected 12s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.CacheDir != "/tmp/profiles" {
		t.Fatalf("unexpected cache dir %q", cfg.CacheDir)
	}
	if cfg.GoldDir() != "/var/lib/youthrank/gold" {
		t.Fatalf("unexpected gold dir %q", cfg.GoldDir())
	}
	if !cfg.Breaker.Enabled {
		t.Fatal("expected breaker enabled")
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Run("non-numeric workers", func(t *testing.T) {
		t.Setenv("MAX_WORKERS", "many")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for non-numeric MAX_WORKERS")
		}
	})

	t.Run("workers out of range", func(t *testing.T) {
		t.Setenv("MAX_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatal("expected validation error for MAX_WORKERS=0")
		}
	})

	t.Run("threshold above one", func(t *testing.T) {
		t.Setenv("FAIL_THRESHOLD", "1.5")
		if _, err := Load(); err == nil {
			t.Fatal("expected validation error for FAIL_THRESHOLD=1.5")
		}
	})

	t.Run("window too small", func(t *testing.T) {
		t.Setenv("WINDOW_DAYS", "7")
		if _, err := Load(); err == nil {
			t.Fatal("expected validation error for WINDOW_DAYS=7")
		}
	})
}
