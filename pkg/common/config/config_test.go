package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MERGE_EVENT_TOPIC", "")
	t.Setenv("MENU_CACHE_TTL", "")

	cfg := Load()
	if cfg.ServerPort != "8080" {
		t.Errorf("unexpected default port: %q", cfg.ServerPort)
	}
	if cfg.MergeEventTopic != "patient.merged" {
		t.Errorf("unexpected default merge topic: %q", cfg.MergeEventTopic)
	}
	if cfg.MenuCacheTTL != 10*time.Minute {
		t.Errorf("unexpected default menu cache TTL: %v", cfg.MenuCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MERGE_EVENT_TOPIC", "patients.merge.v2")
	t.Setenv("MENU_CACHE_TTL", "5m")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg := Load()
	if cfg.ServerPort != "9090" {
		t.Errorf("unexpected port: %q", cfg.ServerPort)
	}
	if cfg.MergeEventTopic != "patients.merge.v2" {
		t.Errorf("unexpected merge topic: %q", cfg.MergeEventTopic)
	}
	if cfg.MenuCacheTTL != 5*time.Minute {
		t.Errorf("unexpected menu cache TTL: %v", cfg.MenuCacheTTL)
	}
	if cfg.RateLimitRPS != 50 {
		t.Errorf("malformed int must fall back to default, got %d", cfg.RateLimitRPS)
	}
}
