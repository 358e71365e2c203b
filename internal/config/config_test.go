package config

import (
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("want 1h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.BuildsAPIURL != "https://discord.sale/api/builds" {
		t.Fatalf("unexpected api url %q", cfg.BuildsAPIURL)
	}
	if cfg.MessageParseMode != "Markdown" {
		t.Fatalf("unexpected parse mode %q", cfg.MessageParseMode)
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("ADMIN_USER", "42")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SessionTTL != 15*time.Minute || cfg.AdminUserID != 42 || cfg.RedisURL == "" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestParse_BadDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestParse_RejectsOtherParseModes(t *testing.T) {
	for _, mode := range []string{"MarkdownV2", "HTML", "markdown"} {
		t.Setenv("MESSAGE_PARSE_MODE", mode)
		if _, err := Parse(); err == nil {
			t.Fatalf("parse mode %q should be rejected", mode)
		}
	}
}
