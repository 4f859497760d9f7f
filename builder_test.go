package keyrealm

import (
	"testing"
	"time"
)

func TestBuildDefaults(t *testing.T) {
	realm, err := New().Build()
	if err != nil {
		t.Fatalf("Build with defaults failed: %v", err)
	}
	defer realm.Close()

	if realm.config.Token.Bits != 256 {
		t.Fatalf("default token bits = %d, want 256", realm.config.Token.Bits)
	}
	if !realm.config.Token.CacheableLookups {
		t.Fatal("default config should declare lookups cacheable")
	}
}

func TestBuildRejectsNarrowTokens(t *testing.T) {
	cfg := defaultConfig()
	cfg.Token.Bits = 64

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error for sub-128-bit tokens")
	}
}

func TestBuildRateLimitRequiresRedis(t *testing.T) {
	cfg := fastTestConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.MaxAttempts = 3
	cfg.RateLimit.Cooldown = time.Minute

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error when rate limiting is enabled without redis")
	}
}

func TestBuildRejectsInvalidRateLimit(t *testing.T) {
	cfg := fastTestConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.MaxAttempts = 0

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error for zero max attempts")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithConfig(fastTestConfig())

	realm, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer realm.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildRejectsBadPasswordConfig(t *testing.T) {
	cfg := fastTestConfig()
	cfg.Password.SaltLength = 4

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error for short salt")
	}
}
