package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// ensure defaults kick in with empty env
	os.Unsetenv("WELLNEST_USER_AGENT")
	os.Unsetenv("HTTP_MAX_RETRIES")
	os.Unsetenv("FORUM_CACHE_TTL_MS")
	os.Unsetenv("RESPONSE_CACHE_MAX_ENTRIES")
	os.Unsetenv("RESPONSE_CACHE_EVICT_BATCH")
	ResetForTest()

	cfg := Load()
	if cfg.UserAgent == "" {
		t.Fatalf("expected default UA, got empty")
	}
	if cfg.HTTPMaxRetries != 3 {
		t.Fatalf("expected default retries=3, got %d", cfg.HTTPMaxRetries)
	}
	if cfg.ForumCacheTTL != 2*time.Minute {
		t.Fatalf("expected default forum TTL=2m, got %s", cfg.ForumCacheTTL)
	}
	if cfg.ResponseCacheMax != 500 || cfg.ResponseCacheEvict != 100 {
		t.Fatalf("unexpected response cache bounds: max=%d evict=%d", cfg.ResponseCacheMax, cfg.ResponseCacheEvict)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("TUTORIAL_CACHE_TTL_MS", "5000")
	os.Setenv("RESPONSE_CACHE_MAX_ENTRIES", "50")
	defer os.Unsetenv("TUTORIAL_CACHE_TTL_MS")
	defer os.Unsetenv("RESPONSE_CACHE_MAX_ENTRIES")
	ResetForTest()
	defer ResetForTest()

	cfg := Load()
	if cfg.TutorialCacheTTL != 5*time.Second {
		t.Fatalf("expected tutorial TTL=5s, got %s", cfg.TutorialCacheTTL)
	}
	if cfg.ResponseCacheMax != 50 {
		t.Fatalf("expected response cache max=50, got %d", cfg.ResponseCacheMax)
	}
}

func TestLoadIsCached(t *testing.T) {
	ResetForTest()
	a := Load()
	b := Load()
	if a != b {
		t.Fatal("expected Load to return the cached instance")
	}
}
