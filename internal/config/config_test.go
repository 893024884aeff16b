package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.UploadMaxImageSize != 10*1024*1024 {
		t.Errorf("UploadMaxImageSize = %d, want 10MiB", cfg.UploadMaxImageSize)
	}
	if cfg.JWTAccessTokenDuration != time.Hour {
		t.Errorf("JWTAccessTokenDuration = %v, want 1h", cfg.JWTAccessTokenDuration)
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Error("AllowedOrigins should have defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("UPLOAD_MAX_BATCH", "5")
	t.Setenv("RATE_LIMIT_DURATION", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := New()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.UploadMaxBatch != 5 {
		t.Errorf("UploadMaxBatch = %d, want 5", cfg.UploadMaxBatch)
	}
	if cfg.RateLimitDuration != 30*time.Second {
		t.Errorf("RateLimitDuration = %v, want 30s", cfg.RateLimitDuration)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := New()
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want default 0", cfg.RedisDB)
	}
}
