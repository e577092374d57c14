package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("INDIRECT_MODERATE_CONFIDENCE", "")
	t.Setenv("STRESS_RESET_ROOM", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "none" {
		t.Fatalf("expected llm provider none by default, got %s", cfg.LLMProvider)
	}
	if cfg.IndirectModerateConfidence != 60 || cfg.IndirectHighCount != 2 {
		t.Fatalf("unexpected assessment thresholds %d/%d", cfg.IndirectModerateConfidence, cfg.IndirectHighCount)
	}
	if cfg.StressResetRoom != 15 || cfg.StressResetParticipant != 20 {
		t.Fatalf("unexpected stress reset defaults %d/%d", cfg.StressResetRoom, cfg.StressResetParticipant)
	}
	if cfg.EmotionClassifierTimeout != 8*time.Second {
		t.Fatalf("expected default classifier timeout, got %s", cfg.EmotionClassifierTimeout)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.AuthJWTSecret != "" {
		t.Fatalf("expected auth disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("INDIRECT_MODERATE_CONFIDENCE", "70")
	t.Setenv("STRESS_RESET_ROOM", "18")
	t.Setenv("EMOTION_STATE_TTL", "2h")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected normalized provider, got %q", cfg.LLMProvider)
	}
	if cfg.IndirectModerateConfidence != 70 {
		t.Fatalf("expected threshold override, got %d", cfg.IndirectModerateConfidence)
	}
	if cfg.StressResetRoom != 18 {
		t.Fatalf("expected stress reset override, got %d", cfg.StressResetRoom)
	}
	if cfg.EmotionStateTTL != 2*time.Hour {
		t.Fatalf("expected ttl override, got %s", cfg.EmotionStateTTL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.AuthJWTSecret != "s3cret" {
		t.Fatalf("expected auth secret override, got %q", cfg.AuthJWTSecret)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("INDIRECT_HIGH_COUNT", "two")
	t.Setenv("PARSE_WARN_LATENCY", "soon")
	t.Setenv("MEDIATE_RATE_LIMIT", "fast")
	cfg := Load()
	if cfg.IndirectHighCount != 2 {
		t.Fatalf("expected default on malformed int, got %d", cfg.IndirectHighCount)
	}
	if cfg.ParseWarnLatency != 100*time.Millisecond {
		t.Fatalf("expected default on malformed duration, got %s", cfg.ParseWarnLatency)
	}
	if cfg.MediateRateLimit != 2 {
		t.Fatalf("expected default on malformed float, got %v", cfg.MediateRateLimit)
	}
}

func TestLoadRateLimit(t *testing.T) {
	t.Setenv("MEDIATE_RATE_LIMIT", "0.5")
	t.Setenv("MEDIATE_RATE_BURST", "3")
	cfg := Load()
	if cfg.MediateRateLimit != 0.5 || cfg.MediateRateBurst != 3 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.MediateRateLimit, cfg.MediateRateBurst)
	}
}
