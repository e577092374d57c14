package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	// AuthJWTSecret signs participant tokens; empty disables auth.
	AuthJWTSecret string

	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	EmotionStateTTL time.Duration

	// LLM providers back the emotion classifier and the rewrite mediator.
	LLMProvider         string
	LLMFallbackProvider string
	BedrockModelID      string
	GeminiAPIKey        string
	GeminiModelID       string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	EmotionClassifierTimeout time.Duration
	MediatorTimeout          time.Duration

	// Assessment thresholds
	IndirectModerateConfidence int
	IndirectHighCount          int

	// Emotional decay after an accepted intervention
	StressResetRoom        int
	StressResetParticipant int
	MomentumReset          int
	StressDeadband         int

	ParseWarnLatency time.Duration
	BatchConcurrency int

	// Per-room limit on mediation calls; zero disables it.
	MediateRateLimit float64
	MediateRateBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		AuthJWTSecret:      getEnv("AUTH_JWT_SECRET", ""),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		EmotionStateTTL: getEnvAsDuration("EMOTION_STATE_TTL", 24*time.Hour),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "none"))),
		LLMFallbackProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:       getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EmotionClassifierTimeout: getEnvAsDuration("EMOTION_CLASSIFIER_TIMEOUT", 8*time.Second),
		MediatorTimeout:          getEnvAsDuration("MEDIATOR_TIMEOUT", 15*time.Second),

		IndirectModerateConfidence: getEnvAsInt("INDIRECT_MODERATE_CONFIDENCE", 60),
		IndirectHighCount:          getEnvAsInt("INDIRECT_HIGH_COUNT", 2),

		StressResetRoom:        getEnvAsInt("STRESS_RESET_ROOM", 15),
		StressResetParticipant: getEnvAsInt("STRESS_RESET_PARTICIPANT", 20),
		MomentumReset:          getEnvAsInt("MOMENTUM_RESET", 10),
		StressDeadband:         getEnvAsInt("STRESS_DEADBAND", 5),

		ParseWarnLatency: getEnvAsDuration("PARSE_WARN_LATENCY", 100*time.Millisecond),
		BatchConcurrency: getEnvAsInt("BATCH_CONCURRENCY", 8),

		MediateRateLimit: getEnvAsFloat("MEDIATE_RATE_LIMIT", 2),
		MediateRateBurst: getEnvAsInt("MEDIATE_RATE_BURST", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
