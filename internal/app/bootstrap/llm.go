package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	appconfig "github.com/wolfman30/coparent-mediator/internal/config"
	"github.com/wolfman30/coparent-mediator/internal/llm"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

// NeedsBedrock reports whether either configured provider is Bedrock, so
// callers only load AWS config when it is used.
func NeedsBedrock(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return normalizeProvider(cfg.LLMProvider) == llm.ProviderBedrock ||
		normalizeProvider(cfg.LLMFallbackProvider) == llm.ProviderBedrock
}

// BuildLLMClient wires the primary provider and, when configured, a different
// fallback provider behind it. It returns a nil client when no provider is
// configured. The cleanup func releases provider connections.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, bedrock llm.BedrockConverseAPI, logger *logging.Logger) (llm.Client, func(), error) {
	if cfg == nil {
		return nil, func() {}, fmt.Errorf("bootstrap: config is required")
	}
	logger = logging.OrDefault(logger)
	if ctx == nil {
		ctx = context.Background()
	}

	opts := llm.ProviderOptions{
		Bedrock:        bedrock,
		BedrockModelID: cfg.BedrockModelID,
		GeminiAPIKey:   cfg.GeminiAPIKey,
		GeminiModelID:  cfg.GeminiModelID,
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		},
	}

	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	build := func(provider string) (llm.Client, error) {
		client, err := llm.New(ctx, provider, opts)
		if err != nil {
			return nil, err
		}
		if c, ok := client.(io.Closer); ok {
			closers = append(closers, c)
		}
		return client, nil
	}

	primaryName := normalizeProvider(cfg.LLMProvider)
	fallbackName := normalizeProvider(cfg.LLMFallbackProvider)

	primary, err := build(primaryName)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("bootstrap: primary llm: %w", err)
	}
	if fallbackName == "" || fallbackName == llm.ProviderNone || fallbackName == primaryName {
		if primary == nil {
			logger.Info("no LLM provider configured; using fallback templates and neutral emotion")
		} else {
			logger.Info("LLM provider configured", "provider", primaryName)
		}
		return primary, cleanup, nil
	}

	fallback, err := build(fallbackName)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("bootstrap: fallback llm: %w", err)
	}
	if primary == nil {
		logger.Warn("no primary LLM provider; using fallback provider directly", "provider", fallbackName)
		return fallback, cleanup, nil
	}
	logger.Info("LLM provider configured with fallback", "provider", primaryName, "fallback", fallbackName)
	return llm.NewFallbackClient(primary, fallback, logger), cleanup, nil
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
