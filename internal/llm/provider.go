package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderOptions carries credentials for every supported provider; New picks
// the ones it needs.
type ProviderOptions struct {
	Bedrock        BedrockConverseAPI
	BedrockModelID string
	GeminiAPIKey   string
	GeminiModelID  string
	OpenAI         OpenAIConfig
}

// New builds the named provider. "none" and "" return a nil Client and no
// error so callers can run without a model.
func New(ctx context.Context, provider string, opts ProviderOptions) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderBedrock:
		if opts.Bedrock == nil {
			return nil, fmt.Errorf("llm: bedrock provider requires an aws client")
		}
		return NewBedrockClient(opts.Bedrock, opts.BedrockModelID), nil
	case ProviderGemini:
		c, err := NewGeminiClient(ctx, opts.GeminiAPIKey, opts.GeminiModelID)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderOpenAI:
		c, err := NewOpenAIClient(opts.OpenAI)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", provider)
	}
}
