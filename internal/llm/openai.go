package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig configures an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient implements Client over chat completions. Requests carrying a
// Schema use strict JSON schema output.
type OpenAIClient struct {
	openai openai.Client
	model  string
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: openai api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{openai: openai.NewClient(opts...), model: model}, nil
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	params, err := c.params(req)
	if err != nil {
		return Response{}, err
	}
	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("llm: openai chat: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Response{}, fmt.Errorf("llm: openai: %w", ErrEmptyResponse)
	}
	return Response{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		StopReason: resp.Choices[0].FinishReason,
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}, nil
}

func (c *OpenAIClient) params(req Request) (openai.ChatCompletionNewParams, error) {
	model := c.model
	if strings.TrimSpace(req.Model) != "" {
		model = req.Model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.System)+len(req.Messages))
	for _, s := range req.System {
		if strings.TrimSpace(s) != "" {
			messages = append(messages, openai.SystemMessage(s))
		}
	}
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(content))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("llm: unsupported role %q", msg.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature >= 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(float64(req.TopP))
	}
	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        name,
					Description: openai.String("Structured response schema"),
					Schema:      req.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	}
	return params, nil
}
