// Package llm is the transport to hosted language models used by the emotion
// classifier and the rewrite mediator.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider names accepted by config.
const (
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderNone    = "none"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// Request is a provider-neutral completion request. When Schema is set the
// provider is asked for JSON matching it; providers without native schema
// support only switch to JSON output.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
	SchemaName  string
	Schema      any
}

type Response struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
