package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = in
	return f.out, f.err
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(10), OutputTokens: aws.Int32(5), TotalTokens: aws.Int32(15)},
	}
}

func TestBedrockClient_Complete(t *testing.T) {
	api := &fakeConverse{out: textOutput("  {\"ok\":true}  ")}
	c := NewBedrockClient(api, "anthropic.claude-3-haiku")

	resp, err := c.Complete(context.Background(), Request{
		System: []string{"be brief", " "},
		Messages: []Message{
			{Role: RoleSystem, Content: "extra system"},
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: ""},
		},
		MaxTokens:   100,
		Temperature: 0,
		Schema:      map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Text)
	assert.Equal(t, int32(15), resp.Usage.TotalTokens)
	assert.Equal(t, "end_turn", resp.StopReason)

	require.NotNil(t, api.input)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.input.ModelId))
	assert.Len(t, api.input.System, 3, "system, json instruction, inline system message")
	assert.Len(t, api.input.Messages, 1)
	require.NotNil(t, api.input.InferenceConfig)
	assert.Equal(t, int32(100), aws.ToInt32(api.input.InferenceConfig.MaxTokens))
}

func TestBedrockClient_Errors(t *testing.T) {
	_, err := NewBedrockClient(&fakeConverse{}, "").Complete(context.Background(), Request{})
	assert.Error(t, err)

	_, err = NewBedrockClient(&fakeConverse{out: textOutput("hi")}, "m").Complete(context.Background(), Request{
		Messages: []Message{{Role: "tool", Content: "x"}},
	})
	assert.ErrorContains(t, err, "unsupported role")

	_, err = NewBedrockClient(&fakeConverse{out: textOutput("   ")}, "m").Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "x"}},
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	boom := errors.New("throttled")
	_, err = NewBedrockClient(&fakeConverse{err: boom}, "m").Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "x"}},
	})
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() { NewBedrockClient(nil, "m") })
}

func TestFallbackClient(t *testing.T) {
	primaryErr := errors.New("primary down")
	ok := ClientFunc(func(context.Context, Request) (Response, error) { return Response{Text: "fallback"}, nil })
	failing := ClientFunc(func(context.Context, Request) (Response, error) { return Response{}, primaryErr })
	var buf bytes.Buffer
	logger := logging.NewWithWriter("debug", &buf)

	resp, err := NewFallbackClient(failing, ok, logger).Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
	assert.Contains(t, buf.String(), "primary LLM failed")

	_, err = NewFallbackClient(failing, nil, logger).Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, primaryErr)

	resp, err = NewFallbackClient(ok, failing, nil).Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	spy := ClientFunc(func(context.Context, Request) (Response, error) { called = true; return Response{}, nil })
	_, err = NewFallbackClient(failing, spy, logger).Complete(ctx, Request{})
	assert.Error(t, err)
	assert.False(t, called, "cancelled requests are not retried")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, true},
		{`Sure! {"a":1} hope that helps`, `{"a":1}`, true},
		{"no json here", "", false},
		{"} backwards {", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractJSON(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Tip string `json:"tip"`
	}
	require.NoError(t, DecodeJSON("here: {\"tip\":\"breathe\"}", &v))
	assert.Equal(t, "breathe", v.Tip)

	assert.ErrorIs(t, DecodeJSON("nothing", &v), ErrEmptyResponse)
	assert.Error(t, DecodeJSON("{not json}", &v))
}

func TestGenerateSchema(t *testing.T) {
	type reply struct {
		Rewrite1 string `json:"rewrite1" jsonschema:"required"`
		Tip      string `json:"tip"`
	}
	schema := GenerateSchema[reply]()
	require.NotNil(t, schema)
	raw, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rewrite1"`)
	assert.Contains(t, string(raw), `"additionalProperties":false`)
}

func TestNew(t *testing.T) {
	c, err := New(context.Background(), ProviderNone, ProviderOptions{})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = New(context.Background(), ProviderBedrock, ProviderOptions{})
	assert.Error(t, err)

	c, err = New(context.Background(), "BEDROCK", ProviderOptions{Bedrock: &fakeConverse{}, BedrockModelID: "m"})
	require.NoError(t, err)
	assert.IsType(t, &BedrockClient{}, c)

	_, err = New(context.Background(), ProviderOpenAI, ProviderOptions{})
	assert.Error(t, err, "openai without key")

	c, err = New(context.Background(), ProviderOpenAI, ProviderOptions{OpenAI: OpenAIConfig{APIKey: "sk-test"}})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.(*OpenAIClient).Model())

	_, err = New(context.Background(), "mystery", ProviderOptions{})
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestOpenAIClient_Params(t *testing.T) {
	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", Model: "gpt-test"})
	require.NoError(t, err)

	p, err := c.params(Request{
		System:      []string{"sys"},
		Messages:    []Message{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "yo"}},
		Temperature: -1,
		Schema:      GenerateSchema[struct{ A string }](),
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-test", p.Model)
	assert.Len(t, p.Messages, 3)
	require.NotNil(t, p.ResponseFormat.OfJSONSchema)
	assert.Equal(t, "response", p.ResponseFormat.OfJSONSchema.JSONSchema.Name)

	_, err = c.params(Request{Messages: []Message{{Role: "tool", Content: "x"}}})
	assert.Error(t, err)
}
