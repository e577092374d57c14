package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/coparent-mediator/internal/llm"
)

func TestProbePrintsBothStages(t *testing.T) {
	client := llm.ClientFunc(func(_ context.Context, req llm.Request) (llm.Response, error) {
		switch req.SchemaName {
		case "emotion_classification":
			return llm.Response{Text: `{"currentEmotion":"frustrated","intensity":70,"stressLevel":65,"triggers":["pickup"],"conversationEmotion":"tense","confidence":80}`}, nil
		default:
			return llm.Response{Text: "```json\n{\"personalMessage\":\"This reads as blame.\",\"rewrite1\":\"I need pickups to be on time.\",\"rewrite2\":\"Can we agree on a pickup time?\",\"tip\":\"Ask for what you need.\"}\n```"}, nil
		}
	})

	var out bytes.Buffer
	require.NoError(t, probe(context.Background(), client, &out, sampleMessage))
	assert.Contains(t, out.String(), "emotion=frustrated stress=65")
	assert.Contains(t, out.String(), "rewrite1: I need pickups to be on time.")
	assert.Contains(t, out.String(), "code layer: conflict=")
}

func TestProbeReportsProviderError(t *testing.T) {
	client := llm.ClientFunc(func(context.Context, llm.Request) (llm.Response, error) {
		return llm.Response{}, errors.New("throttled")
	})
	err := probe(context.Background(), client, &bytes.Buffer{}, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classifier")
}

func TestOrNone(t *testing.T) {
	assert.Equal(t, "none", orNone(""))
	assert.Equal(t, "gemini", orNone("gemini"))
}
