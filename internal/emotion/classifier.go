package emotion

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/llm"
)

const classifierSystemPrompt = `You analyze emotional state in co-parenting conversations. Judge emotion, stress and triggers for the current message only. Respond only with valid JSON.`

var classificationSchema = llm.GenerateSchema[Classification]()

// LLMClassifier classifies messages with a hosted model.
type LLMClassifier struct {
	client    llm.Client
	model     string
	maxTokens int32
}

func NewLLMClassifier(client llm.Client, model string) *LLMClassifier {
	return &LLMClassifier{client: client, model: model, maxTokens: 400}
}

func (c *LLMClassifier) Classify(ctx context.Context, req ClassifyRequest) (Classification, error) {
	if c == nil || c.client == nil {
		return Classification{}, ErrNoClassifier
	}
	resp, err := c.client.Complete(ctx, llm.Request{
		Model:       c.model,
		System:      []string{classifierSystemPrompt},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: classifierPrompt(req)}},
		MaxTokens:   c.maxTokens,
		Temperature: 0.3,
		SchemaName:  "emotion_classification",
		Schema:      classificationSchema,
	})
	if err != nil {
		return Classification{}, fmt.Errorf("emotion: classify: %w", err)
	}
	var out Classification
	if err := llm.DecodeJSON(resp.Text, &out); err != nil {
		return Classification{}, fmt.Errorf("emotion: classify: %w", err)
	}
	return out, nil
}

func classifierPrompt(req ClassifyRequest) string {
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	recent := tail(req.Recent, promptRecent)
	if len(recent) == 0 {
		b.WriteString("(none)\n")
	}
	for _, m := range recent {
		fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Text)
	}

	prev := req.Previous
	triggers := strings.Join(tail(prev.RecentTriggers, 3), ", ")
	if triggers == "" {
		triggers = "none"
	}
	fmt.Fprintf(&b, "\nCurrent message from %s: %q\n", req.Message.Sender, req.Message.Text)
	fmt.Fprintf(&b, "\nPrevious state for %s:\n", req.Message.Sender)
	fmt.Fprintf(&b, "- Current emotion: %s\n", orNeutral(prev.CurrentEmotion))
	fmt.Fprintf(&b, "- Stress level: %d/100\n", prev.StressLevel)
	fmt.Fprintf(&b, "- Recent triggers: %s\n", triggers)
	b.WriteString(`
Return JSON with:
- currentEmotion: neutral, frustrated, calm, defensive, collaborative, anxious or angry
- intensity: 0-100
- stressLevel: 0-100 (absolute, not relative)
- triggers: specific phrases in this message that raise stress
- conversationEmotion: neutral, tense, collaborative or escalating
- confidence: 0-100`)
	return b.String()
}

func orNeutral(e Emotion) Emotion {
	if e == "" {
		return EmotionNeutral
	}
	return e
}
