package mediation

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/llm"
)

const mediatorSystemPrompt = `You help a co-parent rewrite a message before it is sent to the other parent.

Rules:
- Both rewrites are written as the SENDER, in first person, about the sender's own feelings and needs.
- Never write the reply the receiver would send. Never describe how the receiver feels.
- Keep the sender's underlying request. Drop blame, insults, threats and messages routed through the children.
- personalMessage names the pattern detected in the draft in one or two plain sentences.
- tip is at most 12 words.
Respond only with JSON.`

var responseSchema = llm.GenerateSchema[Response]()

// LLMMediator generates rewrites with a hosted model.
type LLMMediator struct {
	client    llm.Client
	model     string
	maxTokens int32
}

func NewLLMMediator(client llm.Client, model string) *LLMMediator {
	return &LLMMediator{client: client, model: model, maxTokens: 600}
}

func (m *LLMMediator) Generate(ctx context.Context, req GenerateRequest) (Response, error) {
	if req.Parsed == nil {
		return Response{}, fmt.Errorf("mediation: generate: parsed message is required")
	}
	resp, err := m.client.Complete(ctx, llm.Request{
		Model:       m.model,
		System:      []string{mediatorSystemPrompt},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: mediatorPrompt(req)}},
		MaxTokens:   m.maxTokens,
		Temperature: 0.4,
		SchemaName:  "mediation_response",
		Schema:      responseSchema,
	})
	if err != nil {
		return Response{}, fmt.Errorf("mediation: generate: %w", err)
	}
	var out Response
	if err := llm.DecodeJSON(resp.Text, &out); err != nil {
		return Response{}, fmt.Errorf("mediation: generate: %w", err)
	}
	out.PersonalMessage = strings.TrimSpace(out.PersonalMessage)
	out.Rewrite1 = strings.TrimSpace(out.Rewrite1)
	out.Rewrite2 = strings.TrimSpace(out.Rewrite2)
	out.Tip = strings.TrimSpace(out.Tip)
	return out, nil
}

func mediatorPrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Draft message: %q\n\n", req.Parsed.Raw)
	b.WriteString(codelayer.FormatForPrompt(req.Parsed))
	if section := codelayer.PromptSection(req.Parsed); section != "" {
		b.WriteString("\n\n")
		b.WriteString(section)
	}
	fmt.Fprintf(&b, "\n\nUrgency: %s\n", req.Urgency)
	if e := req.Emotion; e != nil && !e.Degraded {
		fmt.Fprintf(&b, "Sender emotion: %s (stress %d/100, %s)\n",
			e.Participant.CurrentEmotion, e.Participant.StressLevel, e.Participant.StressTrajectory)
		fmt.Fprintf(&b, "Conversation: %s (escalation risk %.0f/100)\n",
			e.Conversation.Emotion, e.Conversation.EscalationRisk)
	}
	if len(req.Recent) > 0 {
		b.WriteString("\nRecent messages:\n")
		recent := req.Recent
		if len(recent) > 10 {
			recent = recent[len(recent)-10:]
		}
		for _, m := range recent {
			fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Text)
		}
	}
	return b.String()
}
