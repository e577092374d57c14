// Package mediation decides whether a message goes out as written and, when
// it does not, produces validated sender-voiced rewrites.
package mediation

import (
	"context"
	"errors"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
	"github.com/wolfman30/coparent-mediator/internal/rewrite"
)

var (
	ErrEmptyMessage = errors.New("mediation: message text is required")
	ErrNoRoom       = errors.New("mediation: room id is required")
)

// Action is what the client should do with the message.
type Action string

const (
	ActionTransmit  Action = "transmit"
	ActionIntervene Action = "intervene"
)

// Urgency tells the mediator how heated the room is.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyElevated Urgency = "elevated"
	UrgencyCritical Urgency = "critical"
)

// Escalation risk cut-offs for urgency.
const (
	ElevatedRisk = 40.0
	CriticalRisk = 70.0
)

// UrgencyFor maps an escalation risk in [0,100] to an urgency.
func UrgencyFor(risk float64) Urgency {
	switch {
	case risk >= CriticalRisk:
		return UrgencyCritical
	case risk >= ElevatedRisk:
		return UrgencyElevated
	}
	return UrgencyLow
}

// Source records where an intervention's rewrites came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
	SourceMixed    Source = "mixed"
)

// Response is the mediator's reply contract.
type Response struct {
	PersonalMessage string `json:"personalMessage" jsonschema:"description=One or two sentences to the sender naming the pattern in their draft"`
	Rewrite1        string `json:"rewrite1" jsonschema:"description=First-person rewrite the sender could send instead"`
	Rewrite2        string `json:"rewrite2" jsonschema:"description=A second first-person rewrite with a different approach"`
	Tip             string `json:"tip" jsonschema:"description=Coaching tip of at most 12 words"`
}

// GenerateRequest is what a Mediator sees.
type GenerateRequest struct {
	Parsed  *codelayer.ParsedMessage
	Urgency Urgency
	Emotion *emotion.Analysis
	Recent  []emotion.Message
}

// Mediator writes rewrite suggestions for a flagged message.
type Mediator interface {
	Generate(ctx context.Context, req GenerateRequest) (Response, error)
}

// Request is one outgoing message to mediate.
type Request struct {
	RoomID  string                   `json:"roomId"`
	Message codelayer.Message        `json:"message"`
	Recent  []emotion.Message        `json:"recent,omitempty"`
	Context codelayer.ParsingContext `json:"context"`
}

// Intervention is the suggestion shown to the sender.
type Intervention struct {
	PersonalMessage string           `json:"personalMessage,omitempty"`
	Rewrite1        string           `json:"rewrite1"`
	Rewrite2        string           `json:"rewrite2"`
	Tip             string           `json:"tip"`
	Category        rewrite.Category `json:"category,omitempty"`
	Source          Source           `json:"source"`
}

// Outcome is the result of Mediate.
type Outcome struct {
	ID             string                      `json:"id"`
	Action         Action                      `json:"action"`
	Parsed         *codelayer.ParsedMessage    `json:"parsed"`
	QuickPass      codelayer.QuickPass         `json:"quickPass"`
	Emotion        *emotion.Analysis           `json:"emotion,omitempty"`
	Urgency        Urgency                     `json:"urgency"`
	Intervention   *Intervention               `json:"intervention,omitempty"`
	Validation     *rewrite.InterventionResult `json:"validation,omitempty"`
	ResponseErrors []string                    `json:"responseErrors,omitempty"`
}

// Metrics is the subset of the metrics package the service reports to.
type Metrics interface {
	ObserveQuickPass(reason string, passed bool)
	ObserveValidation(reason string, valid bool)
	ObserveFallback(category string)
}
