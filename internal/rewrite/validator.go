// Package rewrite checks that suggested rewrites are written from the
// sender's point of view and supplies template fallbacks when they are not.
package rewrite

import (
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

const Version = "1.0.0"

// Validation reasons.
const (
	ReasonEmpty             = "empty_or_invalid"
	ReasonEchoesOriginal    = "echoes_original"
	ReasonReceiverDetected  = "receiver_perspective_detected"
	ReasonSenderPerspective = "sender_perspective"
	ReasonNeutral           = "neutral"
)

const (
	neutralConfidence  = 50
	baseConfidence     = 60
	maxConfidence      = 95
	confidencePerPoint = 8
)

// Result is the verdict on one candidate rewrite.
type Result struct {
	Valid         bool     `json:"valid"`
	Reason        string   `json:"reason"`
	Confidence    int      `json:"confidence"`
	SenderSignals bool     `json:"senderSignals"`
	Matches       []string `json:"matches,omitempty"`
}

// ValidateRewritePerspective rejects a candidate that reads like the
// receiver's reply. A receiver match always rejects, even when sender
// signals are present. Candidates with neither kind of signal pass with
// moderate confidence.
func ValidateRewritePerspective(text, original string) Result {
	text = textmatch.Normalize(text)
	if text == "" {
		return Result{Reason: ReasonEmpty}
	}
	if o := textmatch.Normalize(original); o != "" && strings.EqualFold(o, text) {
		return Result{Reason: ReasonEchoesOriginal, Confidence: maxConfidence}
	}

	senderScore := SenderIndicators.Score(text)
	if receiver := ReceiverIndicators.Texts(text); len(receiver) > 0 {
		return Result{
			Reason:        ReasonReceiverDetected,
			Confidence:    scoreConfidence(ReceiverIndicators.Score(text)),
			SenderSignals: senderScore > 0,
			Matches:       receiver,
		}
	}
	if senderScore > 0 {
		return Result{
			Valid:         true,
			Reason:        ReasonSenderPerspective,
			Confidence:    scoreConfidence(senderScore),
			SenderSignals: true,
			Matches:       SenderIndicators.Texts(text),
		}
	}
	return Result{Valid: true, Reason: ReasonNeutral, Confidence: neutralConfidence}
}

func scoreConfidence(score float64) int {
	c := baseConfidence + int(score*confidencePerPoint)
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

// Intervention is a pair of candidate rewrites.
type Intervention struct {
	Rewrite1 string `json:"rewrite1"`
	Rewrite2 string `json:"rewrite2"`
}

// InterventionResult reports both candidates. Valid means both passed.
type InterventionResult struct {
	Valid      bool   `json:"valid"`
	AnyFailed  bool   `json:"anyFailed"`
	BothFailed bool   `json:"bothFailed"`
	Rewrite1   Result `json:"rewrite1"`
	Rewrite2   Result `json:"rewrite2"`
}

// ValidateIntervention validates both rewrites against the original.
func ValidateIntervention(iv Intervention, original string) InterventionResult {
	r1 := ValidateRewritePerspective(iv.Rewrite1, original)
	r2 := ValidateRewritePerspective(iv.Rewrite2, original)
	return InterventionResult{
		Valid:      r1.Valid && r2.Valid,
		AnyFailed:  !r1.Valid || !r2.Valid,
		BothFailed: !r1.Valid && !r2.Valid,
		Rewrite1:   r1,
		Rewrite2:   r2,
	}
}
