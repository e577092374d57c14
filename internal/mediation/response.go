package mediation

import (
	"fmt"
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
)

// MaxTipWords bounds coaching tips.
const MaxTipWords = 12

// ForbiddenEmotionalTerms diagnose the reader's feelings and are never allowed
// in mediator text.
var ForbiddenEmotionalTerms = []string{
	"you're angry",
	"you seem frustrated",
	"you feel",
	"you're upset",
	"you're hurt",
	"you're defensive",
	"you're being",
	"you might feel",
	"you may feel",
	"you could feel",
}

// ResponseCheck lists what is wrong with a mediator response.
type ResponseCheck struct {
	Valid          bool     `json:"valid"`
	Errors         []string `json:"errors,omitempty"`
	TipInvalid     bool     `json:"tipInvalid,omitempty"`
	MissingRewrite bool     `json:"missingRewrite,omitempty"`
}

// ValidateResponse checks a mediator response against the parsed message.
func ValidateResponse(resp Response, pm *codelayer.ParsedMessage) ResponseCheck {
	var check ResponseCheck

	if pm != nil && len(pm.Axioms) > 0 && strings.TrimSpace(resp.PersonalMessage) != "" {
		lower := strings.ToLower(resp.PersonalMessage)
		referenced := false
		ids := make([]string, 0, len(pm.Axioms))
		for _, a := range pm.Axioms {
			ids = append(ids, a.ID)
			if strings.Contains(resp.PersonalMessage, a.ID) || strings.Contains(lower, strings.ToLower(a.Name)) {
				referenced = true
			}
		}
		if !referenced {
			check.Errors = append(check.Errors, fmt.Sprintf("personalMessage should reference fired pattern(s): %s", strings.Join(ids, ", ")))
		}
	}

	if term, ok := forbiddenTerm(resp.PersonalMessage); ok {
		check.Errors = append(check.Errors, fmt.Sprintf("personalMessage contains emotional diagnosis: %q", term))
	}
	if term, ok := forbiddenTerm(resp.Tip); ok {
		check.Errors = append(check.Errors, fmt.Sprintf("tip contains emotional diagnosis: %q", term))
		check.TipInvalid = true
	}
	if n := len(strings.Fields(resp.Tip)); n > MaxTipWords {
		check.Errors = append(check.Errors, fmt.Sprintf("tip exceeds word limit: %d words (max %d)", n, MaxTipWords))
		check.TipInvalid = true
	}
	if strings.TrimSpace(resp.Tip) == "" {
		check.TipInvalid = true
	}

	if strings.TrimSpace(resp.Rewrite1) == "" {
		check.Errors = append(check.Errors, "rewrite1 is required")
		check.MissingRewrite = true
	}
	if strings.TrimSpace(resp.Rewrite2) == "" {
		check.Errors = append(check.Errors, "rewrite2 is required")
		check.MissingRewrite = true
	}

	check.Valid = len(check.Errors) == 0
	return check
}

func forbiddenTerm(text string) (string, bool) {
	lower := strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	for _, term := range ForbiddenEmotionalTerms {
		if strings.Contains(lower, term) {
			return term, true
		}
	}
	return "", false
}
