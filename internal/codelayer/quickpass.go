package codelayer

import (
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

var redFlagTable = textmatch.Table{
	textmatch.P("global", 1, `\byou\s+(always|never)\b`),
	textmatch.P("character", 1, `\byou('re|\s+are)\s+(so|such|the|a)\b`),
	textmatch.P("blame", 1, `\byour\s+fault\b`),
	textmatch.P("blame", 1, `\bbecause\s+of\s+you\b`),
	textmatch.P("messenger", 1, `\b(she|he|they)\s+(said|told)\s+.*\byour?\b`),
	textmatch.P("rhetorical", 1, `\bhow\s+could\s+you\b`),
	textmatch.P("rhetorical", 1, `\bwhat\s+(is|were)\s+you\s+thinking\b`),
}

// QuickCheck is a cheap pre-screen run without the full pipeline. True means
// the text likely needs intervention.
func QuickCheck(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return redFlagTable.Any(text) || insultTable.Any(text)
}

// Quick pass reasons.
const (
	PassClean             = "clean_message"
	PassNoParse           = "no_parsed_message"
	PassParseError        = "analysis_error"
	PassAssessmentBlocked = "assessment_blocked"
	PassElevatedConflict  = "elevated_conflict_potential"
	PassHostileAxioms     = "hostile_axioms_fired"
	PassConcerningMarkers = "concerning_pattern_markers"
	PassChildInstrument   = "child_as_instrument"
)

// QuickPass says whether a message can be delivered without calling the
// mediator.
type QuickPass struct {
	CanPass bool     `json:"canPass"`
	Reason  string   `json:"reason"`
	Axioms  []string `json:"axioms,omitempty"`
}

// ShouldQuickPass lets through transmit-safe messages with no fired direct or
// indirect axioms, no blame or global markers, and no child instrument.
// Contextual axioms and the aim only shape the mediator prompt.
func ShouldQuickPass(pm *ParsedMessage) QuickPass {
	switch {
	case pm == nil:
		return QuickPass{Reason: PassNoParse}
	case pm.Meta.Error:
		return QuickPass{Reason: PassParseError}
	case !pm.Assessment.Transmit:
		return QuickPass{Reason: PassAssessmentBlocked}
	case pm.Assessment.ConflictPotential != ConflictLow:
		return QuickPass{Reason: PassElevatedConflict}
	}

	var hostile []string
	for _, a := range pm.Axioms {
		if a.Fired && (a.Category == CategoryDirect || a.Category == CategoryIndirect) {
			hostile = append(hostile, a.ID)
		}
	}
	if len(hostile) > 0 {
		return QuickPass{Reason: PassHostileAxioms, Axioms: hostile}
	}
	for _, p := range pm.Linguistic.Patterns {
		switch p.Type {
		case MarkerBlame, MarkerGlobalStatement, MarkerCharacterAttack, MarkerEvaluativeGlobal:
			return QuickPass{Reason: PassConcerningMarkers}
		}
	}
	if pm.Assessment.ChildAsInstrument {
		return QuickPass{Reason: PassChildInstrument}
	}
	return QuickPass{CanPass: true, Reason: PassClean}
}
