package rewrite

import (
	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

// Category is the kind of message a fallback template answers.
type Category string

const (
	CategoryAttack        Category = "attack"
	CategoryBlame         Category = "blame"
	CategoryTriangulation Category = "triangulation"
	CategoryThreat        Category = "threat"
	CategoryDemand        Category = "demand"
	CategoryGeneric       Category = "generic"
)

// categoryOrder is first-match-wins.
var categoryOrder = []Category{
	CategoryAttack,
	CategoryBlame,
	CategoryTriangulation,
	CategoryThreat,
	CategoryDemand,
}

// Analysis carries upstream pattern flags that short-circuit keyword
// detection.
type Analysis struct {
	ChildTriangulation  bool `json:"childTriangulation"`
	CharacterEvaluation bool `json:"characterEvaluation"`
	Threat              bool `json:"threat"`
	Blame               bool `json:"blame"`
	Demand              bool `json:"demand"`
}

// AnalysisFrom derives flags from a parsed message. It returns nil for nil.
func AnalysisFrom(pm *codelayer.ParsedMessage) *Analysis {
	if pm == nil {
		return nil
	}
	a := &Analysis{
		ChildTriangulation:  pm.HasAxiom("AXIOM_010") || pm.Assessment.ChildAsInstrument,
		CharacterEvaluation: pm.HasAxiom("AXIOM_D101") || pm.Linguistic.HasPattern(codelayer.MarkerCharacterAttack),
		Threat:              pm.HasAxiom("AXIOM_D102"),
		Blame:               pm.Linguistic.HasPattern(codelayer.MarkerBlame),
		Demand:              pm.Linguistic.HasPattern(codelayer.MarkerEvaluative),
	}
	return a
}

// Fallback is a template rewrite pair with a coaching tip.
type Fallback struct {
	Category   Category `json:"category"`
	Rewrite1   string   `json:"rewrite1"`
	Rewrite2   string   `json:"rewrite2"`
	Tip        string   `json:"tip"`
	IsFallback bool     `json:"isFallback"`
}

// Templates holds one fallback per category. Every rewrite is sender-voiced.
var Templates = map[Category]Fallback{
	CategoryAttack: {
		Rewrite1: "I'm feeling really frustrated right now and need a moment before we keep talking.",
		Rewrite2: "Something about this isn't working for me. Can we find a better way to talk?",
		Tip:      "Name the feeling, not the person.",
	},
	CategoryBlame: {
		Rewrite1: "I'm feeling overwhelmed by how this went and want us to sort it out.",
		Rewrite2: "I'd like us to look at what happened and plan for next time.",
		Tip:      "Describe the problem, not who caused it.",
	},
	CategoryTriangulation: {
		Rewrite1: "I'd like to talk with you directly about this.",
		Rewrite2: "I want to keep the kids out of the middle. Can we sort this out between us?",
		Tip:      "Speak to your co-parent, not through the kids.",
	},
	CategoryThreat: {
		Rewrite1: "I'm frustrated that we aren't making progress and I need us to find a solution.",
		Rewrite2: "I'm worried about where this is heading. Could we try a mediator together?",
		Tip:      "State your need without the consequence.",
	},
	CategoryDemand: {
		Rewrite1: "I need some help with this. Would you be able to take it on this week?",
		Rewrite2: "Could we figure out a plan for this together?",
		Tip:      "Make it a request, not a demand.",
	},
	CategoryGeneric: {
		Rewrite1: "I have a concern I'd like to talk through with you.",
		Rewrite2: "Can we find a time to discuss this calmly?",
		Tip:      "Lead with what you need.",
	},
}

// DetectCategory classifies the original message. Analysis flags win over
// keywords; otherwise the first matching category in order wins.
func DetectCategory(message string, analysis *Analysis) Category {
	if analysis != nil {
		switch {
		case analysis.ChildTriangulation:
			return CategoryTriangulation
		case analysis.CharacterEvaluation:
			return CategoryAttack
		case analysis.Threat:
			return CategoryThreat
		}
	}
	message = textmatch.Normalize(message)
	if message != "" {
		for _, c := range categoryOrder {
			if categoryTables[c].Any(message) {
				return c
			}
		}
	}
	if analysis != nil {
		switch {
		case analysis.Blame:
			return CategoryBlame
		case analysis.Demand:
			return CategoryDemand
		}
	}
	return CategoryGeneric
}

// GetFallbackRewrites returns the template for the message's category. It is
// deterministic and never empty.
func GetFallbackRewrites(message string, analysis *Analysis) Fallback {
	c := DetectCategory(message, analysis)
	fb, ok := Templates[c]
	if !ok {
		c, fb = CategoryGeneric, Templates[CategoryGeneric]
	}
	fb.Category = c
	fb.IsFallback = true
	return fb
}
