package codelayer

import (
	"fmt"
	"strings"
)

const maxIntentImpactChars = 150

// FormatForPrompt renders the full structural analysis as plain text for the
// mediator prompt.
func FormatForPrompt(pm *ParsedMessage) string {
	if pm == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("=== STRUCTURAL ANALYSIS ===\n")

	if len(pm.Axioms) == 0 {
		b.WriteString("\nAXIOMS FIRED: none (clean message)\n")
	} else {
		b.WriteString("\nAXIOMS FIRED:\n")
		for _, a := range pm.Axioms {
			fmt.Fprintf(&b, "  - %s (%s, %s): confidence %d%%\n", a.ID, a.Name, a.Category, a.Confidence)
			if a.IntentImpact != "" {
				fmt.Fprintf(&b, "    intent vs impact: %s\n", truncate(a.IntentImpact, maxIntentImpactChars))
			}
		}
	}

	instrument := string(pm.Vector.Instrument)
	if instrument == "" {
		instrument = "none"
	}
	b.WriteString("\nCOMMUNICATION VECTOR:\n")
	fmt.Fprintf(&b, "  - Target: %s\n", pm.Vector.Target)
	fmt.Fprintf(&b, "  - Instrument: %s\n", instrument)
	fmt.Fprintf(&b, "  - Aim: %s\n", pm.Vector.Aim)

	surface := make([]string, 0, len(pm.Assessment.AttackSurface))
	for _, t := range pm.Assessment.AttackSurface {
		surface = append(surface, string(t))
	}
	b.WriteString("\nASSESSMENT:\n")
	fmt.Fprintf(&b, "  - Conflict potential: %s\n", pm.Assessment.ConflictPotential)
	fmt.Fprintf(&b, "  - Attack surface: %s\n", orNone(strings.Join(surface, ", ")))
	fmt.Fprintf(&b, "  - Child as instrument: %t\n", pm.Assessment.ChildAsInstrument)
	fmt.Fprintf(&b, "  - Deniability: %s\n", pm.Assessment.Deniability)

	m := pm.Linguistic
	if len(m.Intensifiers) > 0 || len(m.Softeners) > 0 || len(m.Contrasts) > 0 {
		b.WriteString("\nLINGUISTIC MARKERS:\n")
		if len(m.Intensifiers) > 0 {
			fmt.Fprintf(&b, "  - Intensifiers: %s\n", strings.Join(m.Intensifiers, ", "))
		}
		if len(m.Softeners) > 0 {
			fmt.Fprintf(&b, "  - Softeners: %s\n", strings.Join(m.Softeners, ", "))
		}
		if len(m.Contrasts) > 0 {
			fmt.Fprintf(&b, "  - Contrast markers: %s\n", strings.Join(m.Contrasts, ", "))
		}
	}
	return b.String()
}

// PromptSection lists fired axioms by name for the system prompt. It is empty
// when nothing fired.
func PromptSection(pm *ParsedMessage) string {
	if pm == nil || len(pm.Axioms) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("=== PATTERNS DETECTED ===\n")
	for _, a := range pm.Axioms {
		fmt.Fprintf(&b, "- %s\n", a.Name)
		if a.IntentImpact != "" {
			fmt.Fprintf(&b, "  What this means: %s\n", a.IntentImpact)
		}
	}
	b.WriteString("\nRefer to these pattern names when coaching the sender.\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
