package codelayer

import "github.com/wolfman30/coparent-mediator/internal/textmatch"

var directInsultRule = Rule{
	ID:            "AXIOM_D101",
	Name:          "Direct Insult",
	Category:      CategoryDirect,
	Description:   "Name-calling or a character verdict aimed straight at the receiver.",
	Target:        TargetCharacter,
	MinConfidence: 70,
	Predicate:     directInsult,
}

func directInsult(in *Input) (Finding, bool) {
	if !in.Primitives.Addressee {
		return Finding{}, false
	}
	ev := Evidence{}
	intense := len(in.Markers.Intensifiers) > 0 || len(in.Markers.Absolutes) > 0

	var confidence int
	insults := insultTable.Texts(in.Text)
	switch {
	case len(insults) > 0:
		confidence = 80
		ev.put("insult", insults[0])
		if len(insults) > 1 || in.Markers.HasPattern(MarkerCharacterAttack) {
			confidence += 10
		}
	case in.Markers.HasPattern(MarkerCharacterAttack) || in.Markers.HasPattern(MarkerEvaluativeGlobal):
		confidence = 75
		for _, p := range in.Markers.Patterns {
			if p.Type == MarkerCharacterAttack || p.Type == MarkerEvaluativeGlobal {
				ev.put("judgment", p.Match)
				break
			}
		}
	default:
		word := addresseeJudgment(in.Tokens, in.Markers)
		if word == "" {
			return Finding{}, false
		}
		confidence = 70
		ev.put("judgment", word)
	}
	if intense {
		confidence += 5
		word := first(in.Markers.Intensifiers)
		if word == "" {
			word = first(in.Markers.Absolutes)
		}
		ev.put("intensifier", word)
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to vent frustration, but receiver hears a verdict on who they are and will defend instead of listen.",
	}, true
}

// addresseeJudgment returns the first non-negated character judgment whose
// nearest preceding subject in the clause is the addressee.
func addresseeJudgment(tokens []Token, markers LinguisticMarkers) string {
	for i, t := range tokens {
		if characterJudgments.Has(t.Word) && !markers.Negated(t.Word) && judgesAddressee(tokens[:i], t.Clause) {
			return t.Word
		}
	}
	return ""
}

// subjectDeterminers open a noun phrase that names someone other than the
// addressee.
var subjectDeterminers = textmatch.Words("the", "a", "an", "my", "his", "her", "their", "our", "this", "that")

// judgesAddressee walks back from a judgment to the start of its clause. The
// first subject found decides: you/your binds it, any other pronoun, a name
// or a determined noun ("the teacher") does not.
func judgesAddressee(before []Token, clause int) bool {
	for i := len(before) - 1; i >= 0; i-- {
		u := before[i]
		if u.Clause != clause {
			return false
		}
		switch {
		case u.IsAddressee:
			return true
		case u.IsThirdParty, u.IsSpeaker, u.IsChildTerm, u.POS == POSProperNoun:
			return false
		case u.POS == POSNoun && i > 0 && before[i-1].Clause == clause && subjectDeterminers.Has(before[i-1].Word):
			return false
		}
	}
	return false
}

var threatUltimatumRule = Rule{
	ID:            "AXIOM_D102",
	Name:          "Threat or Ultimatum",
	Category:      CategoryDirect,
	Description:   "A negative consequence made conditional on the receiver's behavior.",
	Target:        TargetAutonomy,
	MinConfidence: 45,
	Predicate:     threatUltimatum,
}

var (
	orElseTable = textmatch.Table{
		textmatch.P("or_else", 1, `\bor\s+else\b`),
		textmatch.P("or_else", 1, `\bor\s+i('ll|'m\s+going\s+to|'m\s+gonna|\s+will)\b`),
		textmatch.P("or_else", 1, `\bor\s+we('ll|'re\s+going\s+to|\s+will)\b`),
		textmatch.P("or_else", 1, `\bor\s+(we'?ll|you'?ll)\s+(end\s+up|be|have\s+to|need\s+to)\b`),
	}
	conditionalThreatTable = textmatch.Table{
		textmatch.P("conditional", 1, `\bif\s+you\s+.{1,30}\s+i('ll|'m\s+going\s+to|\s+will)\b`),
		textmatch.P("conditional", 1, `\bif\s+you\s+.{1,30}\s+we('ll|'re\s+going\s+to|\s+will)\b`),
		textmatch.P("conditional", 1, `\bif\s+you\s+(don'?t|do\s+not|keep|continue)\b.{1,50}\b(court|lawyer|attorney|police|cops|custody)\b`),
	}
	legalThreatTable = textmatch.Table{
		textmatch.P("legal", 1, `\b(going\s+)?(back\s+)?to\s+court\b`),
		textmatch.P("legal", 1, `\b(call|contact|get|hire)\s+(my\s+)?(lawyer|attorney)\b`),
		textmatch.P("legal", 1, `\b(call|contact|tell)\s+(the\s+)?(police|cops|cps)\b`),
		textmatch.P("legal", 1, `\b(full\s+)?custody\b.{0,20}\b(take|get|fight\s+for|going\s+to)\b`),
		textmatch.P("legal", 1, `\b(take|get|fight\s+for|going\s+to).{0,20}\b(full\s+)?custody\b`),
		textmatch.P("legal", 1, `\bmodify\s+(the\s+)?custody\b`),
		textmatch.P("legal", 1, `\breport\s+(you|this)\s+to\b`),
	}
	threatPhraseTable = textmatch.Table{
		textmatch.P("phrase", 1, `\byou('?ll|'?re\s+going\s+to|\s+will)\s+regret\b`),
		textmatch.P("phrase", 1, `\bkeep\s+it\s+up\b`),
		textmatch.P("phrase", 1, `\bsee\s+what\s+happens\b`),
		textmatch.P("phrase", 1, `\bwatch\s+(what\s+happens|yourself|out)\b`),
		textmatch.P("phrase", 1, `\byou('?ve|'?ll)\s+been\s+warned\b`),
		textmatch.P("phrase", 1, `\bdon'?t\s+(test|push)\s+me\b`),
		textmatch.P("phrase", 1, `\bi\s+won'?t\s+hesitate\b`),
		textmatch.P("phrase", 1, `\bi('?m|'ll\s+be)\s+documenting\b`),
		textmatch.P("phrase", 1, `\bthis\s+is\s+(being\s+)?documented\b`),
		textmatch.P("phrase", 1, `\bi('?m|\s+am)\s+keeping\s+records\b`),
	}
	threatConsequenceTable = textmatch.Table{
		textmatch.P("consequence", 1, `\b(neither\s+of\s+us\s+wants?|you\s+don'?t\s+want)\b`),
		textmatch.P("consequence", 1, `\bwaste\s+of\s+(time|money)\b`),
		textmatch.P("consequence", 1, `\bpunish\b`),
	}
)

func threatUltimatum(in *Input) (Finding, bool) {
	ev := Evidence{}
	confidence := 0
	orElse, hasOrElse := orElseTable.First(in.Text)
	legal, hasLegal := legalThreatTable.First(in.Text)
	if hasOrElse {
		confidence += 45
		ev.put("or_else", orElse.Text)
	}
	if m, ok := conditionalThreatTable.First(in.Text); ok {
		confidence += 40
		ev.put("conditional", m.Text)
	}
	if hasLegal {
		confidence += 50
		ev.put("legal", legal.Text)
	}
	if m, ok := threatPhraseTable.First(in.Text); ok {
		confidence += 35
		ev.put("threat_phrase", m.Text)
	}
	if confidence == 0 {
		return Finding{}, false
	}
	if m, ok := threatConsequenceTable.First(in.Text); ok {
		confidence += 10
		ev.put("consequence", m.Text)
	}
	if hasOrElse && hasLegal {
		confidence += 20
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to show how serious this is, but receiver hears coercion and will dig in or escalate.",
	}, true
}
