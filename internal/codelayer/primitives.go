package codelayer

import (
	"regexp"
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

var (
	pastIndicators = textmatch.Words(
		"was", "were", "had", "did", "said", "told", "went", "came", "been",
		"forgot", "missed", "happened", "yesterday", "last", "ago",
		"previously", "earlier", "already", "once", "left", "got", "made",
	)
	presentIndicators = textmatch.Words(
		"is", "are", "am", "do", "does", "has", "have", "can", "need", "want",
		"she's", "he's", "it's", "they're", "you're", "i'm", "we're", "that's",
		"now", "today", "currently",
	)
	questionOpeners = textmatch.Words(
		"can", "could", "would", "will", "should", "do", "does", "did", "is", "are",
		"was", "were", "have", "has", "what", "when", "where", "why", "how", "who", "which",
	)
)

var futureModalTable = textmatch.Table{
	textmatch.P("future", 1, `\bwill\s+\w+`),
	textmatch.P("future", 1, `\b(going\s+to|gonna|about\s+to|plan\s+to|intend\s+to)\s+\w+`),
	textmatch.P("future", 1, `\b(i|we|you|she|he|they)'ll\b`),
}

var interpretationTable = textmatch.Table{
	textmatch.P("feeling_verb", 1, `\bi\s+(feel|think|believe|guess|suppose|assume|worry|wonder)\b`),
	textmatch.P("feeling_verb", 1, `\bi('m|\s+am)\s+(worried|concerned|afraid|scared|upset|frustrated|sad|hurt)\b`),
	textmatch.P("hedge", 1, `\bit\s+(seems|appears|looks\s+like)\b`),
	textmatch.P("hedge", 1, `\bin\s+my\s+(opinion|view|experience)\b`),
}

var childPhraseTable = textmatch.Table{
	textmatch.P("child", 1, `\b(the|our|my|your|both)\s+(kids?|children|child|daughters?|sons?|boys|girls|baby|kiddos?)\b`),
}

var adultThirdPartyTable = textmatch.Table{
	textmatch.P("relative", 1, `\b(your|my|his|her|their)\s+(mom|mother|dad|father|parents|sister|brother|family|wife|husband)\b`),
	textmatch.P("partner", 1, `\b(your|my|his|her|the)?\s*(new\s+)?(partner|boyfriend|girlfriend|fianc[eé]e?|spouse)\b`),
	textmatch.P("professional", 1, `\b(the\s+|my\s+|your\s+|our\s+)?(teacher|coach|judge|mediator|therapist|counselor|lawyer|attorney|principal|doctor|pediatrician)\b`),
}

var domainPhraseTable = textmatch.Table{
	textmatch.P(string(DomainSchedule), 2, `\b(pick|drop)\s*-?\s*(up|off)\b`),
	textmatch.P(string(DomainSchedule), 2, `\b(my|your|our)\s+(time|day|weekend|week)\b`),
	textmatch.P(string(DomainSchedule), 2, `\bat\s+\d{1,2}(:\d{2})?\s*(am|pm|o'clock)?\b`),
	textmatch.P(string(DomainMoney), 2, `\$\s?\d+`),
	textmatch.P(string(DomainMoney), 2, `\b\d+\s*(dollars|bucks)\b`),
	textmatch.P(string(DomainMoney), 2, `\bchild\s*support\b`),
	textmatch.P(string(DomainMoney), 2, `\b(pay|paid|paying)\s+(for|back|me|you|half)\b`),
	textmatch.P(string(DomainParenting), 2, `\b(her|his|their)\s+(homework|grades|behavior|routine|bedtime)\b`),
	textmatch.P(string(DomainParenting), 2, `\b(at|in|from)\s+school\b`),
	textmatch.P(string(DomainParenting), 2, `\bscreen\s+time\b`),
	textmatch.P(string(DomainParenting), 2, `\b(report\s+card|parent-teacher)\b`),
	textmatch.P(string(DomainCharacter), 2, `\byou('re|\s+are)\s+(always|never|so|such)\b`),
	textmatch.P(string(DomainCharacter), 2, `\b(kind|type|sort)\s+of\s+(person|parent)\b`),
	textmatch.P(string(DomainCharacter), 2, `\byour\s+(attitude|behavior|behaviour|personality)\b`),
	textmatch.P(string(DomainLogistics), 2, `\b(sign|fill\s+out|complete)\s+(the|this|that)\s+(form|document|paper)\b`),
	textmatch.P(string(DomainLogistics), 2, `\bpermission\s+(slip|form)\b`),
}

var domainOrder = []Domain{DomainSchedule, DomainMoney, DomainParenting, DomainCharacter, DomainLogistics}

// MapPrimitives derives conceptual primitives from tokens and markers. Child
// names from pctx separate child references from other third parties.
func MapPrimitives(text string, tokens []Token, markers LinguisticMarkers, pctx ParsingContext) ConceptualPrimitives {
	p := ConceptualPrimitives{
		ThirdParty:      []string{},
		ChildReferences: []string{},
		Temporal:        TemporalPresent,
		Epistemic:       EpistemicUnknown,
		Domain:          DomainGeneral,
	}
	text = textmatch.Normalize(text)
	if text == "" || len(tokens) == 0 {
		return p
	}

	for _, t := range tokens {
		p.Speaker = p.Speaker || t.IsSpeaker
		p.Addressee = p.Addressee || t.IsAddressee
	}
	p.ThirdParty, p.ChildReferences = thirdParties(text, tokens, pctx.ChildNames)
	p.Temporal = temporalFocus(text, tokens)
	p.Epistemic = epistemicStance(text, tokens, markers)
	p.Domain = dominantDomain(text, tokens)
	return p
}

func thirdParties(text string, tokens []Token, childNames []string) (all, children []string) {
	var adults []string
	names := make(map[string]struct{}, len(childNames))
	for _, n := range childNames {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		names[n] = struct{}{}
		if regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`).MatchString(text) {
			children = append(children, n)
		}
	}

	children = append(children, childPhraseTable.Texts(text)...)
	for _, t := range tokens {
		if t.IsChildTerm {
			children = append(children, t.Word)
		}
	}

	adults = append(adults, adultThirdPartyTable.Texts(text)...)
	for _, t := range tokens {
		if t.POS != POSProperNoun {
			continue
		}
		if _, isChild := names[t.Word]; !isChild {
			adults = append(adults, t.Word)
		}
	}

	var pronouns []string
	for _, t := range tokens {
		if t.IsThirdParty {
			pronouns = append(pronouns, t.Word)
		}
	}
	// A bare she/he/they is read as the child unless an adult is named.
	if len(adults) == 0 {
		children = append(children, pronouns...)
	}

	children = union(nil, children)
	all = union(union(children, adults), pronouns)
	return all, children
}

func temporalFocus(text string, tokens []Token) Temporal {
	if futureModalTable.Any(text) {
		return TemporalFuture
	}
	past, present := 0, 0
	for _, t := range tokens {
		switch {
		case pastIndicators.Has(t.Word):
			past++
		case t.POS == POSVerb && strings.HasSuffix(t.Word, "ed"):
			past++
		case presentIndicators.Has(t.Word):
			present++
		}
	}
	if past > present {
		return TemporalPast
	}
	return TemporalPresent
}

func epistemicStance(text string, tokens []Token, markers LinguisticMarkers) Epistemic {
	if len(markers.Softeners) > 0 || interpretationTable.Any(text) {
		return EpistemicInterpretation
	}
	if isQuestion(text, tokens) || len(tokens) < 2 {
		return EpistemicUnknown
	}
	return EpistemicFact
}

func isQuestion(text string, tokens []Token) bool {
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		return true
	}
	return len(tokens) > 0 && questionOpeners.Has(tokens[0].Word)
}

func dominantDomain(text string, tokens []Token) Domain {
	scores := make(map[Domain]float64, len(domainOrder))
	for _, t := range tokens {
		if t.Domain != "" {
			scores[t.Domain] += 2
		}
	}
	for label, w := range domainPhraseTable.Tally(text) {
		scores[Domain(label)] += w
	}

	best, bestScore := DomainGeneral, 0.0
	for _, d := range domainOrder {
		if scores[d] > bestScore {
			best, bestScore = d, scores[d]
		}
	}
	if bestScore < 2 {
		return DomainGeneral
	}
	return best
}
