package codelayer

import (
	"sort"
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

// Pattern marker types.
const (
	MarkerGlobalStatement    = "global_statement"
	MarkerCharacterAttack    = "character_attack"
	MarkerEvaluative         = "evaluative"
	MarkerEvaluativeGlobal   = "evaluative_global"
	MarkerRhetoricalQuestion = "rhetorical_question"
	MarkerBlame              = "blame"
	MarkerComparison         = "comparison"
)

var softenerTable = textmatch.Table{
	textmatch.P("softener", 1, `\bkind\s+of\b`),
	textmatch.P("softener", 1, `\bsort\s+of\b`),
	textmatch.P("softener", 1, `\ba\s+(bit|little)\b`),
	textmatch.P("softener", 1, `\bi\s+(think|guess|suppose)\b`),
	textmatch.P("softener", 1, `\bi\s+feel\s+like\b`),
	textmatch.P("softener", 1, `\bit\s+seems\b`),
	textmatch.P("softener", 1, `\bi('m|\s+am|\s+was)\s+just\b`),
	textmatch.P("softener", 1, `\b(just|maybe|might|perhaps|possibly|probably|somewhat|slightly|basically|actually|honestly|frankly|simply|merely|apparently)\b`),
}

var intensifierTable = textmatch.Table{
	textmatch.P("intensifier", 1, `\b(always|never|every|everything|everyone|everywhere|nothing|nobody|nowhere|none)\b`),
	textmatch.P("intensifier", 1, `\b(completely|totally|absolutely|constantly|forever|entirely|extremely|definitely|certainly|obviously|clearly)\b`),
	textmatch.P("intensifier", 1, `\b(very|really|so|such)\b`),
}

var patternMarkerTable = textmatch.Table{
	textmatch.P(MarkerGlobalStatement, 1, `\byou('re|\s+are)?\s+(always|never)\b`),
	textmatch.P(MarkerGlobalStatement, 1, `\bevery\s+(single\s+)?time\s+you\b`),
	textmatch.P(MarkerCharacterAttack, 1, `\byou('re|\s+are)\s+the\s+(kind|type|sort)\s+of\s+(person|parent)\b`),
	textmatch.P(MarkerCharacterAttack, 1, `\byou('re|\s+are)\s+(such\s+)?(an?\s+)?(selfish|lazy|pathetic|useless|worthless|terrible|horrible|awful|irresponsible|toxic|liar|idiot|loser|narcissist|joke)\b`),
	textmatch.P(MarkerEvaluative, 1, `\byou\s+(should|must|ought\s+to)\b`),
	textmatch.P(MarkerEvaluative, 1, `\byou\s+(need|have)\s+to\b`),
	textmatch.P(MarkerRhetoricalQuestion, 1, `\bwhy\s+(did|do|don't|didn't|can't|won't|wouldn't|would)\s+you\b`),
	textmatch.P(MarkerRhetoricalQuestion, 1, `\bhow\s+could\s+you\b`),
	textmatch.P(MarkerRhetoricalQuestion, 1, `\bwhat\s+were\s+you\s+thinking\b`),
	textmatch.P(MarkerBlame, 1, `\byour\s+fault\b`),
	textmatch.P(MarkerBlame, 1, `\b(because\s+of|thanks\s+to)\s+you\b`),
	textmatch.P(MarkerBlame, 1, `\bif\s+you\s+(had|hadn't|would|wouldn't)\b`),
	textmatch.P(MarkerComparison, 1, `\bunlike\s+you\b`),
	textmatch.P(MarkerComparison, 1, `\bat\s+least\s+i\b`),
	textmatch.P(MarkerComparison, 1, `\bi\s+would\s+never\b`),
}

var contrastTable = textmatch.Table{
	textmatch.P("contrast", 1, `\beven\s+though\b`),
	textmatch.P("contrast", 1, `\bin\s+spite\s+of\b`),
	textmatch.P("contrast", 1, `\bon\s+the\s+other\s+hand\b`),
	textmatch.P("contrast", 1, `\b(but|however|although|though|yet|despite|nevertheless|nonetheless)\b`),
}

var negationTable = textmatch.Table{
	textmatch.P("negation", 1, `\b(not|never|no|nobody|nothing|nowhere|cannot)\b`),
	textmatch.P("negation", 1, `\b(don't|doesn't|didn't|won't|wouldn't|couldn't|shouldn't|can't|isn't|aren't|wasn't|weren't|haven't|hasn't|hadn't)`),
}

// characterJudgments are words that pass judgment on a person.
var characterJudgments = textmatch.Words(
	"selfish", "lazy", "pathetic", "useless", "worthless", "terrible", "horrible",
	"awful", "irresponsible", "unreliable", "careless", "immature", "toxic",
	"crazy", "stupid", "idiot", "loser", "liar", "narcissist", "incompetent",
	"controlling", "manipulative", "clueless", "hopeless", "disgusting",
)

// DetectMarkers aggregates flagged tokens and multi-token patterns.
func DetectMarkers(text string, tokens []Token) LinguisticMarkers {
	m := LinguisticMarkers{
		Tokens:         tokens,
		Softeners:      []string{},
		Intensifiers:   []string{},
		Absolutes:      []string{},
		Patterns:       []PatternMarker{},
		Contrasts:      []string{},
		Negations:      []string{},
		NegationScopes: []NegationScope{},
	}
	text = textmatch.Normalize(text)
	if text == "" {
		return m
	}

	m.Softeners = union(softenerTable.Texts(text), tokenWords(tokens, func(t Token) bool { return t.IsSoftener }))
	m.Intensifiers = union(intensifierTable.Texts(text), tokenWords(tokens, func(t Token) bool { return t.IsIntensifier }))
	m.Absolutes = union(nil, tokenWords(tokens, func(t Token) bool { return t.IsAbsolute }))
	m.Contrasts = contrastTable.Texts(text)
	m.Negations = union(negationTable.Texts(text), tokenWords(tokens, func(t Token) bool { return t.IsNegation }))
	m.Patterns = patternMarkers(text, tokens)
	m.NegationScopes = negationScopes(tokens)
	return m
}

func patternMarkers(text string, tokens []Token) []PatternMarker {
	matches := patternMarkerTable.Matches(text)
	out := make([]PatternMarker, 0, len(matches))
	for _, mt := range matches {
		out = append(out, PatternMarker{Type: mt.Label, Match: mt.Text, Position: mt.Start})
	}
	out = append(out, evaluativeGlobals(tokens)...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	seen := make(map[string]struct{}, len(out))
	deduped := out[:0]
	for _, p := range out {
		key := p.Type + "|" + p.Match
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped
}

// evaluativeGlobals finds an absolute and a character judgment in the same
// clause ("always so selfish", "never anything but lazy").
func evaluativeGlobals(tokens []Token) []PatternMarker {
	var out []PatternMarker
	for i, t := range tokens {
		if !t.IsAbsolute {
			continue
		}
		for _, u := range tokens[i+1:] {
			if u.Clause != t.Clause {
				break
			}
			if characterJudgments.Has(u.Word) {
				out = append(out, PatternMarker{
					Type:     MarkerEvaluativeGlobal,
					Match:    t.Word + " " + u.Word,
					Position: t.Offset,
				})
				break
			}
		}
	}
	return out
}

// negationScopes binds each negation cue to the words after it in the same
// clause, stopping at the next conjunction.
func negationScopes(tokens []Token) []NegationScope {
	out := []NegationScope{}
	for i, t := range tokens {
		if !t.IsNegation {
			continue
		}
		scope := []string{}
		for _, u := range tokens[i+1:] {
			if u.Clause != t.Clause || clauseJoiners.Has(u.Word) || u.IsNegation {
				break
			}
			scope = append(scope, u.Word)
		}
		out = append(out, NegationScope{Cue: t.Word, Position: t.Position, Scope: scope})
	}
	return out
}

// ContrastAnalysis splits a message at its first contrast marker.
type ContrastAnalysis struct {
	Marker           string `json:"marker"`
	Before           string `json:"before"`
	After            string `json:"after"`
	SoftenerBefore   bool   `json:"softenerBefore"`
	IntensifierAfter bool   `json:"intensifierAfter"`
	LikelyCriticism  bool   `json:"likelyCriticism"`
}

// AnalyzeContrast returns nil when there is no contrast marker with text on
// both sides.
func AnalyzeContrast(text string) *ContrastAnalysis {
	text = strings.ToLower(textmatch.Normalize(text))
	matches := contrastTable.Matches(text)
	if len(matches) == 0 {
		return nil
	}
	first := matches[0]
	for _, mt := range matches[1:] {
		if mt.Start < first.Start {
			first = mt
		}
	}
	before := strings.Trim(strings.TrimSpace(text[:first.Start]), ",;")
	after := strings.TrimSpace(text[first.Start+len(first.Text):])
	if before == "" || after == "" {
		return nil
	}
	c := &ContrastAnalysis{
		Marker:           first.Text,
		Before:           before,
		After:            after,
		SoftenerBefore:   softenerTable.Any(before),
		IntensifierAfter: intensifierTable.Any(after),
	}
	c.LikelyCriticism = c.SoftenerBefore || c.IntensifierAfter
	return c
}

// union appends the words of b missing from a, keeping first-seen order.
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, w := range list {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
