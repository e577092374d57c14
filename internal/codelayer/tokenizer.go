package codelayer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

// tokenPattern yields words (keeping contractions and hyphens) and the
// punctuation that closes a clause.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}$][\p{L}\p{N}$'\-]*|[.!?;:,]`)

// Tokenize splits text into tagged tokens. It is pure; empty input yields an
// empty slice.
func Tokenize(text string) []Token {
	text = textmatch.Normalize(text)
	if text == "" {
		return []Token{}
	}

	spans := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(spans))
	clause := 0
	sentenceStart := true
	clauseHasWords := false

	for _, span := range spans {
		surface := text[span[0]:span[1]]
		if isBoundary(surface) {
			if clauseHasWords {
				clause++
				clauseHasWords = false
			}
			if surface == "." || surface == "!" || surface == "?" {
				sentenceStart = true
			}
			continue
		}

		surface = strings.TrimRight(surface, "'-")
		if surface == "" {
			continue
		}
		word := strings.ToLower(surface)

		if contrastWords.Has(word) && clauseHasWords {
			clause++
		}

		tok := Token{
			Word:          word,
			Surface:       surface,
			POS:           partOfSpeech(word, surface, sentenceStart),
			Position:      len(tokens),
			Offset:        span[0],
			Clause:        clause,
			IsAddressee:   addresseeWords.Has(word),
			IsSpeaker:     speakerWords.Has(word),
			IsIntensifier: intensifiers.Has(word),
			IsSoftener:    softeners.Has(word),
			IsAbsolute:    absolutes.Has(word),
			IsAction:      actionVerbs.Has(word),
			IsNegation:    negationWords.Has(word),
			IsThirdParty:  thirdPartyPronouns.Has(word),
			IsChildTerm:   childTerms.Has(word),
			Domain:        domainOf(word),
		}
		tokens = append(tokens, tok)
		clauseHasWords = true
		sentenceStart = false
	}
	return tokens
}

func isBoundary(s string) bool {
	return len(s) == 1 && strings.ContainsAny(s, ".!?;:,")
}

// partOfSpeech checks the closed lexicons first, then capitalization for
// proper nouns, then suffix heuristics. Unknown words default to noun.
func partOfSpeech(word, surface string, sentenceStart bool) POS {
	switch {
	case addresseeWords.Has(word), speakerWords.Has(word), thirdPartyPronouns.Has(word):
		return POSPronoun
	case articles.Has(word):
		return POSArticle
	case prepositions.Has(word):
		return POSPreposition
	case conjunctions.Has(word):
		return POSConjunction
	case auxiliaries.Has(word):
		return POSAuxiliary
	case actionVerbs.Has(word):
		return POSVerb
	case adjectives.Has(word):
		return POSAdjective
	case intensifiers.Has(word), softeners.Has(word):
		return POSAdverb
	}

	if !sentenceStart && isCapitalized(surface) && domainOf(word) == "" {
		return POSProperNoun
	}

	switch {
	case strings.HasSuffix(word, "ing") && len(word) > 4,
		strings.HasSuffix(word, "ed") && len(word) > 3:
		return POSVerb
	case strings.HasSuffix(word, "ly") && len(word) > 3:
		return POSAdverb
	case hasAnySuffix(word, "ful", "ous", "less", "ive", "able", "ible", "ish"):
		return POSAdjective
	}
	return POSNoun
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func hasAnySuffix(word string, suffixes ...string) bool {
	for _, s := range suffixes {
		if len(word) > len(s)+2 && strings.HasSuffix(word, s) {
			return true
		}
	}
	return false
}

func tokenWords(tokens []Token, keep func(Token) bool) []string {
	out := []string{}
	for _, t := range tokens {
		if keep(t) {
			out = append(out, t.Word)
		}
	}
	return out
}
