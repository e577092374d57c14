// Package textmatch holds the declarative phrase tables shared by the code
// layer, the rewrite validator and the fallback category detector. Each table
// is an ordered list of compiled expressions tagged with a label and weight,
// evaluated by one generic matcher.
package textmatch

import (
	"regexp"
	"sort"
	"strings"
)

// Pattern is a compiled case-insensitive expression with a label and weight.
type Pattern struct {
	Re     *regexp.Regexp
	Label  string
	Weight float64
}

// P compiles expr case-insensitively. It panics on a bad expression, so tables
// fail at package init rather than at match time.
func P(label string, weight float64, expr string) Pattern {
	return Pattern{
		Re:     regexp.MustCompile(`(?i)` + expr),
		Label:  label,
		Weight: weight,
	}
}

// Match is one occurrence of a pattern in a text.
type Match struct {
	Label  string
	Text   string
	Weight float64
	Start  int
}

// Table is an ordered pattern list. Order matters for First.
type Table []Pattern

// Concat joins tables, preserving order.
func Concat(tables ...Table) Table {
	n := 0
	for _, t := range tables {
		n += len(t)
	}
	out := make(Table, 0, n)
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

// Matches returns every occurrence of every pattern, in table order and then
// by position.
func (t Table) Matches(text string) []Match {
	if text == "" {
		return nil
	}
	var out []Match
	for _, p := range t {
		for _, loc := range p.Re.FindAllStringIndex(text, -1) {
			out = append(out, Match{
				Label:  p.Label,
				Text:   strings.ToLower(strings.TrimSpace(text[loc[0]:loc[1]])),
				Weight: p.Weight,
				Start:  loc[0],
			})
		}
	}
	return out
}

// First returns the leftmost occurrence of the first pattern in table order
// that matches.
func (t Table) First(text string) (Match, bool) {
	if text == "" {
		return Match{}, false
	}
	for _, p := range t {
		if loc := p.Re.FindStringIndex(text); loc != nil {
			return Match{
				Label:  p.Label,
				Text:   strings.ToLower(strings.TrimSpace(text[loc[0]:loc[1]])),
				Weight: p.Weight,
				Start:  loc[0],
			}, true
		}
	}
	return Match{}, false
}

// Any reports whether any pattern matches.
func (t Table) Any(text string) bool {
	_, ok := t.First(text)
	return ok
}

// Count returns the total number of occurrences across all patterns.
func (t Table) Count(text string) int {
	if text == "" {
		return 0
	}
	n := 0
	for _, p := range t {
		n += len(p.Re.FindAllStringIndex(text, -1))
	}
	return n
}

// Score sums the weight of each pattern that matches at least once.
func (t Table) Score(text string) float64 {
	if text == "" {
		return 0
	}
	var score float64
	for _, p := range t {
		if p.Re.MatchString(text) {
			score += p.Weight
		}
	}
	return score
}

// Tally sums weight per label over every occurrence.
func (t Table) Tally(text string) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range t.Matches(text) {
		out[m.Label] += m.Weight
	}
	return out
}

// Texts returns the distinct matched substrings ordered by position.
func (t Table) Texts(text string) []string {
	matches := t.Matches(text)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, ok := seen[m.Text]; ok {
			continue
		}
		seen[m.Text] = struct{}{}
		out = append(out, m.Text)
	}
	return out
}

// Labels returns the distinct labels of matching patterns in table order.
func (t Table) Labels(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range t {
		if _, ok := seen[p.Label]; ok {
			continue
		}
		if p.Re.MatchString(text) {
			seen[p.Label] = struct{}{}
			out = append(out, p.Label)
		}
	}
	return out
}

// WordSet is a closed vocabulary.
type WordSet map[string]struct{}

// Words builds a WordSet from lowercase words.
func Words(words ...string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s WordSet) Has(word string) bool {
	_, ok := s[word]
	return ok
}

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	quoteReplace = strings.NewReplacer("‘", "'", "’", "'", "“", `"`, "”", `"`)
)

// Normalize folds curly quotes to ASCII and collapses whitespace. Case is
// preserved; every table is case-insensitive.
func Normalize(text string) string {
	text = quoteReplace.Replace(text)
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}
