package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testTable = Table{
	P("greeting", 1, `\bhello\b`),
	P("insult", 3, `\byou\s+suck\b`),
	P("greeting", 2, `\bhi\b`),
}

func TestTableFirstHonorsTableOrder(t *testing.T) {
	m, ok := testTable.First("hi there, you suck, hello")
	assert.True(t, ok)
	assert.Equal(t, "greeting", m.Label)
	assert.Equal(t, "hello", m.Text)

	_, ok = testTable.First("")
	assert.False(t, ok)
}

func TestTableAggregates(t *testing.T) {
	text := "Hello hello, YOU SUCK"

	assert.True(t, testTable.Any(text))
	assert.Equal(t, 3, testTable.Count(text))
	assert.Equal(t, 4.0, testTable.Score(text))
	assert.Equal(t, map[string]float64{"greeting": 2, "insult": 3}, testTable.Tally(text))
	assert.Equal(t, []string{"hello", "you suck"}, testTable.Texts(text))
	assert.Equal(t, []string{"greeting", "insult"}, testTable.Labels(text))
}

func TestConcatPreservesOrder(t *testing.T) {
	joined := Concat(Table{P("a", 1, `a`)}, Table{P("b", 1, `b`)})
	assert.Len(t, joined, 2)
	assert.Equal(t, "a", joined[0].Label)
	assert.Equal(t, "b", joined[1].Label)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, `she's "fine" now`, Normalize("  she’s  “fine”\n now "))
}

func TestWordSet(t *testing.T) {
	s := Words("always", "never")
	assert.True(t, s.Has("never"))
	assert.False(t, s.Has("sometimes"))
}
