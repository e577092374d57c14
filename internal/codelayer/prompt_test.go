package codelayer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForPrompt(t *testing.T) {
	assert.Empty(t, FormatForPrompt(nil))

	out := FormatForPrompt(parse(t, "She's been upset since you changed the schedule"))
	assert.Contains(t, out, "AXIOM_001 (Displaced Accusation, indirect)")
	assert.Contains(t, out, "Instrument: child")
	assert.Contains(t, out, "Conflict potential: moderate")
	assert.Contains(t, out, "Child as instrument: true")

	out = FormatForPrompt(parse(t, "Can we schedule pickup for Friday?"))
	assert.Contains(t, out, "AXIOMS FIRED: none")
	assert.Contains(t, out, "Attack surface: unclear")
}

func TestPromptSection(t *testing.T) {
	assert.Empty(t, PromptSection(nil))
	assert.Empty(t, PromptSection(parse(t, "Can we schedule pickup for Friday?")))

	out := PromptSection(parse(t, "you suck"))
	assert.True(t, strings.HasPrefix(out, "=== PATTERNS DETECTED ==="))
	assert.Contains(t, out, "- Direct Insult")
	assert.Contains(t, out, "What this means:")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
