package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/rewrite"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func decodeLines[T any](t *testing.T, s string) []T {
	t.Helper()
	var out []T
	dec := json.NewDecoder(strings.NewReader(s))
	for dec.More() {
		var v T
		require.NoError(t, dec.Decode(&v))
		out = append(out, v)
	}
	return out
}

func TestParseArgs(t *testing.T) {
	out, err := run(t, "", "parse", "--sender", "alex", "you", "suck")
	require.NoError(t, err)
	pms := decodeLines[codelayer.ParsedMessage](t, out)
	require.Len(t, pms, 1)
	assert.Equal(t, "you suck", pms[0].Raw)
	assert.Equal(t, "alex", pms[0].SenderID)
	assert.False(t, pms[0].Assessment.Transmit)
}

func TestParseStdinKeepsOrder(t *testing.T) {
	out, err := run(t, "Can we schedule pickup for Friday?\n\nyou suck\n", "parse")
	require.NoError(t, err)
	pms := decodeLines[codelayer.ParsedMessage](t, out)
	require.Len(t, pms, 2)
	assert.True(t, pms[0].Assessment.Transmit)
	assert.False(t, pms[1].Assessment.Transmit)
}

func TestParseWithoutInputFails(t *testing.T) {
	_, err := run(t, "  \n", "parse")
	assert.Error(t, err)
}

func TestScenariosReplay(t *testing.T) {
	file := filepath.Join("..", "..", "internal", "codelayer", "testdata", "scenarios.json")
	out, err := run(t, "", "scenarios", "--file", file)
	require.NoError(t, err)
	results := decodeLines[scenarioResult](t, out)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, r.Pass, "%s: %v", r.Name, r.Mismatch)
	}
}

func TestScenariosReportsMismatch(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scenarios.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"name": "wrong", "text": "you suck", "expect": {"fired": [], "transmit": true}}
	]`), 0o600))

	out, err := run(t, "", "scenarios", "--file", file)
	require.Error(t, err)
	results := decodeLines[scenarioResult](t, out)
	require.Len(t, results, 1)
	assert.False(t, results[0].Pass)
	assert.Len(t, results[0].Mismatch, 2)
}

func TestQuickCheckAndValidate(t *testing.T) {
	out, err := run(t, "", "quick-check", "you", "always", "forget")
	require.NoError(t, err)
	flags := decodeLines[map[string]any](t, out)
	require.Len(t, flags, 1)
	assert.Equal(t, true, flags[0]["flagged"])

	out, err = run(t, "", "validate", "--original", "you suck", "That hurt me.")
	require.NoError(t, err)
	results := decodeLines[rewrite.Result](t, out)
	require.Len(t, results, 1)
	assert.False(t, results[0].Valid)
	assert.Equal(t, rewrite.ReasonReceiverDetected, results[0].Reason)
}

func TestSameSet(t *testing.T) {
	assert.True(t, sameSet([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, sameSet(nil, []string{}))
	assert.False(t, sameSet([]string{"a", "a"}, []string{"a", "b"}))
	assert.False(t, sameSet([]string{"a"}, nil))
}
