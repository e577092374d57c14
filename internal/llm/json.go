package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the outermost {...} span of a model reply, tolerating
// code fences and chatter around it.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// DecodeJSON extracts and unmarshals a JSON object from a model reply.
func DecodeJSON(text string, v any) error {
	raw, ok := ExtractJSON(text)
	if !ok {
		return fmt.Errorf("llm: no json object in response: %w", ErrEmptyResponse)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("llm: decode json: %w", err)
	}
	return nil
}
