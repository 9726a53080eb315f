// Package genai turns free-form model completions into structured payloads.
// Models are asked for strict JSON but routinely wrap it in prose or code
// fences, so extraction scans for the first balanced brace or bracket run.
package genai

import (
	"encoding/json"
	"errors"
	"strings"

	"server/internal/domain"
)

// Decode extracts the JSON fragment embedded in raw and unmarshals it into T.
// Failures come back as *domain.ParseError so callers can distinguish an
// unparsable completion from a provider transport failure.
func Decode[T any](provider, raw string) (T, error) {
	var zero T
	fragment := ExtractFragment(raw)
	if fragment == "" {
		return zero, &domain.ParseError{Provider: provider, Err: errors.New("no JSON fragment in completion")}
	}
	var decoded T
	if err := json.Unmarshal([]byte(fragment), &decoded); err != nil {
		return zero, &domain.ParseError{Provider: provider, Err: err}
	}
	return decoded, nil
}

// ExtractFragment returns the balanced JSON object or array embedded in the
// completion, with surrounding prose and code fences stripped. Empty string
// means no candidate fragment was found.
func ExtractFragment(raw string) string {
	text := trimCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return ""
	}
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	if end := matchBalanced(text, start); end > start {
		return strings.TrimSpace(text[start : end+1])
	}
	return ""
}

// matchBalanced scans from the opening brace at start and returns the index
// of its matching close, honoring string literals and escapes. Returns -1
// when the run never closes.
func matchBalanced(text string, start int) int {
	open := text[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
