package generators

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"server/internal/domain"
)

// maxSourceChars bounds how much of the source article is templated into a
// prompt. Providers charge per token and truncate long contexts themselves;
// the bound keeps cost and behavior predictable.
const maxSourceChars = 6000

// TruncateRunes bounds s to at most max runes. Limits are defined in
// characters, and slicing bytes would split a multi-byte sequence.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

func boundedSource(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxSourceChars {
		return text
	}
	cut := TruncateRunes(text, maxSourceChars)
	if idx := strings.LastIndexAny(cut, ".!?"); idx > len(cut)/2 {
		cut = cut[:idx+1]
	}
	return cut
}

func audiencePhrase(c domain.Complexity) string {
	switch c {
	case domain.ComplexityElementary:
		return "elementary school students, using simple words and short sentences"
	case domain.ComplexityHighSchool:
		return "high school students"
	case domain.ComplexityCollege:
		return "college students, with precise terminology"
	default:
		return "adult self-learners"
	}
}

func languageClause(locale string) string {
	if locale == "" || locale == "en" {
		return ""
	}
	return fmt.Sprintf(" Write all user-facing text in the language with ISO code '%s'.", locale)
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

// splitSentences is the crude sentence splitter the deterministic fallbacks
// are built on. It keeps terminators attached and drops empty runs.
func splitSentences(text string) []string {
	var sentences []string
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(sb.String()); s != "" {
				sentences = append(sentences, s)
			}
			sb.Reset()
		}
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
