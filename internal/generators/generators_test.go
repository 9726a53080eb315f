package generators

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"server/internal/domain"
)

type fakeCompleter struct {
	raw string
	err error
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	return f.raw, f.err
}

func TestQuizStrategyParsesFencedCompletion(t *testing.T) {
	raw := "```json\n{\"title\":\"Cells\",\"questions\":[{\"prompt\":\"What is a cell?\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"answer\":\"a\"}]}\n```"
	s := NewQuizStrategy(&fakeCompleter{raw: raw})

	res, err := s.Generate(context.Background(), Input{Topic: "cells", SourceText: "Cells are small."})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Title != "Cells" {
		t.Errorf("title = %q, want Cells", res.Title)
	}
	var payload QuizPayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(payload.Questions) != 1 {
		t.Fatalf("questions = %d, want 1", len(payload.Questions))
	}
}

func TestQuizStrategyRejectsEmptyQuestionSet(t *testing.T) {
	raw := `{"title":"Empty","questions":[{"prompt":"","options":[],"answer":""}]}`
	s := NewQuizStrategy(&fakeCompleter{raw: raw})

	_, err := s.Generate(context.Background(), Input{Topic: "cells"})
	if !errors.Is(err, domain.ErrUnparsableOutput) {
		t.Fatalf("err = %v, want ErrUnparsableOutput", err)
	}
}

func TestQuizStrategyPropagatesProviderError(t *testing.T) {
	genErr := &domain.GenerationError{Provider: "fake", Stage: "request", Err: errors.New("boom")}
	s := NewQuizStrategy(&fakeCompleter{err: genErr})

	_, err := s.Generate(context.Background(), Input{Topic: "cells"})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
}

func TestConceptMapStrategyDropsDanglingEdges(t *testing.T) {
	raw := `{"title":"Map","nodes":[{"id":"a","label":"A"},{"id":"b","label":"B"}],"edges":[{"from":"a","to":"b","label":"ok"},{"from":"a","to":"ghost","label":"drop"}]}`
	s := NewConceptMapStrategy(&fakeCompleter{raw: raw})

	res, err := s.Generate(context.Background(), Input{Topic: "graphs"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var payload ConceptMapPayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(payload.Edges) != 1 {
		t.Errorf("edges = %d, want 1", len(payload.Edges))
	}
}

func TestPresentationFallbackIsDegraded(t *testing.T) {
	f := NewPresentationFallback()
	src := "Photosynthesis converts light. Plants use chlorophyll. Sugar is produced. Oxygen is released. Roots absorb water. Leaves host the process."

	res, err := f.Generate(context.Background(), Input{Topic: "photosynthesis", SourceText: src, Locale: "en"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Degraded {
		t.Error("result not marked degraded")
	}
	var payload PresentationPayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if !payload.Degraded {
		t.Error("payload not marked degraded")
	}
	if payload.TotalSlides == 0 || payload.TotalSlides > fallbackSlideCount {
		t.Errorf("totalSlides = %d, want 1..%d", payload.TotalSlides, fallbackSlideCount)
	}
	if payload.Slides[0].Title != "Photosynthesis" {
		t.Errorf("first slide title = %q", payload.Slides[0].Title)
	}
}

func TestPresentationFallbackWithoutSource(t *testing.T) {
	f := NewPresentationFallback()

	res, err := f.Generate(context.Background(), Input{Topic: "black holes"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var payload PresentationPayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(payload.Slides) == 0 {
		t.Fatal("no slides from topic-only input")
	}
}

func TestBoundedSourceCutsAtSentence(t *testing.T) {
	long := strings.Repeat("This sentence pads the source out to a useful length. ", 200)
	got := boundedSource(long)
	if len(got) > maxSourceChars {
		t.Errorf("len = %d, want <= %d", len(got), maxSourceChars)
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("cut does not end at a sentence: %q", got[len(got)-10:])
	}
}

func TestBoundedSourceKeepsRunesIntact(t *testing.T) {
	// Multi-byte text with no sentence terminators exercises the hard-cut
	// path, which must land on a rune boundary.
	long := strings.Repeat("é", maxSourceChars+1000)
	got := boundedSource(long)
	if !utf8.ValidString(got) {
		t.Error("bounded source is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(got); n != maxSourceChars {
		t.Errorf("runes = %d, want %d", n, maxSourceChars)
	}
}

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"€€€", 2, "€€"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		if got := TruncateRunes(tc.in, tc.max); got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestSplitSentencesKeepsTrailingFragment(t *testing.T) {
	got := splitSentences("One. Two! Three without terminator")
	if len(got) != 3 {
		t.Fatalf("sentences = %d, want 3: %v", len(got), got)
	}
	if got[2] != "Three without terminator" {
		t.Errorf("fragment = %q", got[2])
	}
}
