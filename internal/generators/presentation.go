package generators

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/genai"
	"server/internal/providers/textgen"
)

const defaultSlideCount = 10

// PresentationPayload holds the ordered slide list. Degraded marks decks
// assembled by the deterministic fallback, which also produces fewer slides.
type PresentationPayload struct {
	Slides      []Slide `json:"slides"`
	TotalSlides int     `json:"totalSlides"`
	Degraded    bool    `json:"degraded,omitempty"`
}

type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

type presentationDoc struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// PresentationStrategy derives a slide deck from the source article.
type PresentationStrategy struct {
	llm textgen.Completer
}

func NewPresentationStrategy(llm textgen.Completer) *PresentationStrategy {
	return &PresentationStrategy{llm: llm}
}

func (s *PresentationStrategy) Name() string { return "presentation" }

func (s *PresentationStrategy) Generate(ctx context.Context, in Input) (*Result, error) {
	raw, err := s.llm.Complete(ctx, s.buildPrompt(in))
	if err != nil {
		return nil, err
	}
	doc, err := genai.Decode[presentationDoc](s.llm.Name(), raw)
	if err != nil {
		return nil, err
	}
	var slides []Slide
	for _, slide := range doc.Slides {
		if strings.TrimSpace(slide.Title) == "" && len(slide.Bullets) == 0 {
			continue
		}
		slides = append(slides, slide)
	}
	if len(slides) == 0 {
		return nil, &domain.ParseError{Provider: s.llm.Name(), Err: errors.New("deck has no usable slides")}
	}
	payload := PresentationPayload{Slides: slides, TotalSlides: len(slides)}
	return &Result{
		Title:   coalesce(doc.Title, in.Topic),
		Payload: domain.MustMarshal(payload),
	}, nil
}

func (s *PresentationStrategy) buildPrompt(in Input) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Create a %d-slide presentation about %q for %s.", defaultSlideCount, in.Topic, audiencePhrase(in.Complexity))
	sb.WriteString(" Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"slides":[{"title":string,"bullets":string[]}]}`)
	sb.WriteString(". Each slide carries three to five short bullets.")
	fmt.Fprintf(sb, " Summarize this article: %q.", boundedSource(in.SourceText))
	sb.WriteString(languageClause(in.Locale))
	return sb.String()
}

var _ Strategy = (*PresentationStrategy)(nil)
