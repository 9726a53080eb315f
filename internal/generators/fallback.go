package generators

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"server/internal/domain"
)

const (
	fallbackSlideCount   = 5
	fallbackBulletsSlide = 3
)

// PresentationFallback builds a short deck directly from the source
// text without calling any provider. It runs when the primary
// presentation strategy fails, and its output is always marked
// degraded.
type PresentationFallback struct{}

func NewPresentationFallback() *PresentationFallback { return &PresentationFallback{} }

func (f *PresentationFallback) Name() string { return "presentation-fallback" }

func (f *PresentationFallback) Generate(_ context.Context, in Input) (*Result, error) {
	sentences := splitSentences(in.SourceText)
	if len(sentences) == 0 {
		sentences = []string{"An overview of " + in.Topic + "."}
	}

	caser := cases.Title(language.Make(coalesce(in.Locale, "en")))
	title := caser.String(in.Topic)

	slideCount := fallbackSlideCount
	perSlide := (len(sentences) + slideCount - 1) / slideCount
	if perSlide < 1 {
		perSlide = 1
	}
	if perSlide > fallbackBulletsSlide {
		perSlide = fallbackBulletsSlide
	}

	var slides []Slide
	for start := 0; start < len(sentences) && len(slides) < slideCount; start += perSlide {
		end := start + perSlide
		if end > len(sentences) {
			end = len(sentences)
		}
		bullets := sentences[start:end]
		slides = append(slides, Slide{
			Title:   caser.String(firstWords(bullets[0], 6)),
			Bullets: bullets,
		})
	}
	if len(slides) > 0 {
		slides[0].Title = title
	}

	payload := PresentationPayload{
		Slides:      slides,
		TotalSlides: len(slides),
		Degraded:    true,
	}
	return &Result{
		Title:    title,
		Payload:  domain.MustMarshal(payload),
		Degraded: true,
	}, nil
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.TrimRight(strings.Join(words, " "), ".,;:")
}

var _ Strategy = (*PresentationFallback)(nil)
