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

const defaultFlashcardCount = 15

// FlashcardsPayload holds the generated card deck.
type FlashcardsPayload struct {
	Cards    []Flashcard `json:"cards"`
	Degraded bool        `json:"degraded,omitempty"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type flashcardsDoc struct {
	Title string      `json:"title"`
	Cards []Flashcard `json:"cards"`
}

// FlashcardsStrategy derives a term/definition deck from the source article.
type FlashcardsStrategy struct {
	llm textgen.Completer
}

func NewFlashcardsStrategy(llm textgen.Completer) *FlashcardsStrategy {
	return &FlashcardsStrategy{llm: llm}
}

func (s *FlashcardsStrategy) Name() string { return "flashcards" }

func (s *FlashcardsStrategy) Generate(ctx context.Context, in Input) (*Result, error) {
	raw, err := s.llm.Complete(ctx, s.buildPrompt(in))
	if err != nil {
		return nil, err
	}
	doc, err := genai.Decode[flashcardsDoc](s.llm.Name(), raw)
	if err != nil {
		return nil, err
	}
	var cards []Flashcard
	for _, c := range doc.Cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			continue
		}
		cards = append(cards, c)
	}
	if len(cards) == 0 {
		return nil, &domain.ParseError{Provider: s.llm.Name(), Err: errors.New("deck has no usable cards")}
	}
	return &Result{
		Title:   coalesce(doc.Title, "Flashcards: "+in.Topic),
		Payload: domain.MustMarshal(FlashcardsPayload{Cards: cards}),
	}, nil
}

func (s *FlashcardsStrategy) buildPrompt(in Input) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Create %d study flashcards about %q for %s.", defaultFlashcardCount, in.Topic, audiencePhrase(in.Complexity))
	sb.WriteString(" Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"cards":[{"front":string,"back":string}]}`)
	sb.WriteString(". Fronts are terms or questions, backs are concise answers.")
	fmt.Fprintf(sb, " Use only facts from this article: %q.", boundedSource(in.SourceText))
	sb.WriteString(languageClause(in.Locale))
	return sb.String()
}

var _ Strategy = (*FlashcardsStrategy)(nil)
