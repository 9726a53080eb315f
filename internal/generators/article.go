package generators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/genai"
	"server/internal/providers/textgen"
)

// ArticlePayload is the base artifact every derived type reads its source
// text from.
type ArticlePayload struct {
	Text     string   `json:"text"`
	Sections []string `json:"sections,omitempty"`
	Degraded bool     `json:"degraded,omitempty"`
}

type articleDoc struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Sections []string `json:"sections"`
}

// ArticleStrategy writes the research article for a query from its topic and
// raw query text. It is the only strategy that does not need a source
// article.
type ArticleStrategy struct {
	llm textgen.Completer
}

func NewArticleStrategy(llm textgen.Completer) *ArticleStrategy {
	return &ArticleStrategy{llm: llm}
}

func (s *ArticleStrategy) Name() string { return "article" }

func (s *ArticleStrategy) Generate(ctx context.Context, in Input) (*Result, error) {
	prompt := s.buildPrompt(in)
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	doc, err := genai.Decode[articleDoc](s.llm.Name(), raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, &domain.ParseError{Provider: s.llm.Name(), Err: errors.New("article text is empty")}
	}
	payload := ArticlePayload{Text: doc.Text, Sections: doc.Sections}
	return &Result{
		Title:   coalesce(doc.Title, in.Topic),
		Payload: domain.MustMarshal(payload),
	}, nil
}

func (s *ArticleStrategy) buildPrompt(in Input) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are an educational writer. Write a clear research article about %q for %s.", in.Topic, audiencePhrase(in.Complexity))
	sb.WriteString(" Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"text":string,"sections":string[]}`)
	sb.WriteString(". The text field holds the full article; sections lists its headings in order.")
	if src := boundedSource(in.SourceText); src != "" {
		fmt.Fprintf(sb, " Base the article on this request: %q.", src)
	}
	sb.WriteString(languageClause(in.Locale))
	return sb.String()
}

var _ Strategy = (*ArticleStrategy)(nil)

// SourceTextFromPayload extracts the narration/derivation text from a stored
// article payload.
func SourceTextFromPayload(payload []byte) (string, error) {
	var doc ArticlePayload
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return "", errors.New("article payload has no text")
	}
	return doc.Text, nil
}
