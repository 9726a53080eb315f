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

// DefaultDiagramCount is used when the request does not say how many
// diagrams to produce.
const DefaultDiagramCount = 3

const maxDiagramCount = 6

// DiagramsPayload holds the generated diagram set.
type DiagramsPayload struct {
	Diagrams     []Diagram `json:"diagrams"`
	DiagramCount int       `json:"diagramCount"`
	Degraded     bool      `json:"degraded,omitempty"`
}

type Diagram struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Mermaid     string `json:"mermaid"`
}

type diagramsDoc struct {
	Title    string    `json:"title"`
	Diagrams []Diagram `json:"diagrams"`
}

// DiagramsStrategy derives mermaid diagrams from the source article.
type DiagramsStrategy struct {
	llm textgen.Completer
}

func NewDiagramsStrategy(llm textgen.Completer) *DiagramsStrategy {
	return &DiagramsStrategy{llm: llm}
}

func (s *DiagramsStrategy) Name() string { return "diagrams" }

func (s *DiagramsStrategy) Generate(ctx context.Context, in Input) (*Result, error) {
	raw, err := s.llm.Complete(ctx, s.buildPrompt(in))
	if err != nil {
		return nil, err
	}
	doc, err := genai.Decode[diagramsDoc](s.llm.Name(), raw)
	if err != nil {
		return nil, err
	}
	var diagrams []Diagram
	for _, d := range doc.Diagrams {
		if strings.TrimSpace(d.Mermaid) == "" {
			continue
		}
		diagrams = append(diagrams, d)
	}
	if len(diagrams) == 0 {
		return nil, &domain.ParseError{Provider: s.llm.Name(), Err: errors.New("no usable diagrams in completion")}
	}
	payload := DiagramsPayload{Diagrams: diagrams, DiagramCount: len(diagrams)}
	return &Result{
		Title:   coalesce(doc.Title, "Diagrams: "+in.Topic),
		Payload: domain.MustMarshal(payload),
	}, nil
}

func (s *DiagramsStrategy) buildPrompt(in Input) string {
	count := in.Count
	if count <= 0 {
		count = DefaultDiagramCount
	}
	if count > maxDiagramCount {
		count = maxDiagramCount
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Create %d mermaid diagrams explaining %q to %s.", count, in.Topic, audiencePhrase(in.Complexity))
	sb.WriteString(" Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"diagrams":[{"title":string,"description":string,"mermaid":string}]}`)
	sb.WriteString(". The mermaid field holds valid mermaid source only.")
	fmt.Fprintf(sb, " Illustrate concepts from this article: %q.", boundedSource(in.SourceText))
	sb.WriteString(languageClause(in.Locale))
	return sb.String()
}

var _ Strategy = (*DiagramsStrategy)(nil)
