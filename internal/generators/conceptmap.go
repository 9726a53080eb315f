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

// ConceptMapPayload is a graph of ideas with labeled edges.
type ConceptMapPayload struct {
	Nodes    []ConceptNode `json:"nodes"`
	Edges    []ConceptEdge `json:"edges"`
	Degraded bool          `json:"degraded,omitempty"`
}

type ConceptNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type ConceptEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

type conceptMapDoc struct {
	Title string        `json:"title"`
	Nodes []ConceptNode `json:"nodes"`
	Edges []ConceptEdge `json:"edges"`
}

// ConceptMapStrategy derives a concept map from the source article.
type ConceptMapStrategy struct {
	llm textgen.Completer
}

func NewConceptMapStrategy(llm textgen.Completer) *ConceptMapStrategy {
	return &ConceptMapStrategy{llm: llm}
}

func (s *ConceptMapStrategy) Name() string { return "concept-map" }

func (s *ConceptMapStrategy) Generate(ctx context.Context, in Input) (*Result, error) {
	raw, err := s.llm.Complete(ctx, s.buildPrompt(in))
	if err != nil {
		return nil, err
	}
	doc, err := genai.Decode[conceptMapDoc](s.llm.Name(), raw)
	if err != nil {
		return nil, err
	}
	nodes := validNodes(doc.Nodes)
	if len(nodes) == 0 {
		return nil, &domain.ParseError{Provider: s.llm.Name(), Err: errors.New("no usable nodes in completion")}
	}
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}
	var edges []ConceptEdge
	for _, e := range doc.Edges {
		if known[e.From] && known[e.To] {
			edges = append(edges, e)
		}
	}
	payload := ConceptMapPayload{Nodes: nodes, Edges: edges}
	return &Result{
		Title:   coalesce(doc.Title, "Concept map: "+in.Topic),
		Payload: domain.MustMarshal(payload),
	}, nil
}

func validNodes(nodes []ConceptNode) []ConceptNode {
	var out []ConceptNode
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" || strings.TrimSpace(n.Label) == "" || seen[id] {
			continue
		}
		seen[id] = true
		n.ID = id
		out = append(out, n)
	}
	return out
}

func (s *ConceptMapStrategy) buildPrompt(in Input) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Build a concept map for %q aimed at %s.", in.Topic, audiencePhrase(in.Complexity))
	sb.WriteString(" Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"nodes":[{"id":string,"label":string}],"edges":[{"from":string,"to":string,"label":string}]}`)
	sb.WriteString(". Node ids are short slugs; every edge references existing node ids.")
	fmt.Fprintf(sb, " Extract the concepts from this article: %q.", boundedSource(in.SourceText))
	sb.WriteString(languageClause(in.Locale))
	return sb.String()
}

var _ Strategy = (*ConceptMapStrategy)(nil)
