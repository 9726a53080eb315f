package orchestrator

import (
	"server/internal/domain"
	"server/internal/generators"
	"server/internal/providers/textgen"
)

// Binding describes how one content type is produced. OneShot marks types
// where an existing artifact for the query short-circuits generation; it is
// deliberately a table entry rather than scattered branching so the policy
// can be tuned per type.
type Binding struct {
	Primary  generators.Strategy
	Fallback generators.Strategy
	OneShot  bool
}

// Registry maps content types to their generation bindings. Audio is not in
// the registry: it is synthesized from a stored article rather than generated
// by a text strategy, and is handled by EnsureAudio.
type Registry map[domain.ContentType]Binding

// NewRegistry wires the default bindings over a single text provider. Only
// the presentation has a deterministic fallback; a wrong quiz or diagram is
// worse than an explicit failure.
func NewRegistry(llm textgen.Completer) Registry {
	return Registry{
		domain.ContentTypeArticle: {
			Primary: generators.NewArticleStrategy(llm),
			OneShot: true,
		},
		domain.ContentTypeQuiz: {
			Primary: generators.NewQuizStrategy(llm),
			OneShot: true,
		},
		domain.ContentTypeFlashcards: {
			Primary: generators.NewFlashcardsStrategy(llm),
			OneShot: true,
		},
		domain.ContentTypePresentation: {
			Primary:  generators.NewPresentationStrategy(llm),
			Fallback: generators.NewPresentationFallback(),
			OneShot:  true,
		},
		domain.ContentTypeDiagrams: {
			Primary: generators.NewDiagramsStrategy(llm),
			OneShot: true,
		},
		domain.ContentTypeConceptMap: {
			Primary: generators.NewConceptMapStrategy(llm),
			OneShot: true,
		},
	}
}
