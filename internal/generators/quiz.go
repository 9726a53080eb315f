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

const defaultQuizQuestions = 10

// QuizPayload holds the generated questions.
type QuizPayload struct {
	Questions []QuizQuestion `json:"questions"`
	Degraded  bool           `json:"degraded,omitempty"`
}

type QuizQuestion struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

type quizDoc struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizStrategy derives a multiple-choice quiz from the source article. It has
// no fallback: a wrong quiz is worse than no quiz.
type QuizStrategy struct {
	llm textgen.Completer
}

func NewQuizStrategy(llm textgen.Completer) *QuizStrategy {
	return &QuizStrategy{llm: llm}
}

func (s *QuizStrategy) Name() string { return "quiz" }

func (s *QuizStrategy) Generate(ctx context.Context, in Input) (*Result, error) {
	raw, err := s.llm.Complete(ctx, s.buildPrompt(in))
	if err != nil {
		return nil, err
	}
	doc, err := genai.Decode[quizDoc](s.llm.Name(), raw)
	if err != nil {
		return nil, err
	}
	questions := validQuestions(doc.Questions)
	if len(questions) == 0 {
		return nil, &domain.ParseError{Provider: s.llm.Name(), Err: errors.New("quiz has no usable questions")}
	}
	return &Result{
		Title:   coalesce(doc.Title, "Quiz: "+in.Topic),
		Payload: domain.MustMarshal(QuizPayload{Questions: questions}),
	}, nil
}

func (s *QuizStrategy) buildPrompt(in Input) string {
	n := in.NumQuestions
	if n <= 0 {
		n = defaultQuizQuestions
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Create a %d-question multiple-choice quiz about %q for %s.", n, in.Topic, audiencePhrase(in.Complexity))
	sb.WriteString(" Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"questions":[{"prompt":string,"options":string[],"answer":string,"explanation":string}]}`)
	sb.WriteString(". Each question has exactly four options and answer must equal one of them.")
	fmt.Fprintf(sb, " Base every question on this article: %q.", boundedSource(in.SourceText))
	sb.WriteString(languageClause(in.Locale))
	return sb.String()
}

func validQuestions(questions []QuizQuestion) []QuizQuestion {
	var out []QuizQuestion
	for _, q := range questions {
		if strings.TrimSpace(q.Prompt) == "" || strings.TrimSpace(q.Answer) == "" {
			continue
		}
		if len(q.Options) < 2 {
			continue
		}
		out = append(out, q)
	}
	return out
}

var _ Strategy = (*QuizStrategy)(nil)
