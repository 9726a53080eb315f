// Package orchestrator runs the content generation pipeline: ownership
// check, cache check, quota check, provider dispatch with fallback, and
// persistence.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/generators"
	"server/internal/plan"
	"server/internal/providers/speech"
)

// ObjectStore persists binary assets and returns their public URL.
type ObjectStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Options carries the per-request generation knobs.
type Options struct {
	Count           int // diagrams
	NumQuestions    int // quiz
	Locale          string
	SourceContentID string // audio: narrate a specific artifact instead of the query's article
}

// Result is the outcome of an ensure call. Cached reports whether an
// existing artifact was returned without any generation work.
type Result struct {
	Content  *domain.Content
	Cached   bool
	Degraded bool
}

// Orchestrator coordinates a single generation request end to end.
type Orchestrator struct {
	registry     Registry
	contents     domain.ContentStore
	queries      domain.QueryStore
	gate         *plan.Gate
	speech       speech.Synthesizer
	objects      ObjectStore
	genTimeout   time.Duration
	defaultVoice string
	logger       zerolog.Logger
}

// Config bundles the orchestrator's collaborators.
type Config struct {
	Registry     Registry
	Contents     domain.ContentStore
	Queries      domain.QueryStore
	Gate         *plan.Gate
	Speech       speech.Synthesizer
	Objects      ObjectStore
	GenTimeout   time.Duration
	DefaultVoice string
	Logger       zerolog.Logger
}

func New(cfg Config) *Orchestrator {
	timeout := cfg.GenTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	voice := cfg.DefaultVoice
	if voice == "" {
		voice = "en-US-Standard-C"
	}
	return &Orchestrator{
		registry:     cfg.Registry,
		contents:     cfg.Contents,
		queries:      cfg.Queries,
		gate:         cfg.Gate,
		speech:       cfg.Speech,
		objects:      cfg.Objects,
		genTimeout:   timeout,
		defaultVoice: voice,
		logger:       cfg.Logger,
	}
}

// EnsureContent returns the artifact of the given type for the query,
// generating it if it does not exist yet. Audio requests are routed to
// EnsureAudio, which has its own regeneration semantics.
func (o *Orchestrator) EnsureContent(ctx context.Context, userID, queryID string, contentType domain.ContentType, opts Options) (*Result, error) {
	if contentType == domain.ContentTypeAudio {
		return o.EnsureAudio(ctx, userID, queryID, opts)
	}

	binding, ok := o.registry[contentType]
	if !ok {
		return nil, fmt.Errorf("no generator bound for content type %q", contentType)
	}

	query, err := o.authorizedQuery(ctx, userID, queryID)
	if err != nil {
		return nil, err
	}

	if binding.OneShot {
		existing, err := o.contents.FindExisting(ctx, queryID, contentType)
		if err == nil {
			return &Result{Content: existing, Cached: true, Degraded: existing.Degraded}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("cache check: %w", err)
		}
	}

	decision := o.gate.Check(ctx, userID, queryID, contentType)
	if !decision.Allowed {
		return nil, &domain.QuotaExceededError{
			ContentType: contentType,
			Current:     decision.Current,
			Limit:       decision.Limit,
			Reason:      decision.Reason,
		}
	}

	input, err := o.buildInput(ctx, query, contentType, opts)
	if err != nil {
		return nil, err
	}

	generated, err := o.dispatch(ctx, binding, input)
	if err != nil {
		return nil, err
	}

	content := &domain.Content{
		ID:              uuid.NewString(),
		QueryID:         queryID,
		ContentType:     contentType,
		Title:           generated.Title,
		Payload:         generated.Payload,
		Degraded:        generated.Degraded,
		GenerationCount: 1,
	}
	if err := o.contents.Create(ctx, content); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent request won the insert race; its artifact is the
			// canonical one.
			existing, ferr := o.contents.FindExisting(ctx, queryID, contentType)
			if ferr != nil {
				return nil, fmt.Errorf("re-fetch after conflict: %w", ferr)
			}
			o.logger.Info().Str("query_id", queryID).Str("content_type", string(contentType)).
				Msg("orchestrator: lost insert race, returning existing artifact")
			return &Result{Content: existing, Cached: true, Degraded: existing.Degraded}, nil
		}
		return nil, fmt.Errorf("persist artifact: %w", err)
	}

	o.logger.Info().Str("query_id", queryID).Str("content_type", string(contentType)).
		Bool("degraded", content.Degraded).Msg("orchestrator: artifact generated")
	return &Result{Content: content, Degraded: content.Degraded}, nil
}

// authorizedQuery loads the query and verifies the caller owns it.
func (o *Orchestrator) authorizedQuery(ctx context.Context, userID, queryID string) (*domain.Query, error) {
	query, err := o.queries.GetByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if query.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return query, nil
}

// buildInput assembles the strategy input. Every type except article derives
// from the stored article, which must exist first.
func (o *Orchestrator) buildInput(ctx context.Context, query *domain.Query, contentType domain.ContentType, opts Options) (generators.Input, error) {
	in := generators.Input{
		Topic:        query.Topic,
		Complexity:   query.Complexity,
		Locale:       opts.Locale,
		Count:        opts.Count,
		NumQuestions: opts.NumQuestions,
	}
	if contentType == domain.ContentTypeArticle {
		in.SourceText = query.QueryText
		return in, nil
	}

	article, err := o.contents.FindExisting(ctx, query.ID, domain.ContentTypeArticle)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return in, fmt.Errorf("%w: generate the article before %s", domain.ErrMissingSource, contentType)
		}
		return in, fmt.Errorf("load source article: %w", err)
	}
	text, err := generators.SourceTextFromPayload(article.Payload)
	if err != nil {
		return in, fmt.Errorf("%w: %v", domain.ErrMissingSource, err)
	}
	in.SourceText = text
	return in, nil
}

// dispatch runs the primary strategy under the per-call timeout and, when the
// binding has a fallback, recovers provider and parse failures with it.
func (o *Orchestrator) dispatch(ctx context.Context, binding Binding, in generators.Input) (*generators.Result, error) {
	genCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()

	result, err := binding.Primary.Generate(genCtx, in)
	if err == nil {
		return result, nil
	}
	if binding.Fallback == nil {
		return nil, err
	}
	if !errors.Is(err, domain.ErrProviderFailure) && !errors.Is(err, domain.ErrUnparsableOutput) {
		return nil, err
	}

	o.logger.Warn().Err(err).Str("strategy", binding.Primary.Name()).
		Msg("orchestrator: primary generator failed, using fallback")
	result, ferr := binding.Fallback.Generate(ctx, in)
	if ferr != nil {
		return nil, err
	}
	result.Degraded = true
	return result, nil
}
