package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/generators"
	"server/internal/plan"
)

// AudioPayload is the persisted narration metadata. CharLimit and Truncated
// record the tier boundary applied before synthesis so clients can detect
// shortened narration.
type AudioPayload struct {
	URL             string `json:"url"`
	Voice           string `json:"voice"`
	SourceContentID string `json:"sourceContentId"`
	CharCount       int    `json:"charCount"`
	CharLimit       int    `json:"charLimit"`
	Truncated       bool   `json:"truncated"`
}

// EnsureAudio synthesizes narration for one of the query's artifacts, the
// article by default. Unlike the one-shot types, audio regenerates in place:
// each pass overwrites the row stored under the source's derived key and
// increments its generation count, which is what the numeric quota counts.
func (o *Orchestrator) EnsureAudio(ctx context.Context, userID, queryID string, opts Options) (*Result, error) {
	query, err := o.authorizedQuery(ctx, userID, queryID)
	if err != nil {
		return nil, err
	}

	decision := o.gate.Check(ctx, userID, queryID, domain.ContentTypeAudio)
	if !decision.Allowed {
		return nil, &domain.QuotaExceededError{
			ContentType: domain.ContentTypeAudio,
			Current:     decision.Current,
			Limit:       decision.Limit,
			Reason:      decision.Reason,
		}
	}

	article, err := o.narrationSource(ctx, queryID, opts.SourceContentID)
	if err != nil {
		return nil, err
	}
	text, err := generators.SourceTextFromPayload(article.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingSource, err)
	}

	charLimit := plan.AudioCharLimit(decision.Tier)
	charCount := utf8.RuneCountInString(text)
	truncated := charCount > charLimit
	if truncated {
		text = generators.TruncateRunes(text, charLimit)
		charCount = charLimit
	}

	voice := voiceForLocale(opts.Locale, o.defaultVoice)
	synthCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()
	audio, err := o.speech.Synthesize(synthCtx, text, voice)
	if err != nil {
		return nil, err
	}

	derivedKey := domain.AudioDerivedKey(article.ID)
	url, err := o.objects.Write(ctx, "audio/"+derivedKey+".mp3", audio)
	if err != nil {
		return nil, fmt.Errorf("store narration: %w", err)
	}

	payload := AudioPayload{
		URL:             url,
		Voice:           voice,
		SourceContentID: article.ID,
		CharCount:       charCount,
		CharLimit:       charLimit,
		Truncated:       truncated,
	}
	content := &domain.Content{
		ID:          uuid.NewString(),
		QueryID:     queryID,
		ContentType: domain.ContentTypeAudio,
		Title:       "Narration: " + query.Topic,
		Payload:     domain.MustMarshal(payload),
		StorageURL:  url,
		DerivedKey:  derivedKey,
	}
	saved, err := o.contents.UpsertByDerivedKey(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("persist narration: %w", err)
	}

	o.logger.Info().Str("query_id", queryID).Str("derived_key", derivedKey).
		Int("generation_count", saved.GenerationCount).Bool("truncated", truncated).
		Msg("orchestrator: narration generated")
	return &Result{Content: saved}, nil
}

// narrationSource resolves the artifact whose text will be read aloud. With
// an explicit content ID the caller picks the artifact; it must still belong
// to the query, and a foreign ID reads as not found rather than leaking
// existence. Without one, the query's article is the source.
func (o *Orchestrator) narrationSource(ctx context.Context, queryID, contentID string) (*domain.Content, error) {
	if contentID != "" {
		content, err := o.contents.GetByID(ctx, contentID)
		if err != nil {
			return nil, err
		}
		if content.QueryID != queryID {
			return nil, domain.ErrNotFound
		}
		return content, nil
	}
	article, err := o.contents.FindExisting(ctx, queryID, domain.ContentTypeArticle)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: generate the article before narration", domain.ErrMissingSource)
		}
		return nil, fmt.Errorf("load source article: %w", err)
	}
	return article, nil
}

// voiceForLocale picks a synthesis voice for the request locale, falling back
// to the configured default.
func voiceForLocale(locale, fallback string) string {
	switch locale {
	case "es":
		return "es-ES-Standard-A"
	case "fr":
		return "fr-FR-Standard-A"
	case "de":
		return "de-DE-Standard-B"
	case "pt":
		return "pt-BR-Standard-A"
	case "en":
		return "en-US-Standard-C"
	}
	return fallback
}
