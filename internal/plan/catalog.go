// Package plan holds the static plan catalog and the quota gate that
// decides whether a generation request may proceed.
package plan

import "server/internal/domain"

// Unlimited is the sentinel limit for types a tier may generate without a
// numeric cap.
const Unlimited = 999

// Limits are the per-tier generation caps and feature flags.
type Limits struct {
	Audio         int
	Presentations int
	Flashcards    int
	Quizzes       int
	AudioOnDemand bool
}

// Catalog maps a plan tier to its limits. Pure data, no persistence.
type Catalog map[domain.PlanTier]Limits

// DefaultCatalog returns the authoritative plan table.
func DefaultCatalog() Catalog {
	return Catalog{
		domain.PlanFree: {
			Audio:         1,
			Presentations: 1,
			Flashcards:    1,
			Quizzes:       1,
			AudioOnDemand: false,
		},
		domain.PlanPro: {
			Audio:         5,
			Presentations: Unlimited,
			Flashcards:    5,
			Quizzes:       Unlimited,
			AudioOnDemand: true,
		},
	}
}

// LimitFor resolves the numeric cap for a tier and content type. Types absent
// from the table (article, diagrams, concept map) have no numeric quota; their
// one-per-query behavior is enforced by the existence check instead.
func (c Catalog) LimitFor(tier domain.PlanTier, contentType domain.ContentType) int {
	limits, ok := c[tier]
	if !ok {
		limits = c[domain.PlanFree]
	}
	switch contentType {
	case domain.ContentTypeAudio:
		return limits.Audio
	case domain.ContentTypePresentation:
		return limits.Presentations
	case domain.ContentTypeFlashcards:
		return limits.Flashcards
	case domain.ContentTypeQuiz:
		return limits.Quizzes
	}
	return Unlimited
}

// AudioOnDemand reports whether the tier may regenerate narration after the
// first pass.
func (c Catalog) AudioOnDemand(tier domain.PlanTier) bool {
	limits, ok := c[tier]
	if !ok {
		return false
	}
	return limits.AudioOnDemand
}

// AudioCharLimit returns how many characters of source text may be sent to
// the speech provider for the tier. The boundary is recorded in the persisted
// payload so callers can detect truncated narration.
func AudioCharLimit(tier domain.PlanTier) int {
	if tier == domain.PlanPro {
		return 10000
	}
	return 5000
}
