// Package generators contains the per-type strategies that turn a query's
// topic and source article into learning artifact payloads.
package generators

import (
	"context"
	"encoding/json"

	"server/internal/domain"
)

// Input is everything a strategy may use to generate an artifact.
type Input struct {
	Topic        string
	Complexity   domain.Complexity
	SourceText   string
	Locale       string
	Count        int // diagrams only
	NumQuestions int // quiz only
}

// Result is a generated artifact payload plus its display title. Degraded
// marks output produced by a deterministic fallback rather than the primary
// generator.
type Result struct {
	Title    string
	Payload  json.RawMessage
	Degraded bool
}

// Strategy generates one artifact type. Primary strategies fail with
// *domain.GenerationError or *domain.ParseError; fallback strategies are
// local and deterministic and only fail on empty input.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, in Input) (*Result, error)
}
