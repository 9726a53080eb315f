package domain

import (
	"fmt"
	"time"
)

// Complexity enumerates the audience levels a query can target.
type Complexity string

const (
	ComplexityElementary Complexity = "elementary"
	ComplexityHighSchool Complexity = "high-school"
	ComplexityCollege    Complexity = "college"
	ComplexityAdult      Complexity = "adult"
)

// ParseComplexity validates a raw complexity value, defaulting to adult when
// empty.
func ParseComplexity(raw string) (Complexity, error) {
	switch Complexity(raw) {
	case ComplexityElementary, ComplexityHighSchool, ComplexityCollege, ComplexityAdult:
		return Complexity(raw), nil
	case "":
		return ComplexityAdult, nil
	}
	return "", fmt.Errorf("unsupported complexity %q", raw)
}

// QueryStatus enumerates the research lifecycle states.
type QueryStatus string

const (
	QueryStatusPending   QueryStatus = "pending"
	QueryStatusCompleted QueryStatus = "completed"
	QueryStatusFailed    QueryStatus = "failed"
)

// Query is a user's research request. Immutable once completed except for
// status transitions.
type Query struct {
	ID         string
	UserID     string
	QueryText  string
	Topic      string
	Complexity Complexity
	Status     QueryStatus
	CreatedAt  time.Time
}
