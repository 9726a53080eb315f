package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrMissingSource    = errors.New("source article missing")
	ErrConflict         = errors.New("duplicate content")
	ErrProviderFailure  = errors.New("provider failure")
	ErrUnparsableOutput = errors.New("unparsable provider output")
)

// QuotaExceededError carries the usage numbers a client needs to render a
// "you have used N of M" message. It matches ErrQuotaExceeded under errors.Is.
type QuotaExceededError struct {
	ContentType ContentType
	Current     int
	Limit       int
	Reason      string
}

func (e *QuotaExceededError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s quota exceeded (%d of %d)", e.ContentType, e.Current, e.Limit)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// GenerationError wraps a failure from an external generation provider,
// including timeouts and transport errors. It matches ErrProviderFailure.
type GenerationError struct {
	Provider string
	Stage    string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (provider=%s stage=%s): %v", e.Provider, e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	return target == ErrProviderFailure
}

// ParseError reports that a provider responded but its completion could not
// be decoded into the expected structured payload. Kept distinct from
// GenerationError so callers can choose between fallback and reprompt.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable output (provider=%s): %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return target == ErrUnparsableOutput
}
