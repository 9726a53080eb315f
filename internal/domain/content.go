package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContentType enumerates the learning artifacts that can be derived from a query.
type ContentType string

const (
	ContentTypeArticle      ContentType = "article"
	ContentTypeQuiz         ContentType = "quiz"
	ContentTypeFlashcards   ContentType = "flashcards"
	ContentTypePresentation ContentType = "presentation"
	ContentTypeDiagrams     ContentType = "diagrams"
	ContentTypeConceptMap   ContentType = "concept-map"
	ContentTypeAudio        ContentType = "audio"
)

// ContentTypes lists every supported type in a stable order.
var ContentTypes = []ContentType{
	ContentTypeArticle,
	ContentTypeQuiz,
	ContentTypeFlashcards,
	ContentTypePresentation,
	ContentTypeDiagrams,
	ContentTypeConceptMap,
	ContentTypeAudio,
}

// ParseContentType validates a raw string against the supported enumeration.
func ParseContentType(raw string) (ContentType, error) {
	for _, ct := range ContentTypes {
		if string(ct) == raw {
			return ct, nil
		}
	}
	return "", fmt.Errorf("unsupported content type %q", raw)
}

// Content is one generated learning object owned by a query. The payload is
// type-specific and opaque outside the generator that produced it.
type Content struct {
	ID              string
	QueryID         string
	ContentType     ContentType
	Title           string
	Payload         json.RawMessage
	StorageURL      string
	DerivedKey      string
	GenerationCount int
	Degraded        bool
	GeneratedAt     time.Time
	UpdatedAt       time.Time
}

// AudioDerivedKey builds the stable key under which narration for a content
// row is stored and regenerated in place.
func AudioDerivedKey(contentID string) string {
	return contentID + "-audio"
}

// MustMarshal encodes v as a JSON payload and panics on failure. It is meant
// for payload structs whose shape is fully controlled by the caller.
func MustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
