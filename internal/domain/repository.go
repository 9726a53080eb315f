package domain

import "context"

// ContentStore persists generated learning artifacts. Create must surface
// ErrConflict when a concurrent insert violates the one-per-type constraint;
// callers decide how to recover, the store never retries.
type ContentStore interface {
	FindExisting(ctx context.Context, queryID string, contentType ContentType) (*Content, error)
	GetByID(ctx context.Context, contentID string) (*Content, error)
	CountByType(ctx context.Context, queryID string, contentType ContentType) (int, error)
	Create(ctx context.Context, content *Content) error
	UpsertByDerivedKey(ctx context.Context, content *Content) (*Content, error)
	ListByQuery(ctx context.Context, queryID string) ([]Content, error)
	DeleteByID(ctx context.Context, queryID, contentID string) error
}

// QueryStore reads research queries.
type QueryStore interface {
	GetByID(ctx context.Context, queryID string) (*Query, error)
}

// UserStore reads accounts for plan resolution.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*User, error)
}
