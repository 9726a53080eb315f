package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// ContentRepositoryPG implements domain.ContentStore on PostgreSQL via the
// marker-logged SQL executor.
type ContentRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewContentRepository creates a content repository backed by PostgreSQL.
func NewContentRepository(sql infra.SQLExecutor) *ContentRepositoryPG {
	return &ContentRepositoryPG{sql: sql}
}

// FindExisting returns the newest artifact of the given type for the query,
// or domain.ErrNotFound.
func (r *ContentRepositoryPG) FindExisting(ctx context.Context, queryID string, contentType domain.ContentType) (*domain.Content, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectContentByQueryAndType, queryID, string(contentType))
	return scanContent(row)
}

// GetByID fetches one artifact by identifier.
func (r *ContentRepositoryPG) GetByID(ctx context.Context, contentID string) (*domain.Content, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectContentByID, contentID)
	return scanContent(row)
}

// CountByType counts historical artifacts of a type for a query. Audio rows
// count once per regeneration through generation_count.
func (r *ContentRepositoryPG) CountByType(ctx context.Context, queryID string, contentType domain.ContentType) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QCountContentsByType, queryID, string(contentType))
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new artifact. A concurrent duplicate for a one-shot type
// trips the partial unique index and surfaces as domain.ErrConflict.
func (r *ContentRepositoryPG) Create(ctx context.Context, content *domain.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertContent,
		content.ID,
		content.QueryID,
		string(content.ContentType),
		content.Title,
		content.Payload,
		content.StorageURL,
		content.DerivedKey,
		content.Degraded,
	)
	if err := row.Scan(&content.GeneratedAt); err != nil {
		if infra.IsUniqueViolation(err) {
			return fmt.Errorf("create %s for query %s: %w", content.ContentType, content.QueryID, domain.ErrConflict)
		}
		return err
	}
	content.GenerationCount = 1
	return nil
}

// UpsertByDerivedKey creates or overwrites the artifact stored under the
// content's derived key, bumping its generation count on overwrite.
func (r *ContentRepositoryPG) UpsertByDerivedKey(ctx context.Context, content *domain.Content) (*domain.Content, error) {
	if content.DerivedKey == "" {
		return nil, fmt.Errorf("upsert: derived key is required")
	}
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertContentByDerivedKey,
		content.ID,
		content.QueryID,
		string(content.ContentType),
		content.Title,
		content.Payload,
		content.StorageURL,
		content.DerivedKey,
	)
	return scanContent(row)
}

// ListByQuery returns every artifact generated for the query.
func (r *ContentRepositoryPG) ListByQuery(ctx context.Context, queryID string) ([]domain.Content, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListContentsByQuery, queryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Content
	for rows.Next() {
		c, err := scanContentFrom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// DeleteByID removes one artifact scoped to its owning query.
func (r *ContentRepositoryPG) DeleteByID(ctx context.Context, queryID, contentID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteContentByID, contentID, queryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row pgx.Row) (*domain.Content, error) {
	c, err := scanContentFrom(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanContentFrom(row rowScanner) (*domain.Content, error) {
	var (
		c     domain.Content
		ctype string
	)
	if err := row.Scan(
		&c.ID,
		&c.QueryID,
		&ctype,
		&c.Title,
		&c.Payload,
		&c.StorageURL,
		&c.DerivedKey,
		&c.GenerationCount,
		&c.Degraded,
		&c.GeneratedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.ContentType = domain.ContentType(ctype)
	return &c, nil
}

var _ domain.ContentStore = (*ContentRepositoryPG)(nil)
