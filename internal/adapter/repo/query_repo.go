package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// QueryRepositoryPG implements domain.QueryStore backed by PostgreSQL.
type QueryRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewQueryRepository creates a new query repository.
func NewQueryRepository(sql infra.SQLExecutor) *QueryRepositoryPG {
	return &QueryRepositoryPG{sql: sql}
}

// GetByID fetches a research query by identifier.
func (r *QueryRepositoryPG) GetByID(ctx context.Context, queryID string) (*domain.Query, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectQueryByID, queryID)
	var (
		q          domain.Query
		complexity string
		status     string
	)
	if err := row.Scan(&q.ID, &q.UserID, &q.QueryText, &q.Topic, &complexity, &status, &q.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	q.Complexity = domain.Complexity(complexity)
	q.Status = domain.QueryStatus(status)
	return &q, nil
}

var _ domain.QueryStore = (*QueryRepositoryPG)(nil)
