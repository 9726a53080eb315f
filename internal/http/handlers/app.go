// Package handlers holds the HTTP endpoints of the content API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/orchestrator"
)

// ContentService is the slice of the orchestrator the handlers need.
type ContentService interface {
	EnsureContent(ctx context.Context, userID, queryID string, contentType domain.ContentType, opts orchestrator.Options) (*orchestrator.Result, error)
	EnsureAudio(ctx context.Context, userID, queryID string, opts orchestrator.Options) (*orchestrator.Result, error)
}

// AssetReader loads stored binary assets for export.
type AssetReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
	KeyFromURL(url string) string
}

type App struct {
	Service  ContentService
	Contents domain.ContentStore
	Queries  domain.QueryStore
	Assets   AssetReader
	Logger   zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, tag, msg string) {
	a.json(w, code, map[string]string{"error": tag, "message": msg})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// domainError maps a pipeline error onto the wire. Quota denials carry the
// usage numbers so clients can render "N of M used".
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	var qerr *domain.QuotaExceededError
	if errors.As(err, &qerr) {
		a.json(w, http.StatusForbidden, map[string]any{
			"error":   "quota_exceeded",
			"message": qerr.Reason,
			"current": qerr.Current,
			"limit":   qerr.Limit,
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "query belongs to another user")
	case errors.Is(err, domain.ErrMissingSource):
		a.error(w, http.StatusConflict, "missing_source", err.Error())
	case errors.Is(err, domain.ErrProviderFailure), errors.Is(err, domain.ErrUnparsableOutput):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("generation failed")
		a.error(w, http.StatusBadGateway, "generation_failed", "content generation failed, please retry")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// authorizeQuery checks that the query exists and belongs to the caller.
func (a *App) authorizeQuery(r *http.Request, queryID string) (*domain.Query, error) {
	query, err := a.Queries.GetByID(r.Context(), queryID)
	if err != nil {
		return nil, err
	}
	if query.UserID != middleware.UserIDFromContext(r.Context()) {
		return nil, domain.ErrForbidden
	}
	return query, nil
}
