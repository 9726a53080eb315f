package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/orchestrator"
	"server/pkg/zip"
)

type generateRequest struct {
	Count        int `json:"count"`
	NumQuestions int `json:"num_questions"`
}

type contentDTO struct {
	ID              string          `json:"id"`
	QueryID         string          `json:"query_id"`
	ContentType     string          `json:"content_type"`
	Title           string          `json:"title"`
	Payload         json.RawMessage `json:"payload"`
	StorageURL      string          `json:"storage_url,omitempty"`
	GenerationCount int             `json:"generation_count,omitempty"`
	Degraded        bool            `json:"degraded,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

func toContentDTO(c *domain.Content) contentDTO {
	return contentDTO{
		ID:              c.ID,
		QueryID:         c.QueryID,
		ContentType:     string(c.ContentType),
		Title:           c.Title,
		Payload:         c.Payload,
		StorageURL:      c.StorageURL,
		GenerationCount: c.GenerationCount,
		Degraded:        c.Degraded,
		GeneratedAt:     c.GeneratedAt,
	}
}

// GenerateContent ensures one artifact of the requested type exists for the
// query, generating it when needed.
func (a *App) GenerateContent(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	queryID := chi.URLParam(r, "query_id")
	contentType, err := domain.ParseContentType(chi.URLParam(r, "type"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var req generateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	result, err := a.Service.EnsureContent(r.Context(), userID, queryID, contentType, orchestrator.Options{
		Count:        req.Count,
		NumQuestions: req.NumQuestions,
		Locale:       middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Cached {
		status = http.StatusOK
	}
	a.json(w, status, map[string]any{
		"success":  true,
		"cached":   result.Cached,
		"degraded": result.Degraded,
		"content":  toContentDTO(result.Content),
	})
}

type audioRequest struct {
	ContentID string `json:"content_id"`
}

// GenerateAudio synthesizes (or regenerates) narration. By default the
// query's article is read aloud; the body may name another artifact via
// content_id.
func (a *App) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	queryID := chi.URLParam(r, "query_id")

	var req audioRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	result, err := a.Service.EnsureAudio(r.Context(), userID, queryID, orchestrator.Options{
		Locale:          middleware.LocaleFromContext(r.Context()),
		SourceContentID: req.ContentID,
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"cached":  false,
		"content": toContentDTO(result.Content),
	})
}

// ListContents returns every artifact generated for the query.
func (a *App) ListContents(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "query_id")
	if _, err := a.authorizeQuery(r, queryID); err != nil {
		a.domainError(w, r, err)
		return
	}

	contents, err := a.Contents.ListByQuery(r.Context(), queryID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	dtos := make([]contentDTO, 0, len(contents))
	for i := range contents {
		dtos = append(dtos, toContentDTO(&contents[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"contents": dtos})
}

// ExportContents bundles every artifact of the query into a zip: one JSON
// file per artifact plus the narration audio when present.
func (a *App) ExportContents(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "query_id")
	query, err := a.authorizeQuery(r, queryID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	contents, err := a.Contents.ListByQuery(r.Context(), queryID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	var entries []zip.Entry
	for i := range contents {
		c := &contents[i]
		entries = append(entries, zip.Entry{
			Filename: fmt.Sprintf("%s.json", c.ContentType),
			Data:     c.Payload,
		})
		if c.ContentType != domain.ContentTypeAudio || c.StorageURL == "" || a.Assets == nil {
			continue
		}
		key := a.Assets.KeyFromURL(c.StorageURL)
		if key == "" {
			continue
		}
		audio, err := a.Assets.Read(r.Context(), key)
		if err != nil {
			a.Logger.Warn().Err(err).Str("key", key).Msg("export: narration asset unreadable, skipping")
			continue
		}
		entries = append(entries, zip.Entry{Filename: "narration.mp3", Data: audio})
	}

	archive, err := zip.Archive(entries)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", query.Topic+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// DeleteContent removes one artifact owned by the caller's query.
func (a *App) DeleteContent(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "query_id")
	if _, err := a.authorizeQuery(r, queryID); err != nil {
		a.domainError(w, r, err)
		return
	}

	contentID := chi.URLParam(r, "content_id")
	if err := a.Contents.DeleteByID(r.Context(), queryID, contentID); err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}
