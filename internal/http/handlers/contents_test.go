package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/orchestrator"
)

type stubService struct {
	result   *orchestrator.Result
	err      error
	calls    int
	lastOpts orchestrator.Options
}

func (s *stubService) EnsureContent(_ context.Context, _, _ string, _ domain.ContentType, opts orchestrator.Options) (*orchestrator.Result, error) {
	s.calls++
	s.lastOpts = opts
	return s.result, s.err
}

func (s *stubService) EnsureAudio(_ context.Context, _, _ string, opts orchestrator.Options) (*orchestrator.Result, error) {
	s.calls++
	s.lastOpts = opts
	return s.result, s.err
}

type stubContents struct {
	domain.ContentStore
	contents []domain.Content
	listErr  error
	deleted  []string
}

func (s *stubContents) ListByQuery(_ context.Context, _ string) ([]domain.Content, error) {
	return s.contents, s.listErr
}

func (s *stubContents) DeleteByID(_ context.Context, _, contentID string) error {
	s.deleted = append(s.deleted, contentID)
	return nil
}

type stubQueries struct {
	query *domain.Query
	err   error
}

func (s *stubQueries) GetByID(_ context.Context, _ string) (*domain.Query, error) {
	return s.query, s.err
}

func newTestApp(service ContentService, contents domain.ContentStore, queries domain.QueryStore) *App {
	return &App{
		Service:  service,
		Contents: contents,
		Queries:  queries,
		Logger:   zerolog.Nop(),
	}
}

func doRequest(t *testing.T, app *App, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/v1/queries/{query_id}/contents/{type}", app.GenerateContent)
	r.Post("/v1/queries/{query_id}/audio", app.GenerateAudio)
	r.Get("/v1/queries/{query_id}/contents", app.ListContents)
	r.Delete("/v1/queries/{query_id}/contents/{content_id}", app.DeleteContent)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req = req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGenerateContentFresh(t *testing.T) {
	svc := &stubService{result: &orchestrator.Result{
		Content: &domain.Content{ID: "c1", QueryID: "q1", ContentType: domain.ContentTypeQuiz, Payload: []byte(`{"questions":[]}`)},
	}}
	app := newTestApp(svc, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/contents/quiz", `{"num_questions":5}`, "u1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Success bool `json:"success"`
		Cached  bool `json:"cached"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Cached {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGenerateContentCachedReturns200(t *testing.T) {
	svc := &stubService{result: &orchestrator.Result{
		Content: &domain.Content{ID: "c1", ContentType: domain.ContentTypeArticle, Payload: []byte(`{}`)},
		Cached:  true,
	}}
	app := newTestApp(svc, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/contents/article", "", "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGenerateContentRejectsUnknownType(t *testing.T) {
	svc := &stubService{}
	app := newTestApp(svc, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/contents/poem", "", "u1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if svc.calls != 0 {
		t.Error("service called for unknown type")
	}
}

func TestGenerateContentRequiresAuth(t *testing.T) {
	app := newTestApp(&stubService{}, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/contents/article", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGenerateAudioForwardsContentID(t *testing.T) {
	svc := &stubService{result: &orchestrator.Result{
		Content: &domain.Content{ID: "a1", ContentType: domain.ContentTypeAudio, Payload: []byte(`{}`)},
	}}
	app := newTestApp(svc, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/audio", `{"content_id":"c7"}`, "u1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if svc.lastOpts.SourceContentID != "c7" {
		t.Errorf("source content id = %q, want c7", svc.lastOpts.SourceContentID)
	}
}

func TestGenerateAudioRejectsMalformedBody(t *testing.T) {
	svc := &stubService{}
	app := newTestApp(svc, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/audio", `{not json`, "u1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if svc.calls != 0 {
		t.Error("service called despite malformed body")
	}
}

func TestGenerateContentQuotaDenialCarriesUsage(t *testing.T) {
	svc := &stubService{err: &domain.QuotaExceededError{
		ContentType: domain.ContentTypeAudio,
		Current:     5,
		Limit:       5,
		Reason:      "audio limit reached on the pro plan (5 of 5)",
	}}
	app := newTestApp(svc, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/audio", "", "u1")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var resp struct {
		Error   string `json:"error"`
		Current int    `json:"current"`
		Limit   int    `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "quota_exceeded" || resp.Current != 5 || resp.Limit != 5 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGenerateContentMissingSourceConflict(t *testing.T) {
	svc := &stubService{err: domain.ErrMissingSource}
	app := newTestApp(svc, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/contents/quiz", "", "u1")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestGenerateContentProviderFailureIs502(t *testing.T) {
	svc := &stubService{err: &domain.GenerationError{Provider: "gemini", Stage: "request", Err: errors.New("timeout")}}
	app := newTestApp(svc, &stubContents{}, &stubQueries{})

	rec := doRequest(t, app, http.MethodPost, "/v1/queries/q1/contents/article", "", "u1")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestListContentsChecksOwnership(t *testing.T) {
	queries := &stubQueries{query: &domain.Query{ID: "q1", UserID: "other"}}
	app := newTestApp(&stubService{}, &stubContents{}, queries)

	rec := doRequest(t, app, http.MethodGet, "/v1/queries/q1/contents", "", "u1")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestListContentsReturnsArtifacts(t *testing.T) {
	queries := &stubQueries{query: &domain.Query{ID: "q1", UserID: "u1"}}
	contents := &stubContents{contents: []domain.Content{
		{ID: "c1", ContentType: domain.ContentTypeArticle, Payload: []byte(`{}`)},
		{ID: "c2", ContentType: domain.ContentTypeQuiz, Payload: []byte(`{}`)},
	}}
	app := newTestApp(&stubService{}, contents, queries)

	rec := doRequest(t, app, http.MethodGet, "/v1/queries/q1/contents", "", "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Contents []contentDTO `json:"contents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Contents) != 2 {
		t.Errorf("contents = %d, want 2", len(resp.Contents))
	}
}

func TestDeleteContent(t *testing.T) {
	queries := &stubQueries{query: &domain.Query{ID: "q1", UserID: "u1"}}
	contents := &stubContents{}
	app := newTestApp(&stubService{}, contents, queries)

	rec := doRequest(t, app, http.MethodDelete, "/v1/queries/q1/contents/c9", "", "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(contents.deleted) != 1 || contents.deleted[0] != "c9" {
		t.Errorf("deleted = %v", contents.deleted)
	}
}

func TestQueryNotFoundIs404(t *testing.T) {
	queries := &stubQueries{err: domain.ErrNotFound}
	app := newTestApp(&stubService{}, &stubContents{}, queries)

	rec := doRequest(t, app, http.MethodGet, "/v1/queries/missing/contents", "", "u1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
