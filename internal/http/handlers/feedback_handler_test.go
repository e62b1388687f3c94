package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

var errSentinel = errors.New("backend exploded")

// stubFeedbackSvc implements FeedbackSvc with per-test function fields.
type stubFeedbackSvc struct {
	submit func(services.SubmitInput) (*domain.Feedback, bool, error)
	list   func(services.ListQuery) ([]repo.FeedbackListRow, int64, error)
	get    func(websiteID, apiKey, feedbackID string) (*domain.Feedback, error)
	stats  func(websiteID string) (int64, *time.Time, error)
}

func (s *stubFeedbackSvc) Submit(_ context.Context, in services.SubmitInput) (*domain.Feedback, bool, error) {
	return s.submit(in)
}

func (s *stubFeedbackSvc) List(_ context.Context, q services.ListQuery) ([]repo.FeedbackListRow, int64, error) {
	return s.list(q)
}

func (s *stubFeedbackSvc) Get(_ context.Context, websiteID, apiKey, feedbackID string) (*domain.Feedback, error) {
	return s.get(websiteID, apiKey, feedbackID)
}

func (s *stubFeedbackSvc) Stats(_ context.Context, websiteID string) (int64, *time.Time, error) {
	if s.stats == nil {
		return 0, nil, errSentinel
	}
	return s.stats(websiteID)
}

func feedbackRouter(svc FeedbackSvc) *gin.Engine {
	h := &FeedbackHandler{Svc: svc}
	r := gin.New()
	r.POST("/feedback", h.Submit)
	r.GET("/feedback", h.List)
	r.GET("/feedback/:id", h.Get)
	return r
}

func validSubmitBody() map[string]any {
	return map[string]any{
		"websiteId":   "123e4567-e89b-12d3-a456-426614174000",
		"type":        "bug",
		"title":       "broken",
		"description": "details",
	}
}

func TestSubmitHandler_MissingAPIKey(t *testing.T) {
	r := feedbackRouter(&stubFeedbackSvc{})
	w, env := perform(t, r, http.MethodPost, "/feedback", validSubmitBody(), nil)
	wantError(t, w, env, http.StatusUnauthorized, ErrCodeUnauthorized)
}

func TestSubmitHandler_InvalidBody(t *testing.T) {
	r := feedbackRouter(&stubFeedbackSvc{})
	body := validSubmitBody()
	body["websiteId"] = "not-a-uuid"
	w, env := perform(t, r, http.MethodPost, "/feedback", body, map[string]string{"X-API-Key": "k"})
	wantError(t, w, env, http.StatusBadRequest, ErrCodeValidation)
}

func TestSubmitHandler_Created(t *testing.T) {
	now := time.Now().UTC()
	svc := &stubFeedbackSvc{
		submit: func(in services.SubmitInput) (*domain.Feedback, bool, error) {
			if in.APIKey != "k" || in.IdempotencyKey != "retry-1" {
				t.Fatalf("request context not forwarded: %+v", in)
			}
			return &domain.Feedback{ID: "fb-1", Status: domain.StatusNew, CreatedAt: now}, false, nil
		},
	}
	r := feedbackRouter(svc)

	w, env := perform(t, r, http.MethodPost, "/feedback", validSubmitBody(),
		map[string]string{"X-API-Key": "k", "Idempotency-Key": "retry-1"})
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("status = %d, success = %v", w.Code, env.Success)
	}
	data := env.Data.(map[string]any)
	if data["id"] != "fb-1" || data["status"] != "new" {
		t.Fatalf("unexpected payload: %+v", data)
	}
	if w.Header().Get("Idempotent-Replay") != "" {
		t.Fatalf("fresh creation must not set the replay header")
	}
}

func TestSubmitHandler_ReplaySetsHeader(t *testing.T) {
	svc := &stubFeedbackSvc{
		submit: func(services.SubmitInput) (*domain.Feedback, bool, error) {
			return &domain.Feedback{ID: "fb-1", Status: domain.StatusNew}, true, nil
		},
	}
	r := feedbackRouter(svc)

	w, _ := perform(t, r, http.MethodPost, "/feedback", validSubmitBody(), map[string]string{"X-API-Key": "k"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201", w.Code)
	}
	if w.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("replay header missing")
	}
}

func TestSubmitHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrInvalidFeedbackType, http.StatusBadRequest, ErrCodeValidation},
		{services.ErrEmptyTitle, http.StatusBadRequest, ErrCodeValidation},
		{services.ErrRateLimited, http.StatusTooManyRequests, ErrCodeRateLimited},
		{services.ErrUnauthorized, http.StatusForbidden, ErrCodeForbidden},
		{services.ErrWebsiteInactive, http.StatusForbidden, ErrCodeForbidden},
		{errSentinel, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		svc := &stubFeedbackSvc{
			submit: func(services.SubmitInput) (*domain.Feedback, bool, error) { return nil, false, tc.err },
		}
		r := feedbackRouter(svc)
		w, env := perform(t, r, http.MethodPost, "/feedback", validSubmitBody(), map[string]string{"X-API-Key": "k"})
		wantError(t, w, env, tc.status, tc.code)
		if tc.err == services.ErrRateLimited && w.Header().Get("Retry-After") == "" {
			t.Fatalf("429 must carry Retry-After")
		}
	}
}

func TestListHandler_RequiresWebsiteID(t *testing.T) {
	r := feedbackRouter(&stubFeedbackSvc{})
	w, env := perform(t, r, http.MethodGet, "/feedback", nil, map[string]string{"X-API-Key": "k"})
	wantError(t, w, env, http.StatusBadRequest, ErrCodeValidation)
}

func TestListHandler_PaginationAndETag(t *testing.T) {
	stamp := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubFeedbackSvc{
		list: func(q services.ListQuery) ([]repo.FeedbackListRow, int64, error) {
			if q.WebsiteID != "w1" || q.Sort != "upvotes" || q.Limit != 10 || q.Offset != 20 {
				t.Fatalf("query not forwarded: %+v", q)
			}
			rows := make([]repo.FeedbackListRow, 5)
			return rows, 25, nil
		},
		stats: func(string) (int64, *time.Time, error) { return 25, &stamp, nil },
	}
	r := feedbackRouter(svc)

	w, env := perform(t, r, http.MethodGet, "/feedback?websiteId=w1&sort=upvotes&limit=10&offset=20", nil,
		map[string]string{"X-API-Key": "k"})
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d", w.Code)
	}
	if env.Pagination == nil || env.Pagination.Total != 25 || env.Pagination.Page != 3 || env.Pagination.TotalPages != 3 {
		t.Fatalf("pagination = %+v", env.Pagination)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("ETag missing")
	}

	// Conditional GET with the same tag short-circuits.
	w2, _ := perform(t, r, http.MethodGet, "/feedback?websiteId=w1&sort=upvotes&limit=10&offset=20", nil,
		map[string]string{"X-API-Key": "k", "If-None-Match": etag})
	if w2.Code != http.StatusNotModified {
		t.Fatalf("conditional GET = %d; want 304", w2.Code)
	}
}

func TestListHandler_ETagSkippedOnStatsError(t *testing.T) {
	svc := &stubFeedbackSvc{
		list: func(services.ListQuery) ([]repo.FeedbackListRow, int64, error) {
			return []repo.FeedbackListRow{}, 0, nil
		},
		// stats nil -> errSentinel; the listing must still succeed.
	}
	r := feedbackRouter(svc)

	w, env := perform(t, r, http.MethodGet, "/feedback?websiteId=w1", nil, map[string]string{"X-API-Key": "k"})
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("ETag") != "" {
		t.Fatalf("ETag must be omitted when stats fail")
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	svc := &stubFeedbackSvc{
		get: func(_, _, _ string) (*domain.Feedback, error) { return nil, services.ErrFeedbackNotFound },
	}
	r := feedbackRouter(svc)

	w, env := perform(t, r, http.MethodGet, "/feedback/fb-1?websiteId=w1", nil, map[string]string{"X-API-Key": "k"})
	wantError(t, w, env, http.StatusNotFound, ErrCodeNotFound)
}

func TestGetHandler_CredentialMapping(t *testing.T) {
	svc := &stubFeedbackSvc{
		get: func(_, _, _ string) (*domain.Feedback, error) { return nil, services.ErrUnauthorized },
	}
	r := feedbackRouter(svc)

	w, env := perform(t, r, http.MethodGet, "/feedback/fb-1?websiteId=w1", nil, map[string]string{"X-API-Key": "bad"})
	wantError(t, w, env, http.StatusForbidden, ErrCodeForbidden)
}
