package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

// stubAdminFeedbackSvc implements AdminFeedbackSvc with function fields.
type stubAdminFeedbackSvc struct {
	moderate func(feedbackID string, upd services.ModerationUpdate) (*domain.Feedback, error)
	del      func(feedbackID string) error
}

func (s *stubAdminFeedbackSvc) Moderate(_ context.Context, feedbackID string, upd services.ModerationUpdate) (*domain.Feedback, error) {
	return s.moderate(feedbackID, upd)
}

func (s *stubAdminFeedbackSvc) Delete(_ context.Context, feedbackID string) error {
	return s.del(feedbackID)
}

func adminRouter(h *AdminHandler) *gin.Engine {
	r := gin.New()
	r.GET("/admin/websites", h.ListWebsites)
	r.PATCH("/admin/websites/:id", h.UpdateWebsite)
	r.POST("/admin/websites/:id/rotate-key", h.RotateWebsiteKey)
	r.DELETE("/admin/websites/:id", h.DeleteWebsite)
	r.POST("/admin/categories", h.CreateCategory)
	r.PATCH("/admin/feedback/:id", h.ModerateFeedback)
	r.DELETE("/admin/feedback/:id", h.DeleteFeedback)
	return r
}

func TestAdminListWebsites(t *testing.T) {
	sites := &stubWebsiteSvc{
		listPage: func(page, pageSize int) ([]domain.Website, int64, error) {
			if page != 2 || pageSize != 5 {
				t.Fatalf("paging not forwarded: %d %d", page, pageSize)
			}
			return make([]domain.Website, 5), 12, nil
		},
	}
	r := adminRouter(&AdminHandler{Websites: sites})

	w, env := perform(t, r, http.MethodGet, "/admin/websites?page=2&pageSize=5", nil, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d", w.Code)
	}
	if env.Pagination == nil || env.Pagination.Total != 12 || env.Pagination.Page != 2 || env.Pagination.TotalPages != 3 {
		t.Fatalf("pagination = %+v", env.Pagination)
	}
}

func TestAdminUpdateWebsite(t *testing.T) {
	name := "Renamed"
	sites := &stubWebsiteSvc{
		update: func(id string, upd services.WebsiteUpdate) error {
			if id != "w-1" || upd.Name == nil || *upd.Name != name {
				t.Fatalf("update not forwarded: %s %+v", id, upd)
			}
			return nil
		},
		get: func(id string) (*domain.Website, error) {
			return &domain.Website{ID: id, Name: name}, nil
		},
	}
	r := adminRouter(&AdminHandler{Websites: sites})

	w, env := perform(t, r, http.MethodPatch, "/admin/websites/w-1", map[string]any{"name": name}, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	data := env.Data.(map[string]any)
	if data["name"] != name {
		t.Fatalf("updated website not echoed: %+v", data)
	}
}

func TestAdminUpdateWebsite_NotFound(t *testing.T) {
	sites := &stubWebsiteSvc{
		update: func(string, services.WebsiteUpdate) error { return services.ErrWebsiteNotFound },
	}
	r := adminRouter(&AdminHandler{Websites: sites})

	w, env := perform(t, r, http.MethodPatch, "/admin/websites/missing", map[string]any{"name": "x"}, nil)
	wantError(t, w, env, http.StatusNotFound, ErrCodeNotFound)
}

func TestAdminRotateKey(t *testing.T) {
	sites := &stubWebsiteSvc{
		rotate: func(id string) (string, error) { return "fbk_rotated", nil },
	}
	r := adminRouter(&AdminHandler{Websites: sites})

	w, env := perform(t, r, http.MethodPost, "/admin/websites/w-1/rotate-key", nil, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d", w.Code)
	}
	data := env.Data.(map[string]any)
	if data["apiKey"] != "fbk_rotated" || data["id"] != "w-1" {
		t.Fatalf("rotation response = %+v", data)
	}
}

func TestAdminDeleteWebsite(t *testing.T) {
	sites := &stubWebsiteSvc{
		del: func(id string) error {
			if id != "w-1" {
				t.Fatalf("id not forwarded: %s", id)
			}
			return nil
		},
	}
	r := adminRouter(&AdminHandler{Websites: sites})

	w, env := perform(t, r, http.MethodDelete, "/admin/websites/w-1", nil, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAdminCreateCategory(t *testing.T) {
	cats := &stubCategorySvc{
		create: func(in services.CategoryInput) (*domain.Category, error) {
			return &domain.Category{ID: "c-1", WebsiteID: in.WebsiteID, Slug: "bugs"}, nil
		},
	}
	r := adminRouter(&AdminHandler{Categories: cats})

	body := map[string]any{"websiteId": "123e4567-e89b-12d3-a456-426614174000", "name": "Bugs"}
	w, env := perform(t, r, http.MethodPost, "/admin/categories", body, nil)
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
}

func TestAdminCreateCategory_Conflict(t *testing.T) {
	cats := &stubCategorySvc{
		create: func(services.CategoryInput) (*domain.Category, error) { return nil, services.ErrDuplicateSlug },
	}
	r := adminRouter(&AdminHandler{Categories: cats})

	body := map[string]any{"websiteId": "123e4567-e89b-12d3-a456-426614174000", "name": "Bugs"}
	w, env := perform(t, r, http.MethodPost, "/admin/categories", body, nil)
	wantError(t, w, env, http.StatusConflict, ErrCodeConflict)
}

func TestAdminModerateFeedback(t *testing.T) {
	fbSvc := &stubAdminFeedbackSvc{
		moderate: func(feedbackID string, upd services.ModerationUpdate) (*domain.Feedback, error) {
			if feedbackID != "fb-1" || upd.Status == nil || *upd.Status != domain.StatusResolved {
				t.Fatalf("update not forwarded: %s %+v", feedbackID, upd)
			}
			if upd.Public == nil || !*upd.Public {
				t.Fatalf("public flag not forwarded")
			}
			return &domain.Feedback{ID: feedbackID, Status: domain.StatusResolved, Public: true}, nil
		},
	}
	r := adminRouter(&AdminHandler{Feedback: fbSvc})

	body := map[string]any{"status": "resolved", "public": true}
	w, env := perform(t, r, http.MethodPatch, "/admin/feedback/fb-1", body, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
}

func TestAdminModerateFeedback_RejectsBadEnums(t *testing.T) {
	r := adminRouter(&AdminHandler{Feedback: &stubAdminFeedbackSvc{}})

	// The binding rejects unknown enum values before the service is reached.
	w, env := perform(t, r, http.MethodPatch, "/admin/feedback/fb-1", map[string]any{"status": "escalated"}, nil)
	wantError(t, w, env, http.StatusBadRequest, ErrCodeValidation)
	w, env = perform(t, r, http.MethodPatch, "/admin/feedback/fb-1", map[string]any{"priority": "asap"}, nil)
	wantError(t, w, env, http.StatusBadRequest, ErrCodeValidation)
}

func TestAdminDeleteFeedback_NotFound(t *testing.T) {
	fbSvc := &stubAdminFeedbackSvc{
		del: func(string) error { return services.ErrFeedbackNotFound },
	}
	r := adminRouter(&AdminHandler{Feedback: fbSvc})

	w, env := perform(t, r, http.MethodDelete, "/admin/feedback/missing", nil, nil)
	wantError(t, w, env, http.StatusNotFound, ErrCodeNotFound)
}
