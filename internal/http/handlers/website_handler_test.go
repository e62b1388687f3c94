package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

// stubWebsiteSvc implements WebsiteSvc with per-test function fields.
type stubWebsiteSvc struct {
	register func(name, siteDomain string, settings domain.WebsiteSettings) (*domain.Website, error)
	get      func(id string) (*domain.Website, error)
	listPage func(page, pageSize int) ([]domain.Website, int64, error)
	update   func(id string, upd services.WebsiteUpdate) error
	rotate   func(id string) (string, error)
	del      func(id string) error
}

func (s *stubWebsiteSvc) Register(_ context.Context, name, siteDomain string, settings domain.WebsiteSettings) (*domain.Website, error) {
	return s.register(name, siteDomain, settings)
}

func (s *stubWebsiteSvc) Get(_ context.Context, id string) (*domain.Website, error) {
	return s.get(id)
}

func (s *stubWebsiteSvc) ListPage(_ context.Context, page, pageSize int) ([]domain.Website, int64, error) {
	return s.listPage(page, pageSize)
}

func (s *stubWebsiteSvc) Update(_ context.Context, id string, upd services.WebsiteUpdate) error {
	return s.update(id, upd)
}

func (s *stubWebsiteSvc) RotateKey(_ context.Context, id string) (string, error) {
	return s.rotate(id)
}

func (s *stubWebsiteSvc) Delete(_ context.Context, id string) error {
	return s.del(id)
}

// stubCategorySvc implements CategorySvc with per-test function fields.
type stubCategorySvc struct {
	list   func(websiteID, apiKey string) ([]domain.Category, error)
	create func(in services.CategoryInput) (*domain.Category, error)
}

func (s *stubCategorySvc) List(_ context.Context, websiteID, apiKey string) ([]domain.Category, error) {
	return s.list(websiteID, apiKey)
}

func (s *stubCategorySvc) Create(_ context.Context, in services.CategoryInput) (*domain.Category, error) {
	return s.create(in)
}

func websiteRouter(sites WebsiteSvc, cats CategorySvc) *gin.Engine {
	h := &WebsiteHandler{Websites: sites, Categories: cats}
	r := gin.New()
	r.POST("/websites", h.Register)
	r.GET("/categories", h.ListCategories)
	return r
}

func TestRegisterHandler_Created(t *testing.T) {
	sites := &stubWebsiteSvc{
		register: func(name, siteDomain string, settings domain.WebsiteSettings) (*domain.Website, error) {
			if name != "Acme" || siteDomain != "acme.io" || settings.MaxSubmissions != 5 {
				t.Fatalf("payload not forwarded: %s %s %+v", name, siteDomain, settings)
			}
			return &domain.Website{ID: "w-1", Name: name, Domain: siteDomain, APIKey: "fbk_new"}, nil
		},
	}
	r := websiteRouter(sites, nil)

	body := map[string]any{
		"name":     "Acme",
		"domain":   "acme.io",
		"settings": map[string]any{"maxSubmissions": 5},
	}
	w, env := perform(t, r, http.MethodPost, "/websites", body, nil)
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	// Registration is one of the two responses that ever carry the key.
	data := env.Data.(map[string]any)
	if data["apiKey"] != "fbk_new" {
		t.Fatalf("api key missing from registration response: %+v", data)
	}
}

func TestRegisterHandler_DuplicateDomain(t *testing.T) {
	sites := &stubWebsiteSvc{
		register: func(string, string, domain.WebsiteSettings) (*domain.Website, error) {
			return nil, services.ErrDuplicateDomain
		},
	}
	r := websiteRouter(sites, nil)

	w, env := perform(t, r, http.MethodPost, "/websites",
		map[string]any{"name": "Acme", "domain": "acme.io"}, nil)
	wantError(t, w, env, http.StatusConflict, ErrCodeConflict)
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	r := websiteRouter(&stubWebsiteSvc{}, nil)
	w, env := perform(t, r, http.MethodPost, "/websites", map[string]any{"name": "Acme"}, nil)
	wantError(t, w, env, http.StatusBadRequest, ErrCodeValidation)
}

func TestListCategoriesHandler(t *testing.T) {
	cats := &stubCategorySvc{
		list: func(websiteID, apiKey string) ([]domain.Category, error) {
			if websiteID != "w-1" || apiKey != "k" {
				t.Fatalf("arguments not forwarded: %s %s", websiteID, apiKey)
			}
			return []domain.Category{{ID: "c-1", Slug: "bugs"}}, nil
		},
	}
	r := websiteRouter(&stubWebsiteSvc{}, cats)

	w, env := perform(t, r, http.MethodGet, "/categories?websiteId=w-1", nil, map[string]string{"X-API-Key": "k"})
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d", w.Code)
	}

	// Missing websiteId is a validation error, missing key a 401.
	w, env = perform(t, r, http.MethodGet, "/categories", nil, map[string]string{"X-API-Key": "k"})
	wantError(t, w, env, http.StatusBadRequest, ErrCodeValidation)
	w, env = perform(t, r, http.MethodGet, "/categories?websiteId=w-1", nil, nil)
	wantError(t, w, env, http.StatusUnauthorized, ErrCodeUnauthorized)
}
