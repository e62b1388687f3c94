// Package handlers – website registration and category listing.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

// WebsiteSvc is the service surface consumed by the website handlers and the
// admin website handlers.
type WebsiteSvc interface {
	Register(ctx context.Context, name, siteDomain string, settings domain.WebsiteSettings) (*domain.Website, error)
	Get(ctx context.Context, id string) (*domain.Website, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Website, int64, error)
	Update(ctx context.Context, id string, upd services.WebsiteUpdate) error
	RotateKey(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// CategorySvc is the service surface consumed by the category handlers.
type CategorySvc interface {
	List(ctx context.Context, websiteID, apiKey string) ([]domain.Category, error)
	Create(ctx context.Context, in services.CategoryInput) (*domain.Category, error)
}

// WebsiteHandler exposes public website registration and category listing.
type WebsiteHandler struct {
	Websites   WebsiteSvc
	Categories CategorySvc
}

// registerRequest is the POST /websites payload.
type registerRequest struct {
	Name     string                   `json:"name" binding:"required"`
	Domain   string                   `json:"domain" binding:"required"`
	Settings *domain.WebsiteSettings  `json:"settings,omitempty"`
}

// registerResponse returns the new tenant id and its API key. This is one of
// only two places the key ever appears in a response (the other is rotation).
type registerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	APIKey    string    `json:"apiKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// Register handles POST /websites.
//
// @Summary      Register a website
// @Description  Creates a tenant and issues its API key.
// @Tags         websites
// @Accept       json
// @Produce      json
// @Param        request  body  registerRequest  true  "Registration payload"
// @Success      201  {object}  Envelope
// @Failure      400  {object}  Envelope
// @Failure      409  {object}  Envelope
// @Router       /websites [post]
func (h *WebsiteHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	settings := domain.WebsiteSettings{}
	if req.Settings != nil {
		settings = *req.Settings
	}

	w, err := h.Websites.Register(c.Request.Context(), req.Name, req.Domain, settings)
	if err != nil {
		switch err {
		case services.ErrDuplicateDomain:
			fail(c, http.StatusConflict, ErrCodeConflict, "domain already registered")
		default:
			failInternal(c, err)
		}
		return
	}
	ok(c, http.StatusCreated, registerResponse{
		ID:        w.ID,
		Name:      w.Name,
		Domain:    w.Domain,
		APIKey:    w.APIKey,
		CreatedAt: w.CreatedAt,
	})
}

// ListCategories handles GET /categories.
//
// @Summary      List categories
// @Description  Active categories of the authenticated website, display order.
// @Tags         categories
// @Produce      json
// @Param        X-API-Key  header  string  true  "Website API key"
// @Param        websiteId  query   string  true  "Website id"
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Router       /categories [get]
func (h *WebsiteHandler) ListCategories(c *gin.Context) {
	key, okKey := apiKey(c)
	if !okKey {
		return
	}
	websiteID := c.Query("websiteId")
	if websiteID == "" {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "websiteId query parameter is required")
		return
	}

	items, err := h.Categories.List(c.Request.Context(), websiteID, key)
	if err != nil {
		if !failCredentials(c, err) {
			failInternal(c, err)
		}
		return
	}
	ok(c, http.StatusOK, items)
}
