// Package handlers – admin moderation surface.
//
// Everything in this file sits behind the AdminAuth middleware (shared
// X-Admin-Secret). Admin operations are cross-tenant and bypass website API
// keys entirely.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/services"
	"github.com/tbourn/go-feedback-backend/internal/utils"
)

// AdminFeedbackSvc is the moderation surface consumed by the admin handlers.
type AdminFeedbackSvc interface {
	Moderate(ctx context.Context, feedbackID string, upd services.ModerationUpdate) (*domain.Feedback, error)
	Delete(ctx context.Context, feedbackID string) error
}

// AdminHandler exposes the admin endpoints.
type AdminHandler struct {
	Websites   WebsiteSvc
	Categories CategorySvc
	Feedback   AdminFeedbackSvc
}

// ListWebsites handles GET /admin/websites.
//
// @Summary      List websites
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Secret  header  string  true   "Admin secret"
// @Param        page            query   int     false  "Page number (default 1)"
// @Param        pageSize        query   int     false  "Page size (default 20)"
// @Success      200  {object}  Envelope
// @Router       /admin/websites [get]
func (h *AdminHandler) ListWebsites(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("pageSize"), 20)

	items, total, err := h.Websites.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		failInternal(c, err)
		return
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	okPage(c, items, NewPagination(total, (page-1)*pageSize, pageSize))
}

// updateWebsiteRequest is the PATCH /admin/websites/:id payload. Absent
// fields are left untouched.
type updateWebsiteRequest struct {
	Name     *string                  `json:"name,omitempty"`
	Active   *bool                    `json:"active,omitempty"`
	Settings *domain.WebsiteSettings  `json:"settings,omitempty"`
}

// UpdateWebsite handles PATCH /admin/websites/:id.
//
// @Summary      Update a website
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Secret  header  string                true  "Admin secret"
// @Param        id              path    string                true  "Website id"
// @Param        request         body    updateWebsiteRequest  true  "Partial update"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admin/websites/{id} [patch]
func (h *AdminHandler) UpdateWebsite(c *gin.Context) {
	var req updateWebsiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	id := c.Param("id")
	err := h.Websites.Update(c.Request.Context(), id, services.WebsiteUpdate{
		Name:     req.Name,
		Active:   req.Active,
		Settings: req.Settings,
	})
	if err != nil {
		h.failAdmin(c, err)
		return
	}
	w, err := h.Websites.Get(c.Request.Context(), id)
	if err != nil {
		h.failAdmin(c, err)
		return
	}
	ok(c, http.StatusOK, w)
}

// rotateKeyResponse carries the freshly issued API key. The previous key is
// invalid the moment this response is produced.
type rotateKeyResponse struct {
	ID     string `json:"id"`
	APIKey string `json:"apiKey"`
}

// RotateWebsiteKey handles POST /admin/websites/:id/rotate-key.
//
// @Summary      Rotate a website API key
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Secret  header  string  true  "Admin secret"
// @Param        id              path    string  true  "Website id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admin/websites/{id}/rotate-key [post]
func (h *AdminHandler) RotateWebsiteKey(c *gin.Context) {
	id := c.Param("id")
	key, err := h.Websites.RotateKey(c.Request.Context(), id)
	if err != nil {
		h.failAdmin(c, err)
		return
	}
	ok(c, http.StatusOK, rotateKeyResponse{ID: id, APIKey: key})
}

// DeleteWebsite handles DELETE /admin/websites/:id. The cascade removes the
// website's categories, feedback, votes, and comments.
//
// @Summary      Delete a website
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Secret  header  string  true  "Admin secret"
// @Param        id              path    string  true  "Website id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admin/websites/{id} [delete]
func (h *AdminHandler) DeleteWebsite(c *gin.Context) {
	if err := h.Websites.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.failAdmin(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": true})
}

// createCategoryRequest is the POST /admin/categories payload.
type createCategoryRequest struct {
	WebsiteID   string `json:"websiteId" binding:"required,uuid"`
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	SortOrder   int    `json:"sortOrder,omitempty"`
}

// CreateCategory handles POST /admin/categories.
//
// @Summary      Create a category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Secret  header  string                 true  "Admin secret"
// @Param        request         body    createCategoryRequest  true  "Category payload"
// @Success      201  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Failure      409  {object}  Envelope
// @Router       /admin/categories [post]
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	cat, err := h.Categories.Create(c.Request.Context(), services.CategoryInput{
		WebsiteID:   req.WebsiteID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		switch err {
		case services.ErrDuplicateSlug:
			fail(c, http.StatusConflict, ErrCodeConflict, "category slug already exists")
		case services.ErrEmptyName:
			fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			h.failAdmin(c, err)
		}
		return
	}
	ok(c, http.StatusCreated, cat)
}

// moderateRequest is the PATCH /admin/feedback/:id payload. Absent fields
// are left untouched.
type moderateRequest struct {
	Status   *string `json:"status,omitempty" binding:"omitempty,oneof=new in_review in_progress resolved closed spam"`
	Priority *string `json:"priority,omitempty" binding:"omitempty,oneof=low medium high urgent"`
	Public   *bool   `json:"public,omitempty"`
}

// ModerateFeedback handles PATCH /admin/feedback/:id.
//
// @Summary      Moderate a feedback item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Secret  header  string           true  "Admin secret"
// @Param        id              path    string           true  "Feedback id"
// @Param        request         body    moderateRequest  true  "Moderation update"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admin/feedback/{id} [patch]
func (h *AdminHandler) ModerateFeedback(c *gin.Context) {
	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	upd := services.ModerationUpdate{Public: req.Public}
	if req.Status != nil {
		s := domain.FeedbackStatus(*req.Status)
		upd.Status = &s
	}
	if req.Priority != nil {
		p := domain.FeedbackPriority(*req.Priority)
		upd.Priority = &p
	}

	fb, err := h.Feedback.Moderate(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		switch err {
		case services.ErrInvalidModeration:
			fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			h.failAdmin(c, err)
		}
		return
	}
	ok(c, http.StatusOK, fb)
}

// DeleteFeedback handles DELETE /admin/feedback/:id. Votes and comments go
// with it through the cascade.
//
// @Summary      Delete a feedback item
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Secret  header  string  true  "Admin secret"
// @Param        id              path    string  true  "Feedback id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admin/feedback/{id} [delete]
func (h *AdminHandler) DeleteFeedback(c *gin.Context) {
	if err := h.Feedback.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.failAdmin(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": true})
}

// failAdmin maps admin-service sentinels onto the HTTP taxonomy.
func (h *AdminHandler) failAdmin(c *gin.Context, err error) {
	switch err {
	case services.ErrWebsiteNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "website not found")
	case services.ErrFeedbackNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "feedback not found")
	case services.ErrCategoryNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "category not found")
	default:
		failInternal(c, err)
	}
}
