// Package handlers – feedback endpoints.
//
// This file wires the public feedback surface: submission, listing with the
// filter/sort/pagination query planner, and single-item retrieval. Handlers
// stay thin: bind and sanity-check the payload, capture request context
// (client IP, user agent, idempotency key), call the service, and map
// sentinel errors onto the HTTP taxonomy.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/services"
	"github.com/tbourn/go-feedback-backend/internal/utils"
)

// FeedbackSvc is the service surface consumed by the feedback handlers.
// Declared here so tests can substitute a stub.
type FeedbackSvc interface {
	Submit(ctx context.Context, in services.SubmitInput) (*domain.Feedback, bool, error)
	List(ctx context.Context, q services.ListQuery) ([]repo.FeedbackListRow, int64, error)
	Get(ctx context.Context, websiteID, apiKey, feedbackID string) (*domain.Feedback, error)
	Stats(ctx context.Context, websiteID string) (int64, *time.Time, error)
}

// FeedbackHandler exposes the public feedback endpoints.
type FeedbackHandler struct {
	Svc FeedbackSvc
}

// apiKey extracts the X-API-Key header. When the header is absent it writes
// a 401 envelope and returns ok=false; callers must stop handling.
func apiKey(c *gin.Context) (string, bool) {
	key := c.GetHeader("X-API-Key")
	if key == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing X-API-Key header")
		return "", false
	}
	return key, true
}

// failCredentials maps the two verifier sentinels onto 403 and everything
// else onto a generic 500. Returns true when it wrote a response.
func failCredentials(c *gin.Context, err error) bool {
	switch err {
	case nil:
		return false
	case services.ErrUnauthorized:
		fail(c, http.StatusForbidden, ErrCodeForbidden, "invalid website credentials")
	case services.ErrWebsiteInactive:
		fail(c, http.StatusForbidden, ErrCodeForbidden, "website is inactive")
	default:
		failInternal(c, err)
	}
	return true
}

// submitRequest is the POST /feedback payload.
type submitRequest struct {
	WebsiteID   string         `json:"websiteId" binding:"required,uuid"`
	Type        string         `json:"type" binding:"required"`
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description" binding:"required"`
	CategoryID  *string        `json:"categoryId,omitempty"`
	Email       *string        `json:"email,omitempty" binding:"omitempty,email"`
	Name        *string        `json:"name,omitempty"`
	URL         *string        `json:"url,omitempty" binding:"omitempty,url"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// submitResponse is the minimal acknowledgement returned on creation.
type submitResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submit handles POST /feedback.
//
// @Summary      Submit feedback
// @Description  Creates a feedback item for the authenticated website.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        X-API-Key        header  string         true   "Website API key"
// @Param        Idempotency-Key  header  string         false  "Replay-safe retry key"
// @Param        request          body    submitRequest  true   "Submission payload"
// @Success      201  {object}  Envelope
// @Failure      400  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      429  {object}  Envelope
// @Router       /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	key, okKey := apiKey(c)
	if !okKey {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	fb, replayed, err := h.Svc.Submit(c.Request.Context(), services.SubmitInput{
		WebsiteID:      req.WebsiteID,
		APIKey:         key,
		Type:           domain.FeedbackType(req.Type),
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		Email:          req.Email,
		Name:           req.Name,
		URL:            req.URL,
		Metadata:       req.Metadata,
		UserAgent:      c.Request.UserAgent(),
		IP:             c.ClientIP(),
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		switch err {
		case services.ErrInvalidFeedbackType, services.ErrEmptyTitle, services.ErrEmptyDescription:
			fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		case services.ErrRateLimited:
			c.Header("Retry-After", "60")
			fail(c, http.StatusTooManyRequests, ErrCodeRateLimited, "submission rate limit exceeded")
		default:
			if !failCredentials(c, err) {
				failInternal(c, err)
			}
		}
		return
	}

	status := http.StatusCreated
	if replayed {
		// Replays acknowledge the original creation without inserting again.
		c.Header("Idempotent-Replay", "true")
	}
	ok(c, status, submitResponse{ID: fb.ID, Status: string(fb.Status), CreatedAt: fb.CreatedAt})
}

// List handles GET /feedback.
//
// Query parameters: websiteId (required), status, type, category (slug),
// public, q, sort (newest|oldest|priority|upvotes), limit, offset.
//
// @Summary      List feedback
// @Description  Filtered, sorted, paginated feedback listing for a website.
// @Tags         feedback
// @Produce      json
// @Param        X-API-Key  header  string  true   "Website API key"
// @Param        websiteId  query   string  true   "Website id"
// @Param        status     query   string  false  "Status filter"
// @Param        type       query   string  false  "Type filter"
// @Param        category   query   string  false  "Category slug filter"
// @Param        public     query   bool    false  "Public items only"
// @Param        q          query   string  false  "Free-text search"
// @Param        sort       query   string  false  "newest|oldest|priority|upvotes"
// @Param        limit      query   int     false  "Page size (1-100, default 10)"
// @Param        offset     query   int     false  "Rows to skip"
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Router       /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	key, okKey := apiKey(c)
	if !okKey {
		return
	}
	websiteID := c.Query("websiteId")
	if websiteID == "" {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "websiteId query parameter is required")
		return
	}

	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultListLimit)
	offset := utils.AtoiDefault(c.Query("offset"), 0)

	q := services.ListQuery{
		WebsiteID:    websiteID,
		APIKey:       key,
		Status:       domain.FeedbackStatus(c.Query("status")),
		Type:         domain.FeedbackType(c.Query("type")),
		CategorySlug: c.Query("category"),
		PublicOnly:   c.Query("public") == "true",
		Search:       c.Query("q"),
		Sort:         c.Query("sort"),
		Limit:        limit,
		Offset:       offset,
	}

	items, total, err := h.Svc.List(c.Request.Context(), q)
	if err != nil {
		if !failCredentials(c, err) {
			failInternal(c, err)
		}
		return
	}

	// Weak ETag over the website's feedback aggregate: any insert, update,
	// or delete changes it. Conditional GETs short-circuit with 304.
	if count, maxUpd, err := h.Svc.Stats(c.Request.Context(), websiteID); err == nil {
		var stamp int64
		if maxUpd != nil {
			stamp = maxUpd.UnixNano()
		}
		etag := fmt.Sprintf(`W/"fb-%d-%d"`, count, stamp)
		c.Header("ETag", etag)
		if match := c.GetHeader("If-None-Match"); match == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	// Echo the effective (clamped) limit back in pagination metadata.
	if limit <= 0 {
		limit = services.DefaultListLimit
	}
	if limit > services.MaxListLimit {
		limit = services.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	okPage(c, items, NewPagination(total, offset, limit))
}

// Get handles GET /feedback/:id.
//
// @Summary      Get feedback item
// @Tags         feedback
// @Produce      json
// @Param        X-API-Key  header  string  true  "Website API key"
// @Param        websiteId  query   string  true  "Website id"
// @Param        id         path    string  true  "Feedback id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /feedback/{id} [get]
func (h *FeedbackHandler) Get(c *gin.Context) {
	key, okKey := apiKey(c)
	if !okKey {
		return
	}
	websiteID := c.Query("websiteId")
	if websiteID == "" {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "websiteId query parameter is required")
		return
	}

	fb, err := h.Svc.Get(c.Request.Context(), websiteID, key, c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrFeedbackNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "feedback not found")
		default:
			if !failCredentials(c, err) {
				failInternal(c, err)
			}
		}
		return
	}
	ok(c, http.StatusOK, fb)
}
