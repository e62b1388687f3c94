// Package handlers – comment endpoints.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/services"
	"github.com/tbourn/go-feedback-backend/internal/utils"
)

// CommentSvc is the service surface consumed by the comment handlers.
type CommentSvc interface {
	Add(ctx context.Context, apiKey, feedbackID string, in services.CommentInput) (*domain.Comment, error)
	ListPage(ctx context.Context, apiKey, feedbackID string, offset, limit int) ([]domain.Comment, int64, error)
}

// CommentHandler exposes the comment endpoints under a feedback item.
type CommentHandler struct {
	Svc CommentSvc
}

// addCommentRequest is the POST /feedback/:id/comments payload.
type addCommentRequest struct {
	AuthorName  *string `json:"authorName,omitempty"`
	AuthorEmail *string `json:"authorEmail,omitempty" binding:"omitempty,email"`
	Body        string  `json:"body" binding:"required"`
}

// Add handles POST /feedback/:id/comments.
//
// @Summary      Add a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        X-API-Key  header  string             true  "Website API key"
// @Param        id         path    string             true  "Feedback id"
// @Param        request    body    addCommentRequest  true  "Comment payload"
// @Success      201  {object}  Envelope
// @Failure      400  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /feedback/{id}/comments [post]
func (h *CommentHandler) Add(c *gin.Context) {
	key, okKey := apiKey(c)
	if !okKey {
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	cm, err := h.Svc.Add(c.Request.Context(), key, c.Param("id"), services.CommentInput{
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Body:        req.Body,
	})
	if err != nil {
		switch err {
		case services.ErrEmptyBody:
			fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		case services.ErrFeedbackNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "feedback not found")
		default:
			if !failCredentials(c, err) {
				failInternal(c, err)
			}
		}
		return
	}
	ok(c, http.StatusCreated, cm)
}

// List handles GET /feedback/:id/comments. Comments come back oldest first,
// in conversation order.
//
// @Summary      List comments
// @Tags         comments
// @Produce      json
// @Param        X-API-Key  header  string  true   "Website API key"
// @Param        id         path    string  true   "Feedback id"
// @Param        limit      query   int     false  "Page size (default 50)"
// @Param        offset     query   int     false  "Rows to skip"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /feedback/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	key, okKey := apiKey(c)
	if !okKey {
		return
	}

	limit := utils.AtoiDefault(c.Query("limit"), 50)
	if limit <= 0 {
		limit = 50
	}
	if limit > services.MaxListLimit {
		limit = services.MaxListLimit
	}
	offset := utils.AtoiDefault(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	items, total, err := h.Svc.ListPage(c.Request.Context(), key, c.Param("id"), offset, limit)
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
	okPage(c, items, NewPagination(total, offset, limit))
}
