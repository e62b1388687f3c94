// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints. Every response, success or failure, is wrapped in the same
// envelope so clients can branch on a single boolean:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "data": {…}, "pagination": {…} }
//
//	HTTP/1.1 404 Not Found
//	{ "success": false,
//	  "error": { "code": "not_found", "message": "feedback not found",
//	             "request_id": "123e4567-e89b-12d3-a456-426614174000" } }
//
// Conventions:
//   - All error responses carry a stable machine-readable `code`.
//   - fail() centralizes error logging and formatting; 5xx responses are
//     logged with request context and never leak internal error text.
//   - ok()/okPage() keep success shapes consistent across handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/http/middleware"
)

// APIError is the error half of the response envelope.
type APIError struct {
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Optional field-level validation details
	Details map[string]string `json:"details,omitempty"`
}

// Pagination carries listing metadata. Total comes from a dedicated count
// query under the active filter set, never from the page length.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes page metadata from an offset-addressed window:
// page = floor(offset/limit)+1, totalPages = ceil(total/limit).
func NewPagination(total int64, offset, limit int) Pagination {
	if limit < 1 {
		limit = 1
	}
	return Pagination{
		Total:      total,
		Page:       offset/limit + 1,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
}

// Envelope is the uniform response wrapper for all endpoints.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      *APIError   `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// fail aborts the request with a structured error envelope.
//
// Server errors (>=500) are logged with the request-scoped logger from
// middleware; the message sent to the client for those should already be
// generic (see failInternal).
func fail(c *gin.Context, status int, code, msg string) {
	failDetails(c, status, code, msg, nil)
}

// failDetails is fail with optional field-level validation details.
func failDetails(c *gin.Context, status int, code, msg string, details map[string]string) {
	resp := Envelope{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   msg,
			RequestID: c.Writer.Header().Get("X-Request-ID"),
			Details:   details,
		},
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// failInternal logs the underlying error server-side and returns a generic
// 500 envelope. Internal error text never crosses the API boundary.
func failInternal(c *gin.Context, err error) {
	lg := middleware.LoggerFrom(c)
	lg.Error().Err(err).Msg("unexpected error")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success envelope with the given payload.
func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// okPage writes a success envelope with payload and pagination metadata.
func okPage(c *gin.Context, data any, p Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}
