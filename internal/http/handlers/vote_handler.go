// Package handlers – vote endpoints.
//
// Voting authenticates against the website owning the feedback item, so the
// routes carry no websiteId: the item id is enough. Identity resolution
// follows the ledger rules: the supplied voter email wins, the client IP is
// the fallback.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

// VoteSvc is the service surface consumed by the vote handlers.
type VoteSvc interface {
	Cast(ctx context.Context, apiKey, feedbackID string, voteType domain.VoteType, voterEmail, sourceIP string) (domain.VoteCounts, error)
	Remove(ctx context.Context, apiKey, feedbackID, voterEmail, sourceIP string) (domain.VoteCounts, error)
}

// VoteHandler exposes the public vote endpoints.
type VoteHandler struct {
	Svc VoteSvc
}

// castRequest is the POST /feedback/:id/vote payload.
type castRequest struct {
	VoteType   string  `json:"voteType" binding:"required,oneof=up down"`
	VoterEmail *string `json:"voterEmail,omitempty" binding:"omitempty,email"`
}

// Cast handles POST /feedback/:id/vote.
//
// @Summary      Cast a vote
// @Description  Records, repeats (no-op), or flips a vote on a feedback item.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        X-API-Key  header  string       true  "Website API key"
// @Param        id         path    string       true  "Feedback id"
// @Param        request    body    castRequest  true  "Vote payload"
// @Success      200  {object}  Envelope
// @Failure      400  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /feedback/{id}/vote [post]
func (h *VoteHandler) Cast(c *gin.Context) {
	key, okKey := apiKey(c)
	if !okKey {
		return
	}

	var req castRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	email := ""
	if req.VoterEmail != nil {
		email = *req.VoterEmail
	}

	counts, err := h.Svc.Cast(c.Request.Context(), key, c.Param("id"),
		domain.VoteType(req.VoteType), email, c.ClientIP())
	if err != nil {
		h.failVote(c, err)
		return
	}
	ok(c, http.StatusOK, counts)
}

// Remove handles DELETE /feedback/:id/vote.
//
// The voter identity comes from the X-Voter-Email header when present,
// otherwise from the client IP, mirroring how the vote was keyed at cast
// time.
//
// @Summary      Remove a vote
// @Tags         votes
// @Produce      json
// @Param        X-API-Key      header  string  true   "Website API key"
// @Param        X-Voter-Email  header  string  false  "Voter email used at cast time"
// @Param        id             path    string  true   "Feedback id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /feedback/{id}/vote [delete]
func (h *VoteHandler) Remove(c *gin.Context) {
	key, okKey := apiKey(c)
	if !okKey {
		return
	}

	counts, err := h.Svc.Remove(c.Request.Context(), key, c.Param("id"),
		c.GetHeader("X-Voter-Email"), c.ClientIP())
	if err != nil {
		h.failVote(c, err)
		return
	}
	ok(c, http.StatusOK, counts)
}

// failVote maps vote-service sentinels onto the HTTP taxonomy.
func (h *VoteHandler) failVote(c *gin.Context, err error) {
	switch err {
	case services.ErrInvalidVoteType, services.ErrNoVoterIdentity:
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case services.ErrFeedbackNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "feedback not found")
	case services.ErrVoteNotFound:
		fail(c, http.StatusNotFound, ErrCodeVoteNotFound, "vote not found")
	default:
		if !failCredentials(c, err) {
			failInternal(c, err)
		}
	}
}
