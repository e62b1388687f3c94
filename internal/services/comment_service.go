// Package services – CommentService
//
// Comments hang off feedback items. Like votes, they authenticate against
// the website owning the item (resolved from the feedback row), so the
// endpoint does not need a websiteId in its payload.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// CommentService implements commenting on feedback items.
type CommentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Verifier resolves website credentials via the item's owning website.
	Verifier WebsiteVerifier
}

// CommentInput is the payload for adding a comment.
type CommentInput struct {
	AuthorName  *string
	AuthorEmail *string
	Body        string
	FromAdmin   bool
}

// Add verifies credentials through the feedback item's website and appends
// a comment. Returns ErrFeedbackNotFound when the item is absent and
// ErrEmptyBody when the body is blank.
func (s *CommentService) Add(ctx context.Context, apiKey, feedbackID string, in CommentInput) (*domain.Comment, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, ErrEmptyBody
	}

	fb, err := repo.GetFeedback(ctx, s.DB, feedbackID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	if _, err := s.Verifier.Verify(ctx, fb.WebsiteID, apiKey); err != nil {
		return nil, err
	}

	c := &domain.Comment{
		FeedbackID:  feedbackID,
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
		Body:        strings.TrimSpace(in.Body),
		FromAdmin:   in.FromAdmin,
	}
	if err := repo.CreateComment(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListPage verifies credentials and returns a page of comments in
// conversation order plus the total count.
func (s *CommentService) ListPage(ctx context.Context, apiKey, feedbackID string, offset, limit int) ([]domain.Comment, int64, error) {
	fb, err := repo.GetFeedback(ctx, s.DB, feedbackID)
	if err != nil {
		if isNotFound(err) {
			return nil, 0, ErrFeedbackNotFound
		}
		return nil, 0, err
	}
	if _, err := s.Verifier.Verify(ctx, fb.WebsiteID, apiKey); err != nil {
		return nil, 0, err
	}

	total, err := repo.CountComments(ctx, s.DB, feedbackID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Comment{}, 0, nil
	}
	items, err := repo.ListCommentsPage(ctx, s.DB, feedbackID, offset, limit)
	return items, total, err
}
