// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Comment
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// CreateComment inserts a comment under a feedback item.
func CreateComment(ctx context.Context, db *gorm.DB, c *domain.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(c).Error
}

// CountComments returns the number of comments on a feedback item.
func CountComments(ctx context.Context, db *gorm.DB, feedbackID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("feedback_id = ?", feedbackID).
		Count(&total).Error
	return total, err
}

// ListCommentsPage returns a page of comments on a feedback item, oldest
// first (conversation order).
func ListCommentsPage(ctx context.Context, db *gorm.DB, feedbackID string, offset, limit int) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Where("feedback_id = ?", feedbackID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
