// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Category
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// CreateCategory inserts a new Category row for a website. The (website_id,
// slug) pair is unique; violations surface as raw DB errors for the service
// layer to translate into a duplicate-slug domain error.
func CreateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetCategory fetches a category by ID scoped to a website, or ErrNotFound.
func GetCategory(ctx context.Context, db *gorm.DB, websiteID, id string) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).
		Where("id = ? AND website_id = ?", id, websiteID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCategoryBySlug resolves a slug to a category within a website, or
// ErrNotFound when the slug is not registered for that website.
func GetCategoryBySlug(ctx context.Context, db *gorm.DB, websiteID, slug string) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).
		Where("website_id = ? AND slug = ?", websiteID, slug).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns a website's categories ordered by sort order then
// name. When activeOnly is true, inactive categories are excluded.
func ListCategories(ctx context.Context, db *gorm.DB, websiteID string, activeOnly bool) ([]domain.Category, error) {
	q := db.WithContext(ctx).Where("website_id = ?", websiteID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []domain.Category
	err := q.Order("sort_order asc, name asc").Find(&out).Error
	return out, err
}
