// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Website
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a website is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Duplicate domains/API keys rely on the database unique constraints and
//     are returned as raw DB errors; the service layer translates them into
//     domain errors (e.g., ErrDuplicateDomain).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateWebsite inserts a new Website row with a generated UUID and the
// supplied API key. The domain and API key columns are unique; violations
// surface as raw DB errors for the service layer to translate.
func CreateWebsite(ctx context.Context, db *gorm.DB, name, siteDomain, apiKey string, settings domain.WebsiteSettings) (*domain.Website, error) {
	w := &domain.Website{
		ID:        uuid.NewString(),
		Name:      name,
		Domain:    siteDomain,
		APIKey:    apiKey,
		Active:    true,
		Settings:  settings,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// GetWebsite fetches a website by its ID, or ErrNotFound if missing.
func GetWebsite(ctx context.Context, db *gorm.DB, id string) (*domain.Website, error) {
	var w domain.Website
	if err := db.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// CountWebsites returns the total number of registered websites.
func CountWebsites(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Website{}).Count(&total).Error
	return total, err
}

// ListWebsitesPage returns a paginated slice of websites ordered by
// creation time descending. Use CountWebsites for pagination metadata.
func ListWebsitesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Website, error) {
	var out []domain.Website
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateWebsite applies a partial column update to a website. If no rows
// are affected (website missing), it returns ErrNotFound.
func UpdateWebsite(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Website{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateWebsiteKey replaces the stored API key. Returns ErrNotFound when
// the website does not exist.
func RotateWebsiteKey(ctx context.Context, db *gorm.DB, id, newKey string) error {
	return UpdateWebsite(ctx, db, id, map[string]any{"api_key": newKey})
}

// DeleteWebsiteCascade hard-deletes a website. Foreign keys take care of
// categories, feedback, votes, and comments (ON DELETE CASCADE); soft
// deletion is deliberately bypassed so the cascade actually fires.
func DeleteWebsiteCascade(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&domain.Website{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
