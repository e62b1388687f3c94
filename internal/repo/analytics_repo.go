// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the append-only analytics event sink.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// AppendEvent inserts an analytics event. Events are write-only from the
// API's perspective; callers treat failures as best-effort (log and move
// on), so this function does nothing beyond the insert.
func AppendEvent(ctx context.Context, db *gorm.DB, ev *domain.AnalyticsEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(ev).Error
}
