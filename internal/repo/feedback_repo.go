// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Feedback
// model: creation, filtered/sorted/paginated listing (with the owning
// category denormalized via LEFT JOIN), moderation updates, cascade
// deletion, the rate-limit window count, and aggregate stats used for weak
// ETags on the public listing.
//
// Filter semantics:
//   - All filters are conjunctive (AND).
//   - CategoryID must already be resolved from a slug by the service layer;
//     an unresolvable slug drops the filter there, never here.
//   - Search matches title OR description with a case-insensitive LIKE.
//
// Sort keys map as follows (ListSort* constants):
//   - newest:   created_at DESC (default)
//   - oldest:   created_at ASC
//   - priority: declared enum severity DESC (urgent..low), via CASE
//   - upvotes:  upvotes DESC
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// Sort keys accepted by ListFeedbackPage.
const (
	ListSortNewest   = "newest"
	ListSortOldest   = "oldest"
	ListSortPriority = "priority"
	ListSortUpvotes  = "upvotes"
)

// FeedbackFilter is the conjunctive filter set for feedback listings.
// Zero-valued fields are ignored.
type FeedbackFilter struct {
	Status     domain.FeedbackStatus
	Type       domain.FeedbackType
	CategoryID string
	PublicOnly bool
	Search     string
}

// FeedbackListRow is a Feedback row with its category name/color surfaced
// by the listing LEFT JOIN, so clients need no second round trip.
type FeedbackListRow struct {
	domain.Feedback
	CategoryName  *string `json:"categoryName,omitempty"`
	CategoryColor *string `json:"categoryColor,omitempty"`
}

// CreateFeedback inserts a feedback item. ID and CreatedAt are assigned
// here when unset; the caller is responsible for forcing the submission
// defaults (status new, priority medium, private, zero counters).
func CreateFeedback(ctx context.Context, db *gorm.DB, f *domain.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(f).Error
}

// GetFeedback fetches a feedback item by ID, or ErrNotFound if missing.
func GetFeedback(ctx context.Context, db *gorm.DB, id string) (*domain.Feedback, error) {
	var f domain.Feedback
	if err := db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// filteredFeedback composes the shared WHERE clause for listing and counting.
func filteredFeedback(ctx context.Context, db *gorm.DB, websiteID string, f FeedbackFilter) *gorm.DB {
	q := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("feedback.website_id = ?", websiteID).
		Where("feedback.deleted_at IS NULL")
	if f.Status != "" {
		q = q.Where("feedback.status = ?", string(f.Status))
	}
	if f.Type != "" {
		q = q.Where("feedback.type = ?", string(f.Type))
	}
	if f.CategoryID != "" {
		q = q.Where("feedback.category_id = ?", f.CategoryID)
	}
	if f.PublicOnly {
		q = q.Where("feedback.public = ?", true)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(feedback.title LIKE ? OR feedback.description LIKE ?)", like, like)
	}
	return q
}

// CountFeedback returns the total number of items matching the filter set.
// The listing's pagination metadata is computed from this count, never from
// the page size.
func CountFeedback(ctx context.Context, db *gorm.DB, websiteID string, f FeedbackFilter) (int64, error) {
	var total int64
	err := filteredFeedback(ctx, db, websiteID, f).Count(&total).Error
	return total, err
}

// ListFeedbackPage returns one page of feedback for a website with the
// category name/color joined in. Offset/limit bounding is the caller's
// responsibility (services clamp limit to 1..100).
func ListFeedbackPage(ctx context.Context, db *gorm.DB, websiteID string, f FeedbackFilter, sort string, offset, limit int) ([]FeedbackListRow, error) {
	var order string
	switch sort {
	case ListSortOldest:
		order = "feedback.created_at ASC"
	case ListSortPriority:
		// Declared enum rank, not lexical order: urgent > high > medium > low.
		order = "CASE feedback.priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, feedback.created_at DESC"
	case ListSortUpvotes:
		order = "feedback.upvotes DESC, feedback.created_at DESC"
	default: // ListSortNewest
		order = "feedback.created_at DESC"
	}

	rows := []FeedbackListRow{}
	err := filteredFeedback(ctx, db, websiteID, f).
		Select("feedback.*, categories.name AS category_name, categories.color AS category_color").
		Joins("LEFT JOIN categories ON categories.id = feedback.category_id AND categories.deleted_at IS NULL").
		Order(order).
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CountRecentByIP counts feedback submitted to a website from a source IP
// since the given instant. Used by the submission rate limit. The check and
// the subsequent insert are not serialized; see the service layer note.
func CountRecentByIP(ctx context.Context, db *gorm.DB, websiteID, ip string, since time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("website_id = ? AND ip = ? AND created_at >= ?", websiteID, ip, since).
		Count(&total).Error
	return total, err
}

// UpdateFeedbackModeration applies a partial moderation update (status,
// priority, public flag). Returns ErrNotFound when the item is missing.
func UpdateFeedbackModeration(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Feedback{}).
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

// DeleteFeedbackCascade hard-deletes a feedback item so the foreign keys
// cascade to its votes and comments. Returns ErrNotFound when missing.
func DeleteFeedbackCascade(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&domain.Feedback{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FeedbackStats returns aggregate metadata for a website's feedback: total
// row count and the greatest UpdatedAt among those rows. Used to build weak
// ETags for conditional GETs on the public listing. When the website has no
// feedback, count is 0 and maxUpdatedAt is nil.
func FeedbackStats(ctx context.Context, db *gorm.DB, websiteID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Feedback{}).Where("website_id = ?", websiteID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
