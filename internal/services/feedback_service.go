// Package services – FeedbackService
//
// This file implements the submission handler and the query planner.
//
// Submission pipeline: validate the payload, verify website identity,
// enforce the per-website rate limit (count of rows from the same source IP
// inside the trailing window), insert the item with forced defaults, and
// append an analytics event best-effort. When the client supplies an
// idempotency key, a replayed submission returns the originally created
// item instead of inserting again.
//
// The query planner composes conjunctive filters, resolves a category slug
// to an id (silently dropping the filter when the slug is not registered
// for the website), clamps
// pagination to 1..100, and computes the total via a separate count query
// under the same filter set.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// Pagination bounds for feedback listings.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// FeedbackService implements feedback submission, retrieval, listing, and
// admin moderation.
type FeedbackService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Verifier resolves website credentials before any scoped operation.
	Verifier WebsiteVerifier
	// IdempotencyTTL bounds how long a submission idempotency key replays.
	IdempotencyTTL time.Duration
}

// SubmitInput carries a validated-at-the-transport-layer submission payload
// plus the server-captured request context.
type SubmitInput struct {
	WebsiteID string
	APIKey    string

	Type        domain.FeedbackType
	Title       string
	Description string
	CategoryID  *string
	Email       *string
	Name        *string
	URL         *string
	Metadata    map[string]any

	// Server-captured, never client-supplied.
	UserAgent string
	IP        string

	// IdempotencyKey is optional; when present, retries replay the original
	// result instead of inserting twice.
	IdempotencyKey string
}

// Submit validates and persists a new feedback item. The returned bool is
// true when an idempotent replay was served instead of a fresh insert.
//
// Ordering is deliberate: all validation happens before any mutation, the
// insert runs in a single transaction, and the analytics append afterwards
// is best-effort (its failure never fails the submission).
//
// The rate-limit check-then-insert is intentionally not serialized: two
// concurrent submissions from the same IP can both pass the count. That is
// an accepted property of this design, not a guarantee.
func (s *FeedbackService) Submit(ctx context.Context, in SubmitInput) (*domain.Feedback, bool, error) {
	if !in.Type.Valid() {
		return nil, false, ErrInvalidFeedbackType
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, false, ErrEmptyTitle
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, false, ErrEmptyDescription
	}

	w, err := s.Verifier.Verify(ctx, in.WebsiteID, in.APIKey)
	if err != nil {
		return nil, false, err
	}

	// Replay a previously completed submission for this key, if any.
	if in.IdempotencyKey != "" {
		if rec, err := repo.GetIdempotency(ctx, s.DB, w.ID, in.IdempotencyKey, time.Now().UTC()); err == nil {
			fb, err := repo.GetFeedback(ctx, s.DB, rec.FeedbackID)
			if err != nil {
				return nil, false, err
			}
			return fb, true, nil
		} else if !isNotFound(err) {
			return nil, false, err
		}
	}

	if w.Settings.RateLimitEnabled() && in.IP != "" {
		since := time.Now().UTC().Add(-time.Duration(w.Settings.RateLimitWindowMinutes) * time.Minute)
		n, err := repo.CountRecentByIP(ctx, s.DB, w.ID, in.IP, since)
		if err != nil {
			return nil, false, err
		}
		if n >= int64(w.Settings.MaxSubmissions) {
			return nil, false, ErrRateLimited
		}
	}

	fb := &domain.Feedback{
		WebsiteID:   w.ID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Status:      domain.StatusNew,
		Priority:    domain.PriorityMedium,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),

		SubmitterEmail: in.Email,
		SubmitterName:  in.Name,
		SubmitterURL:   in.URL,
		UserAgent:      in.UserAgent,
		IP:             in.IP,
		Metadata:       in.Metadata,

		Public:    false,
		Upvotes:   0,
		Downvotes: 0,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateFeedback(ctx, tx, fb); err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			ttl := s.IdempotencyTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			if _, err := repo.CreateIdempotency(ctx, tx, w.ID, in.IdempotencyKey, fb.ID, 201, ttl); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// Best-effort side channel; failure is logged, never surfaced.
	ev := &domain.AnalyticsEvent{
		WebsiteID: w.ID,
		EventType: "feedback_submitted",
		EventData: map[string]any{
			"feedbackId":  fb.ID,
			"type":        string(fb.Type),
			"hasEmail":    fb.SubmitterEmail != nil,
			"hasCategory": fb.CategoryID != nil,
		},
		UserAgent: in.UserAgent,
		IP:        in.IP,
	}
	if err := repo.AppendEvent(ctx, s.DB, ev); err != nil {
		log.Warn().Err(err).Str("website_id", w.ID).Msg("analytics event append failed")
	}

	return fb, false, nil
}

// ListQuery is the parsed query-planner input for a feedback listing.
type ListQuery struct {
	WebsiteID string
	APIKey    string

	Status       domain.FeedbackStatus
	Type         domain.FeedbackType
	CategorySlug string
	PublicOnly   bool
	Search       string

	Sort   string
	Limit  int
	Offset int
}

// List verifies credentials, plans the filtered/sorted/paginated query, and
// returns the page plus the total count under the same filter set.
//
// A category slug that does not resolve for this website drops the category
// filter silently rather than erroring; the listing then behaves as if no
// category filter had been supplied.
func (s *FeedbackService) List(ctx context.Context, q ListQuery) ([]repo.FeedbackListRow, int64, error) {
	w, err := s.Verifier.Verify(ctx, q.WebsiteID, q.APIKey)
	if err != nil {
		return nil, 0, err
	}

	filter := repo.FeedbackFilter{
		Status:     q.Status,
		Type:       q.Type,
		PublicOnly: q.PublicOnly,
		Search:     strings.TrimSpace(q.Search),
	}
	if slug := strings.TrimSpace(q.CategorySlug); slug != "" {
		cat, err := repo.GetCategoryBySlug(ctx, s.DB, w.ID, slug)
		switch {
		case err == nil:
			filter.CategoryID = cat.ID
		case isNotFound(err):
			log.Debug().Str("website_id", w.ID).Str("slug", slug).Msg("category filter dropped: slug not registered")
		default:
			return nil, 0, err
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	total, err := repo.CountFeedback(ctx, s.DB, w.ID, filter)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []repo.FeedbackListRow{}, 0, nil
	}

	items, err := repo.ListFeedbackPage(ctx, s.DB, w.ID, filter, q.Sort, offset, limit)
	return items, total, err
}

// Get verifies credentials and returns one feedback item owned by the
// website, or ErrFeedbackNotFound (including items owned by other tenants).
func (s *FeedbackService) Get(ctx context.Context, websiteID, apiKey, feedbackID string) (*domain.Feedback, error) {
	w, err := s.Verifier.Verify(ctx, websiteID, apiKey)
	if err != nil {
		return nil, err
	}
	fb, err := repo.GetFeedback(ctx, s.DB, feedbackID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	if fb.WebsiteID != w.ID {
		return nil, ErrFeedbackNotFound
	}
	return fb, nil
}

// Stats returns the listing's aggregate metadata (row count, latest update)
// used by the HTTP layer for weak ETags. It performs no verification; the
// caller must have already resolved the website.
func (s *FeedbackService) Stats(ctx context.Context, websiteID string) (int64, *time.Time, error) {
	return repo.FeedbackStats(ctx, s.DB, websiteID)
}

// ModerationUpdate is a partial admin update of a feedback item. Nil fields
// are left untouched.
type ModerationUpdate struct {
	Status   *domain.FeedbackStatus
	Priority *domain.FeedbackPriority
	Public   *bool
}

// Moderate applies an admin status/priority/visibility update.
func (s *FeedbackService) Moderate(ctx context.Context, feedbackID string, upd ModerationUpdate) (*domain.Feedback, error) {
	updates := map[string]any{}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, ErrInvalidModeration
		}
		updates["status"] = string(*upd.Status)
	}
	if upd.Priority != nil {
		if !upd.Priority.Valid() {
			return nil, ErrInvalidModeration
		}
		updates["priority"] = string(*upd.Priority)
	}
	if upd.Public != nil {
		updates["public"] = *upd.Public
	}
	if len(updates) > 0 {
		if err := repo.UpdateFeedbackModeration(ctx, s.DB, feedbackID, updates); err != nil {
			if isNotFound(err) {
				return nil, ErrFeedbackNotFound
			}
			return nil, err
		}
	}
	fb, err := repo.GetFeedback(ctx, s.DB, feedbackID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	return fb, nil
}

// Delete removes a feedback item and, via the database cascade, its votes
// and comments (admin operation).
func (s *FeedbackService) Delete(ctx context.Context, feedbackID string) error {
	if err := repo.DeleteFeedbackCascade(ctx, s.DB, feedbackID); err != nil {
		if isNotFound(err) {
			return ErrFeedbackNotFound
		}
		return err
	}
	return nil
}
