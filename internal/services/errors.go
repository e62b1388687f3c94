// Package services defines the business logic for websites, feedback,
// votes, comments, and categories. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// Identity errors.
var (
	// ErrUnauthorized is returned when no website matches the supplied id
	// or the presented API key does not match the stored key. The two cases
	// are deliberately indistinguishable to callers.
	ErrUnauthorized = errors.New("invalid website credentials")

	// ErrWebsiteInactive is returned when credentials match but the website
	// has been deactivated; all API-keyed requests are rejected.
	ErrWebsiteInactive = errors.New("website is inactive")
)

// Resource errors.
var (
	// ErrWebsiteNotFound indicates the referenced website does not exist.
	ErrWebsiteNotFound = errors.New("website not found")

	// ErrFeedbackNotFound indicates the referenced feedback item does not exist.
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrVoteNotFound indicates no vote exists for the resolved voter
	// identity on the referenced item.
	ErrVoteNotFound = errors.New("vote not found")

	// ErrCategoryNotFound indicates the referenced category does not exist
	// for the website.
	ErrCategoryNotFound = errors.New("category not found")
)

// Validation errors.
var (
	// ErrInvalidFeedbackType is returned when a submission's type is outside
	// the accepted enum.
	ErrInvalidFeedbackType = errors.New("invalid feedback type")

	// ErrInvalidVoteType is returned when a vote type is not "up" or "down".
	ErrInvalidVoteType = errors.New("vote type must be up or down")

	// ErrInvalidModeration is returned when an admin update carries a
	// status or priority outside the accepted enums.
	ErrInvalidModeration = errors.New("invalid status or priority")

	// ErrNoVoterIdentity is returned when neither a voter email nor a
	// source IP could be resolved for a vote operation.
	ErrNoVoterIdentity = errors.New("voter identity could not be resolved")

	// ErrEmptyTitle is returned when a submission has a blank title.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrEmptyDescription is returned when a submission has a blank description.
	ErrEmptyDescription = errors.New("description is empty")

	// ErrEmptyBody is returned when a comment has a blank body.
	ErrEmptyBody = errors.New("comment body is empty")

	// ErrEmptyName is returned when a category has no usable name or slug.
	ErrEmptyName = errors.New("name is empty")
)

// Conflict and throttling errors.
var (
	// ErrDuplicateDomain is returned when registering a website whose
	// domain is already taken.
	ErrDuplicateDomain = errors.New("domain already registered")

	// ErrDuplicateSlug is returned when creating a category whose slug is
	// already used within the website.
	ErrDuplicateSlug = errors.New("category slug already exists")

	// ErrRateLimited is returned when a website's submission limit for the
	// caller's source IP has been reached within the configured window.
	ErrRateLimited = errors.New("submission rate limit exceeded")
)

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, repo.ErrDuplicate) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
