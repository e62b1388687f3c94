// Package domain defines the persistence models for websites, categories,
// feedback items, votes, comments, and analytics events. These types are
// mapped with GORM and form the core data layer of the feedback backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// FeedbackType classifies what kind of feedback an item carries.
type FeedbackType string

// Feedback types accepted on submission.
const (
	TypeBug         FeedbackType = "bug"
	TypeFeature     FeedbackType = "feature"
	TypeImprovement FeedbackType = "improvement"
	TypeQuestion    FeedbackType = "question"
	TypeCompliment  FeedbackType = "compliment"
	TypeComplaint   FeedbackType = "complaint"
	TypeOther       FeedbackType = "other"
)

// Valid reports whether t is one of the accepted feedback types.
func (t FeedbackType) Valid() bool {
	switch t {
	case TypeBug, TypeFeature, TypeImprovement, TypeQuestion, TypeCompliment, TypeComplaint, TypeOther:
		return true
	}
	return false
}

// FeedbackStatus is the moderation state of a feedback item.
type FeedbackStatus string

// Feedback statuses. New items always start in StatusNew.
const (
	StatusNew        FeedbackStatus = "new"
	StatusInReview   FeedbackStatus = "in_review"
	StatusInProgress FeedbackStatus = "in_progress"
	StatusResolved   FeedbackStatus = "resolved"
	StatusClosed     FeedbackStatus = "closed"
	StatusSpam       FeedbackStatus = "spam"
)

// Valid reports whether s is one of the accepted statuses.
func (s FeedbackStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInReview, StatusInProgress, StatusResolved, StatusClosed, StatusSpam:
		return true
	}
	return false
}

// FeedbackPriority ranks how urgent a feedback item is.
type FeedbackPriority string

// Priorities in ascending severity. New items always start at PriorityMedium.
const (
	PriorityLow    FeedbackPriority = "low"
	PriorityMedium FeedbackPriority = "medium"
	PriorityHigh   FeedbackPriority = "high"
	PriorityUrgent FeedbackPriority = "urgent"
)

// Valid reports whether p is one of the accepted priorities.
func (p FeedbackPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank returns the numeric severity of a priority (low=1 .. urgent=4).
// Used to sort "priority descending" by severity rather than lexically.
func (p FeedbackPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

// VoteType is the direction of a vote.
type VoteType string

// Vote directions.
const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether t is "up" or "down".
func (t VoteType) Valid() bool { return t == VoteUp || t == VoteDown }

// WebsiteSettings is the typed per-website configuration. It is persisted
// as a single JSON column on the websites table and parsed at the storage
// boundary, so services and handlers only ever see named fields.
type WebsiteSettings struct {
	// MaxSubmissions caps feedback submissions per source IP within the
	// rate-limit window. Zero disables the per-website limit.
	MaxSubmissions int `json:"maxSubmissions"`
	// RateLimitWindowMinutes is the trailing window for MaxSubmissions.
	RateLimitWindowMinutes int `json:"rateLimitWindowMinutes"`
	// AllowedOrigins lists origins permitted to embed the widget.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
	// RequireModeration keeps new items private until an admin review.
	RequireModeration bool `json:"requireModeration"`
	// NotifyOnFeedback toggles notification delivery (delivery itself is
	// out of scope; the flag is stored for the admin portal).
	NotifyOnFeedback bool `json:"notifyOnFeedback"`
}

// RateLimitEnabled reports whether the per-website submission limit applies.
func (s WebsiteSettings) RateLimitEnabled() bool {
	return s.MaxSubmissions > 0 && s.RateLimitWindowMinutes > 0
}

// Website represents a registered tenant. Each website owns its categories
// and feedback items and authenticates API requests with its APIKey.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Domain: unique site domain supplied at registration.
//   - APIKey: unique secret presented via the X-API-Key header. Never
//     serialized in responses except at registration and key rotation.
//   - Active: inactive websites reject every API-keyed request.
//   - Settings: typed per-website configuration (JSON column).
type Website struct {
	ID        string          `json:"id"        gorm:"type:char(36);primaryKey"`
	Name      string          `json:"name"      gorm:"type:varchar(255);not null"`
	Domain    string          `json:"domain"    gorm:"type:varchar(255);not null;uniqueIndex:ux_websites_domain"`
	APIKey    string          `json:"-"         gorm:"type:varchar(128);not null;uniqueIndex:ux_websites_api_key"`
	Active    bool            `json:"active"    gorm:"not null;default:true"`
	Settings  WebsiteSettings `json:"settings"  gorm:"serializer:json"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `json:"-"         gorm:"index"`
}

// TableName returns the database table name for Website.
func (Website) TableName() string { return "websites" }

// Category groups feedback items within a website. Slugs are unique per
// website and are the public handle used by the list filter.
type Category struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	WebsiteID   string         `json:"websiteId"   gorm:"type:char(36);not null;index;uniqueIndex:ux_categories_site_slug,priority:1"`
	Name        string         `json:"name"        gorm:"type:varchar(128);not null"`
	Slug        string         `json:"slug"        gorm:"type:varchar(128);not null;uniqueIndex:ux_categories_site_slug,priority:2"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Color       string         `json:"color,omitempty"       gorm:"type:varchar(32)"`
	Active      bool           `json:"active"      gorm:"not null;default:true"`
	SortOrder   int            `json:"sortOrder"   gorm:"not null;default:0"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`

	// Website is the owning tenant. Categories are cascade-deleted with it.
	Website Website `json:"-" gorm:"foreignKey:WebsiteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Feedback is a single submitted feedback item.
//
// Upvotes and Downvotes are denormalized counters maintained by the vote
// ledger (internal/repo vote functions). The invariant is that each counter
// always equals the number of vote rows of that type for the item; every
// mutation of the two happens inside one transaction with the vote row write.
type Feedback struct {
	ID          string           `json:"id"          gorm:"type:char(36);primaryKey"`
	WebsiteID   string           `json:"websiteId"   gorm:"type:char(36);not null;index:idx_feedback_site"`
	CategoryID  *string          `json:"categoryId,omitempty" gorm:"type:char(36);index"`
	Type        FeedbackType     `json:"type"        gorm:"type:varchar(16);not null;check:type IN ('bug','feature','improvement','question','compliment','complaint','other')"`
	Status      FeedbackStatus   `json:"status"      gorm:"type:varchar(16);not null;default:'new';check:status IN ('new','in_review','in_progress','resolved','closed','spam')"`
	Priority    FeedbackPriority `json:"priority"    gorm:"type:varchar(16);not null;default:'medium';check:priority IN ('low','medium','high','urgent')"`
	Title       string           `json:"title"       gorm:"type:varchar(255);not null"`
	Description string           `json:"description" gorm:"type:text;not null"`

	SubmitterEmail *string `json:"submitterEmail,omitempty" gorm:"type:varchar(255)"`
	SubmitterName  *string `json:"submitterName,omitempty"  gorm:"type:varchar(255)"`
	SubmitterURL   *string `json:"submitterUrl,omitempty"   gorm:"type:varchar(512)"`

	UserAgent string         `json:"-" gorm:"type:varchar(512)"`
	IP        string         `json:"-" gorm:"type:varchar(64);index:idx_feedback_site_ip"`
	Metadata  map[string]any `json:"metadata,omitempty" gorm:"serializer:json"`

	Public    bool           `json:"public"    gorm:"not null;default:false"`
	Upvotes   int            `json:"upvotes"   gorm:"not null;default:0;check:upvotes >= 0"`
	Downvotes int            `json:"downvotes" gorm:"not null;default:0;check:downvotes >= 0"`
	CreatedAt time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`

	// Website is the owning tenant. Feedback is cascade-deleted with it.
	Website Website `json:"-" gorm:"foreignKey:WebsiteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	// Category is optional; deleting a category detaches its items.
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string { return "feedback" }

// VoteCounts is the refreshed counter pair returned by vote operations.
type VoteCounts struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// Vote records one voter's reaction to a feedback item. A voter is keyed by
// email when supplied, otherwise by source IP; exactly one of VoterEmail and
// VoterIP is non-null (see VoterIdentity). Uniqueness per (item, voter) is
// enforced by the two composite unique indexes rather than application logic
// alone. NULLs do not collide under SQLite/Postgres unique-index semantics,
// so each index constrains only the rows keyed by that identity kind.
type Vote struct {
	ID         string    `json:"id"         gorm:"type:char(36);primaryKey"`
	FeedbackID string    `json:"feedbackId" gorm:"type:char(36);not null;index;uniqueIndex:ux_votes_item_email,priority:1;uniqueIndex:ux_votes_item_ip,priority:1"`
	VoterEmail *string   `json:"-"          gorm:"type:varchar(255);uniqueIndex:ux_votes_item_email,priority:2"`
	VoterIP    *string   `json:"-"          gorm:"type:varchar(64);uniqueIndex:ux_votes_item_ip,priority:2"`
	Type       VoteType  `json:"type"       gorm:"type:varchar(8);not null;check:type IN ('up','down')"`
	CreatedAt  time.Time `json:"createdAt"`

	// Feedback is the voted item. Votes are cascade-deleted with it.
	Feedback Feedback `json:"-" gorm:"foreignKey:FeedbackID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }

// Comment is a discussion entry under a feedback item.
type Comment struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	FeedbackID  string    `json:"feedbackId"  gorm:"type:char(36);not null;index:idx_comments_item,priority:1"`
	AuthorName  *string   `json:"authorName,omitempty"  gorm:"type:varchar(255)"`
	AuthorEmail *string   `json:"authorEmail,omitempty" gorm:"type:varchar(255)"`
	Body        string    `json:"body"        gorm:"type:text;not null"`
	FromAdmin   bool      `json:"fromAdmin"   gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"   gorm:"index:idx_comments_item,priority:2"`

	// Feedback is the commented item. Comments are cascade-deleted with it.
	Feedback Feedback `json:"-" gorm:"foreignKey:FeedbackID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// AnalyticsEvent is an append-only side-channel record. Events are written
// best-effort by the submission path and never read back by the API.
type AnalyticsEvent struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	WebsiteID string         `json:"websiteId" gorm:"type:char(36);not null;index"`
	EventType string         `json:"eventType" gorm:"type:varchar(64);not null;index"`
	EventData map[string]any `json:"eventData,omitempty" gorm:"serializer:json"`
	UserAgent string         `json:"-"         gorm:"type:varchar(512)"`
	IP        string         `json:"-"         gorm:"type:varchar(64)"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TableName returns the database table name for AnalyticsEvent.
func (AnalyticsEvent) TableName() string { return "analytics_events" }
