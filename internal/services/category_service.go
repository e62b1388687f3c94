// Package services – CategoryService
//
// Categories are per-website groupings referenced by slug from the public
// listing filter. Public callers can list a website's active categories;
// creation and maintenance belong to the admin surface.
package services

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// CategoryService implements category listing and admin creation.
type CategoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Verifier resolves website credentials for the public listing.
	Verifier WebsiteVerifier
}

// List verifies credentials and returns the website's active categories in
// display order.
func (s *CategoryService) List(ctx context.Context, websiteID, apiKey string) ([]domain.Category, error) {
	w, err := s.Verifier.Verify(ctx, websiteID, apiKey)
	if err != nil {
		return nil, err
	}
	return repo.ListCategories(ctx, s.DB, w.ID, true)
}

// CategoryInput is the admin payload for creating a category.
type CategoryInput struct {
	WebsiteID   string
	Name        string
	Slug        string // optional; derived from Name when empty
	Description string
	Color       string
	SortOrder   int
}

// Create adds a category to a website (admin operation). The slug is
// normalized (or derived from the name); a slug already used within the
// website yields ErrDuplicateSlug.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if _, err := repo.GetWebsite(ctx, s.DB, in.WebsiteID); err != nil {
		if isNotFound(err) {
			return nil, ErrWebsiteNotFound
		}
		return nil, err
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Name)
	}
	if slug == "" {
		return nil, ErrEmptyName
	}

	c := &domain.Category{
		WebsiteID:   in.WebsiteID,
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
		Active:      true,
		SortOrder:   in.SortOrder,
	}
	if err := repo.CreateCategory(ctx, s.DB, c); err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return c, nil
}

// slugSepRE collapses every run of non-alphanumeric characters to one dash.
var slugSepRE = regexp.MustCompile(`[^a-z0-9]+`)

// slugLower folds case with full Unicode rules before the ASCII squeeze, so
// e.g. dotted capital I does not survive into the slug.
var slugLower = cases.Lower(language.Und)

// Slugify derives a URL-safe slug: lower-cased, non-alphanumeric runs
// replaced by single dashes, trimmed of leading/trailing dashes.
func Slugify(s string) string {
	s = slugLower.String(strings.TrimSpace(s))
	s = slugSepRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
