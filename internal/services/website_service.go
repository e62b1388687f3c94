// Package services – WebsiteService
//
// This file implements the WebsiteService: tenant registration, the
// identity verifier consumed by every public API operation, and the admin
// operations (listing, activation, settings updates, key rotation, cascade
// deletion).
//
// The verifier is the leaf dependency of the whole public surface: it
// resolves a website by id, compares the presented API key in constant
// time, and confirms the active flag. It has no side effects and must be
// called before any read or write scoped to a website.
package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// WebsiteVerifier resolves a caller's website credentials. Implementations
// must be safe for concurrent use and side-effect free.
type WebsiteVerifier interface {
	// Verify confirms the website exists, the presented key matches, and
	// the website is active. Returns ErrUnauthorized or ErrWebsiteInactive
	// on failure.
	Verify(ctx context.Context, websiteID, presentedKey string) (*domain.Website, error)
}

// WebsiteService implements website registration, verification, and admin
// maintenance over the websites table.
type WebsiteService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// apiKeyPrefix marks generated keys so they are recognizable in configs and
// support tickets without revealing anything about their contents.
const apiKeyPrefix = "fbk_"

// newAPIKey returns a fresh random API key: 256 bits of entropy, hex
// encoded, with a stable prefix. Keys are secrets; they are stored as-is
// but always compared in constant time (see Verify).
func newAPIKey() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(buf[:]), nil
}

// Verify implements WebsiteVerifier.
//
// Failure modes collapse deliberately: an unknown website id and a key
// mismatch both yield ErrUnauthorized so the API does not leak which
// websites exist. An inactive website with a matching key yields
// ErrWebsiteInactive (surfaced as 403 by handlers).
func (s *WebsiteService) Verify(ctx context.Context, websiteID, presentedKey string) (*domain.Website, error) {
	w, err := repo.GetWebsite(ctx, s.DB, websiteID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(w.APIKey), []byte(presentedKey)) != 1 {
		return nil, ErrUnauthorized
	}
	if !w.Active {
		return nil, ErrWebsiteInactive
	}
	return w, nil
}

// Register creates a new website and issues its API key. The domain is
// normalized to lower case; a taken domain yields ErrDuplicateDomain.
//
// The returned Website carries the freshly generated APIKey; registration
// and key rotation are the only paths that ever hand the key back.
func (s *WebsiteService) Register(ctx context.Context, name, siteDomain string, settings domain.WebsiteSettings) (*domain.Website, error) {
	name = strings.TrimSpace(name)
	siteDomain = strings.ToLower(strings.TrimSpace(siteDomain))

	key, err := newAPIKey()
	if err != nil {
		return nil, err
	}
	w, err := repo.CreateWebsite(ctx, s.DB, name, siteDomain, key, settings)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateDomain
		}
		return nil, err
	}
	return w, nil
}

// Get fetches a website by id for the admin surface.
func (s *WebsiteService) Get(ctx context.Context, id string) (*domain.Website, error) {
	w, err := repo.GetWebsite(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrWebsiteNotFound
		}
		return nil, err
	}
	return w, nil
}

// ListPage returns a page of websites and the total count (admin listing).
func (s *WebsiteService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Website, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountWebsites(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Website{}, 0, nil
	}

	items, err := repo.ListWebsitesPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// WebsiteUpdate is a partial admin update. Nil fields are left untouched.
type WebsiteUpdate struct {
	Name     *string
	Active   *bool
	Settings *domain.WebsiteSettings
}

// Update applies an admin update to a website.
func (s *WebsiteService) Update(ctx context.Context, id string, upd WebsiteUpdate) error {
	updates := map[string]any{}
	if upd.Name != nil {
		updates["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Active != nil {
		updates["active"] = *upd.Active
	}
	if upd.Settings != nil {
		updates["settings"] = *upd.Settings
	}
	if len(updates) == 0 {
		// Nothing to change; still confirm the website exists.
		_, err := s.Get(ctx, id)
		return err
	}
	if err := repo.UpdateWebsite(ctx, s.DB, id, updates); err != nil {
		if isNotFound(err) {
			return ErrWebsiteNotFound
		}
		return err
	}
	return nil
}

// RotateKey issues a new API key for a website and returns it. The old key
// stops working immediately.
func (s *WebsiteService) RotateKey(ctx context.Context, id string) (string, error) {
	key, err := newAPIKey()
	if err != nil {
		return "", err
	}
	if err := repo.RotateWebsiteKey(ctx, s.DB, id, key); err != nil {
		if isNotFound(err) {
			return "", ErrWebsiteNotFound
		}
		return "", err
	}
	return key, nil
}

// Delete removes a website and everything it owns (categories, feedback,
// votes, comments) through the database cascade.
func (s *WebsiteService) Delete(ctx context.Context, id string) error {
	if err := repo.DeleteWebsiteCascade(ctx, s.DB, id); err != nil {
		if isNotFound(err) {
			return ErrWebsiteNotFound
		}
		return err
	}
	return nil
}
