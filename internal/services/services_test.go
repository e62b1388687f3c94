package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// newTestDB opens a fresh in-memory SQLite database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newStack wires the full service graph over one database and registers a
// website, returning it with its freshly issued API key.
func newStack(t *testing.T, settings domain.WebsiteSettings) (*gorm.DB, *WebsiteService, *domain.Website) {
	t.Helper()
	db := newTestDB(t)
	sites := &WebsiteService{DB: db}
	w, err := sites.Register(context.Background(), "Acme", fmt.Sprintf("%s.example.com", uuid.NewString()[:8]), settings)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return db, sites, w
}

func submit(t *testing.T, svc *FeedbackService, w *domain.Website, mutate func(*SubmitInput)) *domain.Feedback {
	t.Helper()
	in := SubmitInput{
		WebsiteID:   w.ID,
		APIKey:      w.APIKey,
		Type:        domain.TypeBug,
		Title:       "something broke",
		Description: "details",
		IP:          "10.0.0.1",
	}
	if mutate != nil {
		mutate(&in)
	}
	fb, replayed, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if replayed {
		t.Fatalf("fresh submission reported as replay")
	}
	return fb
}
