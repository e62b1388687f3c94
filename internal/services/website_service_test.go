package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

func TestVerify(t *testing.T) {
	_, sites, w := newStack(t, domain.WebsiteSettings{})
	ctx := context.Background()

	got, err := sites.Verify(ctx, w.ID, w.APIKey)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.ID != w.ID {
		t.Fatalf("wrong website resolved")
	}

	// Unknown id and wrong key collapse to the same error.
	if _, err := sites.Verify(ctx, uuid.NewString(), w.APIKey); err != ErrUnauthorized {
		t.Fatalf("unknown id = %v; want ErrUnauthorized", err)
	}
	if _, err := sites.Verify(ctx, w.ID, "fbk_wrong"); err != ErrUnauthorized {
		t.Fatalf("wrong key = %v; want ErrUnauthorized", err)
	}

	inactive := false
	if err := sites.Update(ctx, w.ID, WebsiteUpdate{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := sites.Verify(ctx, w.ID, w.APIKey); err != ErrWebsiteInactive {
		t.Fatalf("inactive = %v; want ErrWebsiteInactive", err)
	}
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	sites := &WebsiteService{DB: db}
	ctx := context.Background()

	w, err := sites.Register(ctx, "  Acme  ", "  ACME.IO ", domain.WebsiteSettings{MaxSubmissions: 5})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if w.Name != "Acme" || w.Domain != "acme.io" {
		t.Fatalf("normalization failed: %q %q", w.Name, w.Domain)
	}
	if !strings.HasPrefix(w.APIKey, "fbk_") || len(w.APIKey) != len("fbk_")+64 {
		t.Fatalf("unexpected key shape: %q", w.APIKey)
	}
	if !w.Active {
		t.Fatalf("new websites must start active")
	}

	if _, err := sites.Register(ctx, "Other", "acme.io", domain.WebsiteSettings{}); err != ErrDuplicateDomain {
		t.Fatalf("duplicate domain = %v; want ErrDuplicateDomain", err)
	}
}

func TestRotateKey(t *testing.T) {
	_, sites, w := newStack(t, domain.WebsiteSettings{})
	ctx := context.Background()

	key, err := sites.RotateKey(ctx, w.ID)
	if err != nil {
		t.Fatalf("RotateKey: %v", err)
	}
	if key == w.APIKey {
		t.Fatalf("rotation returned the old key")
	}

	// Old key stops working immediately; the new one verifies.
	if _, err := sites.Verify(ctx, w.ID, w.APIKey); err != ErrUnauthorized {
		t.Fatalf("old key = %v; want ErrUnauthorized", err)
	}
	if _, err := sites.Verify(ctx, w.ID, key); err != nil {
		t.Fatalf("new key: %v", err)
	}

	if _, err := sites.RotateKey(ctx, uuid.NewString()); err != ErrWebsiteNotFound {
		t.Fatalf("missing website = %v; want ErrWebsiteNotFound", err)
	}
}

func TestWebsiteUpdate(t *testing.T) {
	_, sites, w := newStack(t, domain.WebsiteSettings{})
	ctx := context.Background()

	name := "  New Name "
	settings := domain.WebsiteSettings{MaxSubmissions: 9, RateLimitWindowMinutes: 15}
	if err := sites.Update(ctx, w.ID, WebsiteUpdate{Name: &name, Settings: &settings}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := sites.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "New Name" || got.Settings.MaxSubmissions != 9 {
		t.Fatalf("update not applied: %+v", got)
	}

	// Empty update still confirms existence.
	if err := sites.Update(ctx, w.ID, WebsiteUpdate{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if err := sites.Update(ctx, uuid.NewString(), WebsiteUpdate{}); err != ErrWebsiteNotFound {
		t.Fatalf("empty update on missing = %v; want ErrWebsiteNotFound", err)
	}
	if err := sites.Update(ctx, uuid.NewString(), WebsiteUpdate{Name: &name}); err != ErrWebsiteNotFound {
		t.Fatalf("update on missing = %v; want ErrWebsiteNotFound", err)
	}
}

func TestWebsiteListPageAndDelete(t *testing.T) {
	db := newTestDB(t)
	sites := &WebsiteService{DB: db}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := sites.Register(ctx, "Site", uuid.NewString()[:8]+".example.com", domain.WebsiteSettings{}); err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
	}

	items, total, err := sites.ListPage(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("page 1 = (%d items, total %d); want (2, 3)", len(items), total)
	}
	items, total, _ = sites.ListPage(ctx, 2, 2)
	if total != 3 || len(items) != 1 {
		t.Fatalf("page 2 = (%d items, total %d); want (1, 3)", len(items), total)
	}

	if err := sites.Delete(ctx, items[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := sites.Delete(ctx, items[0].ID); err != ErrWebsiteNotFound {
		t.Fatalf("second delete = %v; want ErrWebsiteNotFound", err)
	}
}
