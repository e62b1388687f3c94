package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

func TestSubmit_ForcesDefaults(t *testing.T) {
	db, sites, w := newStack(t, domain.WebsiteSettings{})
	svc := &FeedbackService{DB: db, Verifier: sites}

	email := "reporter@example.com"
	fb := submit(t, svc, w, func(in *SubmitInput) {
		in.Title = "  padded title  "
		in.Description = " padded description "
		in.Email = &email
		in.UserAgent = "widget/1.0"
		in.Metadata = map[string]any{"page": "/checkout"}
	})

	if fb.Status != domain.StatusNew || fb.Priority != domain.PriorityMedium {
		t.Fatalf("defaults not forced: %s/%s", fb.Status, fb.Priority)
	}
	if fb.Public || fb.Upvotes != 0 || fb.Downvotes != 0 {
		t.Fatalf("new items must be private with zero counters: %+v", fb)
	}
	if fb.Title != "padded title" || fb.Description != "padded description" {
		t.Fatalf("whitespace not trimmed: %q / %q", fb.Title, fb.Description)
	}
	if fb.SubmitterEmail == nil || *fb.SubmitterEmail != email {
		t.Fatalf("submitter email lost")
	}

	// The submission appends an analytics event best-effort.
	var events int64
	db.Model(&domain.AnalyticsEvent{}).Where("website_id = ?", w.ID).Count(&events)
	if events != 1 {
		t.Fatalf("analytics events = %d; want 1", events)
	}
}

func TestSubmit_Validation(t *testing.T) {
	db, sites, w := newStack(t, domain.WebsiteSettings{})
	svc := &FeedbackService{DB: db, Verifier: sites}
	ctx := context.Background()

	base := SubmitInput{WebsiteID: w.ID, APIKey: w.APIKey, Type: domain.TypeBug, Title: "t", Description: "d"}

	in := base
	in.Type = "rant"
	if _, _, err := svc.Submit(ctx, in); err != ErrInvalidFeedbackType {
		t.Fatalf("bad type = %v; want ErrInvalidFeedbackType", err)
	}

	in = base
	in.Title = "   "
	if _, _, err := svc.Submit(ctx, in); err != ErrEmptyTitle {
		t.Fatalf("blank title = %v; want ErrEmptyTitle", err)
	}

	in = base
	in.Description = ""
	if _, _, err := svc.Submit(ctx, in); err != ErrEmptyDescription {
		t.Fatalf("blank description = %v; want ErrEmptyDescription", err)
	}

	in = base
	in.APIKey = "fbk_wrong"
	if _, _, err := svc.Submit(ctx, in); err != ErrUnauthorized {
		t.Fatalf("wrong key = %v; want ErrUnauthorized", err)
	}
}

func TestSubmit_PerWebsiteRateLimit(t *testing.T) {
	db, sites, w := newStack(t, domain.WebsiteSettings{MaxSubmissions: 2, RateLimitWindowMinutes: 10})
	svc := &FeedbackService{DB: db, Verifier: sites}
	ctx := context.Background()

	submit(t, svc, w, nil)
	submit(t, svc, w, nil)

	in := SubmitInput{WebsiteID: w.ID, APIKey: w.APIKey, Type: domain.TypeBug, Title: "t", Description: "d", IP: "10.0.0.1"}
	if _, _, err := svc.Submit(ctx, in); err != ErrRateLimited {
		t.Fatalf("third submission = %v; want ErrRateLimited", err)
	}

	// A different source IP is not throttled.
	in.IP = "10.0.0.2"
	if _, _, err := svc.Submit(ctx, in); err != nil {
		t.Fatalf("other IP: %v", err)
	}
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	db, sites, w := newStack(t, domain.WebsiteSettings{})
	svc := &FeedbackService{DB: db, Verifier: sites, IdempotencyTTL: time.Hour}
	ctx := context.Background()

	in := SubmitInput{
		WebsiteID: w.ID, APIKey: w.APIKey,
		Type: domain.TypeFeature, Title: "dark mode", Description: "please",
		IdempotencyKey: "retry-123",
	}
	first, replayed, err := svc.Submit(ctx, in)
	if err != nil || replayed {
		t.Fatalf("first submit = replayed %v, %v", replayed, err)
	}

	second, replayed, err := svc.Submit(ctx, in)
	if err != nil {
		t.Fatalf("replay submit: %v", err)
	}
	if !replayed || second.ID != first.ID {
		t.Fatalf("expected replay of %s, got %s (replayed %v)", first.ID, second.ID, replayed)
	}

	var rows int64
	db.Model(&domain.Feedback{}).Where("website_id = ?", w.ID).Count(&rows)
	if rows != 1 {
		t.Fatalf("feedback rows = %d; want 1", rows)
	}

	// A different key inserts fresh.
	in.IdempotencyKey = "retry-456"
	third, replayed, err := svc.Submit(ctx, in)
	if err != nil || replayed {
		t.Fatalf("new key = replayed %v, %v", replayed, err)
	}
	if third.ID == first.ID {
		t.Fatalf("new key replayed the old item")
	}
}

func TestList_DropsUnknownCategorySlug(t *testing.T) {
	db, sites, w := newStack(t, domain.WebsiteSettings{})
	svc := &FeedbackService{DB: db, Verifier: sites}
	cats := &CategoryService{DB: db, Verifier: sites}
	ctx := context.Background()

	cat, err := cats.Create(ctx, CategoryInput{WebsiteID: w.ID, Name: "Bugs"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	submit(t, svc, w, func(in *SubmitInput) { in.CategoryID = &cat.ID })
	submit(t, svc, w, nil)

	// Known slug narrows the listing.
	items, total, err := svc.List(ctx, ListQuery{WebsiteID: w.ID, APIKey: w.APIKey, CategorySlug: "bugs"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("slug filter = (%d, %d); want (1, 1)", len(items), total)
	}

	// Unknown slug drops the filter instead of erroring.
	items, total, err = svc.List(ctx, ListQuery{WebsiteID: w.ID, APIKey: w.APIKey, CategorySlug: "nope"})
	if err != nil {
		t.Fatalf("List unknown slug: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("unknown slug = (%d, %d); want unfiltered (2, 2)", len(items), total)
	}
}

func TestList_ClampsPagination(t *testing.T) {
	db, sites, w := newStack(t, domain.WebsiteSettings{})
	svc := &FeedbackService{DB: db, Verifier: sites}
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		submit(t, svc, w, nil)
	}

	// Zero limit falls back to the default page size.
	items, total, err := svc.List(ctx, ListQuery{WebsiteID: w.ID, APIKey: w.APIKey})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 12 || len(items) != DefaultListLimit {
		t.Fatalf("default page = (%d, %d); want (%d, 12)", len(items), total, DefaultListLimit)
	}

	// Negative offset is treated as zero; oversized limit is capped.
	items, _, err = svc.List(ctx, ListQuery{WebsiteID: w.ID, APIKey: w.APIKey, Offset: -5, Limit: MaxListLimit + 50})
	if err != nil {
		t.Fatalf("List clamped: %v", err)
	}
	if len(items) != 12 {
		t.Fatalf("clamped page = %d; want all 12", len(items))
	}
}

func TestGet_TenantIsolation(t *testing.T) {
	db, sites, w1 := newStack(t, domain.WebsiteSettings{})
	svc := &FeedbackService{DB: db, Verifier: sites}
	ctx := context.Background()

	w2, err := sites.Register(ctx, "Other", uuid.NewString()[:8]+".example.com", domain.WebsiteSettings{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	fb := submit(t, svc, w1, nil)

	got, err := svc.Get(ctx, w1.ID, w1.APIKey, fb.ID)
	if err != nil || got.ID != fb.ID {
		t.Fatalf("owner Get = %v, %v", got, err)
	}

	// Another tenant's valid credentials never see the item.
	if _, err := svc.Get(ctx, w2.ID, w2.APIKey, fb.ID); err != ErrFeedbackNotFound {
		t.Fatalf("cross-tenant Get = %v; want ErrFeedbackNotFound", err)
	}
	if _, err := svc.Get(ctx, w1.ID, w1.APIKey, uuid.NewString()); err != ErrFeedbackNotFound {
		t.Fatalf("missing item = %v; want ErrFeedbackNotFound", err)
	}
}

func TestModerate(t *testing.T) {
	db, sites, w := newStack(t, domain.WebsiteSettings{})
	svc := &FeedbackService{DB: db, Verifier: sites}
	ctx := context.Background()
	fb := submit(t, svc, w, nil)

	status := domain.StatusResolved
	public := true
	got, err := svc.Moderate(ctx, fb.ID, ModerationUpdate{Status: &status, Public: &public})
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if got.Status != domain.StatusResolved || !got.Public {
		t.Fatalf("moderation not applied: %+v", got)
	}
	// Untouched fields survive a partial update.
	if got.Priority != domain.PriorityMedium {
		t.Fatalf("priority changed unexpectedly: %s", got.Priority)
	}

	bad := domain.FeedbackStatus("escalated")
	if _, err := svc.Moderate(ctx, fb.ID, ModerationUpdate{Status: &bad}); err != ErrInvalidModeration {
		t.Fatalf("bad status = %v; want ErrInvalidModeration", err)
	}
	badP := domain.FeedbackPriority("asap")
	if _, err := svc.Moderate(ctx, fb.ID, ModerationUpdate{Priority: &badP}); err != ErrInvalidModeration {
		t.Fatalf("bad priority = %v; want ErrInvalidModeration", err)
	}
	if _, err := svc.Moderate(ctx, uuid.NewString(), ModerationUpdate{Status: &status}); err != ErrFeedbackNotFound {
		t.Fatalf("missing item = %v; want ErrFeedbackNotFound", err)
	}
}

func TestFeedbackDelete(t *testing.T) {
	db, sites, w := newStack(t, domain.WebsiteSettings{})
	svc := &FeedbackService{DB: db, Verifier: sites}
	ctx := context.Background()
	fb := submit(t, svc, w, nil)

	if err := svc.Delete(ctx, fb.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, fb.ID); err != ErrFeedbackNotFound {
		t.Fatalf("second delete = %v; want ErrFeedbackNotFound", err)
	}
}
