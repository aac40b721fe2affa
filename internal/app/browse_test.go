package app_test

import (
	"context"
	"errors"
	"testing"

	"reviewpulse/internal/app"
	"reviewpulse/internal/domain"
)

func TestBrowse_LoadPage_TolerantEnrichment(t *testing.T) {
	fc := &fakeClient{
		reviews: []domain.Review{
			{ID: 1, Text: "battery great"},
			{ID: 2, Text: "screen cracked"},
		},
		analysisErr: map[int64]error{2: errors.New("analysis unavailable")},
	}
	b := app.NewBrowseService(fc, 4)

	pg, err := b.LoadPage(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	if len(pg.Items) != 2 {
		t.Fatalf("expected both items kept, got %d", len(pg.Items))
	}
	if pg.Items[0].Review.ID != 1 || pg.Items[1].Review.ID != 2 {
		t.Fatalf("page order changed: %+v", pg.Items)
	}
	if pg.Items[0].Sentiment == nil {
		t.Fatalf("item 1 should carry sentiment")
	}
	if pg.Items[1].Sentiment != nil {
		t.Fatalf("item 2 enrichment failed, sentiment must be absent")
	}
}

func TestBrowse_LoadPage_OffsetLimit(t *testing.T) {
	fc := &fakeClient{}
	b := app.NewBrowseService(fc, 4)

	if _, err := b.LoadPage(context.Background(), 3, 10); err != nil {
		t.Fatalf("load page: %v", err)
	}
	if fc.listSkip != 20 || fc.listLimit != 10 {
		t.Fatalf("skip/limit = %d/%d, want 20/10", fc.listSkip, fc.listLimit)
	}
}

func TestBrowse_LoadPage_ListFailureAborts(t *testing.T) {
	fc := &fakeClient{failOn: map[string]error{"ListReviews": errors.New("down")}}
	b := app.NewBrowseService(fc, 4)

	if _, err := b.LoadPage(context.Background(), 1, 10); err == nil {
		t.Fatalf("expected error when the primary list fetch fails")
	}
}

func TestBrowse_Stale(t *testing.T) {
	fc := &fakeClient{reviews: []domain.Review{{ID: 1, Text: "ok"}}}
	b := app.NewBrowseService(fc, 2)

	first, err := b.LoadPage(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	if b.Stale(first.Generation) {
		t.Fatalf("latest page must not be stale")
	}

	second, err := b.LoadPage(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	if !b.Stale(first.Generation) {
		t.Fatalf("superseded page must be stale")
	}
	if b.Stale(second.Generation) {
		t.Fatalf("newest page must not be stale")
	}
}
