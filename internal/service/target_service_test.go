package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/brandsight/brandsight-api/internal/repository"
)

type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) FetchHTML(_ context.Context, _ string) (string, error) {
	return f.html, f.err
}

func newTestTargetService(fetcher HTMLFetcher) (*TargetService, repository.TargetRepository) {
	repo := repository.NewMemoryTargetRepository()
	logger := slog.Default()
	return NewTargetService(repo, fetcher, NewPromptService(nil, logger), logger), repo
}

const testPageHTML = `<html><body>
	<h1>Acme Coffee Roastery</h1>
	<p>Specialty coffee roastery offering espresso beans, brewing equipment,
	coffee subscriptions and barista training. Fresh roasted coffee beans
	shipped weekly from our roastery.</p>
</body></html>`

// ========================================
// InitTarget Tests
// ========================================

func TestInitTarget(t *testing.T) {
	svc, _ := newTestTargetService(&fakeFetcher{html: testPageHTML})

	target, err := svc.InitTarget(context.Background(), "Acme Coffee", "https://acmecoffee.example")
	if err != nil {
		t.Fatalf("InitTarget: %v", err)
	}

	if target.ID == "" {
		t.Error("target ID should be set")
	}
	if target.BusinessName != "Acme Coffee" {
		t.Errorf("BusinessName = %q, want %q", target.BusinessName, "Acme Coffee")
	}
	if len(target.Keywords) != DefaultKeywordCount {
		t.Errorf("got %d keywords, want %d", len(target.Keywords), DefaultKeywordCount)
	}
	for _, kw := range target.Keywords {
		if !kw.Generated {
			t.Errorf("initial keyword %q should be marked generated", kw.Value)
		}
	}
	if len(target.Prompts) < 2 {
		t.Errorf("got %d prompts, want at least 2", len(target.Prompts))
	}
	for _, p := range target.Prompts {
		if !p.Generated {
			t.Errorf("initial prompt %q should be marked generated", p.Value)
		}
	}
	if target.CreatedAt.IsZero() || target.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestInitTarget_ValidationErrors(t *testing.T) {
	svc, _ := newTestTargetService(&fakeFetcher{html: testPageHTML})
	ctx := context.Background()

	if _, err := svc.InitTarget(ctx, "A", "https://example.com"); err == nil {
		t.Error("expected error for too-short business name")
	}
	if _, err := svc.InitTarget(ctx, "Acme Coffee", "ftp://example.com"); err == nil {
		t.Error("expected error for non-http URL")
	}
}

func TestInitTarget_FetchError(t *testing.T) {
	svc, _ := newTestTargetService(&fakeFetcher{err: errors.New("connection refused")})

	if _, err := svc.InitTarget(context.Background(), "Acme Coffee", "https://example.com"); err == nil {
		t.Error("expected fetch error to propagate")
	}
}

func TestInitTarget_SparsePageUsesFallbackText(t *testing.T) {
	// A nearly empty page must still produce a full keyword set.
	svc, _ := newTestTargetService(&fakeFetcher{html: "<html><body>hi</body></html>"})

	target, err := svc.InitTarget(context.Background(), "Acme Coffee", "https://example.com")
	if err != nil {
		t.Fatalf("InitTarget: %v", err)
	}
	if len(target.Keywords) != DefaultKeywordCount {
		t.Errorf("got %d keywords, want %d", len(target.Keywords), DefaultKeywordCount)
	}
}

// ========================================
// Update Tests
// ========================================

func TestUpdateKeywords_RegeneratesPrompts(t *testing.T) {
	svc, _ := newTestTargetService(&fakeFetcher{html: testPageHTML})
	ctx := context.Background()

	target, err := svc.InitTarget(ctx, "Acme Coffee", "https://example.com")
	if err != nil {
		t.Fatalf("InitTarget: %v", err)
	}

	updated, err := svc.UpdateKeywords(ctx, target.ID, []string{"cold brew", "nitro coffee"})
	if err != nil {
		t.Fatalf("UpdateKeywords: %v", err)
	}

	if len(updated.Keywords) != 2 {
		t.Fatalf("got %d keywords, want 2", len(updated.Keywords))
	}
	for _, kw := range updated.Keywords {
		if kw.Generated {
			t.Errorf("user keyword %q should not be marked generated", kw.Value)
		}
	}

	// Prompts are rebuilt from the new keywords.
	foundNewKeyword := false
	for _, p := range updated.Prompts {
		if strings.Contains(p.Value, "cold brew") {
			foundNewKeyword = true
		}
		if !p.Generated {
			t.Errorf("regenerated prompt %q should be marked generated", p.Value)
		}
	}
	if !foundNewKeyword {
		t.Error("regenerated prompts should reference the new keywords")
	}
}

func TestUpdateKeywords_Validation(t *testing.T) {
	svc, _ := newTestTargetService(&fakeFetcher{html: testPageHTML})
	ctx := context.Background()

	target, err := svc.InitTarget(ctx, "Acme Coffee", "https://example.com")
	if err != nil {
		t.Fatalf("InitTarget: %v", err)
	}

	if _, err := svc.UpdateKeywords(ctx, target.ID, nil); err == nil {
		t.Error("expected error for empty keyword list")
	}
	if _, err := svc.UpdateKeywords(ctx, "no-such-id", []string{"coffee"}); !errors.Is(err, repository.ErrTargetNotFound) {
		t.Errorf("err = %v, want ErrTargetNotFound", err)
	}
}

func TestUpdatePrompts(t *testing.T) {
	svc, _ := newTestTargetService(&fakeFetcher{html: testPageHTML})
	ctx := context.Background()

	target, err := svc.InitTarget(ctx, "Acme Coffee", "https://example.com")
	if err != nil {
		t.Fatalf("InitTarget: %v", err)
	}
	originalKeywords := len(target.Keywords)

	updated, err := svc.UpdatePrompts(ctx, target.ID, []string{"best specialty coffee roasters"})
	if err != nil {
		t.Fatalf("UpdatePrompts: %v", err)
	}
	if len(updated.Prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(updated.Prompts))
	}
	if updated.Prompts[0].Generated {
		t.Error("user prompt should not be marked generated")
	}
	if len(updated.Keywords) != originalKeywords {
		t.Error("UpdatePrompts must not touch keywords")
	}
}

func TestUpdatePrompts_RejectsInternalURL(t *testing.T) {
	svc, _ := newTestTargetService(&fakeFetcher{html: testPageHTML})
	ctx := context.Background()

	target, err := svc.InitTarget(ctx, "Acme Coffee", "https://example.com")
	if err != nil {
		t.Fatalf("InitTarget: %v", err)
	}

	if _, err := svc.UpdatePrompts(ctx, target.ID, []string{"check http://localhost/admin"}); err == nil {
		t.Error("expected error for prompt with internal URL")
	}
}

// ========================================
// Delete Tests
// ========================================

func TestDeleteTarget(t *testing.T) {
	svc, _ := newTestTargetService(&fakeFetcher{html: testPageHTML})
	ctx := context.Background()

	target, err := svc.InitTarget(ctx, "Acme Coffee", "https://example.com")
	if err != nil {
		t.Fatalf("InitTarget: %v", err)
	}

	if err := svc.DeleteTarget(ctx, target.ID); err != nil {
		t.Fatalf("DeleteTarget: %v", err)
	}
	if _, err := svc.GetTarget(ctx, target.ID); !errors.Is(err, repository.ErrTargetNotFound) {
		t.Errorf("GetTarget after delete = %v, want ErrTargetNotFound", err)
	}
}
