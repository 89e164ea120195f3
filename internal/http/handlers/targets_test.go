package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brandsight/brandsight-api/internal/repository"
	"github.com/brandsight/brandsight-api/internal/service"
	"github.com/brandsight/brandsight-api/internal/visibility"
)

const testPageHTML = `<!DOCTYPE html>
<html>
<head><title>Acme Coffee</title></head>
<body>
<h1>Acme Coffee Roastery</h1>
<p>We roast specialty coffee beans in small batches. Our espresso blends
and single origin coffee are shipped fresh. Subscribe for monthly coffee
deliveries of the best roasted beans.</p>
</body>
</html>`

// stubFetcher implements service.HTMLFetcher for testing
type stubFetcher struct {
	html string
	err  error
}

func (f *stubFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	return f.html, f.err
}

func newTestHandler(t *testing.T) *TargetHandler {
	t.Helper()

	logger := slog.Default()
	repo := repository.NewMemoryTargetRepository()
	prompts := service.NewPromptService(nil, logger)
	fetcher := &stubFetcher{html: testPageHTML}
	targets := service.NewTargetService(repo, fetcher, prompts, logger)
	sampler := visibility.NewSampler(nil, logger)
	analysis := service.NewAnalysisService(repo, sampler, 6, 5, 3, logger)
	return NewTargetHandler(targets, analysis)
}

func createTestTarget(t *testing.T, h *TargetHandler) string {
	t.Helper()

	input := &InitTargetInput{}
	input.Body.BusinessName = "Acme Coffee"
	input.Body.WebsiteURL = "https://acmecoffee.example.com"

	output, err := h.InitTarget(context.Background(), input)
	if err != nil {
		t.Fatalf("InitTarget: %v", err)
	}
	return output.Body.Target.ID
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", want)
	}
	statusErr, ok := err.(huma.StatusError)
	if !ok {
		t.Fatalf("expected huma.StatusError, got %T: %v", err, err)
	}
	if statusErr.GetStatus() != want {
		t.Errorf("status = %d, want %d", statusErr.GetStatus(), want)
	}
}

// ========================================
// InitTarget Tests
// ========================================

func TestInitTarget(t *testing.T) {
	h := newTestHandler(t)

	input := &InitTargetInput{}
	input.Body.BusinessName = "Acme Coffee"
	input.Body.WebsiteURL = "https://acmecoffee.example.com"

	output, err := h.InitTarget(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Status != 201 {
		t.Errorf("Status = %d, want 201", output.Status)
	}
	if output.Body.Target.ID == "" {
		t.Error("target ID should be set")
	}
	if output.Body.Target.BusinessName != "Acme Coffee" {
		t.Errorf("BusinessName = %q, want %q", output.Body.Target.BusinessName, "Acme Coffee")
	}
	if len(output.Body.Target.Keywords) != 5 {
		t.Errorf("len(Keywords) = %d, want 5", len(output.Body.Target.Keywords))
	}
	if len(output.Body.Target.Prompts) < 2 {
		t.Errorf("len(Prompts) = %d, want at least 2", len(output.Body.Target.Prompts))
	}
}

func TestInitTarget_InvalidURL(t *testing.T) {
	h := newTestHandler(t)

	input := &InitTargetInput{}
	input.Body.BusinessName = "Acme Coffee"
	input.Body.WebsiteURL = "ftp://acmecoffee.example.com"

	_, err := h.InitTarget(context.Background(), input)
	assertStatus(t, err, http.StatusBadRequest)
}

func TestInitTarget_ShortBusinessName(t *testing.T) {
	h := newTestHandler(t)

	input := &InitTargetInput{}
	input.Body.BusinessName = "A"
	input.Body.WebsiteURL = "https://acmecoffee.example.com"

	_, err := h.InitTarget(context.Background(), input)
	assertStatus(t, err, http.StatusBadRequest)
}

// ========================================
// GetTarget Tests
// ========================================

func TestGetTarget(t *testing.T) {
	h := newTestHandler(t)
	id := createTestTarget(t, h)

	output, err := h.GetTarget(context.Background(), &TargetIDInput{ID: id})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.ID != id {
		t.Errorf("ID = %q, want %q", output.Body.ID, id)
	}
}

func TestGetTarget_NotFound(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.GetTarget(context.Background(), &TargetIDInput{ID: "no-such-id"})
	assertStatus(t, err, http.StatusNotFound)
}

// ========================================
// ListTargets Tests
// ========================================

func TestListTargets(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.ListTargets(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Body.Targets) != 0 {
		t.Errorf("len(Targets) = %d, want 0", len(output.Body.Targets))
	}

	first := createTestTarget(t, h)
	second := createTestTarget(t, h)

	output, err = h.ListTargets(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Body.Targets) != 2 {
		t.Fatalf("len(Targets) = %d, want 2", len(output.Body.Targets))
	}
	if output.Body.Targets[0].ID != first || output.Body.Targets[1].ID != second {
		t.Error("targets should be listed in creation order")
	}
}

// ========================================
// UpdateKeywords Tests
// ========================================

func TestUpdateKeywords(t *testing.T) {
	h := newTestHandler(t)
	id := createTestTarget(t, h)

	input := &UpdateKeywordsInput{ID: id}
	input.Body.Keywords = []string{"cold brew", "espresso machines"}

	output, err := h.UpdateKeywords(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Body.Keywords) != 2 {
		t.Fatalf("len(Keywords) = %d, want 2", len(output.Body.Keywords))
	}
	if output.Body.Keywords[0].Value != "cold brew" {
		t.Errorf("Keywords[0] = %q, want %q", output.Body.Keywords[0].Value, "cold brew")
	}
	if output.Body.Keywords[0].Generated {
		t.Error("user supplied keywords should not be marked generated")
	}
	if len(output.Body.Prompts) == 0 {
		t.Fatal("prompts should be regenerated from the new keywords")
	}
}

func TestUpdateKeywords_NotFound(t *testing.T) {
	h := newTestHandler(t)

	input := &UpdateKeywordsInput{ID: "no-such-id"}
	input.Body.Keywords = []string{"cold brew"}

	_, err := h.UpdateKeywords(context.Background(), input)
	assertStatus(t, err, http.StatusNotFound)
}

func TestUpdateKeywords_Invalid(t *testing.T) {
	h := newTestHandler(t)
	id := createTestTarget(t, h)

	input := &UpdateKeywordsInput{ID: id}
	input.Body.Keywords = []string{"x"}

	_, err := h.UpdateKeywords(context.Background(), input)
	assertStatus(t, err, http.StatusBadRequest)
}

// ========================================
// UpdatePrompts Tests
// ========================================

func TestUpdatePrompts(t *testing.T) {
	h := newTestHandler(t)
	id := createTestTarget(t, h)

	input := &UpdatePromptsInput{ID: id}
	input.Body.Prompts = []string{"What are the best specialty coffee roasters?"}

	output, err := h.UpdatePrompts(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Body.Prompts) != 1 {
		t.Fatalf("len(Prompts) = %d, want 1", len(output.Body.Prompts))
	}
	if output.Body.Prompts[0].Generated {
		t.Error("user supplied prompts should not be marked generated")
	}
}

func TestUpdatePrompts_RejectsInternalURL(t *testing.T) {
	h := newTestHandler(t)
	id := createTestTarget(t, h)

	input := &UpdatePromptsInput{ID: id}
	input.Body.Prompts = []string{"Check http://localhost:8080/admin for details"}

	_, err := h.UpdatePrompts(context.Background(), input)
	assertStatus(t, err, http.StatusBadRequest)
}

// ========================================
// DeleteTarget Tests
// ========================================

func TestDeleteTarget(t *testing.T) {
	h := newTestHandler(t)
	id := createTestTarget(t, h)

	if _, err := h.DeleteTarget(context.Background(), &TargetIDInput{ID: id}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := h.GetTarget(context.Background(), &TargetIDInput{ID: id})
	assertStatus(t, err, http.StatusNotFound)
}

func TestDeleteTarget_NotFound(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.DeleteTarget(context.Background(), &TargetIDInput{ID: "no-such-id"})
	assertStatus(t, err, http.StatusNotFound)
}

// ========================================
// Analyze Tests
// ========================================

func TestAnalyze(t *testing.T) {
	h := newTestHandler(t)
	id := createTestTarget(t, h)

	output, err := h.Analyze(context.Background(), &TargetIDInput{ID: id})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.TargetID != id {
		t.Errorf("TargetID = %q, want %q", output.Body.TargetID, id)
	}
	if output.Body.Score.TotalChecks == 0 {
		t.Error("TotalChecks should be positive")
	}
	if s := output.Body.Score.VisibilityScore; s < 0 || s > 100 {
		t.Errorf("VisibilityScore = %v, want within [0, 100]", s)
	}
	if output.Body.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt should be set")
	}
}

func TestAnalyze_NotFound(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Analyze(context.Background(), &TargetIDInput{ID: "no-such-id"})
	assertStatus(t, err, http.StatusNotFound)
}
