package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandsight/brandsight-api/internal/models"
	"github.com/brandsight/brandsight-api/internal/repository"
	"github.com/brandsight/brandsight-api/internal/validation"
)

// minUsableText is the shortest extracted page text worth feeding to
// keyword generation. Below this we synthesize a stub description.
const minUsableText = 50

// HTMLFetcher retrieves raw HTML for a URL. Satisfied by PageFetcher.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// TargetService manages the lifecycle of visibility analysis targets.
type TargetService struct {
	repo    repository.TargetRepository
	fetcher HTMLFetcher
	prompts *PromptService
	logger  *slog.Logger
}

// NewTargetService creates a target service.
func NewTargetService(repo repository.TargetRepository, fetcher HTMLFetcher, prompts *PromptService, logger *slog.Logger) *TargetService {
	return &TargetService{repo: repo, fetcher: fetcher, prompts: prompts, logger: logger}
}

// InitTarget creates a target by fetching the business website, deriving
// keywords from its content and building category prompts from those
// keywords.
func (s *TargetService) InitTarget(ctx context.Context, businessName, websiteURL string) (*models.Target, error) {
	name, err := validation.ValidateBusinessName(businessName)
	if err != nil {
		return nil, err
	}
	pageURL, err := validation.ValidateURL(websiteURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("initializing target", "business_name", name, "url", pageURL)

	html, err := s.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	text, err := ExtractText(html)
	if err != nil || len(text) < minUsableText {
		s.logger.Warn("extracted page text too short, using fallback description", "length", len(text))
		text = fmt.Sprintf("%s provides services and solutions.", name)
	}

	rawKeywords := s.prompts.GenerateKeywords(ctx, text, DefaultKeywordCount)
	keywords := validation.SanitizeKeywords(rawKeywords)
	for len(keywords) < DefaultKeywordCount {
		keywords = append(keywords, fmt.Sprintf("%s %d", name, len(keywords)+1))
	}
	keywords = keywords[:DefaultKeywordCount]

	promptValues := s.prompts.BuildPrompts(ctx, name, keywords)

	now := time.Now().UTC()
	target := &models.Target{
		ID:           ulid.Make().String(),
		BusinessName: name,
		WebsiteURL:   pageURL,
		Keywords:     generatedKeywords(keywords),
		Prompts:      toPrompts(promptValues, true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to store target: %w", err)
	}

	s.logger.Info("target initialized", "target_id", target.ID, "keywords", len(target.Keywords), "prompts", len(target.Prompts))
	return target, nil
}

// GetTarget retrieves a target by ID.
func (s *TargetService) GetTarget(ctx context.Context, id string) (*models.Target, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTargets returns all targets.
func (s *TargetService) ListTargets(ctx context.Context) ([]*models.Target, error) {
	return s.repo.List(ctx)
}

// UpdateKeywords replaces a target's keywords with user-supplied values
// and regenerates its prompts to match.
func (s *TargetService) UpdateKeywords(ctx context.Context, id string, keywords []string) (*models.Target, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	validated, err := validation.ValidateKeywords(keywords)
	if err != nil {
		return nil, err
	}

	s.logger.Info("updating keywords and regenerating prompts", "target_id", id)

	promptValues := s.prompts.BuildPrompts(ctx, target.BusinessName, validated)

	if _, err := s.repo.UpdateKeywords(ctx, id, toKeywords(validated, false)); err != nil {
		return nil, err
	}
	return s.repo.UpdatePrompts(ctx, id, toPrompts(promptValues, true))
}

// UpdatePrompts replaces a target's prompts with user-supplied values.
func (s *TargetService) UpdatePrompts(ctx context.Context, id string, prompts []string) (*models.Target, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	validated, err := validation.ValidatePrompts(prompts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("updating prompts", "target_id", id)
	return s.repo.UpdatePrompts(ctx, id, toPrompts(validated, false))
}

// DeleteTarget removes a target.
func (s *TargetService) DeleteTarget(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func generatedKeywords(values []string) []models.Keyword {
	return toKeywords(values, true)
}

func toKeywords(values []string, generated bool) []models.Keyword {
	out := make([]models.Keyword, 0, len(values))
	for _, v := range values {
		out = append(out, models.Keyword{Value: v, Generated: generated})
	}
	return out
}

func toPrompts(values []string, generated bool) []models.Prompt {
	out := make([]models.Prompt, 0, len(values))
	for _, v := range values {
		out = append(out, models.Prompt{Value: v, Generated: generated})
	}
	return out
}
