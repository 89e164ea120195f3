package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brandsight/brandsight-api/internal/models"
	"github.com/brandsight/brandsight-api/internal/repository"
	"github.com/brandsight/brandsight-api/internal/service"
)

// TargetHandler handles target management and analysis endpoints.
type TargetHandler struct {
	targets  *service.TargetService
	analysis *service.AnalysisService
}

// NewTargetHandler creates a new target handler.
func NewTargetHandler(targets *service.TargetService, analysis *service.AnalysisService) *TargetHandler {
	return &TargetHandler{targets: targets, analysis: analysis}
}

// InitTargetInput represents the target creation request.
type InitTargetInput struct {
	Body struct {
		BusinessName string `json:"businessName" minLength:"2" maxLength:"80" doc:"Business or brand name to track"`
		WebsiteURL   string `json:"websiteUrl" minLength:"1" doc:"Public website URL used to derive keywords"`
	}
}

// InitTargetOutput represents the target creation response.
type InitTargetOutput struct {
	Status int
	Body   struct {
		Target models.Target `json:"target"`
	}
}

// InitTarget creates a target: fetches the website, generates keywords
// from its content and builds category prompts.
func (h *TargetHandler) InitTarget(ctx context.Context, input *InitTargetInput) (*InitTargetOutput, error) {
	target, err := h.targets.InitTarget(ctx, input.Body.BusinessName, input.Body.WebsiteURL)
	if err != nil {
		return nil, mapTargetError(err)
	}

	out := &InitTargetOutput{Status: 201}
	out.Body.Target = *target
	return out, nil
}

// TargetIDInput carries the target ID path parameter.
type TargetIDInput struct {
	ID string `path:"id" doc:"Target ID"`
}

// TargetOutput wraps a single target response.
type TargetOutput struct {
	Body models.Target
}

// GetTarget returns a target by ID.
func (h *TargetHandler) GetTarget(ctx context.Context, input *TargetIDInput) (*TargetOutput, error) {
	target, err := h.targets.GetTarget(ctx, input.ID)
	if err != nil {
		return nil, mapTargetError(err)
	}
	return &TargetOutput{Body: *target}, nil
}

// ListTargetsOutput represents the target listing response.
type ListTargetsOutput struct {
	Body struct {
		Targets []models.Target `json:"targets"`
	}
}

// ListTargets returns all targets.
func (h *TargetHandler) ListTargets(ctx context.Context, input *struct{}) (*ListTargetsOutput, error) {
	targets, err := h.targets.ListTargets(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list targets")
	}

	out := &ListTargetsOutput{}
	out.Body.Targets = make([]models.Target, 0, len(targets))
	for _, t := range targets {
		out.Body.Targets = append(out.Body.Targets, *t)
	}
	return out, nil
}

// UpdateKeywordsInput represents a keyword replacement request.
type UpdateKeywordsInput struct {
	ID   string `path:"id" doc:"Target ID"`
	Body struct {
		Keywords []string `json:"keywords" minItems:"1" maxItems:"5" doc:"Replacement keywords"`
	}
}

// UpdateKeywords replaces a target's keywords and regenerates its prompts.
func (h *TargetHandler) UpdateKeywords(ctx context.Context, input *UpdateKeywordsInput) (*TargetOutput, error) {
	target, err := h.targets.UpdateKeywords(ctx, input.ID, input.Body.Keywords)
	if err != nil {
		return nil, mapTargetError(err)
	}
	return &TargetOutput{Body: *target}, nil
}

// UpdatePromptsInput represents a prompt replacement request.
type UpdatePromptsInput struct {
	ID   string `path:"id" doc:"Target ID"`
	Body struct {
		Prompts []string `json:"prompts" minItems:"1" maxItems:"5" doc:"Replacement prompts"`
	}
}

// UpdatePrompts replaces a target's prompts.
func (h *TargetHandler) UpdatePrompts(ctx context.Context, input *UpdatePromptsInput) (*TargetOutput, error) {
	target, err := h.targets.UpdatePrompts(ctx, input.ID, input.Body.Prompts)
	if err != nil {
		return nil, mapTargetError(err)
	}
	return &TargetOutput{Body: *target}, nil
}

// DeleteTarget removes a target.
func (h *TargetHandler) DeleteTarget(ctx context.Context, input *TargetIDInput) (*struct{}, error) {
	if err := h.targets.DeleteTarget(ctx, input.ID); err != nil {
		return nil, mapTargetError(err)
	}
	return &struct{}{}, nil
}

// AnalyzeOutput represents the visibility analysis response.
type AnalyzeOutput struct {
	Body struct {
		TargetID   string                 `json:"targetId"`
		Score      models.VisibilityScore `json:"score"`
		AnalyzedAt time.Time              `json:"analyzedAt"`
	}
}

// Analyze runs a visibility analysis for a target: several probes per
// prompt against the LLM, folded into a single 0-100 score.
func (h *TargetHandler) Analyze(ctx context.Context, input *TargetIDInput) (*AnalyzeOutput, error) {
	result, err := h.analysis.Analyze(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTargetNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError("failed to analyze target")
	}

	out := &AnalyzeOutput{}
	out.Body.TargetID = result.TargetID
	out.Body.Score = result.Score
	out.Body.AnalyzedAt = result.AnalyzedAt
	return out, nil
}

// mapTargetError translates service errors to HTTP errors. Missing
// targets map to 404; everything else surfaces as a 400 since these
// operations fail on user input (bad URLs, unreachable sites, invalid
// keywords).
func mapTargetError(err error) error {
	if errors.Is(err, repository.ErrTargetNotFound) {
		return huma.Error404NotFound(err.Error())
	}
	return huma.Error400BadRequest(err.Error())
}
