package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/brandsight/brandsight-api/internal/models"
	"github.com/brandsight/brandsight-api/internal/repository"
	"github.com/brandsight/brandsight-api/internal/visibility"
)

// AnalysisResult is the outcome of a full visibility analysis run.
type AnalysisResult struct {
	TargetID   string
	Score      models.VisibilityScore
	AnalyzedAt time.Time
}

// AnalysisService runs visibility analyses: for each of a target's prompts
// it performs several independent probes against the LLM and folds the
// per-probe checks into a single score.
type AnalysisService struct {
	repo            repository.TargetRepository
	sampler         *visibility.Sampler
	checksPerPrompt int
	maxPrompts      int
	concurrency     int
	logger          *slog.Logger
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(
	repo repository.TargetRepository,
	sampler *visibility.Sampler,
	checksPerPrompt, maxPrompts, concurrency int,
	logger *slog.Logger,
) *AnalysisService {
	if checksPerPrompt <= 0 {
		checksPerPrompt = 6
	}
	if maxPrompts <= 0 {
		maxPrompts = 5
	}
	if concurrency <= 0 {
		concurrency = 3
	}
	return &AnalysisService{
		repo:            repo,
		sampler:         sampler,
		checksPerPrompt: checksPerPrompt,
		maxPrompts:      maxPrompts,
		concurrency:     concurrency,
		logger:          logger,
	}
}

// Analyze probes the LLM with each of the target's prompts and scores how
// visible the brand is in the replies. Probes run concurrently with
// bounded parallelism; every probe resolves to a check even when the LLM
// call fails, so the run always produces a complete score.
func (s *AnalysisService) Analyze(ctx context.Context, targetID string) (*AnalysisResult, error) {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	prompts := target.Prompts
	if len(prompts) > s.maxPrompts {
		prompts = prompts[:s.maxPrompts]
	}

	brand := target.BusinessName
	totalChecks := len(prompts) * s.checksPerPrompt

	s.logger.Info("starting visibility analysis",
		"target_id", targetID,
		"brand", brand,
		"prompts", len(prompts),
		"checks_per_prompt", s.checksPerPrompt,
		"total_checks", totalChecks,
	)

	type probeJob struct {
		slot       int
		prompt     string
		checkIndex int
	}

	jobs := make([]probeJob, 0, totalChecks)
	for _, prompt := range prompts {
		for i := 0; i < s.checksPerPrompt; i++ {
			jobs = append(jobs, probeJob{slot: len(jobs), prompt: prompt.Value, checkIndex: i})
		}
	}

	// Each job writes to its own pre-assigned slot, keeping check order
	// deterministic regardless of completion order.
	checks := make([]models.VisibilityCheck, len(jobs))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for _, job := range jobs {
		wg.Add(1)
		go func(job probeJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			checks[job.slot] = s.sampler.Sample(ctx, job.prompt, brand, targetID, job.checkIndex)
		}(job)
	}
	wg.Wait()

	score := visibility.Score(checks)

	s.logger.Info("visibility analysis complete",
		"target_id", targetID,
		"total_checks", score.TotalChecks,
		"occurrences", score.Occurrences,
		"visibility_score", score.VisibilityScore,
	)

	return &AnalysisResult{
		TargetID:   targetID,
		Score:      score,
		AnalyzedAt: time.Now().UTC(),
	}, nil
}
