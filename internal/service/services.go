// Package service contains the business logic between the HTTP layer and
// storage: target lifecycle, keyword and prompt generation, page fetching
// and visibility analysis.
package service

import (
	"log/slog"

	"github.com/brandsight/brandsight-api/internal/config"
	"github.com/brandsight/brandsight-api/internal/repository"
	"github.com/brandsight/brandsight-api/internal/visibility"
)

// Services bundles the service layer for handler wiring.
type Services struct {
	Targets  *TargetService
	Analysis *AnalysisService
}

// New wires up the service layer. When no LLM is configured the analysis
// path degrades to the deterministic simulator and keyword/prompt
// generation to heuristics.
func New(cfg *config.Config, repo repository.TargetRepository, logger *slog.Logger) *Services {
	var client *LLMClient
	var completer visibility.Completer
	if cfg.LLMConfigured() {
		client = NewLLMClient(logger, cfg)
		completer = NewProbeCompleter(client)
	} else {
		logger.Warn("no LLM configured, visibility probes will use the deterministic simulator")
	}

	sampler := visibility.NewSampler(completer, logger)
	fetcher := NewPageFetcher(logger, cfg.FetchTimeout)
	prompts := NewPromptService(client, logger)

	return &Services{
		Targets: NewTargetService(repo, fetcher, prompts, logger),
		Analysis: NewAnalysisService(
			repo,
			sampler,
			cfg.ChecksPerPrompt,
			cfg.MaxPromptsPerRun,
			cfg.SamplerConcurrency,
			logger,
		),
	}
}
