package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/brandsight/brandsight-api/internal/models"
)

// Completer answers a prompt with free-form text. The LLM integration is
// injected through this interface so the sampler is testable without
// network access.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const probeSystemPrompt = "You are a helpful AI assistant. When analyzing brand mentions, " +
	"you must first identify ALL brands in order, then find the target brand's position " +
	"in that complete ordered list. Answer queries naturally and return ONLY the requested JSON structure."

// Sampler runs visibility probes. One probe sends one prompt to the LLM and
// inspects the answer for mentions of one brand.
//
// Sample never fails: transport/provider errors degrade to the deterministic
// simulator and unparseable replies degrade to raw text scanning, so a
// calling loop can run a fixed battery of probes without per-call error
// handling.
type Sampler struct {
	completer Completer // nil means simulation-only mode
	logger    *slog.Logger
}

// NewSampler creates a sampler. Pass a nil completer to run every probe
// through the deterministic simulator (offline mode).
func NewSampler(completer Completer, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		completer: completer,
		logger:    logger.With("component", "sampler"),
	}
}

// Sample executes one probe for (prompt, brand) and returns a well-formed
// VisibilityCheck on every code path.
func (s *Sampler) Sample(ctx context.Context, prompt, brand, targetID string, checkIndex int) models.VisibilityCheck {
	if s.completer == nil {
		s.logger.Debug("no LLM configured, simulating probe", "target_id", targetID, "check_index", checkIndex)
		return Simulate(prompt, brand, targetID, checkIndex)
	}

	cleanPrompt := truncatePrompt(prompt)

	reply, err := s.completer.Complete(ctx, probeSystemPrompt, buildProbePrompt(cleanPrompt, brand))
	if err != nil {
		s.logger.Warn("probe failed, falling back to simulation",
			"target_id", targetID,
			"check_index", checkIndex,
			"error", err,
		)
		return Simulate(prompt, brand, targetID, checkIndex)
	}

	mentions, err := parseMentions(reply, brand)
	if err != nil {
		s.logger.Debug("reply not parseable as JSON, scanning raw text",
			"target_id", targetID,
			"check_index", checkIndex,
			"error", err,
		)
		outcome := scanText(reply, brand)
		return buildCheck(prompt, brand, outcome)
	}

	outcome := aggregateMentions(mentions)
	return buildCheck(prompt, brand, outcome)
}

func buildCheck(prompt, brand string, outcome probeOutcome) models.VisibilityCheck {
	return models.VisibilityCheck{
		Prompt:           prompt,
		Keyword:          brand,
		Occurred:         outcome.occurred,
		Position:         outcome.position,
		ContextRelevance: outcome.contextRelevance,
	}
}

// aggregateMentions folds the validated mentions of one probe into a single
// occurred/position/relevance triple.
func aggregateMentions(mentions []mention) probeOutcome {
	if len(mentions) == 0 {
		return probeOutcome{contextRelevance: noMentionRelevance}
	}

	best := mentions[0].rank
	for _, m := range mentions[1:] {
		if m.rank < best {
			best = m.rank
		}
	}

	frequency := frequencyScore(len(mentions))

	// Earlier-discovered mentions dominate the rank blend.
	var weightSum, weightedRank, relevanceSum float64
	for i, m := range mentions {
		w := 1.0 / math.Pow(float64(i+1), 1.5)
		weightSum += w
		weightedRank += rankScore(float64(m.rank)) * w
		relevanceSum += m.combinedRelevance
	}
	weightedRank /= weightSum
	avgRelevance := relevanceSum / float64(len(mentions))

	relevance := frequency*frequencyWeight + weightedRank*rankWeight + avgRelevance*relevanceWeight

	if best > lateRankThreshold {
		latePenalty := min(checkLatePenaltyCap, float64(best-lateRankThreshold)/latePenaltyDivisor)
		relevance *= 1.0 - latePenalty
	}

	relevance = clamp(relevance*checkDamping, checkFloor, checkCeiling)

	return probeOutcome{
		occurred:         true,
		position:         &best,
		contextRelevance: relevance,
	}
}

// truncatePrompt strips any previously appended analysis instructions and
// bounds the prompt before it goes out on the wire. The bound counts runes,
// not bytes, so a multi-byte character is never split into invalid UTF-8.
func truncatePrompt(prompt string) string {
	if i := strings.Index(prompt, "\nIMPORTANT:"); i >= 0 {
		prompt = prompt[:i]
	}
	prompt = strings.TrimSpace(prompt)
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		runes := []rune(prompt)
		prompt = string(runes[:MaxPromptLength])
	}
	return prompt
}

// buildProbePrompt asks the model to answer the query naturally and, in the
// same reply, self-report every mention of the brand as JSON.
func buildProbePrompt(prompt, brand string) string {
	return fmt.Sprintf(`Answer this user query naturally. When listing services/brands, provide a comprehensive list of 10-15 options:

%s

---

CRITICAL ANALYSIS INSTRUCTIONS:

Perform this analysis process (do NOT skip steps):

1. Scan your response above and identify EVERY brand/service name mentioned (create a complete list).
2. Number them in the exact order they appear: 1st mentioned = position 1, 2nd mentioned = position 2, 3rd = position 3, etc.
3. Locate "%s" in that numbered list.
4. Return ONLY valid JSON:

{
  "mentions": [
    {
      "position": <position number>,
      "context": "<50-100 characters of text around the brand mention from your response above>",
      "relevance_score": <1.0 if position 1-3, 0.8-0.9 if position 4-6, 0.5-0.7 if position 7-10, 0.3 if position 11+>
    }
  ]
}

If "%s" does NOT appear in your response, return: {"mentions": []}

Return ONLY the JSON object, nothing else.`, prompt, brand, brand)
}
