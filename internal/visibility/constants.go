// Package visibility implements the brand visibility analysis engine:
// probe sampling against an LLM, mention extraction with layered fallbacks,
// and aggregation of probe results into a single 0-100 score.
package visibility

// Scoring model constants. These are hand-tuned and normative: changing any
// of them changes every score the engine produces. Keep them here, named,
// so tuning never touches control flow.
const (
	// MaxPromptLength bounds the outbound prompt sent to the LLM.
	MaxPromptLength = 200

	// Mention relevance blend: the LLM's self-assessed relevance dominates
	// our own context quality estimate.
	llmRelevanceWeight   = 0.7
	contextQualityWeight = 0.3

	// Per-check blend of the three sub-scores. Frequency and rank carry
	// almost all the weight; textual relevance is a tiebreaker.
	frequencyWeight = 0.55
	rankWeight      = 0.42
	relevanceWeight = 0.03

	// Ranks past this get a late-appearance penalty.
	lateRankThreshold  = 5
	latePenaltyDivisor = 9.0
	// Penalty caps differ between the per-check and aggregate paths.
	checkLatePenaltyCap = 0.22
	scoreLatePenaltyCap = 0.28

	// Per-check damping and clamp. Checks never reach a perfect 1.0.
	checkDamping = 0.92
	checkFloor   = 0.05
	checkCeiling = 0.95

	// Relevance reported when the brand did not occur at all.
	noMentionRelevance = 0.1

	// Aggregate score weights (sum to 100).
	occurrenceRateWeight   = 50.0
	positionScoreWeight    = 42.0
	contextRelevanceWeight = 8.0

	// Occurrence rates below this threshold get a missing-mentions penalty.
	lowOccurrenceThreshold = 0.55
	missingPenaltyFactor   = 0.32

	// Fixed conservatism applied to every aggregate score.
	conservatismFactor = 0.95

	// Self-reported "positions" above this look like character offsets, not
	// competitive ranks. Re-interpreted by dividing by offsetRankDivisor.
	// TODO: constrain the provider prompt so only rank integers come back,
	// then delete this heuristic.
	offsetThreshold   = 500
	offsetRankDivisor = 50
	offsetRankCeiling = 10
)

// rankScore maps a competitive rank (1 = first brand mentioned) to a score
// in (0,1]. Used identically for per-mention ranks and for the aggregate
// average position.
func rankScore(rank float64) float64 {
	switch {
	case rank <= 3:
		return 0.92 - ((rank-1)/2)*0.05 // 0.92 .. 0.87
	case rank <= 6:
		return 0.70 - ((rank-3)/3)*0.18 // 0.70 .. 0.52
	case rank <= 10:
		return 0.55 - ((rank-6)/4)*0.25 // 0.55 .. 0.30
	case rank <= 15:
		return 0.30 - ((rank-10)/5)*0.18 // 0.30 .. 0.12
	default:
		return 0.05
	}
}

// frequencyScore rewards repeated mentions with diminishing returns.
func frequencyScore(mentions int) float64 {
	switch {
	case mentions <= 0:
		return 0
	case mentions == 1:
		return 0.5
	case mentions == 2:
		return 0.75
	case mentions == 3:
		return 0.90
	default:
		return min(1.0, 0.90+float64(mentions-3)*0.05)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
