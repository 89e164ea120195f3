package visibility

import (
	"math"

	"github.com/brandsight/brandsight-api/internal/models"
)

// Score folds a full set of probe checks into one VisibilityScore. Never
// fails: an empty input yields a zero-valued score with a nil average
// position.
//
// The blend weights occurrence rate at 50, position at 42 and context
// relevance at 8 (of 100), then applies late-position and missing-mention
// penalties and a fixed conservatism factor.
func Score(checks []models.VisibilityCheck) models.VisibilityScore {
	total := len(checks)
	if total == 0 {
		return models.VisibilityScore{Checks: []models.VisibilityCheck{}}
	}

	occurrences := 0
	var positionSum float64
	positionCount := 0
	var relevanceSum float64

	for _, check := range checks {
		if check.Occurred {
			occurrences++
		}
		if check.Position != nil {
			positionSum += float64(*check.Position)
			positionCount++
		}
		relevanceSum += check.ContextRelevance
	}

	var averagePosition *float64
	if positionCount > 0 {
		avg := positionSum / float64(positionCount)
		averagePosition = &avg
	}
	averageRelevance := relevanceSum / float64(total)

	occurrenceRate := float64(occurrences) / float64(total)

	positionScore := 0.0
	if averagePosition != nil {
		positionScore = rankScore(*averagePosition)
	}

	score := occurrenceRate*occurrenceRateWeight +
		positionScore*positionScoreWeight +
		averageRelevance*contextRelevanceWeight

	// Late average rank hurts visibility beyond what the position score
	// already captures.
	if averagePosition != nil && *averagePosition > lateRankThreshold {
		latePenalty := min(scoreLatePenaltyCap, (*averagePosition-lateRankThreshold)/latePenaltyDivisor)
		score *= 1.0 - latePenalty
	}

	// Brands missing from too many answers get penalized on top of the
	// occurrence-rate weight.
	if occurrenceRate < lowOccurrenceThreshold {
		missingPenalty := (lowOccurrenceThreshold - occurrenceRate) * missingPenaltyFactor
		score *= 1.0 - missingPenalty
	}

	score *= conservatismFactor
	score = clamp(score, 0.0, 100.0)

	return models.VisibilityScore{
		TotalChecks:             total,
		Occurrences:             occurrences,
		AveragePosition:         averagePosition,
		AverageContextRelevance: averageRelevance,
		VisibilityScore:         math.Round(score*100) / 100,
		Checks:                  checks,
	}
}
