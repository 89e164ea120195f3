package visibility

import (
	"regexp"
	"strings"
)

// capitalizedWord matches brand-like tokens. Counting how many appear
// before an occurrence is a rough proxy for "how many other brands were
// listed first".
var capitalizedWord = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

// probeOutcome is the engine-internal result of analyzing one LLM reply.
// The sampler wraps it into a full VisibilityCheck.
type probeOutcome struct {
	occurred         bool
	position         *int
	contextRelevance float64
}

// scanText locates brand occurrences directly in raw reply text. This is
// the lower-confidence fallback used when the reply carried no parseable
// JSON; rank is estimated rather than self-reported, and the aggregation
// uses coarser buckets than the structured path.
func scanText(text, brand string) probeOutcome {
	positions := findOccurrences(text, brand)
	if len(positions) == 0 {
		return probeOutcome{contextRelevance: noMentionRelevance}
	}

	capPositions := capitalizedWord.FindAllStringIndex(text, -1)

	bestRank := 0
	var qualitySum float64
	for _, pos := range positions {
		rank := 1
		for _, cap := range capPositions {
			if cap[0] < pos {
				rank++
			}
		}

		start := max(0, pos-100)
		end := min(len(text), pos+len(brand)+100)
		qualitySum += ContextQuality(text[start:end], brand)

		if bestRank == 0 || rank < bestRank {
			bestRank = rank
		}
	}
	avgQuality := qualitySum / float64(len(positions))

	var positionScore float64
	switch {
	case bestRank <= 3:
		positionScore = 1.0
	case bestRank <= 6:
		positionScore = 0.75
	case bestRank <= 10:
		positionScore = 0.5
	default:
		positionScore = 0.2
	}

	frequency := min(1.0, 0.5+float64(len(positions)-1)*0.2)
	relevance := frequency*frequencyWeight + positionScore*rankWeight + avgQuality*relevanceWeight

	return probeOutcome{
		occurred:         true,
		position:         &bestRank,
		contextRelevance: clamp(relevance, checkFloor, 1.0),
	}
}

// findOccurrences returns the byte offsets of every occurrence of brand in
// text, exact-case first, retrying case-insensitively only when the exact
// case never appears. Offsets always index the original text: lowering a
// string can change rune byte lengths, so offsets into a lowered copy are
// not safe for slicing snippet windows out of text.
func findOccurrences(text, brand string) []int {
	positions := indexAll(text, brand)
	if len(positions) == 0 {
		positions = indexAllFold(text, brand)
	}
	return positions
}

func indexAll(s, substr string) []int {
	if substr == "" {
		return nil
	}
	var out []int
	from := 0
	for {
		i := strings.Index(s[from:], substr)
		if i < 0 {
			return out
		}
		out = append(out, from+i)
		from += i + 1
	}
}

// indexAllFold is the case-insensitive indexAll. It compares byte windows
// of s against substr under Unicode case folding, so every reported offset
// is valid in s itself.
func indexAllFold(s, substr string) []int {
	if substr == "" {
		return nil
	}
	var out []int
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			out = append(out, i)
		}
	}
	return out
}
