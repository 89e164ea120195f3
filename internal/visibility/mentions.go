package visibility

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

var (
	errNoJSON       = errors.New("no JSON object in reply")
	errMalformedDoc = errors.New("malformed JSON document")
)

// mention is one validated brand mention reported by the LLM. Transient:
// it exists only while a single probe is being analyzed.
type mention struct {
	rank              int
	snippet           string
	llmRelevance      float64
	contextQuality    float64
	combinedRelevance float64
}

// parseMentions extracts the self-reported mention list from an LLM reply
// and validates each entry. Invalid entries are dropped individually; a
// reply that carries no parseable JSON at all is an error, which routes the
// caller to the text-scan fallback.
func parseMentions(reply, brand string) ([]mention, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, errNoJSON
	}

	// Entries are decoded field by field: models routinely get one field
	// wrong (a string where a number belongs), and a single bad field
	// should drop or default that field, not demote the whole reply to the
	// text-scan path.
	var doc struct {
		Mentions []json.RawMessage `json:"mentions"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &doc); err != nil {
		return nil, errMalformedDoc
	}

	lowerBrand := strings.ToLower(brand)

	mentions := make([]mention, 0, len(doc.Mentions))
	for _, entry := range doc.Mentions {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil {
			continue
		}

		var position *float64
		if raw, ok := fields["position"]; ok {
			_ = json.Unmarshal(raw, &position)
		}
		rank, ok := normalizeRank(position)
		if !ok {
			continue
		}

		var snippet string
		if raw, ok := fields["context"]; ok {
			_ = json.Unmarshal(raw, &snippet)
		}

		// Guard against fabricated positions: the brand has to actually
		// appear inside the snippet the model claims to quote.
		if !strings.Contains(strings.ToLower(snippet), lowerBrand) {
			continue
		}

		relevance := 0.5
		if raw, ok := fields["relevance_score"]; ok {
			var v float64
			if err := json.Unmarshal(raw, &v); err == nil {
				relevance = clamp(v, 0.0, 1.0)
			}
		}

		quality := ContextQuality(snippet, brand)

		mentions = append(mentions, mention{
			rank:              rank,
			snippet:           snippet,
			llmRelevance:      relevance,
			contextQuality:    quality,
			combinedRelevance: relevance*llmRelevanceWeight + quality*contextQualityWeight,
		})
	}

	return mentions, nil
}

// normalizeRank validates a self-reported position. Positive integers pass
// through. Values that are not positive integers are usually garbage and
// dropped, except when they are large enough to look like a character
// offset into the reply, in which case they are re-interpreted as a rough
// rank estimate.
func normalizeRank(v *float64) (int, bool) {
	if v == nil {
		return 0, false
	}
	f := *v
	if f >= 1 && f == math.Trunc(f) {
		return int(f), true
	}
	if f > offsetThreshold {
		rank := int(f) / offsetRankDivisor
		if rank < 1 {
			rank = 1
		}
		if rank > offsetRankCeiling {
			rank = offsetRankCeiling
		}
		return rank, true
	}
	return 0, false
}
