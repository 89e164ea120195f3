package visibility

import (
	"strings"
	"unicode"
)

// positiveIndicators are business terms whose presence near a mention
// suggests the brand was named with intent, not in passing.
var positiveIndicators = []string{
	"best", "top", "recommended", "popular", "excellent", "quality",
	"service", "professional", "reliable", "trusted",
}

// ContextQuality scores a text snippet around a brand mention for
// explanatory value. Pure function; result is always in [0.1, 1.0].
//
// Four independently bounded sub-scores are blended:
// length fit (25%), brand prominence (30%), sentence structure (25%),
// relevance indicators (20%).
func ContextQuality(snippet, brand string) float64 {
	lower := strings.ToLower(snippet)

	// Length fit: ~50-150 chars is the sweet spot for a useful snippet.
	length := len(snippet)
	var lengthScore float64
	switch {
	case length >= 50 && length <= 150:
		lengthScore = 1.0
	case length < 50:
		lengthScore = float64(length) / 50.0
	default:
		lengthScore = max(0.5, 1.0-float64(length-150)/200.0)
	}

	// Prominence: exact-case and emphasized variants of the brand.
	prominence := 0.5
	if strings.Contains(snippet, brand) {
		prominence += 0.3
	}
	if strings.Contains(snippet, strings.ToUpper(brand)) || strings.Contains(snippet, titleCase(brand)) {
		prominence += 0.2
	}
	prominence = min(1.0, prominence)

	// Sentence structure: starts like a sentence, ends with terminal
	// punctuation.
	structure := 0.5
	if hasUppercasePair(snippet, 20) {
		structure += 0.25
	}
	if strings.ContainsAny(snippet, ".!?") {
		structure += 0.25
	}

	// Relevance indicators.
	indicators := 0
	for _, word := range positiveIndicators {
		if strings.Contains(lower, word) {
			indicators++
		}
	}
	relevance := min(1.0, 0.5+float64(indicators)*0.15)

	quality := lengthScore*0.25 + prominence*0.30 + structure*0.25 + relevance*0.20
	return clamp(quality, 0.1, 1.0)
}

// hasUppercasePair reports whether any two-character window within the
// first limit characters reads as upper case: every cased character in the
// window is upper case and at least one cased character is present.
func hasUppercasePair(s string, limit int) bool {
	runes := []rune(s)
	n := min(limit, len(runes))
	for i := 0; i < n; i++ {
		end := min(i+2, len(runes))
		cased := 0
		upper := true
		for _, r := range runes[i:end] {
			if unicode.IsUpper(r) || unicode.IsLower(r) {
				cased++
				if !unicode.IsUpper(r) {
					upper = false
				}
			}
		}
		if cased > 0 && upper {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter of each word and lower-cases the
// rest, e.g. "acme corp" -> "Acme Corp".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		if unicode.IsLetter(r) {
			if startOfWord {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			startOfWord = false
		} else {
			b.WriteRune(r)
			startOfWord = true
		}
	}
	return b.String()
}
