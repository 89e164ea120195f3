package visibility

import (
	"crypto/md5"
	"math/big"
	"strconv"

	"github.com/brandsight/brandsight-api/internal/models"
)

// Simulate produces a reproducible pseudo-result for a probe without
// touching the network. Used when no LLM is configured and as the terminal
// fallback when a provider call fails: identical inputs always yield an
// identical check, so offline runs and degraded runs are fully
// deterministic.
func Simulate(prompt, brand, targetID string, checkIndex int) models.VisibilityCheck {
	sum := md5.Sum([]byte(targetID + "_" + prompt + "_" + brand + "_" + strconv.Itoa(checkIndex)))

	// The digest is interpreted as one big unsigned integer so the modulo
	// distribution matches across reimplementations.
	h := new(big.Int).SetBytes(sum[:])
	mod100 := new(big.Int).Mod(h, big.NewInt(100)).Int64()
	mod50 := new(big.Int).Mod(h, big.NewInt(50)).Int64()

	check := models.VisibilityCheck{
		Prompt:  prompt,
		Keyword: brand,
	}

	if mod100 < 60 {
		position := int(mod100) + 1
		check.Occurred = true
		check.Position = &position
		check.ContextRelevance = 0.5 + float64(mod50)/100.0
	} else {
		check.ContextRelevance = float64(mod50) / 100.0
	}

	return check
}
