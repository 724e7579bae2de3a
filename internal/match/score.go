package match

import (
	"math"

	"github.com/hbollon/go-edlib"
)

// DefaultMinConfidence is the confidence floor used when none is configured.
const DefaultMinConfidence = 0.6

// scorePrecision rounds scores to six decimal places so the float32
// similarity compares exactly against float64 floors.
const scorePrecision = 1e6

// Score returns the Sørensen-Dice coefficient over character bigrams of a and b.
// Identical strings score 1, strings sharing no bigram score 0.
func Score(a, b string) float64 {
	if a == b {
		return 1
	}
	if len([]rune(a)) < 2 || len([]rune(b)) < 2 {
		return 0
	}
	return math.Round(float64(edlib.SorensenDiceCoefficient(a, b, 2))*scorePrecision) / scorePrecision
}

// Scorer picks the best catalog URL for a query.
type Scorer struct {
	// MinConfidence is the floor a score must exceed to be accepted.
	MinConfidence float64
	// BaseURL is stripped from candidates before comparison.
	BaseURL string
}

// NewScorer returns a Scorer, falling back to DefaultMinConfidence for a non-positive floor.
func NewScorer(minConfidence float64, baseURL string) Scorer {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return Scorer{MinConfidence: minConfidence, BaseURL: baseURL}
}

// BestMatch scores every candidate against the normalized query and returns the
// first candidate with the highest score above the floor. When nothing clears
// the floor ok is false; score is still the highest score seen.
func (s Scorer) BestMatch(query string, candidates []string) (best string, score float64, ok bool) {
	normalizedQuery := Normalize(query)

	for _, candidate := range candidates {
		sc := Score(normalizedQuery, NormalizeCandidate(candidate, s.BaseURL))
		if sc > score {
			score = sc
			if sc > s.MinConfidence {
				best = candidate
				ok = true
			}
		}
	}

	return best, score, ok
}
