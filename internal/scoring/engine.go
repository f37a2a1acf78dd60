// Package scoring computes weighted vendor scores and synthesizes
// fallback assessments when no provider data is available.
package scoring

import (
	"github.com/spigell/vendor-radar/internal/catalog"
)

// OverallScore returns the importance-weighted average of a vendor's
// per-criterion scores.
//
// The denominator sums the weights of every criterion in the set, not
// only the scored ones, so a vendor missing scores is diluted rather
// than graded on a smaller base. Product treats this as a feature: it
// rewards complete assessments.
func OverallScore(vendor catalog.Vendor, criteria catalog.Criteria) float64 {
	var numerator, denominator float64
	for _, criterion := range criteria {
		weight := criterion.Importance.Weight()
		denominator += weight
		if score, ok := vendor.CriteriaScores[criterion.ID]; ok {
			numerator += score * weight
		}
	}

	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ScoreFunc computes an overall score for a vendor against a fixed
// criteria set.
type ScoreFunc func(catalog.Vendor) float64

// Scorer binds OverallScore to one criteria set.
func Scorer(criteria catalog.Criteria) ScoreFunc {
	return func(vendor catalog.Vendor) float64 {
		return OverallScore(vendor, criteria)
	}
}
