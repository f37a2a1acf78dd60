// Package insights derives categorical market judgments from a scored
// vendor set.
package insights

import (
	"github.com/spigell/vendor-radar/internal/catalog"
	"github.com/spigell/vendor-radar/internal/scoring"
)

// Maturity classifies the market by average vendor rating.
type Maturity string

const (
	MaturityMature      Maturity = "Mature"
	MaturityEstablished Maturity = "Established"
	MaturityEmerging    Maturity = "Emerging"
)

// Competitiveness classifies the market by the number of top performers.
type Competitiveness string

const (
	HighlyCompetitive Competitiveness = "Highly Competitive"
	Competitive       Competitiveness = "Competitive"
	LimitedOptions    Competitiveness = "Limited Options"
)

// Quality classifies the market by average overall score.
type Quality string

const (
	QualityExcellent Quality = "Excellent"
	QualityGood      Quality = "Good"
	QualityMixed     Quality = "Mixed"
)

// Insights bundles the three independent classifications.
type Insights struct {
	Maturity        Maturity        `json:"market_maturity"`
	Competitiveness Competitiveness `json:"competitiveness"`
	Quality         Quality         `json:"overall_quality"`
}

// topPerformerScore is the overall score from which a vendor counts as a
// top performer.
const topPerformerScore = 4.0

// Classify computes the three classifications in a single pass. Callers
// must not pass an empty vendor set; the thresholds are meaningless over
// a zero-vendor mean.
func Classify(vendors catalog.Vendors, score scoring.ScoreFunc) Insights {
	var ratingSum, scoreSum float64
	topPerformers := 0

	for _, vendor := range vendors {
		ratingSum += vendor.Rating

		s := score(vendor)
		scoreSum += s
		if s >= topPerformerScore {
			topPerformers++
		}
	}

	count := float64(len(vendors))
	return Insights{
		Maturity:        classifyMaturity(ratingSum / count),
		Competitiveness: classifyCompetitiveness(topPerformers),
		Quality:         classifyQuality(scoreSum / count),
	}
}

func classifyMaturity(avgRating float64) Maturity {
	switch {
	case avgRating >= 4.2:
		return MaturityMature
	case avgRating >= 3.8:
		return MaturityEstablished
	default:
		return MaturityEmerging
	}
}

func classifyCompetitiveness(topPerformers int) Competitiveness {
	switch {
	case topPerformers >= 3:
		return HighlyCompetitive
	case topPerformers >= 2:
		return Competitive
	default:
		return LimitedOptions
	}
}

func classifyQuality(avgScore float64) Quality {
	switch {
	case avgScore >= 4.0:
		return QualityExcellent
	case avgScore >= 3.5:
		return QualityGood
	default:
		return QualityMixed
	}
}
