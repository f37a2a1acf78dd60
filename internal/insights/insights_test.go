package insights

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spigell/vendor-radar/internal/catalog"
)

// fixedScores drives the classifier with predetermined overall scores.
func fixedScores(scores map[string]float64) func(catalog.Vendor) float64 {
	return func(vendor catalog.Vendor) float64 {
		return scores[vendor.ID]
	}
}

func vendorsWithRatings(ratings ...float64) catalog.Vendors {
	vendors := make(catalog.Vendors, 0, len(ratings))
	for idx, rating := range ratings {
		vendors = append(vendors, catalog.Vendor{
			ID:     string(rune('a' + idx)),
			Rating: rating,
		})
	}
	return vendors
}

func TestMaturityBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		want    Maturity
	}{
		{"exactly 4.2 is mature", []float64{4.2}, MaturityMature},
		{"just below 4.2 is established", []float64{4.19999}, MaturityEstablished},
		{"exactly 3.8 is established", []float64{3.8}, MaturityEstablished},
		{"below 3.8 is emerging", []float64{3.79}, MaturityEmerging},
		{"mean over set", []float64{4.8, 4.2, 3.5}, MaturityEstablished}, // avg 4.1667
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendors := vendorsWithRatings(tt.ratings...)
			got := Classify(vendors, fixedScores(nil))
			require.Equal(t, tt.want, got.Maturity)
		})
	}
}

func TestCompetitivenessThresholds(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Competitiveness
	}{
		{"three top performers", []float64{4.5, 4.0, 4.2}, HighlyCompetitive},
		{"two top performers", []float64{4.5, 4.0, 3.9}, Competitive},
		{"one top performer", []float64{4.5, 3.9, 3.0}, LimitedOptions},
		{"none", []float64{3.9, 3.0}, LimitedOptions},
		{"exactly 4.0 counts", []float64{4.0, 4.0}, Competitive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendors := make(catalog.Vendors, 0, len(tt.scores))
			scores := make(map[string]float64, len(tt.scores))
			for idx, score := range tt.scores {
				id := string(rune('a' + idx))
				vendors = append(vendors, catalog.Vendor{ID: id})
				scores[id] = score
			}

			got := Classify(vendors, fixedScores(scores))
			require.Equal(t, tt.want, got.Competitiveness)
		})
	}
}

func TestQualityThresholds(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Quality
	}{
		{"average at 4.0 is excellent", []float64{4.0, 4.0}, QualityExcellent},
		{"average at 3.5 is good", []float64{3.5}, QualityGood},
		{"average below 3.5 is mixed", []float64{3.49}, QualityMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendors := make(catalog.Vendors, 0, len(tt.scores))
			scores := make(map[string]float64, len(tt.scores))
			for idx, score := range tt.scores {
				id := string(rune('a' + idx))
				vendors = append(vendors, catalog.Vendor{ID: id})
				scores[id] = score
			}

			got := Classify(vendors, fixedScores(scores))
			require.Equal(t, tt.want, got.Quality)
		})
	}
}

func TestClassificationsAreIndependent(t *testing.T) {
	// High ratings with low scores: maturity and quality must not leak
	// into each other.
	vendors := vendorsWithRatings(4.8, 4.6)
	scores := map[string]float64{"a": 2.0, "b": 2.5}

	got := Classify(vendors, fixedScores(scores))
	require.Equal(t, MaturityMature, got.Maturity)
	require.Equal(t, LimitedOptions, got.Competitiveness)
	require.Equal(t, QualityMixed, got.Quality)
}
