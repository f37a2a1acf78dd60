package scoring

import (
	"math"

	"github.com/spigell/vendor-radar/internal/catalog"
)

// Rand is the source of randomness for fallback generation. Satisfied by
// *math/rand.Rand, so tests can seed it and production can leave it wild.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Perm(n int) []int
}

// Importance bumps nudge generated scores so high-importance criteria
// trend higher, mirroring how real assessments skew.
var importanceBumps = map[catalog.Importance]float64{
	catalog.ImportanceHigh:   0.5,
	catalog.ImportanceMedium: 0.2,
	catalog.ImportanceLow:    0,
}

// fallbackComments runs from strongly positive to strongly negative; the
// index is derived from the generated score.
var fallbackComments = []string{
	"Excellent capability with comprehensive support and proven track record.",
	"Strong offering that covers the requirement well.",
	"Solid implementation, though some advanced options are missing.",
	"Adequate coverage with notable gaps in edge cases.",
	"Limited support; significant workarounds required.",
	"Does not meaningfully address this requirement.",
}

// fallbackFeatures is the generic pool used when a vendor arrives with no
// feature list of its own.
var fallbackFeatures = []string{
	"Cloud-based deployment",
	"REST API access",
	"Role-based access control",
	"Single sign-on integration",
	"Audit logging",
	"Custom reporting",
	"24/7 support",
	"Mobile application",
}

// Generator synthesizes plausible vendor assessments without any external
// dependency. It is the availability floor when the AI provider is down.
type Generator struct {
	rand Rand
}

// NewGenerator creates a fallback generator driven by the given source.
func NewGenerator(rand Rand) *Generator {
	return &Generator{rand: rand}
}

// Generate returns a new vendor set with every criterion scored and
// answered. Existing feature lists are preserved; everything else is
// synthesized. It never fails.
func (g *Generator) Generate(vendors catalog.Vendors, criteria catalog.Criteria) catalog.Vendors {
	out := make(catalog.Vendors, 0, len(vendors))
	for _, vendor := range vendors {
		out = append(out, g.generateVendor(vendor, criteria))
	}
	return out
}

func (g *Generator) generateVendor(vendor catalog.Vendor, criteria catalog.Criteria) catalog.Vendor {
	result := vendor.Clone()
	result.CriteriaScores = make(map[string]float64, len(criteria))
	result.CriteriaAnswers = make(map[string]catalog.Answer, len(criteria))

	for _, criterion := range criteria {
		score := g.generateScore(criterion.Importance)
		result.CriteriaScores[criterion.ID] = score
		result.CriteriaAnswers[criterion.ID] = catalog.Answer{
			YesNo:   AnswerForScore(score),
			Comment: CommentForScore(score),
		}
	}

	if len(result.Features) == 0 {
		result.Features = g.pickFeatures()
	}

	return result
}

// generateScore draws a base in [3,5), bumps it by importance, jitters it
// by [-0.5,0.5) and clamps to [1,5].
func (g *Generator) generateScore(importance catalog.Importance) float64 {
	base := 3 + g.rand.Float64()*2
	jitter := g.rand.Float64() - 0.5
	score := base + importanceBumps[importance] + jitter
	return math.Min(5, math.Max(1, score))
}

func (g *Generator) pickFeatures() []string {
	count := 3 + g.rand.Intn(3)

	picked := make([]string, 0, count)
	indexes := g.rand.Perm(len(fallbackFeatures))
	for _, idx := range indexes[:count] {
		picked = append(picked, fallbackFeatures[idx])
	}
	return picked
}

// AnswerForScore maps a score to its categorical verdict.
func AnswerForScore(score float64) catalog.YesNo {
	switch {
	case score >= 4.0:
		return catalog.AnswerYes
	case score >= 2.5:
		return catalog.AnswerPartial
	default:
		return catalog.AnswerNo
	}
}

// CommentForScore selects a canned comment. The index scales (5-score)
// over the comment bank, so the mapping is deterministic per score.
func CommentForScore(score float64) string {
	idx := int((5 - score) * 1.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(fallbackComments) {
		idx = len(fallbackComments) - 1
	}
	return fallbackComments[idx]
}
