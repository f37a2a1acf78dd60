// Package evaluate runs the scoring pipeline: AI comparison first, local
// fallback generation whenever the provider cannot deliver.
package evaluate

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/vendor-radar/internal/ai"
	"github.com/spigell/vendor-radar/internal/catalog"
	"github.com/spigell/vendor-radar/internal/scoring"
)

// Source names where the scores came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Deps aggregates the pipeline collaborators. Provider may be nil when
// AI scoring is disabled by configuration.
type Deps struct {
	Provider ai.Provider
	Fallback *scoring.Generator
	Logger   *zap.Logger
}

// Result is the scored vendor set plus the source that produced it.
type Result struct {
	Vendors catalog.Vendors
	Source  Source
}

// Run scores the vendor set. Provider failures and empty payloads are
// recovered locally; the only hard errors are contract violations on the
// inputs.
func Run(ctx context.Context, deps Deps, vendors catalog.Vendors, criteria catalog.Criteria) (*Result, error) {
	if vendors.Len() == 0 {
		return nil, errors.New("at least one vendor is required")
	}
	if criteria.Len() == 0 {
		return nil, errors.New("at least one criterion is required")
	}
	if deps.Fallback == nil {
		return nil, errors.New("fallback generator is required")
	}

	if deps.Provider == nil {
		deps.Logger.Info("ai scoring disabled, using fallback generator")
		return &Result{Vendors: deps.Fallback.Generate(vendors, criteria), Source: SourceFallback}, nil
	}

	assessments, err := deps.Provider.CompareVendors(ctx, vendors, criteria)
	if err != nil {
		deps.Logger.Warn("ai comparison failed, switching to fallback scoring", zap.Error(err))
		return &Result{Vendors: deps.Fallback.Generate(vendors, criteria), Source: SourceFallback}, nil
	}

	scored := applyAssessments(vendors, assessments)
	if scored == nil {
		deps.Logger.Warn("ai comparison returned no usable data, switching to fallback scoring")
		return &Result{Vendors: deps.Fallback.Generate(vendors, criteria), Source: SourceFallback}, nil
	}

	deps.Logger.Info("vendors scored by ai provider",
		zap.Int("vendors", vendors.Len()),
		zap.Int("assessed", len(assessments)),
	)
	return &Result{Vendors: scored, Source: SourceAI}, nil
}

// applyAssessments merges validated provider payloads into a new vendor
// set. Returns nil when no vendor received any score, which callers
// treat the same as a provider failure.
func applyAssessments(vendors catalog.Vendors, assessments []ai.VendorAssessment) catalog.Vendors {
	byVendor := make(map[string]ai.VendorAssessment, len(assessments))
	for _, assessment := range assessments {
		byVendor[assessment.VendorID] = assessment
	}

	usable := false
	scored := make(catalog.Vendors, 0, len(vendors))
	for _, vendor := range vendors {
		result := vendor.Clone()

		if assessment, ok := byVendor[vendor.ID]; ok {
			if len(assessment.Scores) > 0 {
				usable = true
				result.CriteriaScores = assessment.Scores
				result.CriteriaAnswers = assessment.Answers
			}
			if len(result.Features) == 0 && len(assessment.Features) > 0 {
				result.Features = assessment.Features
			}
		}

		scored = append(scored, result)
	}

	if !usable {
		return nil
	}
	return scored
}
