// Package ai defines the provider-neutral boundary to the external
// scoring assistant.
package ai

import (
	"context"

	"github.com/spigell/vendor-radar/internal/catalog"
)

// VendorAssessment is one vendor's payload from a comparison call,
// validated at the boundary before it reaches the scoring engine.
type VendorAssessment struct {
	VendorID string                    `mapstructure:"vendor_id"`
	Scores   map[string]float64        `mapstructure:"scores"`
	Answers  map[string]catalog.Answer `mapstructure:"criteria_answers"`
	Features []string                  `mapstructure:"features"`
}

// Message is a single chat exchange entry.
type Message struct {
	Role    string
	Content string
}

// Provider is the external AI collaborator. Any error or empty result
// from CompareVendors switches the pipeline to local fallback scoring.
type Provider interface {
	CompareVendors(ctx context.Context, vendors catalog.Vendors, criteria catalog.Criteria) ([]VendorAssessment, error)
	Chat(ctx context.Context, messages []Message, background string) (string, error)
	GenerateExecutiveSummary(ctx context.Context, category string, vendors catalog.Vendors, criteria catalog.Criteria) (string, error)
}
