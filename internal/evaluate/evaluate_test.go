package evaluate

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/vendor-radar/internal/ai"
	"github.com/spigell/vendor-radar/internal/catalog"
	"github.com/spigell/vendor-radar/internal/scoring"
)

type stubProvider struct {
	assessments []ai.VendorAssessment
	err         error
	calls       int
}

func (s *stubProvider) CompareVendors(_ context.Context, _ catalog.Vendors, _ catalog.Criteria) ([]ai.VendorAssessment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.assessments, nil
}

func (s *stubProvider) Chat(_ context.Context, _ []ai.Message, _ string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubProvider) GenerateExecutiveSummary(_ context.Context, _ string, _ catalog.Vendors, _ catalog.Criteria) (string, error) {
	return "", errors.New("not implemented")
}

func testDeps(provider ai.Provider) Deps {
	return Deps{
		Provider: provider,
		Fallback: scoring.NewGenerator(rand.New(rand.NewSource(1))),
		Logger:   zap.NewNop(),
	}
}

func testVendors() catalog.Vendors {
	return catalog.Vendors{
		{ID: "v1", Name: "Acme"},
		{ID: "v2", Name: "Globex"},
	}
}

func testCriteria() catalog.Criteria {
	return catalog.Criteria{
		{ID: "c1", Name: "Security", Importance: catalog.ImportanceHigh},
		{ID: "c2", Name: "Pricing", Importance: catalog.ImportanceLow},
	}
}

func TestRunUsesProviderScores(t *testing.T) {
	provider := &stubProvider{
		assessments: []ai.VendorAssessment{
			{
				VendorID: "v1",
				Scores:   map[string]float64{"c1": 4.5, "c2": 3.0},
				Answers:  map[string]catalog.Answer{"c1": {YesNo: catalog.AnswerYes}},
				Features: []string{"SSO"},
			},
			{
				VendorID: "v2",
				Scores:   map[string]float64{"c1": 2.0},
			},
		},
	}

	result, err := Run(context.Background(), testDeps(provider), testVendors(), testCriteria())
	require.NoError(t, err)
	require.Equal(t, SourceAI, result.Source)
	require.Equal(t, 1, provider.calls)

	acme := result.Vendors.FindByID("v1")
	require.NotNil(t, acme)
	require.Equal(t, 4.5, acme.CriteriaScores["c1"])
	require.Equal(t, catalog.AnswerYes, acme.CriteriaAnswers["c1"].YesNo)
	require.Equal(t, []string{"SSO"}, acme.Features)
}

func TestRunFallsBackOnProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("deadline exceeded")}

	result, err := Run(context.Background(), testDeps(provider), testVendors(), testCriteria())
	require.NoError(t, err, "provider failures must be recovered, not surfaced")
	require.Equal(t, SourceFallback, result.Source)

	for _, vendor := range result.Vendors {
		require.Len(t, vendor.CriteriaScores, 2)
	}
}

func TestRunFallsBackOnEmptyPayload(t *testing.T) {
	tests := []struct {
		name        string
		assessments []ai.VendorAssessment
	}{
		{"nil payload", nil},
		{"no assessments", []ai.VendorAssessment{}},
		{"assessments without scores", []ai.VendorAssessment{{VendorID: "v1"}}},
		{"assessments for unknown vendors only", []ai.VendorAssessment{
			{VendorID: "ghost", Scores: map[string]float64{"c1": 4}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{assessments: tt.assessments}

			result, err := Run(context.Background(), testDeps(provider), testVendors(), testCriteria())
			require.NoError(t, err)
			require.Equal(t, SourceFallback, result.Source)
		})
	}
}

func TestRunWithoutProviderUsesFallback(t *testing.T) {
	result, err := Run(context.Background(), testDeps(nil), testVendors(), testCriteria())
	require.NoError(t, err)
	require.Equal(t, SourceFallback, result.Source)
}

func TestRunPartialCoverageKeepsAISource(t *testing.T) {
	provider := &stubProvider{
		assessments: []ai.VendorAssessment{
			{VendorID: "v1", Scores: map[string]float64{"c1": 4.0}},
		},
	}

	result, err := Run(context.Background(), testDeps(provider), testVendors(), testCriteria())
	require.NoError(t, err)
	require.Equal(t, SourceAI, result.Source)

	// The uncovered vendor passes through unscored.
	globex := result.Vendors.FindByID("v2")
	require.NotNil(t, globex)
	require.Empty(t, globex.CriteriaScores)
}

func TestRunInputContract(t *testing.T) {
	deps := testDeps(nil)

	_, err := Run(context.Background(), deps, nil, testCriteria())
	require.Error(t, err)

	_, err = Run(context.Background(), deps, testVendors(), nil)
	require.Error(t, err)

	_, err = Run(context.Background(), Deps{Logger: zap.NewNop()}, testVendors(), testCriteria())
	require.Error(t, err)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	vendors := testVendors()

	_, err := Run(context.Background(), testDeps(nil), vendors, testCriteria())
	require.NoError(t, err)

	require.Nil(t, vendors[0].CriteriaScores)
	require.Nil(t, vendors[1].CriteriaScores)
}
