package gemini

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/vendor-radar/internal/ai"
	"github.com/spigell/vendor-radar/internal/catalog"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string

	cacheName string
	cacheErr  error
	lastCache string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) GenerateContentWithCache(_ context.Context, prompt, cacheName string) (string, error) {
	s.lastPrompt = prompt
	s.lastCache = cacheName
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) EnsureCatalogCache(_ context.Context, _, _, _ string) (string, error) {
	if s.cacheErr != nil {
		return "", s.cacheErr
	}
	return s.cacheName, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func compareVendorsFixture() (catalog.Vendors, catalog.Criteria) {
	vendors := catalog.Vendors{
		{ID: "v1", Name: "Acme"},
		{ID: "v2", Name: "Globex"},
	}
	criteria := catalog.Criteria{
		{ID: "c1", Name: "Security", Importance: catalog.ImportanceHigh},
	}
	return vendors, criteria
}

func TestCompareVendors(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `[
		{"vendor_id": "v1", "scores": {"c1": 4.5}, "criteria_answers": {"c1": {"yes_no": "yes", "comment": "Solid"}}, "features": ["SSO"]},
		{"vendor_id": "v2", "scores": {"c1": 2}}
	]` + "\n```"}
	provider := NewProvider(stub, "proj-1", 0, zap.NewNop())

	vendors, criteria := compareVendorsFixture()

	assessments, err := provider.CompareVendors(context.Background(), vendors, criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(assessments) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(assessments))
	}

	if assessments[0].VendorID != "v1" || assessments[0].Scores["c1"] != 4.5 {
		t.Fatalf("unexpected first assessment: %+v", assessments[0])
	}

	if got := assessments[0].Answers["c1"]; got.YesNo != catalog.AnswerYes || got.Comment != "Solid" {
		t.Fatalf("unexpected answer: %+v", got)
	}

	if stub.lastPrompt == "" || !strings.Contains(stub.lastPrompt, `"Acme"`) {
		t.Fatalf("expected vendors to be embedded in the prompt")
	}
}

func TestCompareVendorsClampsAndFilters(t *testing.T) {
	stub := &stubGenerator{response: `[
		{"vendor_id": "v1", "scores": {"c1": 7.5, "unknown": 3}},
		{"vendor_id": "ghost", "scores": {"c1": 4}}
	]`}
	provider := NewProvider(stub, "proj-1", 0, zap.NewNop())

	vendors, criteria := compareVendorsFixture()

	assessments, err := provider.CompareVendors(context.Background(), vendors, criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(assessments) != 1 {
		t.Fatalf("expected unknown vendor to be dropped, got %d assessments", len(assessments))
	}

	if score := assessments[0].Scores["c1"]; score != 5 {
		t.Fatalf("expected score clamped to 5, got %v", score)
	}

	if _, ok := assessments[0].Scores["unknown"]; ok {
		t.Fatalf("expected unknown criterion to be dropped")
	}
}

func TestCompareVendorsEnvelopePayload(t *testing.T) {
	stub := &stubGenerator{response: `{"vendors": [{"vendor_id": "v1", "scores": {"c1": "4.2"}}]}`}
	provider := NewProvider(stub, "proj-1", 0, zap.NewNop())

	vendors, criteria := compareVendorsFixture()

	assessments, err := provider.CompareVendors(context.Background(), vendors, criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// String-typed numbers are coerced.
	if len(assessments) != 1 || assessments[0].Scores["c1"] != 4.2 {
		t.Fatalf("unexpected assessments: %+v", assessments)
	}
}

func TestCompareVendorsGarbageResponse(t *testing.T) {
	stub := &stubGenerator{response: "I could not produce JSON today."}
	provider := NewProvider(stub, "proj-1", 0, zap.NewNop())

	vendors, criteria := compareVendorsFixture()

	if _, err := provider.CompareVendors(context.Background(), vendors, criteria); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestChatUsesCatalogCache(t *testing.T) {
	stub := &stubGenerator{response: "Acme leads on security.", cacheName: "caches/abc"}
	provider := NewProvider(stub, "proj-1", 0, zap.NewNop())

	answer, err := provider.Chat(context.Background(), []ai.Message{{Role: "user", Content: "Who leads on security?"}}, `{"vendors":[]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != "Acme leads on security." {
		t.Fatalf("unexpected answer: %s", answer)
	}

	if stub.lastCache != "caches/abc" {
		t.Fatalf("expected cached content to be used, got %q", stub.lastCache)
	}

	if !strings.Contains(stub.lastPrompt, "user: Who leads on security?") {
		t.Fatalf("expected history in prompt, got: %s", stub.lastPrompt)
	}
}

func TestChatSurvivesCacheFailure(t *testing.T) {
	stub := &stubGenerator{response: "ok", cacheErr: context.DeadlineExceeded}
	provider := NewProvider(stub, "proj-1", 0, zap.NewNop())

	if _, err := provider.Chat(context.Background(), []ai.Message{{Role: "user", Content: "hi"}}, "context"); err != nil {
		t.Fatalf("cache failures must not fail the chat: %v", err)
	}

	if stub.lastCache != "" {
		t.Fatalf("expected no cache name after cache failure, got %q", stub.lastCache)
	}
}

func TestChatRequiresMessages(t *testing.T) {
	provider := NewProvider(&stubGenerator{}, "proj-1", 0, zap.NewNop())

	if _, err := provider.Chat(context.Background(), nil, ""); err == nil {
		t.Fatalf("expected an error for empty message list")
	}
}

func TestGenerateExecutiveSummary(t *testing.T) {
	stub := &stubGenerator{response: "The market is competitive.", cacheName: "caches/xyz"}
	provider := NewProvider(stub, "proj-1", 0, zap.NewNop())

	vendors, criteria := compareVendorsFixture()

	summary, err := provider.GenerateExecutiveSummary(context.Background(), "CRM Platforms", vendors, criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "The market is competitive." {
		t.Fatalf("unexpected summary: %s", summary)
	}

	if !strings.Contains(stub.lastPrompt, "CRM Platforms") {
		t.Fatalf("expected category in prompt")
	}

	if stub.lastCache != "caches/xyz" {
		t.Fatalf("expected cached catalog to be used, got %q", stub.lastCache)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n[1]\n```": "[1]",
		"```\n[1]\n```":     "[1]",
		"  [1]  ":           "[1]",
		"`[1]`":             "[1]",
	}
	for input, want := range cases {
		if got := extractJSON(input); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", input, got, want)
		}
	}
}
