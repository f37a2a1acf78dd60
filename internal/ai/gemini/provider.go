package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/vendor-radar/internal/ai"
	"github.com/spigell/vendor-radar/internal/catalog"
	"github.com/spigell/vendor-radar/internal/logger"
	"github.com/spigell/vendor-radar/internal/util"
)

//go:embed compare_prompt.md
var comparePromptTemplate string

//go:embed summary_prompt.md
var summaryPromptTemplate string

//go:embed chat_prompt.md
var chatPromptTemplate string

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	GenerateContentWithCache(ctx context.Context, prompt, cacheName string) (string, error)
	EnsureCatalogCache(ctx context.Context, projectID, displayName, payload string) (string, error)
	Model() string
}

// Provider implements the ai.Provider boundary on top of Gemini.
type Provider struct {
	generator contentGenerator
	projectID string
	logger    *zap.Logger
	maxLogLen int
}

// NewProvider creates a Gemini-backed provider for one project.
func NewProvider(generator contentGenerator, projectID string, maxLogLength int, log *zap.Logger) *Provider {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Provider{
		generator: generator,
		projectID: projectID,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// CompareVendors asks Gemini to score every vendor against every
// criterion and validates the payload before handing it back.
func (p *Provider) CompareVendors(ctx context.Context, vendors catalog.Vendors, criteria catalog.Criteria) ([]ai.VendorAssessment, error) {
	criteriaJSON, err := json.MarshalIndent(criteria, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal criteria payload: %w", err)
	}
	vendorsJSON, err := json.MarshalIndent(vendors, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal vendors payload: %w", err)
	}

	prompt := strings.ReplaceAll(comparePromptTemplate, "{{CRITERIA_JSON}}", string(criteriaJSON))
	prompt = strings.ReplaceAll(prompt, "{{VENDORS_JSON}}", string(vendorsJSON))

	p.logger.Debug("gemini compare request",
		zap.Int("vendors", vendors.Len()),
		zap.Int("criteria", criteria.Len()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, p.maxLogLen)),
	)

	raw, err := p.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("gemini compare response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, p.maxLogLen)),
	)

	assessments, err := parseAssessments(raw)
	if err != nil {
		return nil, err
	}

	return validateAssessments(assessments, vendors, criteria), nil
}

// Chat answers a follow-up question over the evaluation context.
func (p *Provider) Chat(ctx context.Context, messages []ai.Message, background string) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("at least one chat message is required")
	}

	var history strings.Builder
	for _, message := range messages {
		role := strings.TrimSpace(message.Role)
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(&history, "%s: %s\n", role, strings.TrimSpace(message.Content))
	}

	prompt := strings.ReplaceAll(chatPromptTemplate, "{{CONTEXT}}", background)
	prompt = strings.ReplaceAll(prompt, "{{HISTORY}}", history.String())

	cacheName := ""
	if strings.TrimSpace(background) != "" {
		name, err := p.generator.EnsureCatalogCache(ctx, p.projectID, "", background)
		if err != nil {
			p.logger.Debug("catalog cache unavailable, sending full context", zap.Error(err))
		} else {
			cacheName = name
		}
	}

	return p.generator.GenerateContentWithCache(ctx, prompt, cacheName)
}

// GenerateExecutiveSummary produces a prose summary of the vendor landscape.
func (p *Provider) GenerateExecutiveSummary(ctx context.Context, category string, vendors catalog.Vendors, criteria catalog.Criteria) (string, error) {
	payload, err := json.MarshalIndent(map[string]any{
		"category": category,
		"criteria": criteria,
		"vendors":  vendors,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal catalog payload: %w", err)
	}

	prompt := strings.ReplaceAll(summaryPromptTemplate, "{{CATEGORY}}", category)
	prompt = strings.ReplaceAll(prompt, "{{CATALOG_JSON}}", string(payload))

	cacheName := ""
	if name, err := p.generator.EnsureCatalogCache(ctx, p.projectID, "", string(payload)); err != nil {
		p.logger.Debug("catalog cache unavailable, sending full catalog", zap.Error(err))
	} else {
		cacheName = name
	}

	return p.generator.GenerateContentWithCache(ctx, prompt, cacheName)
}

// parseAssessments decodes the loosely-shaped model output into typed
// assessments. Accepts a bare array or an object wrapping one.
func parseAssessments(raw string) ([]ai.VendorAssessment, error) {
	cleaned := extractJSON(raw)

	var items []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var envelope map[string][]map[string]any
		if envErr := json.Unmarshal([]byte(cleaned), &envelope); envErr != nil {
			return nil, fmt.Errorf("parse gemini response: %w", err)
		}
		for _, key := range []string{"vendors", "results", "assessments"} {
			if wrapped, ok := envelope[key]; ok {
				items = wrapped
				break
			}
		}
		if items == nil {
			return nil, fmt.Errorf("gemini response has no recognizable assessment list")
		}
	}

	assessments := make([]ai.VendorAssessment, 0, len(items))
	for idx, item := range items {
		var assessment ai.VendorAssessment
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &assessment,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, fmt.Errorf("build assessment decoder: %w", err)
		}
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("decode assessment %d: %w", idx, err)
		}
		assessments = append(assessments, assessment)
	}

	return assessments, nil
}

// validateAssessments drops entries for unknown vendors or criteria and
// clamps scores into [0,5] so nothing out of contract reaches scoring.
func validateAssessments(assessments []ai.VendorAssessment, vendors catalog.Vendors, criteria catalog.Criteria) []ai.VendorAssessment {
	knownCriteria := make(map[string]bool, len(criteria))
	for _, criterion := range criteria {
		knownCriteria[criterion.ID] = true
	}

	valid := make([]ai.VendorAssessment, 0, len(assessments))
	for _, assessment := range assessments {
		if vendors.FindByID(assessment.VendorID) == nil {
			continue
		}

		scores := make(map[string]float64, len(assessment.Scores))
		for id, score := range assessment.Scores {
			if !knownCriteria[id] {
				continue
			}
			if score < 0 {
				score = 0
			}
			if score > 5 {
				score = 5
			}
			scores[id] = score
		}
		assessment.Scores = scores

		answers := make(map[string]catalog.Answer, len(assessment.Answers))
		for id, answer := range assessment.Answers {
			if !knownCriteria[id] {
				continue
			}
			answers[id] = answer
		}
		assessment.Answers = answers

		valid = append(valid, assessment)
	}
	return valid
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
