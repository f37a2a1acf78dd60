// Package export projects vendors, criteria and scores into flat rows
// for tabular consumers. File serialization (csv, xlsx) is the
// consumer's concern; this package only shapes the data.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spigell/vendor-radar/internal/catalog"
	"github.com/spigell/vendor-radar/internal/scoring"
)

const (
	// UnscoredCell marks criteria a vendor was never scored on.
	UnscoredCell = "N/A"
	// NoComment fills assessment rows that carry no comment.
	NoComment = "No comment available"
)

// Format selects the numeric precision of comparison rows.
type Format int

const (
	// FormatRich rounds overall scores to two decimals.
	FormatRich Format = iota
	// FormatCompact rounds overall scores to one decimal.
	FormatCompact
)

func (f Format) scorePrecision() string {
	if f == FormatCompact {
		return "%.1f"
	}
	return "%.2f"
}

// ComparisonRow is one vendor line of the comparison table. Criterion
// cells follow the order of the criteria passed to ComparisonRows.
type ComparisonRow struct {
	Vendor         string
	Rating         string
	OverallScore   string
	CriterionCells []string
}

// CriterionRow describes one criterion for the criteria sheet.
type CriterionRow struct {
	Name       string
	Type       string
	Importance string
}

// FeatureRow is one (vendor, feature) pair.
type FeatureRow struct {
	Vendor  string
	Feature string
}

// AssessmentRow is one (vendor, criterion) judgment.
type AssessmentRow struct {
	Vendor    string
	Criterion string
	Score     string
	YesNo     string
	Comment   string
}

// ComparisonHeader returns the column names matching ComparisonRows output.
func ComparisonHeader(criteria catalog.Criteria) []string {
	header := []string{"Vendor", "Rating", "Overall Score"}
	for _, criterion := range criteria {
		header = append(header, criterion.Name)
	}
	return header
}

// ComparisonRows projects one row per vendor. Unscored criteria render
// as the UnscoredCell sentinel.
func ComparisonRows(vendors catalog.Vendors, criteria catalog.Criteria, score scoring.ScoreFunc, format Format) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(vendors))
	for _, vendor := range vendors {
		cells := make([]string, 0, len(criteria))
		for _, criterion := range criteria {
			value, ok := vendor.CriteriaScores[criterion.ID]
			if !ok {
				cells = append(cells, UnscoredCell)
				continue
			}
			cells = append(cells, fmt.Sprintf("%.1f", value))
		}

		rows = append(rows, ComparisonRow{
			Vendor:         vendor.Name,
			Rating:         fmt.Sprintf("%.1f", vendor.Rating),
			OverallScore:   fmt.Sprintf(format.scorePrecision(), score(vendor)),
			CriterionCells: cells,
		})
	}
	return rows
}

// CriteriaRows projects the criteria sheet.
func CriteriaRows(criteria catalog.Criteria) []CriterionRow {
	rows := make([]CriterionRow, 0, len(criteria))
	for _, criterion := range criteria {
		rows = append(rows, CriterionRow{
			Name:       criterion.Name,
			Type:       criterion.Type,
			Importance: criterion.Importance.String(),
		})
	}
	return rows
}

// FeatureRows projects one row per vendor feature.
func FeatureRows(vendors catalog.Vendors) []FeatureRow {
	rows := make([]FeatureRow, 0)
	for _, vendor := range vendors {
		for _, feature := range vendor.Features {
			rows = append(rows, FeatureRow{Vendor: vendor.Name, Feature: feature})
		}
	}
	return rows
}

// AssessmentRows projects one row per scored (vendor, criterion) pair,
// including the categorical answer and its comment.
func AssessmentRows(vendors catalog.Vendors, criteria catalog.Criteria) []AssessmentRow {
	rows := make([]AssessmentRow, 0)
	for _, vendor := range vendors {
		for _, criterion := range criteria {
			value, scored := vendor.CriteriaScores[criterion.ID]
			if !scored {
				continue
			}

			row := AssessmentRow{
				Vendor:    vendor.Name,
				Criterion: criterion.Name,
				Score:     fmt.Sprintf("%.1f", value),
				Comment:   NoComment,
			}
			if answer, ok := vendor.CriteriaAnswers[criterion.ID]; ok {
				row.YesNo = string(answer.YesNo)
				if strings.TrimSpace(answer.Comment) != "" {
					row.Comment = answer.Comment
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

var nonKebab = regexp.MustCompile(`[^a-z0-9]+`)

// Filename builds the conventional export file name:
// vendor-comparison-{category-kebab-case}-{ISO date}.{ext}.
func Filename(category, ext string, t time.Time) string {
	kebab := nonKebab.ReplaceAllString(strings.ToLower(category), "-")
	kebab = strings.Trim(kebab, "-")
	if kebab == "" {
		kebab = "vendors"
	}
	return fmt.Sprintf("vendor-comparison-%s-%s.%s", kebab, t.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}
