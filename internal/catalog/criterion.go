package catalog

import (
	"fmt"
	"strings"
)

// Importance is the declared weight class of a criterion.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// importanceWeights maps an importance level to its scoring multiplier.
var importanceWeights = map[Importance]float64{
	ImportanceLow:    1,
	ImportanceMedium: 2,
	ImportanceHigh:   3,
}

// Weight returns the scoring multiplier for the importance level.
// Unknown levels weigh 1 so scoring stays total.
func (i Importance) Weight() float64 {
	if w, ok := importanceWeights[i]; ok {
		return w
	}
	return 1
}

func (i Importance) String() string {
	return string(i)
}

// ParseImportance converts a config or catalog value to an Importance.
func ParseImportance(s string) (Importance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ImportanceLow, nil
	case "medium":
		return ImportanceMedium, nil
	case "high":
		return ImportanceHigh, nil
	default:
		return ImportanceLow, fmt.Errorf("invalid importance %q: must be low, medium or high", s)
	}
}

// Criterion is a single evaluation dimension. Immutable within a session.
type Criterion struct {
	ID         string     `yaml:"id" json:"id"`
	Name       string     `yaml:"name" json:"name"`
	Importance Importance `yaml:"importance" json:"importance"`
	Type       string     `yaml:"type" json:"type"`
	Archived   bool       `yaml:"archived,omitempty" json:"archived,omitempty"`
}

// Criteria is an ordered criterion list.
type Criteria []Criterion

func (c Criteria) Len() int {
	return len(c)
}

func (c Criteria) FindByID(id string) *Criterion {
	for idx := range c {
		if c[idx].ID == id {
			return &c[idx]
		}
	}
	return nil
}

// IDs returns criterion ids in list order.
func (c Criteria) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, criterion := range c {
		ids = append(ids, criterion.ID)
	}
	return ids
}

// Categories returns the distinct lowercased criterion types in first-seen order.
func (c Criteria) Categories() []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, criterion := range c {
		key := strings.ToLower(criterion.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		categories = append(categories, key)
	}
	return categories
}
