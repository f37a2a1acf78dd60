package catalog

import (
	"encoding/json"
	"os"
	"sort"
)

// YesNo is the categorical answer attached to a scored criterion.
type YesNo string

const (
	AnswerYes     YesNo = "yes"
	AnswerNo      YesNo = "no"
	AnswerPartial YesNo = "partial"
)

// Answer pairs the categorical verdict with a free-form comment.
type Answer struct {
	YesNo   YesNo  `yaml:"yes_no" json:"yes_no" mapstructure:"yes_no"`
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty" mapstructure:"comment"`
}

// Vendor is a candidate under evaluation. Score values stay within [0,5].
type Vendor struct {
	ID              string             `yaml:"id" json:"id"`
	Name            string             `yaml:"name" json:"name"`
	Description     string             `yaml:"description,omitempty" json:"description,omitempty"`
	Website         string             `yaml:"website,omitempty" json:"website,omitempty"`
	Pricing         string             `yaml:"pricing,omitempty" json:"pricing,omitempty"`
	Rating          float64            `yaml:"rating" json:"rating"`
	CriteriaScores  map[string]float64 `yaml:"criteria_scores,omitempty" json:"criteria_scores,omitempty"`
	CriteriaAnswers map[string]Answer  `yaml:"criteria_answers,omitempty" json:"criteria_answers,omitempty"`
	Features        []string           `yaml:"features,omitempty" json:"features,omitempty"`
}

// Clone returns a deep copy so transformers can return new values
// without touching caller-owned state.
func (v Vendor) Clone() Vendor {
	clone := v
	if v.CriteriaScores != nil {
		clone.CriteriaScores = make(map[string]float64, len(v.CriteriaScores))
		for id, score := range v.CriteriaScores {
			clone.CriteriaScores[id] = score
		}
	}
	if v.CriteriaAnswers != nil {
		clone.CriteriaAnswers = make(map[string]Answer, len(v.CriteriaAnswers))
		for id, answer := range v.CriteriaAnswers {
			clone.CriteriaAnswers[id] = answer
		}
	}
	if v.Features != nil {
		clone.Features = append([]string(nil), v.Features...)
	}
	return clone
}

// Vendors is the vendor set under comparison.
type Vendors []Vendor

func (v Vendors) Len() int {
	return len(v)
}

func (v Vendors) FindByID(id string) *Vendor {
	for idx := range v {
		if v[idx].ID == id {
			return &v[idx]
		}
	}
	return nil
}

func (v Vendors) Names() []string {
	names := make([]string, 0, len(v))
	for _, vendor := range v {
		names = append(names, vendor.Name)
	}
	return names
}

// Clone deep-copies the whole set.
func (v Vendors) Clone() Vendors {
	clone := make(Vendors, 0, len(v))
	for _, vendor := range v {
		clone = append(clone, vendor.Clone())
	}
	return clone
}

// RankedBy returns a new set sorted descending by the provided score
// function. Ties keep their original relative order.
func (v Vendors) RankedBy(score func(Vendor) float64) Vendors {
	ranked := v.Clone()
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	return ranked
}

// DumpToTmpFile writes the vendor set as indented JSON to a temp file
// and returns its name.
func (v Vendors) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "vendors_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
