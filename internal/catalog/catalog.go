// Package catalog holds the vendor and criteria domain model and the
// YAML catalog file it is loaded from.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Catalog is the caller-owned input to an evaluation run: the product
// category, the criteria to judge by and the vendors to judge.
type Catalog struct {
	Project  string   `yaml:"project"`
	Category string   `yaml:"category"`
	Criteria Criteria `yaml:"criteria"`
	Vendors  Vendors  `yaml:"vendors"`
}

// Load reads and validates a catalog file. Entries without an id get one
// assigned so downstream maps always have a key to hang on to.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog file %q: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog file %q: %w", path, err)
	}

	return &c, nil
}

// Validate normalizes the catalog in place and rejects entries the
// scoring engine cannot work with.
func (c *Catalog) Validate() error {
	if c.Project = strings.TrimSpace(c.Project); c.Project == "" {
		c.Project = "default"
	}

	if len(c.Criteria) == 0 {
		return fmt.Errorf("at least one criterion is required")
	}
	if len(c.Vendors) == 0 {
		return fmt.Errorf("at least one vendor is required")
	}

	criterionIDs := make(map[string]bool, len(c.Criteria))
	for idx := range c.Criteria {
		criterion := &c.Criteria[idx]
		if criterion.ID == "" {
			criterion.ID = uuid.NewString()
		}
		if criterionIDs[criterion.ID] {
			return fmt.Errorf("duplicate criterion id %q", criterion.ID)
		}
		criterionIDs[criterion.ID] = true

		if criterion.Name == "" {
			return fmt.Errorf("criterion %q: name is required", criterion.ID)
		}

		importance, err := ParseImportance(string(criterion.Importance))
		if err != nil {
			return fmt.Errorf("criterion %q: %w", criterion.ID, err)
		}
		criterion.Importance = importance
	}

	vendorIDs := make(map[string]bool, len(c.Vendors))
	for idx := range c.Vendors {
		vendor := &c.Vendors[idx]
		if vendor.ID == "" {
			vendor.ID = uuid.NewString()
		}
		if vendorIDs[vendor.ID] {
			return fmt.Errorf("duplicate vendor id %q", vendor.ID)
		}
		vendorIDs[vendor.ID] = true

		if vendor.Name == "" {
			return fmt.Errorf("vendor %q: name is required", vendor.ID)
		}
		if vendor.Rating < 0 || vendor.Rating > 5 {
			return fmt.Errorf("vendor %q: rating %v is out of the [0,5] range", vendor.ID, vendor.Rating)
		}

		for id, score := range vendor.CriteriaScores {
			if !criterionIDs[id] {
				return fmt.Errorf("vendor %q: score for unknown criterion %q", vendor.ID, id)
			}
			if score < 0 || score > 5 {
				return fmt.Errorf("vendor %q: score %v for criterion %q is out of the [0,5] range", vendor.ID, score, id)
			}
		}
		for id := range vendor.CriteriaAnswers {
			if !criterionIDs[id] {
				return fmt.Errorf("vendor %q: answer for unknown criterion %q", vendor.ID, id)
			}
		}
	}

	return nil
}
