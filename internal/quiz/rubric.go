package quiz

import (
	"math"
	"strings"
)

// Rubric is a reusable manual-grading scale, scoped to an organization.
type Rubric struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organization_id"`
	Name           string      `json:"name"`
	IsDefault      bool        `json:"is_default,omitempty"`
	Criteria       []Criterion `json:"criteria"`
}

type Criterion struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	MaxPoints   int              `json:"max_points"`
	Levels      []CriterionLevel `json:"levels"`
}

// CriterionLevel is worth a percentage of the criterion's max points.
// Percentages are typically descending in storage order but need not be.
type CriterionLevel struct {
	Label       string `json:"label"`
	Percentage  int    `json:"percentage"`
	Description string `json:"description,omitempty"`
}

func (r Rubric) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return validationErrorf("rubric name is required")
	}
	if len(r.Criteria) == 0 {
		return validationErrorf("rubric needs at least one criterion")
	}
	for _, c := range r.Criteria {
		if strings.TrimSpace(c.Name) == "" {
			return validationErrorf("criterion name is required")
		}
		if c.MaxPoints <= 0 {
			return validationErrorf("criterion %q: max points must be positive", c.Name)
		}
		if len(c.Levels) == 0 {
			return validationErrorf("criterion %q needs at least one level", c.Name)
		}
		for _, l := range c.Levels {
			if strings.TrimSpace(l.Label) == "" {
				return validationErrorf("criterion %q: level label is required", c.Name)
			}
			if l.Percentage < 0 || l.Percentage > 100 {
				return validationErrorf("criterion %q level %q: percentage must be within 0-100", c.Name, l.Label)
			}
		}
	}
	return nil
}

// LevelPoints converts a chosen level into points:
// round(percentage/100 × criterion max).
func LevelPoints(c Criterion, l CriterionLevel) int {
	return int(math.Round(float64(l.Percentage) / 100 * float64(c.MaxPoints)))
}

// Evaluate resolves a criterion name and level label to points.
func (r Rubric) Evaluate(criterionName, levelLabel string) (int, error) {
	for _, c := range r.Criteria {
		if c.Name != criterionName {
			continue
		}
		for _, l := range c.Levels {
			if l.Label == levelLabel {
				return LevelPoints(c, l), nil
			}
		}
		return 0, validationErrorf("criterion %q has no level %q", criterionName, levelLabel)
	}
	return 0, validationErrorf("rubric %q has no criterion %q", r.Name, criterionName)
}
