package config

import (
	"fmt"
	"os"
	"strings"

	"assocreport/adapters/stats/senses"
	"assocreport/domain/core"
	"assocreport/internal/errors"

	"gopkg.in/yaml.v3"
)

// Plan lists the relationships to report on and how to prepare the data first
type Plan struct {
	Name           string               `yaml:"name" json:"name"`
	FillMissing    map[string]string    `yaml:"fill_missing" json:"fill_missing"`
	Analyses       []senses.PairRequest `yaml:"analyses" json:"analyses"`
	ProfileColumns []string             `yaml:"profile_columns" json:"profile_columns"`
}

// DefaultPlan returns the five incident relationships with their missing-value defaults
func DefaultPlan() *Plan {
	return &Plan{
		Name: "police_shootings",
		FillMissing: map[string]string{
			"gender":        "Unknown",
			"flee":          "Unknown",
			"age_group":     "Unknown",
			"race_category": "Other",
		},
		Analyses: []senses.PairRequest{
			{Title: "Race vs Armed Status", RowVar: "race_category", ColVar: "armed_category"},
			{Title: "Age Group vs Mental Illness", RowVar: "age_group", ColVar: "mental_illness_flag"},
			{Title: "City Size vs Shooting Rate", RowVar: "population_size", ColVar: "shooting_rate_category"},
			{Title: "Police Budget vs Body Camera Usage", RowVar: "budget_category", ColVar: "body_camera_flag"},
			{Title: "Race vs Shooting Rate Category", RowVar: "race_category", ColVar: "shooting_rate_category"},
		},
		ProfileColumns: []string{
			"armed_category",
			"age_group",
			"race_category",
			"threat_category",
			"mental_illness_flag",
			"body_camera_flag",
			"budget_category",
			"population_size",
			"shooting_rate_category",
			"gender",
			"flee",
		},
	}
}

// LoadPlan reads a YAML plan. An empty path returns DefaultPlan.
func LoadPlan(path string) (*Plan, error) {
	if path == "" {
		return DefaultPlan(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("plan file %s", path))
		}
		return nil, errors.IOError("failed to read plan file", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates a YAML plan
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("invalid plan YAML: %w", err))
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks every analysis names both variables. Untitled analyses get "row vs col".
func (p *Plan) Validate() error {
	if len(p.Analyses) == 0 {
		return errors.ConfigInvalid("plan has no analyses")
	}
	for i := range p.Analyses {
		a := &p.Analyses[i]
		a.RowVar = core.VariableKey(strings.TrimSpace(string(a.RowVar)))
		a.ColVar = core.VariableKey(strings.TrimSpace(string(a.ColVar)))
		if a.RowVar == "" || a.ColVar == "" {
			return errors.ConfigInvalid(fmt.Sprintf("analysis %d: row and col are required", i+1))
		}
		if a.Title == "" {
			a.Title = fmt.Sprintf("%s vs %s", a.RowVar, a.ColVar)
		}
	}
	return nil
}
