package testkit

import (
	"fmt"
	"math/rand"

	"assocreport/domain/dataset"
)

// ShootingsConfig configures the synthetic incident generator
type ShootingsConfig struct {
	Rows int   `json:"rows"`
	Seed int64 `json:"seed"`
	// MissingRate blanks gender, flee, age_group and race_category with this probability,
	// the columns the report fills before testing.
	MissingRate float64 `json:"missing_rate"`
}

// DefaultShootingsConfig returns sensible defaults
func DefaultShootingsConfig() ShootingsConfig {
	return ShootingsConfig{
		Rows:        1000,
		Seed:        42,
		MissingRate: 0.03,
	}
}

// ShootingsHeaders is the column order of generated incident data
var ShootingsHeaders = []string{
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
}

var (
	armedCategories  = []string{"Firearm", "Knife", "Unarmed", "Vehicle", "Other"}
	ageGroups        = []string{"Under_25", "25-34", "35-44", "45-54", "55+"}
	raceCategories   = []string{"White", "Black", "Hispanic", "Asian", "Other"}
	threatCategories = []string{"Attack", "Other", "Undetermined"}
	populationSizes  = []string{"Small", "Medium", "Large", "Very_Large"}
	rateCategories   = []string{"Low_Rate", "Medium_Rate", "High_Rate"}
	budgetCategories = []string{"Low_Budget", "Medium_Budget", "High_Budget"}
	genders          = []string{"M", "F"}
	fleeModes        = []string{"Not fleeing", "Car", "Foot", "Other"}
)

// GenerateShootings draws incident records. Two associations are planted:
// larger cities skew to higher shooting rates, and larger budgets to body-camera use.
// Everything else is drawn independently.
func GenerateShootings(cfg ShootingsConfig) (*dataset.Dataset, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be > 0")
	}
	if cfg.MissingRate < 0 || cfg.MissingRate >= 1 {
		return nil, fmt.Errorf("missing rate must be in [0,1)")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	pick := func(values []string) string { return values[rng.Intn(len(values))] }
	maybeBlank := func(v string) string {
		if rng.Float64() < cfg.MissingRate {
			return ""
		}
		return v
	}

	records := make([]dataset.Record, cfg.Rows)
	for i := range records {
		popIdx := rng.Intn(len(populationSizes))
		rateIdx := rng.Intn(len(rateCategories))
		if rng.Float64() < 0.6 {
			rateIdx = popIdx * (len(rateCategories) - 1) / (len(populationSizes) - 1)
		}

		budgetIdx := rng.Intn(len(budgetCategories))
		camera := "No"
		if rng.Float64() < 0.15+0.3*float64(budgetIdx) {
			camera = "Yes"
		}

		mental := "No"
		if rng.Float64() < 0.23 {
			mental = "Yes"
		}

		gender := genders[0]
		if rng.Float64() < 0.05 {
			gender = genders[1]
		}

		records[i] = dataset.Record{
			"armed_category":         pick(armedCategories),
			"age_group":              maybeBlank(pick(ageGroups)),
			"race_category":          maybeBlank(pick(raceCategories)),
			"threat_category":        pick(threatCategories),
			"mental_illness_flag":    mental,
			"body_camera_flag":       camera,
			"budget_category":        budgetCategories[budgetIdx],
			"population_size":        populationSizes[popIdx],
			"shooting_rate_category": rateCategories[rateIdx],
			"gender":                 maybeBlank(gender),
			"flee":                   maybeBlank(pick(fleeModes)),
		}
	}

	return dataset.New("synthetic_shootings", append([]string(nil), ShootingsHeaders...), records), nil
}
