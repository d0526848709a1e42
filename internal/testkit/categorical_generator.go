package testkit

import (
	"fmt"
	"math/rand"
	"sort"

	"assocreport/domain/dataset"
)

// PairConfig configures a two-column categorical fixture
type PairConfig struct {
	Rows          int      `json:"rows"`
	Seed          int64    `json:"seed"`
	RowCategories []string `json:"row_categories"`
	ColCategories []string `json:"col_categories"`
	// Coupling is the probability that the column value is the deterministic image of the
	// row value (row category i -> column category i mod k). 0 is independence, 1 a function.
	Coupling float64 `json:"coupling"`
}

// DefaultPairConfig returns an independent 3x3 fixture
func DefaultPairConfig() PairConfig {
	return PairConfig{
		Rows:          300,
		Seed:          42,
		RowCategories: []string{"A", "B", "C"},
		ColCategories: []string{"X", "Y", "Z"},
	}
}

// GeneratePair draws Rows records with columns "row" and "col"
func GeneratePair(cfg PairConfig) (*dataset.Dataset, error) {
	if cfg.Rows < 0 {
		return nil, fmt.Errorf("rows must be >= 0")
	}
	if len(cfg.RowCategories) == 0 || len(cfg.ColCategories) == 0 {
		return nil, fmt.Errorf("row and column categories are required")
	}
	if cfg.Coupling < 0 || cfg.Coupling > 1 {
		return nil, fmt.Errorf("coupling must be in [0,1]")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	records := make([]dataset.Record, cfg.Rows)
	for i := range records {
		r := rng.Intn(len(cfg.RowCategories))
		c := rng.Intn(len(cfg.ColCategories))
		if rng.Float64() < cfg.Coupling {
			c = r % len(cfg.ColCategories)
		}
		records[i] = dataset.Record{
			"row": cfg.RowCategories[r],
			"col": cfg.ColCategories[c],
		}
	}

	return dataset.New("pair_fixture", []string{"row", "col"}, records), nil
}

// Balanced builds n records for every (row -> col) mapping entry, in sorted row order.
func Balanced(mapping map[string]string, n int) *dataset.Dataset {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]dataset.Record, 0, len(keys)*n)
	for _, k := range keys {
		for i := 0; i < n; i++ {
			records = append(records, dataset.Record{"row": k, "col": mapping[k]})
		}
	}
	return dataset.New("balanced_fixture", []string{"row", "col"}, records)
}
