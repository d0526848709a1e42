package profiling

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"assocreport/domain/core"
	"assocreport/domain/dataset"

	"github.com/montanaflynn/stats"
)

// ValueCount is one category with its frequency
type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"` // of all records, missing included
}

// CategoricalProfile summarizes one categorical column
type CategoricalProfile struct {
	Column   string       `json:"column"`
	Records  int          `json:"records"`
	Missing  int          `json:"missing"`
	Distinct int          `json:"distinct"`
	Values   []ValueCount `json:"values"`
	// Entropy is the Shannon entropy of the value shares divided by ln(Distinct); 0 for a single value.
	Entropy  float64 `json:"entropy"`
	MaxShare float64 `json:"max_share"`
	MinShare float64 `json:"min_share"`
}

// DataProfiler profiles the categorical columns of a dataset
type DataProfiler struct{}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{}
}

// ProfileColumn counts the non-empty values of one column. Empty values count as missing.
func (dp *DataProfiler) ProfileColumn(name string, values []string) CategoricalProfile {
	profile := CategoricalProfile{Column: name, Records: len(values)}

	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			profile.Missing++
			continue
		}
		counts[v]++
	}

	profile.Values = make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		profile.Values = append(profile.Values, ValueCount{
			Value:   v,
			Count:   c,
			Percent: float64(c) / float64(len(values)) * 100,
		})
	}
	sort.Slice(profile.Values, func(i, j int) bool {
		if profile.Values[i].Count != profile.Values[j].Count {
			return profile.Values[i].Count > profile.Values[j].Count
		}
		return profile.Values[i].Value < profile.Values[j].Value
	})
	profile.Distinct = len(profile.Values)

	if profile.Distinct == 0 {
		return profile
	}

	freqs := make(stats.Float64Data, profile.Distinct)
	for i, vc := range profile.Values {
		freqs[i] = float64(vc.Count)
	}
	present := float64(len(values) - profile.Missing)
	if maxCount, err := stats.Max(freqs); err == nil {
		profile.MaxShare = maxCount / present
	}
	if minCount, err := stats.Min(freqs); err == nil {
		profile.MinShare = minCount / present
	}
	if profile.Distinct > 1 {
		if h, err := stats.Entropy(freqs); err == nil {
			profile.Entropy = h / math.Log(float64(profile.Distinct))
		}
	}

	return profile
}

// ProfileColumns profiles the named columns in order; columns the dataset lacks are skipped.
func (dp *DataProfiler) ProfileColumns(ds *dataset.Dataset, columns []string) []CategoricalProfile {
	if len(columns) == 0 {
		columns = ds.Columns()
	}
	profiles := make([]CategoricalProfile, 0, len(columns))
	for _, col := range columns {
		if !ds.HasColumn(col) {
			continue
		}
		values, err := ds.Column(core.VariableKey(col))
		if err != nil {
			// a record without the attribute counts as missing
			values = make([]string, ds.Len())
			for i, rec := range ds.Records {
				values[i] = rec[col]
			}
		}
		profiles = append(profiles, dp.ProfileColumn(col, values))
	}
	return profiles
}

// ProfileColumns profiles with a fresh DataProfiler
func ProfileColumns(ds *dataset.Dataset, columns []string) []CategoricalProfile {
	return NewDataProfiler().ProfileColumns(ds, columns)
}

// WriteText renders profiles as an indented value listing
func WriteText(w io.Writer, profiles []CategoricalProfile) error {
	var b strings.Builder
	for _, p := range profiles {
		fmt.Fprintf(&b, "\n   %s:\n", strings.ToUpper(p.Column))
		for _, vc := range p.Values {
			fmt.Fprintf(&b, "      - %s: %d (%.1f%%)\n", vc.Value, vc.Count, vc.Percent)
		}
		if p.Missing > 0 {
			fmt.Fprintf(&b, "      (missing: %d)\n", p.Missing)
		}
		fmt.Fprintf(&b, "      distinct=%d entropy=%.3f max_share=%.3f min_share=%.3f\n",
			p.Distinct, p.Entropy, p.MaxShare, p.MinShare)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
