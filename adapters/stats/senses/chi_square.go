package senses

import (
	"context"
	"fmt"
	"math"

	"assocreport/domain/core"
	"assocreport/domain/dataset"
	"assocreport/domain/stats"
	"assocreport/internal/analysis/brief"
	"assocreport/internal/encoding"

	mstats "github.com/montanaflynn/stats"
)

// DefaultAlpha is the significance threshold used when none is configured
const DefaultAlpha = 0.05

// ChiSquareOptions configures the chi-square test of independence
type ChiSquareOptions struct {
	Alpha float64        // significance threshold, p < Alpha is significant
	Order encoding.Order // category ordering for rows and columns
	// YatesCorrection applies the continuity correction to tables with one degree of freedom.
	YatesCorrection bool
}

// DefaultChiSquareOptions returns alpha 0.05, sorted categories and no correction
func DefaultChiSquareOptions() ChiSquareOptions {
	return ChiSquareOptions{
		Alpha: DefaultAlpha,
		Order: encoding.OrderSorted,
	}
}

// ChiSquareSense detects associations between two categorical variables
type ChiSquareSense struct {
	opts          ChiSquareOptions
	distributions *brief.StatisticalDistributions
}

// NewChiSquareSense creates a new Chi-Square sense. An alpha outside (0,1) falls back to DefaultAlpha.
func NewChiSquareSense(opts ChiSquareOptions) *ChiSquareSense {
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		opts.Alpha = DefaultAlpha
	}
	if opts.Order == "" {
		opts.Order = encoding.OrderSorted
	}
	return &ChiSquareSense{
		opts:          opts,
		distributions: brief.NewDistributions(),
	}
}

// Name returns the sense name
func (s *ChiSquareSense) Name() string {
	return "chi_square"
}

// Description returns a human-readable description
func (s *ChiSquareSense) Description() string {
	return "Chi-square test of independence between two categorical variables with Cramér's V"
}

// Options returns the effective options
func (s *ChiSquareSense) Options() ChiSquareOptions {
	return s.opts
}

// Analyze cross-tabulates rowVar against colVar and tests independence.
func (s *ChiSquareSense) Analyze(ctx context.Context, ds *dataset.Dataset, rowVar, colVar core.VariableKey, title string) (*stats.TestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := s.BuildContingencyTable(ds, rowVar, colVar)
	if err != nil {
		return nil, err
	}

	result, err := s.Test(table)
	if err != nil {
		return nil, err
	}
	result.Title = title
	return result, nil
}

// BuildContingencyTable counts one observation per record at (rowVar value, colVar value).
// Categories are the distinct observed values only. The dataset is not modified.
func (s *ChiSquareSense) BuildContingencyTable(ds *dataset.Dataset, rowVar, colVar core.VariableKey) (*stats.ContingencyTable, error) {
	if ds.IsEmpty() {
		return nil, core.NewDegenerateTableError(rowVar, colVar, "dataset has no records")
	}

	rowValues, err := ds.Column(rowVar)
	if err != nil {
		return nil, err
	}
	colValues, err := ds.Column(colVar)
	if err != nil {
		return nil, err
	}

	rowEnc := encoding.NewLabelEncoder(rowValues, s.opts.Order)
	colEnc := encoding.NewLabelEncoder(colValues, s.opts.Order)

	counts := make([][]int, rowEnc.Len())
	for i := range counts {
		counts[i] = make([]int, colEnc.Len())
	}
	for i := range rowValues {
		r, _ := rowEnc.Encode(rowValues[i])
		c, _ := colEnc.Encode(colValues[i])
		counts[r][c]++
	}

	return &stats.ContingencyTable{
		RowVar:    rowVar,
		ColVar:    colVar,
		RowLabels: rowEnc.Classes(),
		ColLabels: colEnc.Classes(),
		Counts:    counts,
	}, nil
}

// Test runs the chi-square test of independence on an already built table.
func (s *ChiSquareSense) Test(table *stats.ContingencyTable) (*stats.TestResult, error) {
	rows, cols := table.Dims()
	if rows == 0 || cols == 0 {
		return nil, core.NewDegenerateTableError(table.RowVar, table.ColVar, "table has an empty dimension")
	}

	total := table.Total()
	if total == 0 {
		return nil, core.NewDegenerateTableError(table.RowVar, table.ColVar, "no valid observations")
	}

	rowTotals := table.RowTotals()
	colTotals := table.ColTotals()
	for i, r := range rowTotals {
		if r == 0 {
			return nil, core.NewDegenerateTableError(table.RowVar, table.ColVar, fmt.Sprintf("row %q has no observations", table.RowLabels[i]))
		}
	}
	for j, c := range colTotals {
		if c == 0 {
			return nil, core.NewDegenerateTableError(table.RowVar, table.ColVar, fmt.Sprintf("column %q has no observations", table.ColLabels[j]))
		}
	}

	dof := table.DegreesOfFreedom()
	if dof == 0 {
		return nil, core.NewInsufficientDimensionalityError(table.RowVar, table.ColVar, rows, cols)
	}

	expected := table.Expected()
	yates := s.opts.YatesCorrection && dof == 1

	chiSq := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			e := expected[i][j]
			if e <= 0 {
				continue
			}
			diff := math.Abs(float64(table.Counts[i][j]) - e)
			if yates {
				diff -= math.Min(0.5, diff)
			}
			chiSq += diff * diff / e
		}
	}

	pValue := s.distributions.ChiSquarePValue(chiSq, dof)

	// Effect size: Cramer's V = sqrt(χ² / (n * min(r-1, c-1)))
	cramerV := 0.0
	if minDim := min(rows-1, cols-1); minDim > 0 {
		cramerV = math.Sqrt(chiSq / (float64(total) * float64(minDim)))
	}

	return &stats.TestResult{
		Table:            table,
		ChiSquare:        chiSq,
		PValue:           pValue,
		CriticalValue:    s.distributions.ChiSquareCritical(s.opts.Alpha, dof),
		DegreesOfFreedom: dof,
		CramersV:         cramerV,
		SampleSize:       total,
		Alpha:            s.opts.Alpha,
		Significant:      pValue < s.opts.Alpha,
		Strength:         stats.ClassifyStrength(cramerV),
		YatesCorrected:   yates,
		Diagnostics:      expectedDiagnostics(expected),
	}, nil
}

// expectedDiagnostics summarizes expected counts; it never rejects a table.
func expectedDiagnostics(expected [][]float64) stats.ExpectedDiagnostics {
	flat := make([]float64, 0, len(expected)*len(expected[0]))
	below := 0
	for _, row := range expected {
		for _, e := range row {
			flat = append(flat, e)
			if e < 5 {
				below++
			}
		}
	}

	minE, _ := mstats.Min(flat)
	meanE, _ := mstats.Mean(flat)

	return stats.ExpectedDiagnostics{
		MinExpected:    minE,
		MeanExpected:   meanE,
		CellsBelowFive: below,
		TotalCells:     len(flat),
	}
}
