package stats

import (
	"fmt"

	"assocreport/domain/core"
)

// ContingencyTable is a cross-tabulation of observed counts.
// INVARIANTS:
// - len(Counts) == len(RowLabels), every row has len(ColLabels) cells
// - counts are non-negative
type ContingencyTable struct {
	RowVar    core.VariableKey `json:"row_var"`
	ColVar    core.VariableKey `json:"col_var"`
	RowLabels []string         `json:"row_labels"`
	ColLabels []string         `json:"col_labels"`
	Counts    [][]int          `json:"counts"`
}

// NewContingencyTable validates the shape of a hand-built table
func NewContingencyTable(rowVar, colVar core.VariableKey, rowLabels, colLabels []string, counts [][]int) (*ContingencyTable, error) {
	if len(counts) != len(rowLabels) {
		return nil, core.NewValidationError("counts", fmt.Sprintf("%d rows for %d row labels", len(counts), len(rowLabels)))
	}
	for i, row := range counts {
		if len(row) != len(colLabels) {
			return nil, core.NewValidationError("counts", fmt.Sprintf("row %d has %d cells for %d column labels", i, len(row), len(colLabels)))
		}
		for j, c := range row {
			if c < 0 {
				return nil, core.NewValidationError("counts", fmt.Sprintf("negative count %d at (%d,%d)", c, i, j))
			}
		}
	}
	return &ContingencyTable{
		RowVar:    rowVar,
		ColVar:    colVar,
		RowLabels: rowLabels,
		ColLabels: colLabels,
		Counts:    counts,
	}, nil
}

// Dims returns (rows, cols)
func (t *ContingencyTable) Dims() (int, int) {
	return len(t.RowLabels), len(t.ColLabels)
}

// RowTotals returns the row marginals
func (t *ContingencyTable) RowTotals() []int {
	totals := make([]int, len(t.Counts))
	for i, row := range t.Counts {
		for _, c := range row {
			totals[i] += c
		}
	}
	return totals
}

// ColTotals returns the column marginals
func (t *ContingencyTable) ColTotals() []int {
	totals := make([]int, len(t.ColLabels))
	for _, row := range t.Counts {
		for j, c := range row {
			totals[j] += c
		}
	}
	return totals
}

// Total returns the grand total N
func (t *ContingencyTable) Total() int {
	n := 0
	for _, r := range t.RowTotals() {
		n += r
	}
	return n
}

// DegreesOfFreedom returns (rows-1)*(cols-1), or 0 for an empty dimension
func (t *ContingencyTable) DegreesOfFreedom() int {
	rows, cols := t.Dims()
	if rows == 0 || cols == 0 {
		return 0
	}
	return (rows - 1) * (cols - 1)
}

// Expected returns R_i*C_j/N for every cell, or nil when N is zero.
func (t *ContingencyTable) Expected() [][]float64 {
	n := t.Total()
	if n == 0 {
		return nil
	}
	rowTotals := t.RowTotals()
	colTotals := t.ColTotals()
	expected := make([][]float64, len(rowTotals))
	for i := range rowTotals {
		expected[i] = make([]float64, len(colTotals))
		for j := range colTotals {
			expected[i][j] = float64(rowTotals[i]) * float64(colTotals[j]) / float64(n)
		}
	}
	return expected
}

// Count returns the observed count for a (row, col) label pair, 0 when either label is unknown.
func (t *ContingencyTable) Count(row, col string) int {
	for i, r := range t.RowLabels {
		if r != row {
			continue
		}
		for j, c := range t.ColLabels {
			if c == col {
				return t.Counts[i][j]
			}
		}
	}
	return 0
}

// Strength buckets Cramér's V
type Strength string

const (
	StrengthWeak       Strength = "weak"
	StrengthModerate   Strength = "moderate"
	StrengthStrong     Strength = "strong"
	StrengthVeryStrong Strength = "very strong"
)

// ClassifyStrength converts Cramér's V to a strength bucket
func ClassifyStrength(cramerV float64) Strength {
	switch {
	case cramerV < 0.1:
		return StrengthWeak
	case cramerV < 0.3:
		return StrengthModerate
	case cramerV < 0.5:
		return StrengthStrong
	default:
		return StrengthVeryStrong
	}
}

// SparseCellShare is the share of expected counts below five above which the
// chi-square approximation is flagged in reports.
const SparseCellShare = 0.2

// ExpectedDiagnostics summarizes the expected counts under independence.
// Small expected counts weaken the chi-square approximation; they are reported, never rejected.
type ExpectedDiagnostics struct {
	MinExpected    float64 `json:"min_expected"`
	MeanExpected   float64 `json:"mean_expected"`
	CellsBelowFive int     `json:"cells_below_five"`
	TotalCells     int     `json:"total_cells"`
}

// BelowFiveShare is the fraction of cells with expected count < 5
func (d ExpectedDiagnostics) BelowFiveShare() float64 {
	if d.TotalCells == 0 {
		return 0
	}
	return float64(d.CellsBelowFive) / float64(d.TotalCells)
}

// Sparse reports whether too many expected counts are small
func (d ExpectedDiagnostics) Sparse() bool {
	return d.BelowFiveShare() > SparseCellShare
}

// TestResult is the outcome of one chi-square test of independence. Read-only once built.
type TestResult struct {
	Title            string              `json:"title"`
	Table            *ContingencyTable   `json:"table"`
	ChiSquare        float64             `json:"chi_square"`
	PValue           float64             `json:"p_value"`
	CriticalValue    float64             `json:"critical_value"` // χ² needed for p < Alpha at this dof
	DegreesOfFreedom int                 `json:"degrees_of_freedom"`
	CramersV         float64             `json:"cramers_v"`
	SampleSize       int                 `json:"sample_size"`
	Alpha            float64             `json:"alpha"`
	Significant      bool                `json:"significant"`
	Strength         Strength            `json:"strength"`
	YatesCorrected   bool                `json:"yates_corrected"`
	Diagnostics      ExpectedDiagnostics `json:"diagnostics"`
}

// PairResult pairs a requested analysis with its outcome. Err is set when the test could not run.
type PairResult struct {
	Title  string           `json:"title"`
	RowVar core.VariableKey `json:"row_var"`
	ColVar core.VariableKey `json:"col_var"`
	Result *TestResult      `json:"result,omitempty"`
	Err    error            `json:"-"`
}
