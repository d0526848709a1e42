package senses

import (
	"context"
	"fmt"
	"math"
	"testing"

	"assocreport/domain/core"
	"assocreport/domain/dataset"
	"assocreport/domain/stats"
	"assocreport/internal/encoding"
	"assocreport/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestChiSquare_PerfectTwoByTwo(t *testing.T) {
	ds := testkit.Balanced(map[string]string{"A": "X", "B": "Y"}, 50)
	sense := NewChiSquareSense(DefaultChiSquareOptions())

	res, err := sense.Analyze(context.Background(), ds, "row", "col", "perfect")
	require.NoError(t, err)

	assert.Equal(t, [][]int{{50, 0}, {0, 50}}, res.Table.Counts)
	assert.Equal(t, []string{"A", "B"}, res.Table.RowLabels)
	assert.Equal(t, []string{"X", "Y"}, res.Table.ColLabels)
	assert.InDelta(t, 100.0, res.ChiSquare, 1e-9)
	assert.Equal(t, 1, res.DegreesOfFreedom)
	assert.Less(t, res.PValue, 1e-20)
	assert.InDelta(t, 1.0, res.CramersV, 1e-12)
	assert.True(t, res.Significant)
	assert.Equal(t, stats.StrengthVeryStrong, res.Strength)
	assert.Equal(t, 100, res.SampleSize)
	assert.Equal(t, "perfect", res.Title)
	assert.False(t, res.YatesCorrected)
}

func TestChiSquare_YatesCorrection(t *testing.T) {
	ds := testkit.Balanced(map[string]string{"A": "X", "B": "Y"}, 50)
	opts := DefaultChiSquareOptions()
	opts.YatesCorrection = true
	sense := NewChiSquareSense(opts)

	res, err := sense.Analyze(context.Background(), ds, "row", "col", "yates")
	require.NoError(t, err)
	assert.True(t, res.YatesCorrected)
	// |50-25| - 0.5 = 24.5 in each of four cells with E = 25.
	assert.InDelta(t, 4*24.5*24.5/25, res.ChiSquare, 1e-9)
}

func TestChiSquare_YatesOnlyForOneDegreeOfFreedom(t *testing.T) {
	ds := testkit.Balanced(map[string]string{"A": "X", "B": "Y", "C": "Z"}, 10)
	opts := DefaultChiSquareOptions()
	opts.YatesCorrection = true

	res, err := NewChiSquareSense(opts).Analyze(context.Background(), ds, "row", "col", "")
	require.NoError(t, err)
	assert.False(t, res.YatesCorrected)
	assert.InDelta(t, 60.0, res.ChiSquare, 1e-9)
}

func TestChiSquare_EmptyDataset(t *testing.T) {
	sense := NewChiSquareSense(DefaultChiSquareOptions())
	_, err := sense.Analyze(context.Background(), dataset.New("empty", []string{"row", "col"}, nil), "row", "col", "")
	require.Error(t, err)
	assert.True(t, core.IsDegenerateTable(err))
}

func TestChiSquare_SingleRowCategory(t *testing.T) {
	ds := dataset.New("single", nil, []dataset.Record{
		{"row": "A", "col": "X"},
		{"row": "A", "col": "Y"},
		{"row": "A", "col": "X"},
	})
	sense := NewChiSquareSense(DefaultChiSquareOptions())

	_, err := sense.Analyze(context.Background(), ds, "row", "col", "")
	require.Error(t, err)
	assert.True(t, core.IsInsufficientDimensionality(err))

	_, err = sense.Analyze(context.Background(), ds, "col", "row", "")
	require.Error(t, err)
	assert.True(t, core.IsInsufficientDimensionality(err))
}

func TestChiSquare_MissingAttribute(t *testing.T) {
	ds := dataset.New("missing", nil, []dataset.Record{
		{"row": "A", "col": "X"},
		{"row": "B"},
	})
	_, err := NewChiSquareSense(DefaultChiSquareOptions()).Analyze(context.Background(), ds, "row", "col", "")
	require.Error(t, err)
	assert.True(t, core.IsMissingAttribute(err))
	assert.Contains(t, err.Error(), "record 1")
}

func TestChiSquare_DoesNotMutateDataset(t *testing.T) {
	ds, err := testkit.GenerateShootings(testkit.DefaultShootingsConfig())
	require.NoError(t, err)
	before := ds.Fingerprint()

	_, err = NewChiSquareSense(DefaultChiSquareOptions()).Analyze(context.Background(), ds, "population_size", "shooting_rate_category", "")
	require.NoError(t, err)
	assert.Equal(t, before, ds.Fingerprint())
}

func TestChiSquare_EmptyStringIsACategory(t *testing.T) {
	ds := dataset.New("blanks", nil, []dataset.Record{
		{"row": "", "col": "X"},
		{"row": "A", "col": "Y"},
		{"row": "", "col": "Y"},
		{"row": "A", "col": "X"},
	})
	res, err := NewChiSquareSense(DefaultChiSquareOptions()).Analyze(context.Background(), ds, "row", "col", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "A"}, res.Table.RowLabels)
	assert.Equal(t, 4, res.Table.Total())
}

func TestChiSquare_FirstSeenOrder(t *testing.T) {
	ds := dataset.New("order", nil, []dataset.Record{
		{"row": "B", "col": "Y"},
		{"row": "A", "col": "X"},
		{"row": "B", "col": "X"},
	})
	opts := DefaultChiSquareOptions()
	opts.Order = encoding.OrderFirstSeen

	table, err := NewChiSquareSense(opts).BuildContingencyTable(ds, "row", "col")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, table.RowLabels)
	assert.Equal(t, []string{"Y", "X"}, table.ColLabels)
	assert.Equal(t, [][]int{{1, 1}, {0, 1}}, table.Counts)
}

func TestChiSquare_HandBuiltDegenerateTables(t *testing.T) {
	sense := NewChiSquareSense(DefaultChiSquareOptions())

	zero, err := stats.NewContingencyTable("r", "c", []string{"A", "B"}, []string{"X", "Y"}, [][]int{{0, 0}, {0, 0}})
	require.NoError(t, err)
	_, err = sense.Test(zero)
	assert.True(t, core.IsDegenerateTable(err))

	emptyRow, err := stats.NewContingencyTable("r", "c", []string{"A", "B"}, []string{"X", "Y"}, [][]int{{3, 4}, {0, 0}})
	require.NoError(t, err)
	_, err = sense.Test(emptyRow)
	assert.True(t, core.IsDegenerateTable(err))

	emptyDim, err := stats.NewContingencyTable("r", "c", nil, nil, nil)
	require.NoError(t, err)
	_, err = sense.Test(emptyDim)
	assert.True(t, core.IsDegenerateTable(err))
}

func TestChiSquare_KnownTable(t *testing.T) {
	// Classic 2x3 example: chi2 = 0.2716, dof 2.
	table, err := stats.NewContingencyTable("r", "c",
		[]string{"A", "B"}, []string{"X", "Y", "Z"},
		[][]int{{10, 20, 30}, {6, 9, 17}})
	require.NoError(t, err)

	res, err := NewChiSquareSense(DefaultChiSquareOptions()).Test(table)
	require.NoError(t, err)

	expected := table.Expected()
	want := 0.0
	for i := range table.Counts {
		for j := range table.Counts[i] {
			d := float64(table.Counts[i][j]) - expected[i][j]
			want += d * d / expected[i][j]
		}
	}
	assert.InDelta(t, want, res.ChiSquare, 1e-12)
	assert.InDelta(t, 0.27157465150403504, res.ChiSquare, 1e-9)
	assert.InDelta(t, 0.8730282833, res.PValue, 1e-6)
	assert.False(t, res.Significant)
	assert.InDelta(t, math.Sqrt(res.ChiSquare/92.0), res.CramersV, 1e-12)
}

func TestChiSquare_SparseDiagnostics(t *testing.T) {
	table, err := stats.NewContingencyTable("r", "c",
		[]string{"A", "B"}, []string{"X", "Y"},
		[][]int{{2, 1}, {1, 3}})
	require.NoError(t, err)

	res, err := NewChiSquareSense(DefaultChiSquareOptions()).Test(table)
	require.NoError(t, err, "small expected counts are reported, not rejected")
	assert.Equal(t, 4, res.Diagnostics.TotalCells)
	assert.Equal(t, 4, res.Diagnostics.CellsBelowFive)
	assert.True(t, res.Diagnostics.Sparse())
	assert.InDelta(t, 3.0*3.0/7.0, res.Diagnostics.MinExpected, 1e-12)
}

func TestChiSquare_AlphaOption(t *testing.T) {
	assert.Equal(t, DefaultAlpha, NewChiSquareSense(ChiSquareOptions{Alpha: 2}).Options().Alpha)
	assert.Equal(t, encoding.OrderSorted, NewChiSquareSense(ChiSquareOptions{}).Options().Order)

	table, err := stats.NewContingencyTable("r", "c", []string{"A", "B"}, []string{"X", "Y"}, [][]int{{30, 20}, {20, 30}})
	require.NoError(t, err)

	loose, err := NewChiSquareSense(ChiSquareOptions{Alpha: 0.05}).Test(table)
	require.NoError(t, err)
	strict, err := NewChiSquareSense(ChiSquareOptions{Alpha: 0.01}).Test(table)
	require.NoError(t, err)

	// chi2 = 4.0, p ~ 0.0455
	assert.True(t, loose.Significant)
	assert.False(t, strict.Significant)
}

func TestChiSquare_IndependentDataMostlyNotSignificant(t *testing.T) {
	sense := NewChiSquareSense(DefaultChiSquareOptions())
	notSignificant := 0
	const trials = 100

	for seed := int64(0); seed < trials; seed++ {
		cfg := testkit.DefaultPairConfig()
		cfg.Seed = seed
		ds, err := testkit.GeneratePair(cfg)
		require.NoError(t, err)

		res, err := sense.Analyze(context.Background(), ds, "row", "col", "")
		require.NoError(t, err)
		if res.PValue > 0.05 {
			notSignificant++
		}
	}

	assert.GreaterOrEqual(t, notSignificant, 85, "independent data should rarely be flagged")
}

func TestChiSquare_FunctionalDependence(t *testing.T) {
	cfg := testkit.DefaultPairConfig()
	cfg.Coupling = 1
	ds, err := testkit.GeneratePair(cfg)
	require.NoError(t, err)

	res, err := NewChiSquareSense(DefaultChiSquareOptions()).Analyze(context.Background(), ds, "row", "col", "")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.CramersV, 1e-9)
	assert.Less(t, res.PValue, 1e-10)
	assert.True(t, res.Significant)
}

func TestChiSquare_Invariants(t *testing.T) {
	sense := NewChiSquareSense(DefaultChiSquareOptions())

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 200).Draw(rt, "n")
		rowDomain := rapid.IntRange(1, 5).Draw(rt, "rowDomain")
		colDomain := rapid.IntRange(1, 5).Draw(rt, "colDomain")

		records := make([]dataset.Record, n)
		for i := range records {
			r := rapid.IntRange(0, rowDomain-1).Draw(rt, fmt.Sprintf("r%d", i))
			c := rapid.IntRange(0, colDomain-1).Draw(rt, fmt.Sprintf("c%d", i))
			records[i] = dataset.Record{"row": fmt.Sprintf("r%d", r), "col": fmt.Sprintf("c%d", c)}
		}
		ds := dataset.New("prop", nil, records)

		table, err := sense.BuildContingencyTable(ds, "row", "col")
		if err != nil {
			rt.Fatalf("build: %v", err)
		}
		if table.Total() != n {
			rt.Fatalf("cell sum %d != records %d", table.Total(), n)
		}
		rows, cols := table.Dims()
		if table.DegreesOfFreedom() != (rows-1)*(cols-1) || table.DegreesOfFreedom() < 0 {
			rt.Fatalf("bad dof %d for %dx%d", table.DegreesOfFreedom(), rows, cols)
		}

		res, err := sense.Test(table)
		if rows == 1 || cols == 1 {
			if !core.IsInsufficientDimensionality(err) {
				rt.Fatalf("expected insufficient dimensionality for %dx%d, got %v", rows, cols, err)
			}
			return
		}
		if err != nil {
			rt.Fatalf("test: %v", err)
		}
		if res.ChiSquare < 0 {
			rt.Fatalf("negative chi2 %v", res.ChiSquare)
		}
		if res.PValue < 0 || res.PValue > 1 {
			rt.Fatalf("p-value out of range: %v", res.PValue)
		}
		if res.CramersV < 0 || res.CramersV > 1+1e-9 {
			rt.Fatalf("V out of range: %v", res.CramersV)
		}
		if res.Significant != (res.PValue < res.Alpha) {
			rt.Fatalf("significance flag disagrees with p=%v alpha=%v", res.PValue, res.Alpha)
		}
	})
}
