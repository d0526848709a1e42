package senses

import (
	"context"

	"assocreport/domain/core"
	"assocreport/domain/dataset"
	"assocreport/domain/stats"
	"assocreport/internal"

	"golang.org/x/sync/errgroup"
)

// PairRequest names one (row, column) pair to test
type PairRequest struct {
	Title  string           `json:"title" yaml:"title"`
	RowVar core.VariableKey `json:"row" yaml:"row"`
	ColVar core.VariableKey `json:"col" yaml:"col"`
}

// SenseEngine runs the chi-square sense over several variable pairs
type SenseEngine struct {
	sense   *ChiSquareSense
	workers int
	logger  *internal.Logger
}

// NewSenseEngine creates an engine. workers < 1 runs pairs one at a time.
func NewSenseEngine(sense *ChiSquareSense, workers int, logger *internal.Logger) *SenseEngine {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	return &SenseEngine{sense: sense, workers: workers, logger: logger}
}

// Sense returns the underlying chi-square sense
func (e *SenseEngine) Sense() *ChiSquareSense {
	return e.sense
}

// AnalyzePairs evaluates every pair concurrently and returns results in request order.
// A pair that fails carries its error in PairResult.Err; the returned error is only
// set when ctx is cancelled.
func (e *SenseEngine) AnalyzePairs(ctx context.Context, ds *dataset.Dataset, pairs []PairRequest) ([]stats.PairResult, error) {
	results := make([]stats.PairResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, pair := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.sense.Analyze(gctx, ds, pair.RowVar, pair.ColVar, pair.Title)
			switch {
			case core.IsTableError(err):
				e.logger.Warn("pair %s x %s not testable: %v", pair.RowVar, pair.ColVar, err)
			case err != nil:
				e.logger.Error("pair %s x %s failed: %v", pair.RowVar, pair.ColVar, err)
			default:
				e.logger.Debug("pair %s x %s: chi2=%.4f p=%.6g V=%.4f", pair.RowVar, pair.ColVar, res.ChiSquare, res.PValue, res.CramersV)
			}
			results[i] = stats.PairResult{
				Title:  pair.Title,
				RowVar: pair.RowVar,
				ColVar: pair.ColVar,
				Result: res,
				Err:    err,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
