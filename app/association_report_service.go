package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"assocreport/adapters/stats/senses"
	"assocreport/domain/core"
	"assocreport/domain/dataset"
	"assocreport/domain/stats"
	"assocreport/internal"
	"assocreport/internal/config"
	"assocreport/internal/report"
)

// AssociationReportService computes association reports and writes them to an output sink
type AssociationReportService struct {
	engine *senses.SenseEngine
	out    io.Writer
	format report.Format
	logger *internal.Logger
}

// PlanRunResult contains the complete output of a plan run
type PlanRunResult struct {
	RunID       core.RunID         `json:"run_id"`
	Plan        string             `json:"plan"`
	Dataset     string             `json:"dataset"`
	Records     int                `json:"records"`
	Fingerprint core.SnapshotHash  `json:"fingerprint"`
	Results     []stats.PairResult `json:"results"`
	Failed      int                `json:"failed"`
	RuntimeMs   int64              `json:"runtime_ms"`
}

// NewAssociationReportService creates a report service writing format to out
func NewAssociationReportService(engine *senses.SenseEngine, out io.Writer, format report.Format, logger *internal.Logger) *AssociationReportService {
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	if format == "" {
		format = report.FormatText
	}
	return &AssociationReportService{
		engine: engine,
		out:    out,
		format: format,
		logger: logger,
	}
}

// Report analyzes one pair and renders the block. Nothing is written when the analysis fails.
func (s *AssociationReportService) Report(ctx context.Context, ds *dataset.Dataset, rowVar, colVar core.VariableKey, title string) (*stats.TestResult, error) {
	res, err := s.engine.Sense().Analyze(ctx, ds, rowVar, colVar, title)
	if err != nil {
		return nil, err
	}
	if err := report.Render(s.out, s.format, res); err != nil {
		return nil, fmt.Errorf("failed to write report %q: %w", title, err)
	}
	return res, nil
}

// RunPlan fills missing values, analyzes every pair of the plan and renders them in plan order.
// Failed pairs get an error entry; their errors are joined into the returned error.
func (s *AssociationReportService) RunPlan(ctx context.Context, ds *dataset.Dataset, plan *config.Plan) (*PlanRunResult, error) {
	startTime := time.Now()
	if plan == nil {
		plan = config.DefaultPlan()
	}

	runID := core.NewRunID()
	prepared := ds
	if len(plan.FillMissing) > 0 {
		prepared = ds.FillMissing(plan.FillMissing)
	}

	result := &PlanRunResult{
		RunID:       runID,
		Plan:        plan.Name,
		Dataset:     prepared.Name,
		Records:     prepared.Len(),
		Fingerprint: prepared.Fingerprint(),
	}
	s.logger.Info("run %s: plan %q, %d pairs over %s (%d records, snapshot %s)",
		runID, plan.Name, len(plan.Analyses), prepared.Name, prepared.Len(), result.Fingerprint.Short())

	results, err := s.engine.AnalyzePairs(ctx, prepared, plan.Analyses)
	if err != nil {
		return nil, fmt.Errorf("run %s cancelled: %w", runID, err)
	}
	result.Results = results

	if err := report.RenderPairs(s.out, s.format, results); err != nil {
		return result, fmt.Errorf("failed to write report: %w", err)
	}

	var pairErrs []error
	for _, pr := range results {
		if pr.Err != nil {
			pairErrs = append(pairErrs, fmt.Errorf("%s: %w", pr.Title, pr.Err))
		}
	}
	result.Failed = len(pairErrs)
	result.RuntimeMs = time.Since(startTime).Milliseconds()

	s.logger.Info("run %s: %d/%d pairs reported in %dms", runID, len(results)-result.Failed, len(results), result.RuntimeMs)
	return result, errors.Join(pairErrs...)
}
