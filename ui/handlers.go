package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"assocreport/adapters/excel"
	"assocreport/adapters/stats/senses"
	"assocreport/app"
	"assocreport/domain/core"
	"assocreport/domain/dataset"
	apperrors "assocreport/internal/errors"
	"assocreport/internal/report"
)

// associationRequest is the JSON body of POST /api/association
type associationRequest struct {
	Title       string            `json:"title"`
	Row         string            `json:"row"`
	Col         string            `json:"col"`
	Format      string            `json:"format"`
	FillMissing map[string]string `json:"fill_missing"`
	Records     []dataset.Record  `json:"records"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": a.dataset != nil,
		"records":        a.dataset.Len(),
	})
}

// handleAssociation tests one pair. The body is either JSON records or CSV (Content-Type text/csv)
// with row, col, title and format taken from the query string.
func (a *App) handleAssociation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, ds, err := a.decodeAssociation(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(req.FillMissing) > 0 {
		ds = ds.FillMissing(req.FillMissing)
	}

	rowVar, err := core.ParseVariableKey(req.Row)
	if err != nil {
		writeError(w, apperrors.InvalidInput("row: "+err.Error()))
		return
	}
	colVar, err := core.ParseVariableKey(req.Col)
	if err != nil {
		writeError(w, apperrors.InvalidInput("col: "+err.Error()))
		return
	}
	if req.Title == "" {
		req.Title = fmt.Sprintf("%s vs %s", rowVar, colVar)
	}

	asJSON := req.Format == "" || strings.EqualFold(req.Format, "json")
	format := report.FormatText
	if !asJSON {
		if format, err = report.ParseFormat(req.Format); err != nil {
			writeError(w, apperrors.InvalidInput(err.Error()))
			return
		}
	}

	var buf bytes.Buffer
	svc := app.NewAssociationReportService(a.engine(), &buf, format, a.logger)
	res, err := svc.Report(r.Context(), ds, rowVar, colVar, req.Title)
	if err != nil {
		writeError(w, apperrors.FromDomain(err))
		return
	}

	if asJSON {
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (a *App) decodeAssociation(r *http.Request) (*associationRequest, *dataset.Dataset, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		q := r.URL.Query()
		req := &associationRequest{
			Title:  q.Get("title"),
			Row:    q.Get("row"),
			Col:    q.Get("col"),
			Format: q.Get("format"),
		}
		ds, err := excel.NewDataReader("upload.csv").WithLogger(a.logger).ReadCSV(r.Body)
		if err != nil {
			return nil, nil, err
		}
		return req, ds, nil
	}

	var req associationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("invalid JSON body: %w", err))
	}
	return &req, dataset.New("request", nil, req.Records), nil
}

// handlePlanReport runs the configured plan against the loaded dataset
func (a *App) handlePlanReport(w http.ResponseWriter, r *http.Request) {
	if a.dataset == nil {
		writeError(w, apperrors.NotFound("dataset (set DATA_FILE)"))
		return
	}
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	var buf bytes.Buffer
	svc := app.NewAssociationReportService(a.engine(), &buf, format, a.logger)
	res, err := svc.RunPlan(r.Context(), a.dataset, a.plan)
	if res == nil {
		writeError(w, err)
		return
	}
	if err != nil {
		a.logger.Warn("plan %q: %v", a.plan.Name, err)
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Run-ID", res.RunID.String())
	w.Header().Set("X-Failed-Pairs", fmt.Sprint(res.Failed))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (a *App) engine() *senses.SenseEngine {
	return senses.NewSenseEngine(senses.NewChiSquareSense(a.config.Options), a.config.Workers, a.logger)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	writeJSON(w, statusFor(code), map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}

// statusFor maps error codes to HTTP statuses
func statusFor(code string) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeDegenerateTable, apperrors.CodeInsufficientDimensionality, apperrors.CodeMissingAttribute:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
