package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"assocreport/domain/dataset"
	"assocreport/internal"
	apperrors "assocreport/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is read when the workbook has it; otherwise the first sheet is used.
const DefaultSheet = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: internal.NewDiscardLogger()}
}

// WithLogger routes read timings to logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// FileType returns "csv" or "xlsx"
func (r *DataReader) FileType() string {
	return r.fileType
}

// ReadData reads a CSV or XLSX file into a dataset named after the file
func (r *DataReader) ReadData() (*dataset.Dataset, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	switch r.fileType {
	case "csv":
		file, err := os.Open(r.filePath)
		if err != nil {
			return nil, apperrors.IOError("failed to open CSV file", err)
		}
		defer file.Close()
		return r.ReadCSV(file)
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

// ReadCSV parses CSV content from src
func (r *DataReader) ReadCSV(src io.Reader) (*dataset.Dataset, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to read CSV data: %w", err))
	}
	r.logger.Debug("[DataReader] CSV data read in %.2fms (%d rows)", msSince(readStart), len(rows))

	return r.processRows(rows)
}

// readExcelData reads the default sheet, or the first one, into a dataset
func (r *DataReader) readExcelData() (*dataset.Dataset, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()
	r.logger.Debug("[DataReader] Excel file opened in %.2fms", msSince(startTime))

	sheet := DefaultSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.InvalidInput("Excel file has no sheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to read %s: %w", sheet, err))
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", sheet, msSince(readStart), len(rows))

	return r.processRows(rows)
}

// processRows converts raw string rows into records keyed by the trimmed header row.
// Short rows are padded with empty values; cells past the header are dropped.
func (r *DataReader) processRows(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) == 0 {
		return nil, apperrors.InvalidInput("file must have a header row")
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, header := range headerRow {
		h := strings.TrimSpace(header)
		if h == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("header %d is empty", i+1))
		}
		if seen[h] {
			return nil, apperrors.InvalidInput(fmt.Sprintf("duplicate header %q", h))
		}
		seen[h] = true
		headers[i] = h
	}

	records := make([]dataset.Record, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rec := make(dataset.Record, len(headers))
		for j, h := range headers {
			if j < len(row) {
				rec[h] = strings.TrimSpace(row[j])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}

	r.logger.Debug("[DataReader] %s data processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(records))

	name := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	return dataset.New(name, headers, records), nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Nanoseconds()) / 1e6
}
