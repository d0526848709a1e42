package excel

import (
	"encoding/csv"
	"os"

	"assocreport/domain/dataset"
	apperrors "assocreport/internal/errors"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the dataset with a header row in column order
func WriteCSV(path string, ds *dataset.Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.IOError("failed to create CSV file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperrors.IOError("failed to close CSV file", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Columns()); err != nil {
		return apperrors.IOError("failed to write CSV header", err)
	}
	if err := w.WriteAll(ds.Rows()); err != nil {
		return apperrors.IOError("failed to write CSV rows", err)
	}
	return nil
}

// WriteXLSX writes the dataset to Sheet1 of a new workbook
func WriteXLSX(path string, ds *dataset.Dataset) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperrors.IOError("failed to close workbook", cerr)
		}
	}()

	sheet := DefaultSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return apperrors.IOError("failed to create sheet", err)
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range ds.Columns() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return apperrors.IOError("failed to write header", err)
		}
	}

	for r, row := range ds.Rows() {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return apperrors.IOError("failed to write cell", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.IOError("failed to save workbook", err)
	}
	return nil
}
