package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// templateSampleRows demonstrate the expected value formats: dates as
// YYYY-MM-DD, percentages with a % suffix, currency as bare numbers.
var templateSampleRows = [][]string{
	{"Summer Sale", "Prospecting IN", "2023-01-01", "CONVERSIONS", "12500", "340", "2325.00", "21", "110.71", "2.72%", "6.84", "18", "5400.00", "2.32", "9800"},
	{"Summer Sale", "Retargeting IN", "2023-01-01", "CONVERSIONS", "8600", "210", "1150.50", "14", "82.18", "2.44%", "5.48", "12", "3650.00", "3.17", "7100"},
	{"Brand Awareness", "Broad IN", "2023-01-02", "REACH", "45200", "120", "980.00", "120", "8.17", "0.27%", "8.17", "0", "0", "0", "38000"},
}

// templateHeaders returns the canonical header row.
func templateHeaders() []string {
	headers := make([]string, 0, len(CanonicalColumns))
	for _, col := range CanonicalColumns {
		headers = append(headers, col.Name)
	}
	return headers
}

// BuildCSVTemplate renders the downloadable CSV template: canonical
// header row plus sample rows.
func BuildCSVTemplate() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(templateHeaders()); err != nil {
		return nil, err
	}
	for _, row := range templateSampleRows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// BuildXLSXTemplate renders the same template as a single-sheet workbook.
func BuildXLSXTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range templateHeaders() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for r, row := range templateSampleRows {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write template workbook: %w", err)
	}
	return buf.Bytes(), nil
}
