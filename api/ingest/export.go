package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the wire shape of an upload export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type for the download response.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// ExportRows renders the rows of one upload in the requested format.
func ExportRows(rows []CampaignRow, format ExportFormat) ([]byte, error) {
	switch format {
	case FormatCSV:
		return exportCSV(rows)
	case FormatJSON:
		return json.MarshalIndent(rows, "", "  ")
	case FormatXLSX:
		return exportXLSX(rows)
	}
	return nil, fmt.Errorf("unsupported export format: %s", format)
}

func rowCells(r CampaignRow) []string {
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		r.CampaignName, r.AdSetName, r.Day, r.Objective,
		ff(r.Impressions), ff(r.LinkClicks), ff(r.AmountSpent), ff(r.Results),
		ff(r.CostPerResult), ff(r.CTR), ff(r.CPC), ff(r.Purchases),
		ff(r.PurchaseValue), ff(r.PurchaseROAS), ff(r.Reach),
	}
}

func exportCSV(rows []CampaignRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(templateHeaders()); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(rowCells(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportXLSX(rows []CampaignRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range templateHeaders() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for i, r := range rows {
		for c, val := range rowCells(r) {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
