package ingest

import (
	"encoding/csv"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// getFileExt returns the lowercased extension of an uploaded file name.
func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// parseUploadFile reads an uploaded .csv, .xlsx or legacy .xls file into
// a header row plus data rows. Ragged CSV rows are tolerated; the row
// assembler pads or truncates against the header later.
func parseUploadFile(file multipart.File, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("no sheets found in workbook")
		}
		return f.GetRows(sheets[0])
	case ".xls":
		wb, err := xls.OpenReader(file, "utf-8")
		if err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, errors.New("no sheets found in workbook")
		}
		records := make([][]string, 0, int(sheet.MaxRow)+1)
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for j := 0; j < row.LastCol(); j++ {
				cells = append(cells, row.Col(j))
			}
			records = append(records, cells)
		}
		return records, nil
	}
	return nil, errors.New("unsupported file type: " + ext)
}

// recordsToRows zips the header row with each data row into header -> cell
// maps, the shape the normalizer consumes. Short rows read as empty cells;
// surplus cells beyond the header are dropped.
func recordsToRows(headers []string, dataRows [][]string) []map[string]string {
	rows := make([]map[string]string, 0, len(dataRows))
	for _, rec := range dataRows {
		row := make(map[string]string, len(headers))
		for j, h := range headers {
			val := ""
			if j < len(rec) {
				val = rec[j]
			}
			row[strings.TrimSpace(h)] = strings.TrimSpace(val)
		}
		rows = append(rows, row)
	}
	return rows
}
