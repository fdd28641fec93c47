package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportFixture() []CampaignRow {
	return []CampaignRow{
		{
			CampaignName: "Summer Sale", AdSetName: "Prospecting IN", Day: "2023-01-01",
			Objective: "CONVERSIONS", Impressions: 12500, LinkClicks: 340,
			AmountSpent: 2325, Results: 21, CTR: 2.72, CPC: 6.84,
		},
		{
			CampaignName: "Brand Awareness", AdSetName: "Broad IN", Day: "2023-01-02",
			Objective: "REACH", Impressions: 45200, LinkClicks: 120, AmountSpent: 980,
		},
	}
}

func TestExportCSV(t *testing.T) {
	data, err := ExportRows(exportFixture(), FormatCSV)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, templateHeaders(), records[0])
	assert.Equal(t, "Summer Sale", records[1][0])
	assert.Equal(t, "2325", records[1][6])
	assert.Equal(t, "2.72", records[1][9])
	assert.Equal(t, "0", records[2][7])
}

func TestExportJSON(t *testing.T) {
	data, err := ExportRows(exportFixture(), FormatJSON)
	require.NoError(t, err)

	var rows []CampaignRow
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Brand Awareness", rows[1].CampaignName)
	assert.Equal(t, 980.0, rows[1].AmountSpent)
}

func TestExportXLSX(t *testing.T) {
	data, err := ExportRows(exportFixture(), FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	records, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, templateHeaders(), records[0])
	assert.Equal(t, "Summer Sale", records[1][0])
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := ExportRows(exportFixture(), ExportFormat("pdf"))
	assert.Error(t, err)
}

func TestExportFormatContentType(t *testing.T) {
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestBuildCSVTemplate(t *testing.T) {
	data, err := BuildCSVTemplate()
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+len(templateSampleRows))
	assert.Equal(t, templateHeaders(), records[0])

	// Sample rows must themselves survive the pipeline untouched.
	for _, rec := range records[1:] {
		require.Len(t, rec, len(templateHeaders()))
		v := ValidateHeaders(records[0])
		assert.True(t, v.IsValid)
	}
}

func TestBuildXLSXTemplate(t *testing.T) {
	data, err := BuildXLSXTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	records, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, records, 1+len(templateSampleRows))
	assert.Equal(t, "Summer Sale", records[1][0])
}

func TestTemplateRoundTripsThroughNormalizer(t *testing.T) {
	data, err := BuildCSVTemplate()
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	rows := recordsToRows(records[0], records[1:])
	first := NormalizeRow(rows[0], nil)
	assert.Equal(t, "Summer Sale", first.CampaignName)
	assert.Equal(t, "2023-01-01", first.Day)
	assert.Equal(t, 2325.0, first.AmountSpent)
	assert.Equal(t, 2.72, first.CTR)
	assert.Nil(t, first.Extra)
}
