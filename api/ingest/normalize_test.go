package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRawRow() map[string]string {
	return map[string]string{
		"Campaign name":      " Summer Sale ",
		"Ad set name":        "Prospecting IN",
		"Day":                "2023-01-05",
		"Objective":          "CONVERSIONS",
		"Impressions":        "12,500",
		"Link clicks":        "340",
		"Amount spent (INR)": "₹2,325.00",
		"Results":            "21",
		"CTR (%)":            "2.72%",
		"CPC":                "$6.84",
	}
}

func TestNormalizeRowCoercion(t *testing.T) {
	row := NormalizeRow(sampleRawRow(), nil)

	assert.Equal(t, "Summer Sale", row.CampaignName)
	assert.Equal(t, "Prospecting IN", row.AdSetName)
	assert.Equal(t, "2023-01-05", row.Day)
	assert.Equal(t, "CONVERSIONS", row.Objective)
	assert.Equal(t, 12500.0, row.Impressions)
	assert.Equal(t, 340.0, row.LinkClicks)
	assert.Equal(t, 2325.0, row.AmountSpent)
	assert.Equal(t, 21.0, row.Results)
	assert.Equal(t, 2.72, row.CTR)
	assert.Equal(t, 6.84, row.CPC)
	assert.Nil(t, row.Extra)
}

func TestNormalizeRowEmptyAndUnparseableCells(t *testing.T) {
	raw := sampleRawRow()
	raw["Impressions"] = ""
	raw["Link clicks"] = "N/A"
	raw["Amount spent (INR)"] = "--"
	raw["Results"] = "not a number"

	row := NormalizeRow(raw, nil)
	assert.Equal(t, 0.0, row.Impressions)
	assert.Equal(t, 0.0, row.LinkClicks)
	assert.Equal(t, 0.0, row.AmountSpent)
	assert.Equal(t, 0.0, row.Results)
}

func TestNormalizeRowIsPure(t *testing.T) {
	raw := sampleRawRow()
	first := NormalizeRow(raw, nil)
	second := NormalizeRow(raw, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, " Summer Sale ", raw["Campaign name"], "input map must not be mutated")
}

func TestNormalizeRowCaseCollidingHeaders(t *testing.T) {
	raw := map[string]string{
		"Day": "2023-01-01",
		"day": "2023-02-02",
	}
	first := NormalizeRow(raw, nil)
	assert.Equal(t, "2023-01-01", first.Day, "sorted header order decides the winner")
	assert.Equal(t, map[string]string{"day": "2023-02-02"}, first.Extra)

	for i := 0; i < 20; i++ {
		assert.Equal(t, first, NormalizeRow(raw, nil))
	}
}

func TestNormalizeRowMappingRedirect(t *testing.T) {
	raw := map[string]string{
		"Campaign name": "Summer Sale",
		"Spend":         "1,150.50",
	}
	row := NormalizeRow(raw, map[string]string{"Amount spent (INR)": "Spend"})
	assert.Equal(t, 1150.5, row.AmountSpent)
	assert.Nil(t, row.Extra, "mapped headers are consumed, not extra")
}

func TestNormalizeRowExtraHeadersPreserved(t *testing.T) {
	raw := sampleRawRow()
	raw["Frequency"] = "1.27"
	raw["Blank column"] = "   "

	row := NormalizeRow(raw, nil)
	require.NotNil(t, row.Extra)
	assert.Equal(t, map[string]string{"Frequency": "1.27"}, row.Extra)
}

func TestNormalizeDateLayouts(t *testing.T) {
	cases := map[string]string{
		"2023-01-05":  "2023-01-05",
		"05-01-2023":  "2023-01-05",
		"01/05/2023":  "2023-01-05",
		"5 Jan 2023":  "2023-01-05",
		"2023/01/05":  "2023-01-05",
		"Jan 5, 2023": "2023-01-05",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDate(in), "input %q", in)
	}
}

func TestNormalizeDateInvalidFallsBackToToday(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, today, normalizeDate("yesterday"))
	assert.Equal(t, today, normalizeDate(""))
}

func TestParseNumericCell(t *testing.T) {
	cases := map[string]float64{
		"₹2,325.00": 2325,
		"2.72%":     2.72,
		"$6.84":     6.84,
		"€10":       10,
		"£1,000":    1000,
		"1 234":     1234,
		"0":         0,
		"-5.5":      -5.5,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseNumericCell(in), "input %q", in)
	}
}

func TestRecordsToRowsPadsAndTruncates(t *testing.T) {
	headers := []string{"Campaign name", "Day", "Impressions"}
	rows := recordsToRows(headers, [][]string{
		{"A", "2023-01-01", "100"},
		{"B", "2023-01-02"},
		{"C", "2023-01-03", "300", "surplus"},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[1]["Impressions"])
	assert.Equal(t, "300", rows[2]["Impressions"])
	assert.NotContains(t, rows[2], "surplus")
}
