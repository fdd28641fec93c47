package ingest

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"AdPulseAnalytics/api/constants"
)

// CampaignRow is the canonical, fixed-shape record every CSV row is
// normalized into. Numeric fields default to 0 and text fields to ""
// when the source cell is empty or unparseable; a row is never rejected
// for a bad cell. Headers outside the canonical registry are preserved
// in Extra.
type CampaignRow struct {
	RowID         string            `json:"row_id"`
	UploadID      string            `json:"upload_id"`
	UserID        string            `json:"user_id"`
	CampaignName  string            `json:"campaign_name"`
	AdSetName     string            `json:"ad_set_name"`
	Day           string            `json:"day"` // YYYY-MM-DD
	Objective     string            `json:"objective"`
	Impressions   float64           `json:"impressions"`
	LinkClicks    float64           `json:"link_clicks"`
	AmountSpent   float64           `json:"amount_spent"`
	Results       float64           `json:"results"`
	CostPerResult float64           `json:"cost_per_result"`
	CTR           float64           `json:"ctr"`
	CPC           float64           `json:"cpc"`
	Purchases     float64           `json:"purchases"`
	PurchaseValue float64           `json:"purchase_value"`
	PurchaseROAS  float64           `json:"purchase_roas"`
	Reach         float64           `json:"reach"`
	Extra         map[string]string `json:"extra,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

var dateLayouts = []string{
	constants.DateFormat,
	constants.DateFormatAlt,
	"01/02/2006",
	"2 Jan 2006",
	"2006/01/02",
	"Jan 2, 2006",
}

// NormalizeRow maps one raw row (header -> raw cell) to a CampaignRow.
// Lookup order per canonical column: direct header match, then the
// resolved mapping table, then absent. Pure except for the documented
// invalid-date fallback to today.
func NormalizeRow(row map[string]string, mapping map[string]string) CampaignRow {
	out := CampaignRow{Extra: map[string]string{}}
	consumed := make(map[string]bool, len(CanonicalColumns))

	// Sorted header order keeps resolution deterministic when two
	// headers differ only in case.
	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	for _, col := range CanonicalColumns {
		raw, srcHeader := resolveCell(row, headers, mapping, col.Name)
		if srcHeader != "" {
			consumed[srcHeader] = true
		}
		switch col.Kind {
		case KindText:
			setTextField(&out, col.Name, strings.TrimSpace(raw))
		case KindDate:
			out.Day = normalizeDate(raw)
		default:
			setNumericField(&out, col.Name, parseNumericCell(raw))
		}
	}

	for header, val := range row {
		if !consumed[header] && strings.TrimSpace(val) != "" {
			out.Extra[strings.TrimSpace(header)] = strings.TrimSpace(val)
		}
	}
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	return out
}

// resolveCell finds the source cell for a canonical column and reports
// which header supplied it. Headers are scanned in the caller's sorted
// order; the first case-insensitive match wins.
func resolveCell(row map[string]string, headers []string, mapping map[string]string, canonical string) (string, string) {
	for _, header := range headers {
		if strings.EqualFold(strings.TrimSpace(header), canonical) {
			return row[header], header
		}
	}
	if src, ok := mapping[canonical]; ok {
		for _, header := range headers {
			if strings.EqualFold(strings.TrimSpace(header), strings.TrimSpace(src)) {
				return row[header], header
			}
		}
	}
	return "", ""
}

var numericStripper = strings.NewReplacer(
	",", "",
	"%", "",
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	" ", "",
)

// parseNumericCell coerces a raw cell to a float. Empty, "N/A" and
// unparseable cells all resolve to 0.
func parseNumericCell(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "N/A") || s == "-" || s == "--" {
		return 0
	}
	s = numericStripper.Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// normalizeDate parses a calendar date against the accepted layouts and
// renders it as YYYY-MM-DD so date ranges compare lexicographically.
// Invalid input falls back to today (lossy, documented).
func normalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(constants.DateFormat)
		}
	}
	return time.Now().Format(constants.DateFormat)
}

func setTextField(r *CampaignRow, canonical, val string) {
	switch canonical {
	case "Campaign name":
		r.CampaignName = val
	case "Ad set name":
		r.AdSetName = val
	case "Objective":
		r.Objective = val
	}
}

func setNumericField(r *CampaignRow, canonical string, val float64) {
	switch canonical {
	case "Impressions":
		r.Impressions = val
	case "Link clicks":
		r.LinkClicks = val
	case "Amount spent (INR)":
		r.AmountSpent = val
	case "Results":
		r.Results = val
	case "Cost per result":
		r.CostPerResult = val
	case "CTR (%)":
		r.CTR = val
	case "CPC":
		r.CPC = val
	case "Purchases":
		r.Purchases = val
	case "Purchases conversion value":
		r.PurchaseValue = val
	case "Purchase ROAS":
		r.PurchaseROAS = val
	case "Reach":
		r.Reach = val
	}
}
