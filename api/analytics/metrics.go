package analytics

import (
	"context"
	"encoding/json"
	"math"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AdPulseAnalytics/api"
	"AdPulseAnalytics/api/constants"
)

// MetricTotals are the summed raw measures for a slice of rows.
type MetricTotals struct {
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Purchases   float64 `json:"purchases"`
	Results     float64 `json:"results"`
}

// DerivedMetrics are the chart-facing ratios computed from totals.
// Ratios with a zero denominator resolve to 0, never NaN or Inf.
type DerivedMetrics struct {
	ROAS float64 `json:"roas"`
	CTR  float64 `json:"ctr"`  // percent
	CVR  float64 `json:"cvr"`  // percent
	CPC  float64 `json:"cpc"`
	CPM  float64 `json:"cpm"`
}

// Derive computes the ratio metrics from raw totals.
func Derive(t MetricTotals) DerivedMetrics {
	return DerivedMetrics{
		ROAS: safeDiv(t.Revenue, t.Spend),
		CTR:  safeDiv(t.Clicks, t.Impressions) * 100,
		CVR:  safeDiv(t.Purchases, t.Clicks) * 100,
		CPC:  safeDiv(t.Spend, t.Clicks),
		CPM:  safeDiv(t.Spend, t.Impressions) * 1000,
	}
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

type rangeRequest struct {
	UserID string `json:"user_id"`
	From   string `json:"from"` // YYYY-MM-DD, inclusive
	To     string `json:"to"`   // YYYY-MM-DD, inclusive
}

// rangeFilter builds the WHERE tail and args shared by the aggregation
// queries. Days are normalized YYYY-MM-DD text, so range comparison is
// lexicographic in SQL too.
func rangeFilter(req rangeRequest) (string, []interface{}) {
	clause := `WHERE user_id = $1`
	args := []interface{}{req.UserID}
	if req.From != "" {
		args = append(args, req.From)
		clause += ` AND day >= $2`
	}
	if req.To != "" {
		args = append(args, req.To)
		if req.From != "" {
			clause += ` AND day <= $3`
		} else {
			clause += ` AND day <= $2`
		}
	}
	return clause, args
}

// Summary returns totals plus derived metrics over the date range.
func Summary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req rangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		req.UserID = api.GetUserIDFromCtx(ctx)

		clause, args := rangeFilter(req)
		var t MetricTotals
		err := pool.QueryRow(ctx, `
			SELECT COALESCE(SUM(amount_spent), 0),
				COALESCE(SUM(purchase_value), 0),
				COALESCE(SUM(impressions), 0),
				COALESCE(SUM(link_clicks), 0),
				COALESCE(SUM(purchases), 0),
				COALESCE(SUM(results), 0)
			FROM campaign_rows `+clause, args...,
		).Scan(&t.Spend, &t.Revenue, &t.Impressions, &t.Clicks, &t.Purchases, &t.Results)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"totals":  t,
			"derived": Derive(t),
		})
	}
}

// DailyPoint is one chart point in the per-day series.
type DailyPoint struct {
	Day     string         `json:"day"`
	Totals  MetricTotals   `json:"totals"`
	Derived DerivedMetrics `json:"derived"`
}

// Daily returns the per-day series over the date range, ordered by day.
func Daily(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req rangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		req.UserID = api.GetUserIDFromCtx(ctx)

		points, err := queryGrouped(ctx, pool, req, "day")
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", points)
	}
}

// Campaigns returns the per-campaign rollup over the date range.
func Campaigns(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req rangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		req.UserID = api.GetUserIDFromCtx(ctx)

		points, err := queryGrouped(ctx, pool, req, "campaign_name")
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", points)
	}
}

// queryGrouped aggregates raw measures grouped by the given column.
// groupCol is compile-time constant at every call site, never user input.
func queryGrouped(ctx context.Context, pool *pgxpool.Pool, req rangeRequest, groupCol string) ([]DailyPoint, error) {
	clause, args := rangeFilter(req)
	rows, err := pool.Query(ctx, `
		SELECT `+groupCol+`,
			COALESCE(SUM(amount_spent), 0),
			COALESCE(SUM(purchase_value), 0),
			COALESCE(SUM(impressions), 0),
			COALESCE(SUM(link_clicks), 0),
			COALESCE(SUM(purchases), 0),
			COALESCE(SUM(results), 0)
		FROM campaign_rows `+clause+`
		GROUP BY `+groupCol+`
		ORDER BY `+groupCol, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]DailyPoint, 0)
	for rows.Next() {
		var p DailyPoint
		if err := rows.Scan(&p.Day, &p.Totals.Spend, &p.Totals.Revenue, &p.Totals.Impressions,
			&p.Totals.Clicks, &p.Totals.Purchases, &p.Totals.Results); err != nil {
			return nil, err
		}
		p.Derived = Derive(p.Totals)
		points = append(points, p)
	}
	return points, rows.Err()
}
