package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgUploadStore is the Postgres-backed UploadStore. Uploads live in
// campaign_uploads, row records in campaign_rows keyed by upload_id.
type PgUploadStore struct {
	pool *pgxpool.Pool
}

func NewPgUploadStore(pool *pgxpool.Pool) *PgUploadStore {
	return &PgUploadStore{pool: pool}
}

func (s *PgUploadStore) CreateUpload(ctx context.Context, rec *UploadRecord) error {
	var start, end *string
	if rec.DateRange != nil {
		start, end = &rec.DateRange.Start, &rec.DateRange.End
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO campaign_uploads
		(upload_id, user_id, file_name, file_size, uploaded_at, status, record_count, failed_record_count, range_start, range_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.UploadID, rec.UserID, rec.FileName, rec.FileSize, rec.UploadedAt,
		string(rec.Status), rec.RecordCount, rec.FailedRecordCount, start, end)
	return err
}

func (s *PgUploadStore) UpdateUpload(ctx context.Context, rec *UploadRecord) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE campaign_uploads
		SET status = $1, record_count = $2, failed_record_count = $3, error_message = $4
		WHERE upload_id = $5 AND user_id = $6`,
		string(rec.Status), rec.RecordCount, rec.FailedRecordCount, rec.ErrorMessage,
		rec.UploadID, rec.UserID)
	return err
}

const uploadColumns = `upload_id, user_id, file_name, file_size, uploaded_at, status,
	record_count, failed_record_count, range_start, range_end, error_message`

func scanUpload(row pgx.Row) (*UploadRecord, error) {
	var rec UploadRecord
	var status string
	var start, end *string
	if err := row.Scan(&rec.UploadID, &rec.UserID, &rec.FileName, &rec.FileSize,
		&rec.UploadedAt, &status, &rec.RecordCount, &rec.FailedRecordCount,
		&start, &end, &rec.ErrorMessage); err != nil {
		return nil, err
	}
	rec.Status = UploadStatus(status)
	if start != nil && end != nil {
		rec.DateRange = &DateRange{Start: *start, End: *end}
	}
	return &rec, nil
}

func (s *PgUploadStore) GetUpload(ctx context.Context, userID, uploadID string) (*UploadRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+uploadColumns+` FROM campaign_uploads WHERE upload_id = $1 AND user_id = $2`,
		uploadID, userID)
	return scanUpload(row)
}

func (s *PgUploadStore) ListUploads(ctx context.Context, userID string) ([]UploadRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+uploadColumns+` FROM campaign_uploads WHERE user_id = $1 ORDER BY uploaded_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UploadRecord, 0)
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// DeleteUpload removes the upload and all of its rows in one
// transaction, rows first so no orphan can survive a partial failure.
// Returns false when the upload does not exist for this user.
func (s *PgUploadStore) DeleteUpload(ctx context.Context, userID, uploadID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM campaign_rows WHERE upload_id = $1 AND user_id = $2`,
		uploadID, userID); err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx,
		`DELETE FROM campaign_uploads WHERE upload_id = $1 AND user_id = $2`,
		uploadID, userID)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// WriteRows commits one batch of row records. All inserts are queued on
// a single pgx.Batch and sent in one round trip; any per-row error fails
// the whole batch so the persister can account for it.
func (s *PgUploadStore) WriteRows(ctx context.Context, rows []CampaignRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO campaign_rows
		(row_id, upload_id, user_id, campaign_name, ad_set_name, day, objective,
		impressions, link_clicks, amount_spent, results, cost_per_result, ctr, cpc,
		purchases, purchase_value, purchase_roas, reach, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	for _, r := range rows {
		var extra []byte
		if len(r.Extra) > 0 {
			extra, _ = json.Marshal(r.Extra)
		}
		batch.Queue(query, r.RowID, r.UploadID, r.UserID, r.CampaignName, r.AdSetName,
			r.Day, r.Objective, r.Impressions, r.LinkClicks, r.AmountSpent, r.Results,
			r.CostPerResult, r.CTR, r.CPC, r.Purchases, r.PurchaseValue, r.PurchaseROAS,
			r.Reach, extra, r.CreatedAt)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	var errs []string
	for i := 0; i < len(rows); i++ {
		if _, err := br.Exec(); err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("batch insert failed for %d of %d rows: %s",
			len(errs), len(rows), strings.Join(errs, "; "))
	}
	return nil
}

func (s *PgUploadStore) FetchRows(ctx context.Context, userID, uploadID string) ([]CampaignRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT row_id, upload_id, user_id, campaign_name, ad_set_name, day, objective,
			impressions, link_clicks, amount_spent, results, cost_per_result, ctr, cpc,
			purchases, purchase_value, purchase_roas, reach, extra, created_at
		FROM campaign_rows
		WHERE upload_id = $1 AND user_id = $2
		ORDER BY day, campaign_name`,
		uploadID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CampaignRow, 0)
	for rows.Next() {
		var r CampaignRow
		var extra []byte
		if err := rows.Scan(&r.RowID, &r.UploadID, &r.UserID, &r.CampaignName, &r.AdSetName,
			&r.Day, &r.Objective, &r.Impressions, &r.LinkClicks, &r.AmountSpent, &r.Results,
			&r.CostPerResult, &r.CTR, &r.CPC, &r.Purchases, &r.PurchaseValue, &r.PurchaseROAS,
			&r.Reach, &extra, &r.CreatedAt); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			_ = json.Unmarshal(extra, &r.Extra)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
