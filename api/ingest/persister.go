package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// maxBatchOps caps one store commit. 400 sits safely under the
// underlying store's hard batch ceiling; it is not a tunable knob.
const maxBatchOps = 400

type UploadStatus string

const (
	StatusProcessing UploadStatus = "processing"
	StatusCompleted  UploadStatus = "completed"
	StatusFailed     UploadStatus = "failed"
)

// DateRange is the min/max of the row-level Day field, computed once at
// ingestion. Days are normalized YYYY-MM-DD strings, so comparison is
// plain lexicographic.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UploadRecord tracks one ingestion attempt. Status only moves forward:
// processing -> completed or processing -> failed.
type UploadRecord struct {
	UploadID          string       `json:"upload_id"`
	UserID            string       `json:"user_id"`
	FileName          string       `json:"file_name"`
	FileSize          int64        `json:"file_size"`
	UploadedAt        time.Time    `json:"uploaded_at"`
	Status            UploadStatus `json:"status"`
	RecordCount       int          `json:"record_count"`
	FailedRecordCount int          `json:"failed_record_count"`
	DateRange         *DateRange   `json:"date_range,omitempty"`
	ErrorMessage      *string      `json:"error_message,omitempty"`
}

// UploadMeta carries the caller-supplied upload attributes.
type UploadMeta struct {
	UserID   string
	FileName string
	FileSize int64
}

// UploadStore is the document-store boundary the persister writes
// through. WriteRows commits one batch atomically; each call is one
// commit.
type UploadStore interface {
	CreateUpload(ctx context.Context, rec *UploadRecord) error
	UpdateUpload(ctx context.Context, rec *UploadRecord) error
	GetUpload(ctx context.Context, userID, uploadID string) (*UploadRecord, error)
	ListUploads(ctx context.Context, userID string) ([]UploadRecord, error)
	DeleteUpload(ctx context.Context, userID, uploadID string) (bool, error)
	WriteRows(ctx context.Context, rows []CampaignRow) error
	FetchRows(ctx context.Context, userID, uploadID string) ([]CampaignRow, error)
}

// ProgressFunc receives pipeline progress as 0-100 percent per stage.
type ProgressFunc func(stage string, percent int)

// Persister runs the persistence stage of the pipeline: create the
// upload record, commit rows in bounded sequential batches, settle the
// final status.
type Persister struct {
	store    UploadStore
	progress ProgressFunc
}

func NewPersister(store UploadStore) *Persister {
	return &Persister{store: store}
}

// OnProgress registers a progress callback. Optional.
func (p *Persister) OnProgress(fn ProgressFunc) {
	p.progress = fn
}

func (p *Persister) emit(stage string, percent int) {
	if p.progress != nil {
		p.progress(stage, percent)
	}
}

// Ingest persists the normalized rows under a new UploadRecord and
// returns the settled record. Batch commits are strictly sequential; a
// failed commit is logged, counted, and the pipeline continues with the
// next batch. Only a store failure before any row is persisted aborts.
func (p *Persister) Ingest(ctx context.Context, rows []CampaignRow, meta UploadMeta) (*UploadRecord, error) {
	rec := &UploadRecord{
		UploadID:   uuid.New().String(),
		UserID:     meta.UserID,
		FileName:   meta.FileName,
		FileSize:   meta.FileSize,
		UploadedAt: time.Now(),
		Status:     StatusProcessing,
		DateRange:  computeDateRange(rows),
	}
	if err := p.store.CreateUpload(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create upload record: %w", err)
	}

	if len(rows) == 0 {
		return p.settle(ctx, rec, 0, 0, "no data rows found in file")
	}

	now := time.Now()
	for i := range rows {
		rows[i].RowID = uuid.New().String()
		rows[i].UploadID = rec.UploadID
		rows[i].UserID = meta.UserID
		rows[i].CreatedAt = now
	}

	chunks := chunkRows(rows, maxBatchOps)
	p.emit("persist", 0)

	committed, failed := 0, 0
	for i, chunk := range chunks {
		if err := p.store.WriteRows(ctx, chunk); err != nil {
			failed += len(chunk)
			log.Printf("[ERROR] upload %s: batch %d/%d failed (%d rows): %v",
				rec.UploadID, i+1, len(chunks), len(chunk), err)
		} else {
			committed += len(chunk)
		}
		p.emit("persist", (i+1)*100/len(chunks))
	}

	errMsg := ""
	if failed > 0 {
		errMsg = fmt.Sprintf("%d of %d rows failed to persist", failed, committed+failed)
	}
	return p.settle(ctx, rec, committed, failed, errMsg)
}

// settle writes the final state of the upload record. Completed only
// when at least one row committed and none failed; anything else is a
// failure with an explanation, never a silently lost upload.
func (p *Persister) settle(ctx context.Context, rec *UploadRecord, committed, failed int, errMsg string) (*UploadRecord, error) {
	rec.RecordCount = committed
	rec.FailedRecordCount = failed
	if committed > 0 && failed == 0 {
		rec.Status = StatusCompleted
	} else {
		rec.Status = StatusFailed
		if errMsg == "" {
			errMsg = "upload failed"
		}
		rec.ErrorMessage = &errMsg
	}
	if err := p.store.UpdateUpload(ctx, rec); err != nil {
		return rec, fmt.Errorf("failed to finalize upload record %s: %w", rec.UploadID, err)
	}
	return rec, nil
}

// chunkRows splits rows into batches of at most size rows, preserving order.
func chunkRows(rows []CampaignRow, size int) [][]CampaignRow {
	if len(rows) == 0 {
		return nil
	}
	chunks := make([][]CampaignRow, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// computeDateRange returns the lexicographic min/max of the rows' Day
// fields, or nil when no row carries a date.
func computeDateRange(rows []CampaignRow) *DateRange {
	var r *DateRange
	for _, row := range rows {
		if row.Day == "" {
			continue
		}
		if r == nil {
			r = &DateRange{Start: row.Day, End: row.Day}
			continue
		}
		if row.Day < r.Start {
			r.Start = row.Day
		}
		if row.Day > r.End {
			r.End = row.Day
		}
	}
	return r
}
