package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records persister traffic in memory. failBatches marks
// WriteRows calls (1-based) that should fail.
type fakeStore struct {
	created     *UploadRecord
	updated     *UploadRecord
	batches     [][]CampaignRow
	failBatches map[int]bool
	createErr   error

	deletedUserID   string
	deletedUploadID string
	deleteResult    bool
	deleteErr       error
}

func (f *fakeStore) CreateUpload(_ context.Context, rec *UploadRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *rec
	f.created = &cp
	return nil
}

func (f *fakeStore) UpdateUpload(_ context.Context, rec *UploadRecord) error {
	cp := *rec
	f.updated = &cp
	return nil
}

func (f *fakeStore) WriteRows(_ context.Context, rows []CampaignRow) error {
	f.batches = append(f.batches, rows)
	if f.failBatches[len(f.batches)] {
		return fmt.Errorf("batch %d rejected", len(f.batches))
	}
	return nil
}

func (f *fakeStore) GetUpload(context.Context, string, string) (*UploadRecord, error) {
	return f.updated, nil
}

func (f *fakeStore) ListUploads(context.Context, string) ([]UploadRecord, error) {
	return nil, nil
}

func (f *fakeStore) DeleteUpload(_ context.Context, userID, uploadID string) (bool, error) {
	f.deletedUserID = userID
	f.deletedUploadID = uploadID
	return f.deleteResult, f.deleteErr
}

func (f *fakeStore) FetchRows(context.Context, string, string) ([]CampaignRow, error) {
	return nil, nil
}

func makeRows(n int) []CampaignRow {
	rows := make([]CampaignRow, n)
	for i := range rows {
		rows[i] = CampaignRow{CampaignName: fmt.Sprintf("c%d", i), Day: "2023-01-01"}
	}
	return rows
}

func TestIngestChunksAt400(t *testing.T) {
	store := &fakeStore{}
	rec, err := NewPersister(store).Ingest(context.Background(), makeRows(1000),
		UploadMeta{UserID: "u1", FileName: "big.csv", FileSize: 1 << 20})
	require.NoError(t, err)

	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[0], 400)
	assert.Len(t, store.batches[1], 400)
	assert.Len(t, store.batches[2], 200)

	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, 1000, rec.RecordCount)
	assert.Equal(t, 0, rec.FailedRecordCount)
	assert.Nil(t, rec.ErrorMessage)
}

func TestIngestStampsRowIdentity(t *testing.T) {
	store := &fakeStore{}
	rec, err := NewPersister(store).Ingest(context.Background(), makeRows(3),
		UploadMeta{UserID: "u1", FileName: "small.csv"})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, row := range store.batches[0] {
		assert.Equal(t, rec.UploadID, row.UploadID)
		assert.Equal(t, "u1", row.UserID)
		assert.NotEmpty(t, row.RowID)
		assert.False(t, seen[row.RowID], "row ids must be unique")
		seen[row.RowID] = true
	}
}

func TestIngestZeroRowsFails(t *testing.T) {
	store := &fakeStore{}
	rec, err := NewPersister(store).Ingest(context.Background(), nil,
		UploadMeta{UserID: "u1", FileName: "empty.csv"})
	require.NoError(t, err)

	assert.Empty(t, store.batches)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, 0, rec.RecordCount)
	require.NotNil(t, rec.ErrorMessage)
	assert.Equal(t, "no data rows found in file", *rec.ErrorMessage)
	require.NotNil(t, store.updated)
	assert.Equal(t, StatusFailed, store.updated.Status)
}

func TestIngestPartialBatchFailure(t *testing.T) {
	store := &fakeStore{failBatches: map[int]bool{2: true}}
	rec, err := NewPersister(store).Ingest(context.Background(), makeRows(900),
		UploadMeta{UserID: "u1", FileName: "flaky.csv"})
	require.NoError(t, err)

	require.Len(t, store.batches, 3, "a failed batch must not stop later batches")
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, 500, rec.RecordCount)
	assert.Equal(t, 400, rec.FailedRecordCount)
	require.NotNil(t, rec.ErrorMessage)
	assert.Equal(t, "400 of 900 rows failed to persist", *rec.ErrorMessage)
}

func TestIngestCreateFailureAborts(t *testing.T) {
	store := &fakeStore{createErr: errors.New("db down")}
	rec, err := NewPersister(store).Ingest(context.Background(), makeRows(10),
		UploadMeta{UserID: "u1", FileName: "doomed.csv"})
	assert.Error(t, err)
	assert.Nil(t, rec)
	assert.Empty(t, store.batches)
}

func TestIngestDateRange(t *testing.T) {
	rows := makeRows(3)
	rows[0].Day = "2023-01-01"
	rows[1].Day = "2023-01-03"
	rows[2].Day = "2023-01-02"

	store := &fakeStore{}
	rec, err := NewPersister(store).Ingest(context.Background(), rows,
		UploadMeta{UserID: "u1", FileName: "range.csv"})
	require.NoError(t, err)
	require.NotNil(t, rec.DateRange)
	assert.Equal(t, "2023-01-01", rec.DateRange.Start)
	assert.Equal(t, "2023-01-03", rec.DateRange.End)
}

func TestComputeDateRangeSkipsEmptyDays(t *testing.T) {
	rows := []CampaignRow{{Day: ""}, {Day: "2023-02-10"}, {Day: ""}}
	r := computeDateRange(rows)
	require.NotNil(t, r)
	assert.Equal(t, "2023-02-10", r.Start)
	assert.Equal(t, "2023-02-10", r.End)

	assert.Nil(t, computeDateRange([]CampaignRow{{Day: ""}}))
}

func TestIngestProgressReachesHundred(t *testing.T) {
	store := &fakeStore{}
	p := NewPersister(store)

	var percents []int
	p.OnProgress(func(stage string, percent int) {
		assert.Equal(t, "persist", stage)
		percents = append(percents, percent)
	})

	_, err := p.Ingest(context.Background(), makeRows(1000), UploadMeta{UserID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, percents)
	assert.Equal(t, 0, percents[0])
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestChunkRows(t *testing.T) {
	assert.Nil(t, chunkRows(nil, 400))
	chunks := chunkRows(makeRows(400), 400)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 400)

	chunks = chunkRows(makeRows(401), 400)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[1], 1)
}
