package submitter

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage/sqlite"
)

type fakeCollector struct {
	records []domain.RawRecord
	err     error
}

func (f *fakeCollector) CollectRecords(_ context.Context, _, _ time.Time) ([]domain.RawRecord, error) {
	return f.records, f.err
}

type fakeSink struct {
	validateErr error
	failAt      int // 1-based, 0 never fails
	submitted   []domain.Submission
	validated   int
}

func (f *fakeSink) Validate(_ context.Context, subs []domain.Submission) error {
	f.validated = len(subs)
	return f.validateErr
}

func (f *fakeSink) Submit(_ context.Context, sub domain.Submission) error {
	if f.failAt == len(f.submitted)+1 {
		return apperrors.NewUpstreamError("rejected", nil)
	}
	f.submitted = append(f.submitted, sub)
	return nil
}

var window = domain.TimeRange{
	Start: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
}

func sampleRecords() []domain.RawRecord {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	return []domain.RawRecord{
		{Start: start, End: start.Add(15 * time.Minute), Customer: "acme", Activity: "development", Comment: "fix login"},
		{Start: start.Add(3 * time.Hour), End: start.Add(3*time.Hour + 20*time.Minute), Customer: "acme", Activity: "development", Comment: "review"},
		{Start: start.Add(time.Hour), End: start.Add(2 * time.Hour), Customer: "globex", Activity: "support", Comment: "call", Tags: []string{"billable"}},
	}
}

func newStore(t *testing.T) storage.Storage {
	t.Helper()
	s, err := sqlite.NewSQLiteStorage(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPreview(t *testing.T) {
	s := New(&fakeCollector{records: sampleRecords()}, nil, nil, nil)

	res, err := s.Preview(context.Background(), window)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 2, res.Entries)
	assert.Equal(t, "acme", res.Submissions[0].Customer)
	assert.Equal(t, 30, res.Submissions[0].Minutes)
	assert.Equal(t, "globex", res.Submissions[1].Customer)
	assert.Equal(t, 60, res.Submissions[1].Minutes)
}

func TestRunSubmitsAndJournals(t *testing.T) {
	sink := &fakeSink{}
	store := newStore(t)
	s := New(&fakeCollector{records: sampleRecords()}, sink, store, nil)
	ctx := context.Background()

	res, err := s.Run(ctx, window, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Submitted)
	assert.Len(t, sink.submitted, 2)
	require.NotEmpty(t, res.BatchID)

	batch, err := store.GetBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	assert.Equal(t, domain.BatchModeSubmit, batch.Mode)
	assert.Equal(t, 3, batch.RecordCount)
	assert.Equal(t, 2, batch.EntryCount)
	assert.Equal(t, 2, batch.SubmittedCount)

	lines, err := store.GetSubmissions(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, res.Submissions, lines)
}

func TestRunValidationFailureSubmitsNothing(t *testing.T) {
	sink := &fakeSink{validateErr: apperrors.NewValidationError([]string{"entry 1: comments may not be empty"})}
	store := newStore(t)
	s := New(&fakeCollector{records: sampleRecords()}, sink, store, nil)
	ctx := context.Background()

	res, err := s.Run(ctx, window, Options{})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 2, sink.validated)
	assert.Empty(t, sink.submitted)

	batch, err := store.GetBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusFailed, batch.Status)
	assert.Contains(t, batch.Error, "comments may not be empty")
}

func TestRunMalformedRecordRejectsBatch(t *testing.T) {
	records := sampleRecords()
	records[1].End = time.Time{}
	sink := &fakeSink{}
	s := New(&fakeCollector{records: records}, sink, nil, nil)

	_, err := s.Run(context.Background(), window, Options{})

	assert.True(t, apperrors.IsMalformedRecord(err))
	assert.Zero(t, sink.validated)
	assert.Empty(t, sink.submitted)
}

func TestRunStopsAtFirstSinkError(t *testing.T) {
	sink := &fakeSink{failAt: 2}
	store := newStore(t)
	s := New(&fakeCollector{records: sampleRecords()}, sink, store, nil)
	ctx := context.Background()

	res, err := s.Run(ctx, window, Options{})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstream, apperrors.CodeOf(err))
	assert.Equal(t, 1, res.Submitted)

	lines, err := store.GetSubmissions(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestRunDryRun(t *testing.T) {
	sink := &fakeSink{}
	store := newStore(t)
	s := New(&fakeCollector{records: sampleRecords()}, sink, store, nil)
	ctx := context.Background()

	res, err := s.Run(ctx, window, Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, 2, sink.validated)
	assert.Empty(t, sink.submitted)

	batch, err := store.GetBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchModeDryRun, batch.Mode)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
}

func TestRunCollectorError(t *testing.T) {
	s := New(&fakeCollector{err: errors.New("database locked")}, &fakeSink{}, nil, nil)

	_, err := s.Run(context.Background(), window, Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database locked")
}

func TestRunWithoutSink(t *testing.T) {
	s := New(&fakeCollector{}, nil, nil, nil)

	_, err := s.Run(context.Background(), window, Options{})

	assert.Error(t, err)
}
