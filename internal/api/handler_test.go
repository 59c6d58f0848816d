package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	"github.com/kurihiro0119/hamster-timesheets/internal/logger"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage/sqlite"
	"github.com/kurihiro0119/hamster-timesheets/internal/submitter"
)

type staticCollector struct {
	records []domain.RawRecord
}

func (s staticCollector) CollectRecords(_ context.Context, start, end time.Time) ([]domain.RawRecord, error) {
	var out []domain.RawRecord
	for _, r := range s.records {
		if !r.Start.Before(start) && r.End.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type acceptingSink struct {
	submitted int
}

func (a *acceptingSink) Validate(context.Context, []domain.Submission) error { return nil }

func (a *acceptingSink) Submit(context.Context, domain.Submission) error {
	a.submitted++
	return nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setup(t *testing.T, records []domain.RawRecord) (*gin.Engine, storage.Storage, *acceptingSink) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.NewSQLiteStorage(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sink := &acceptingSink{}
	sub := submitter.New(staticCollector{records: records}, sink, store, logger.Nop())
	h := NewHandler(sub, store)
	h.now = func() time.Time { return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC) }
	return SetupRoutes(h, logger.Nop()), store, sink
}

func do(t *testing.T, router *gin.Engine, method, target string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func sample() []domain.RawRecord {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	return []domain.RawRecord{
		{Start: start, End: start.Add(15 * time.Minute), Customer: "acme", Activity: "development", Comment: "fix login"},
		{Start: start.Add(3 * time.Hour), End: start.Add(3*time.Hour + 20*time.Minute), Customer: "acme", Activity: "development", Comment: "review"},
	}
}

func TestHealthCheck(t *testing.T) {
	router, _, _ := setup(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPreviewTimesheet(t *testing.T) {
	router, _, _ := setup(t, sample())

	code, env := do(t, router, http.MethodGet, "/api/v1/timesheets/preview?start=2024-03-04&end=2024-03-05")
	require.Equal(t, http.StatusOK, code)

	var subs []domain.Submission
	require.NoError(t, json.Unmarshal(env.Data, &subs))
	require.Len(t, subs, 1)
	assert.Equal(t, "fix login; review", subs[0].Comments)
	assert.Equal(t, 30, subs[0].Minutes)
	assert.Equal(t, "03/04/2024 09:35:00", subs[0].EndTime)
}

func TestPreviewTimesheetEmptyWindow(t *testing.T) {
	router, _, _ := setup(t, sample())

	code, env := do(t, router, http.MethodGet, "/api/v1/timesheets/preview?start=2024-02-01&end=2024-02-02")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestPreviewTimesheetMalformed(t *testing.T) {
	records := sample()
	records[1].End = records[1].Start.Add(-time.Minute)
	router, _, _ := setup(t, records)

	code, env := do(t, router, http.MethodGet, "/api/v1/timesheets/preview?start=2024-03-04&end=2024-03-05")

	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MALFORMED_RECORD", env.Error.Code)
}

func TestPreviewTimesheetBadWindow(t *testing.T) {
	router, _, _ := setup(t, nil)

	code, env := do(t, router, http.MethodGet, "/api/v1/timesheets/preview?start=yesterday")

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestSubmitAndReadBatch(t *testing.T) {
	router, _, sink := setup(t, sample())

	code, env := do(t, router, http.MethodPost, "/api/v1/timesheets/submit?start=2024-03-04&end=2024-03-05")
	require.Equal(t, http.StatusOK, code)
	var result submitter.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Submitted)
	assert.Equal(t, 1, sink.submitted)

	code, env = do(t, router, http.MethodGet, "/api/v1/batches")
	require.Equal(t, http.StatusOK, code)
	var batches []domain.SubmissionBatch
	require.NoError(t, json.Unmarshal(env.Data, &batches))
	require.Len(t, batches, 1)
	assert.Equal(t, result.BatchID, batches[0].ID)

	code, env = do(t, router, http.MethodGet, "/api/v1/batches/"+result.BatchID)
	require.Equal(t, http.StatusOK, code)
	var detail BatchDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, domain.BatchStatusCompleted, detail.Batch.Status)
	assert.Len(t, detail.Submissions, 1)
}

func TestSubmitDryRun(t *testing.T) {
	router, _, sink := setup(t, sample())

	code, env := do(t, router, http.MethodPost, "/api/v1/timesheets/submit?start=2024-03-04&end=2024-03-05&dry_run=true")
	require.Equal(t, http.StatusOK, code)

	var result submitter.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.DryRun)
	assert.Zero(t, sink.submitted)
}

func TestGetBatchNotFound(t *testing.T) {
	router, _, _ := setup(t, nil)

	code, env := do(t, router, http.MethodGet, "/api/v1/batches/does-not-exist")

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
