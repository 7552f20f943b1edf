package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machina/internal/domain/efficiency"
	"machina/pkg/errors"
	"machina/pkg/logger"
)

// stubRepository records the query it received and returns fixed rows
type stubRepository struct {
	records   []efficiency.PredictionRecord
	err       error
	gotLimit  int
	gotSince  time.Time
	sinceUsed bool
}

func (s *stubRepository) Store(ctx context.Context, record *efficiency.PredictionRecord) error {
	return nil
}

func (s *stubRepository) GetRecent(ctx context.Context, limit int) ([]efficiency.PredictionRecord, error) {
	s.gotLimit = limit
	return s.records, s.err
}

func (s *stubRepository) GetHistory(ctx context.Context, since time.Time) ([]efficiency.PredictionRecord, error) {
	s.sinceUsed = true
	s.gotSince = since
	return s.records, s.err
}

func sampleRows() []efficiency.PredictionRecord {
	return []efficiency.PredictionRecord{
		{
			RequestID:  "req-2",
			Timestamp:  time.Date(2026, 8, 30, 12, 1, 0, 0, time.UTC),
			Label:      "Medium",
			LabelIndex: 2,
		},
		{
			RequestID:  "req-1",
			Timestamp:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			Label:      "High",
			LabelIndex: 0,
		},
	}
}

func doGet(t *testing.T, handler *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.HandlePredictions(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandlePredictions_Recent(t *testing.T) {
	repo := &stubRepository{records: sampleRows()}
	handler := New(repo, logger.Get())

	rec := doGet(t, handler, "/predictions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "req-2", resp.Predictions[0].RequestID)
	assert.Equal(t, defaultLimit, repo.gotLimit)
	assert.False(t, repo.sinceUsed)
}

func TestHandlePredictions_LimitParam(t *testing.T) {
	repo := &stubRepository{}
	handler := New(repo, logger.Get())

	rec := doGet(t, handler, "/predictions?limit=25")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, repo.gotLimit)

	rec = doGet(t, handler, "/predictions?limit=5000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxLimit, repo.gotLimit, "limit must be capped")
}

func TestHandlePredictions_Since(t *testing.T) {
	repo := &stubRepository{records: sampleRows()}
	handler := New(repo, logger.Get())

	rec := doGet(t, handler, "/predictions?since=2026-08-30T12:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)

	require.True(t, repo.sinceUsed)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), repo.gotSince)
}

func TestHandlePredictions_BadParams(t *testing.T) {
	handler := New(&stubRepository{}, logger.Get())

	for _, target := range []string{
		"/predictions?limit=abc",
		"/predictions?limit=0",
		"/predictions?limit=-5",
		"/predictions?since=yesterday",
	} {
		rec := doGet(t, handler, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHandlePredictions_EmptyStore(t *testing.T) {
	handler := New(&stubRepository{}, logger.Get())

	rec := doGet(t, handler, "/predictions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Predictions, "empty store must serialize as [], not null")
}

func TestHandlePredictions_RepositoryFailure(t *testing.T) {
	repo := &stubRepository{err: errors.New("connection refused")}
	handler := New(repo, logger.Get())

	rec := doGet(t, handler, "/predictions")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlePredictions_MethodNotAllowed(t *testing.T) {
	handler := New(&stubRepository{}, logger.Get())

	rec := httptest.NewRecorder()
	handler.HandlePredictions(rec, httptest.NewRequest(http.MethodPost, "/predictions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
