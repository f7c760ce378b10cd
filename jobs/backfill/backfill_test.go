package backfill

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gymcrowd/core/history"
	coremetrics "github.com/kilianp07/gymcrowd/core/metrics"
	"github.com/kilianp07/gymcrowd/core/model"
)

type recordingSink struct {
	preds    []coremetrics.PredictionRecord
	failures []coremetrics.FailureRecord
	err      error
}

func (s *recordingSink) RecordPrediction(r coremetrics.PredictionRecord) error {
	if s.err != nil {
		return s.err
	}
	s.preds = append(s.preds, r)
	return nil
}

func (s *recordingSink) RecordFailure(r coremetrics.FailureRecord) error {
	s.failures = append(s.failures, r)
	return nil
}

type predictionsOnly struct{ n int }

func (s *predictionsOnly) RecordPrediction(coremetrics.PredictionRecord) error {
	s.n++
	return nil
}

func seed(t *testing.T) history.Store {
	t.Helper()
	store, err := history.NewJSONLStore(filepath.Join(t.TempDir(), "h.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	base := time.Date(2026, 9, 16, 17, 0, 0, 0, time.UTC)
	in := model.RawInput{Hour: 17, Day: "Wednesday", Month: "September", Temperature: 70, SemesterStatus: model.SemesterDuring}
	recs := []history.Record{
		{ID: "a", Timestamp: base, Input: in, Raw: 64.2, Result: model.PredictionResult{Count: 64, Status: model.StatusCrowded}, ModelState: "ready"},
		{ID: "b", Timestamp: base.Add(time.Minute), Input: in, ModelState: "ready", Error: "invalid_input: invalid input: unrecognized day \"Funday\"", ErrorField: "day"},
		{ID: "c", Timestamp: base.Add(2 * time.Minute), Input: in, Result: model.PredictionResult{Count: 0, Status: model.StatusEmpty, Degraded: true}, ModelState: "degraded"},
	}
	for _, r := range recs {
		require.NoError(t, store.Append(context.Background(), r))
	}
	return store
}

func TestBackfill(t *testing.T) {
	store := seed(t)
	sink := &recordingSink{}
	st, err := Backfill(context.Background(), store, history.Query{}, sink)
	require.NoError(t, err)
	assert.Equal(t, Stats{Predictions: 2, Failures: 1}, st)

	require.Len(t, sink.preds, 2)
	assert.Equal(t, 64, sink.preds[0].Count)
	assert.Equal(t, "Crowded", sink.preds[0].Status)
	assert.Equal(t, 64.2, sink.preds[0].Raw)
	assert.Equal(t, "Wednesday", sink.preds[0].Day)
	assert.Equal(t, "degraded", sink.preds[1].ModelState)

	require.Len(t, sink.failures, 1)
	assert.Equal(t, "invalid_input", sink.failures[0].Kind)
	assert.Equal(t, "day", sink.failures[0].Field)
}

func TestBackfillSkipsFailuresWithoutRecorder(t *testing.T) {
	sink := &predictionsOnly{}
	st, err := Backfill(context.Background(), seed(t), history.Query{}, sink)
	require.NoError(t, err)
	assert.Equal(t, Stats{Predictions: 2, Skipped: 1}, st)
	assert.Equal(t, 2, sink.n)
}

func TestBackfillHonoursQuery(t *testing.T) {
	sink := &recordingSink{}
	st, err := Backfill(context.Background(), seed(t), history.Query{DegradedOnly: true}, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Predictions)
	assert.Empty(t, sink.failures)
}

func TestBackfillStopsOnSinkError(t *testing.T) {
	boom := errors.New("write refused")
	_, err := Backfill(context.Background(), seed(t), history.Query{}, &recordingSink{err: boom})
	assert.ErrorIs(t, err, boom)
}
