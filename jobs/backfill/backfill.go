// Package backfill replays stored prediction history into metrics sinks,
// for example to populate a freshly provisioned InfluxDB bucket.
package backfill

import (
	"context"
	"strings"

	"github.com/kilianp07/gymcrowd/core/history"
	coremetrics "github.com/kilianp07/gymcrowd/core/metrics"
)

// Stats counts what a backfill wrote.
type Stats struct {
	Predictions int
	Failures    int
	Skipped     int
}

// Backfill processes the records matching q and writes them to sink.
// Failure records are skipped when sink cannot record failures. The first
// sink error stops the run.
func Backfill(ctx context.Context, store history.Store, q history.Query, sink coremetrics.MetricsSink) (Stats, error) {
	var st Stats
	recs, err := store.Query(ctx, q)
	if err != nil {
		return st, err
	}
	fr, canFail := sink.(coremetrics.FailureRecorder)
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if r.Failed() {
			if !canFail {
				st.Skipped++
				continue
			}
			if err := fr.RecordFailure(failureRecord(r)); err != nil {
				return st, err
			}
			st.Failures++
			continue
		}
		if err := sink.RecordPrediction(predictionRecord(r)); err != nil {
			return st, err
		}
		st.Predictions++
	}
	return st, nil
}

func predictionRecord(r history.Record) coremetrics.PredictionRecord {
	return coremetrics.PredictionRecord{
		Time:       r.Timestamp,
		Count:      r.Result.Count,
		Raw:        r.Raw,
		Status:     r.Result.Status.String(),
		ModelState: r.ModelState,
		Day:        r.Input.Day,
		Hour:       r.Input.Hour,
		IsHoliday:  r.Input.IsHoliday,
	}
}

// failureRecord recovers the failure kind from the "kind: cause" error text.
func failureRecord(r history.Record) coremetrics.FailureRecord {
	kind, _, _ := strings.Cut(r.Error, ":")
	return coremetrics.FailureRecord{
		Time:       r.Timestamp,
		Kind:       kind,
		Field:      r.ErrorField,
		ModelState: r.ModelState,
	}
}
