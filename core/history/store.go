// Package history persists served predictions so operators can audit what
// the model answered, including the placeholder answers given while the
// model was degraded.
package history

import (
	"context"
	"time"

	"github.com/kilianp07/gymcrowd/core/model"
)

// Record captures one prediction request and its outcome. Failed requests
// have an Error and a zero Result.
type Record struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Input      model.RawInput         `json:"input"`
	Features   []float64              `json:"features,omitempty"`
	Raw        float64                `json:"raw"`
	Result     model.PredictionResult `json:"result"`
	ModelState string                 `json:"model_state"`
	Error      string                 `json:"error,omitempty"`
	ErrorField string                 `json:"error_field,omitempty"`
}

// Failed reports whether the record describes a failed request.
func (r Record) Failed() bool { return r.Error != "" }

// Query defines filters for retrieving records. Zero values disable a filter.
type Query struct {
	Start time.Time
	End   time.Time
	// Status keeps successful records with this label.
	Status *model.Status
	// DegradedOnly keeps records answered by the placeholder model.
	DegradedOnly bool
	// FailedOnly keeps failed requests.
	FailedOnly bool
	// Limit caps the number of records, keeping the most recent ones.
	Limit int
}

// Match applies every filter except Limit.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Status != nil && (r.Failed() || r.Result.Status != *q.Status) {
		return false
	}
	if q.DegradedOnly && r.ModelState != "degraded" {
		return false
	}
	if q.FailedOnly && !r.Failed() {
		return false
	}
	return true
}

// applyLimit keeps the last q.Limit records of a chronological slice.
func (q Query) applyLimit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists prediction records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
