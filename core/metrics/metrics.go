package metrics

import "time"

// PredictionRecord is one served prediction.
type PredictionRecord struct {
	Time       time.Time
	Count      int
	Raw        float64
	Status     string
	ModelState string
	Latency    time.Duration
	Day        string
	Hour       int
	IsHoliday  bool
}

// MetricsSink records predictions.
type MetricsSink interface {
	RecordPrediction(rec PredictionRecord) error
}

// FailureRecord is one prediction that could not be served.
type FailureRecord struct {
	Time       time.Time
	Kind       string
	Field      string
	ModelState string
}

// FailureRecorder records rejected inputs and inference failures.
type FailureRecorder interface {
	RecordFailure(rec FailureRecord) error
}

// ModelStateRecord captures the settled model lifecycle.
type ModelStateRecord struct {
	Time      time.Time
	State     string
	ModelKind string
	Source    string
	Error     string
}

// ModelStateRecorder records model lifecycle transitions.
type ModelStateRecorder interface {
	RecordModelState(rec ModelStateRecord) error
}

// Closer is implemented by sinks holding connections or buffers.
type Closer interface {
	Close()
}

// CloseSink releases s when it implements Closer.
func CloseSink(s MetricsSink) {
	if c, ok := s.(Closer); ok {
		c.Close()
	}
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionRecord) error { return nil }
func (NopSink) RecordFailure(FailureRecord) error       { return nil }
func (NopSink) RecordModelState(ModelStateRecord) error { return nil }
