package metrics

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPrediction(rec PredictionRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure forwards to sinks implementing FailureRecorder.
func (m *MultiSink) RecordFailure(rec FailureRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(FailureRecorder); ok {
			if err := r.RecordFailure(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordModelState forwards to sinks implementing ModelStateRecorder.
func (m *MultiSink) RecordModelState(rec ModelStateRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ModelStateRecorder); ok {
			if err := r.RecordModelState(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases every sink implementing Closer.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		CloseSink(s)
	}
}
