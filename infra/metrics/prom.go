package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/gymcrowd/core/metrics"
)

// States exported by the model state gauge.
var modelStates = []string{"unloaded", "loading", "ready", "degraded"}

// PromSink records predictions in Prometheus metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	counts      prometheus.Histogram
	failures    *prometheus.CounterVec
	latency     prometheus.Histogram
	modelState  *prometheus.GaugeVec
}

// NewPromSink registers prediction metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.predictions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gymcrowd_predictions_total",
		Help: "Predictions served, by occupancy status and model state",
	}, []string{"status", "model_state"})); err != nil {
		return nil, err
	}
	if s.counts, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gymcrowd_predicted_count",
		Help:    "Distribution of predicted headcounts",
		Buckets: []float64{5, 10, 20, 30, 40, 60, 80, 100, 150},
	})); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gymcrowd_prediction_failures_total",
		Help: "Prediction requests that produced no result, by failure kind",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gymcrowd_inference_latency_seconds",
		Help:    "Time spent encoding and running the model",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})); err != nil {
		return nil, err
	}
	if s.modelState, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gymcrowd_model_state",
		Help: "1 for the current model lifecycle state, 0 otherwise",
	}, []string{"state"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction counts the prediction and observes its headcount and latency.
func (s *PromSink) RecordPrediction(rec coremetrics.PredictionRecord) error {
	s.predictions.WithLabelValues(rec.Status, rec.ModelState).Inc()
	s.counts.Observe(float64(rec.Count))
	s.latency.Observe(rec.Latency.Seconds())
	return nil
}

// RecordFailure counts a failed request.
func (s *PromSink) RecordFailure(rec coremetrics.FailureRecord) error {
	s.failures.WithLabelValues(rec.Kind).Inc()
	return nil
}

// RecordModelState flags the current lifecycle state.
func (s *PromSink) RecordModelState(rec coremetrics.ModelStateRecord) error {
	for _, st := range modelStates {
		v := 0.0
		if st == rec.State {
			v = 1
		}
		s.modelState.WithLabelValues(st).Set(v)
	}
	return nil
}
