package events

import (
	"time"

	"github.com/kilianp07/gymcrowd/core/model"
)

// Event is implemented by every event published on the bus.
type Event interface {
	EventKind() string
}

// PredictionEvent is published after every successful prediction.
type PredictionEvent struct {
	ID         string
	Time       time.Time
	Input      model.RawInput
	Features   []float64
	Raw        float64
	Result     model.PredictionResult
	ModelState string
	Latency    time.Duration
}

func (PredictionEvent) EventKind() string { return "prediction" }

// Failure kinds.
const (
	FailureInvalidInput = "invalid_input"
	FailureInference    = "inference"
)

// FailureEvent is published when a prediction could not be produced.
// Features is nil when encoding failed.
type FailureEvent struct {
	ID         string
	Time       time.Time
	Input      model.RawInput
	Features   []float64
	Kind       string
	Field      string
	Err        error
	ModelState string
}

func (FailureEvent) EventKind() string { return "failure" }

// ModelStateEvent is published once the model lifecycle leaves Loading.
type ModelStateEvent struct {
	Time      time.Time
	State     string
	ModelKind string
	Source    string
	Err       error
}

func (ModelStateEvent) EventKind() string { return "model_state" }
