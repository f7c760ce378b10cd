package prediction

import (
	"errors"
	"fmt"

	"github.com/kilianp07/gymcrowd/core/model"
)

var (
	// ErrModelLoad wraps every reason an artifact could not be used.
	ErrModelLoad = errors.New("model load failed")
	// ErrInference wraps failures of the model call and unusable outputs.
	ErrInference = errors.New("inference failed")
	// ErrNotLoaded is returned when a Server is built before Load settled.
	ErrNotLoaded = errors.New("model not loaded")
)

// InferenceError carries the full input context of a failed model call.
type InferenceError struct {
	Input    model.RawInput
	Features []float64
	Err      error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%v: %v (input %+v)", ErrInference, e.Err, e.Input)
}

// Unwrap exposes both ErrInference and the underlying cause.
func (e *InferenceError) Unwrap() []error { return []error{ErrInference, e.Err} }
