package prediction

import (
	"context"
	"time"
)

// Model is the trained regressor treated as a black box. Implementations must
// be deterministic and safe for concurrent calls.
type Model interface {
	Predict(x []float64) (float64, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(x []float64) (float64, error)

func (f ModelFunc) Predict(x []float64) (float64, error) { return f(x) }

// ModelInfo describes where a model came from.
type ModelInfo struct {
	Kind         string    `json:"kind"`
	Source       string    `json:"source"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	NumFeatures  int       `json:"num_features"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Source loads a model artifact. It is called at most once per Lifecycle.
type Source interface {
	Load(ctx context.Context) (Model, ModelInfo, error)
}

// FallbackFunc builds the placeholder model used in Degraded state.
type FallbackFunc func() (Model, ModelInfo, error)
