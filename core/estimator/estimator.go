// Package estimator implements the regression models an exported occupancy
// artifact can describe: linear models, single decision trees, tree
// ensembles averaged like a random forest or summed like gradient boosting,
// and constants. All models are immutable after construction and safe for
// concurrent use.
package estimator

import (
	"errors"
	"fmt"
)

// ErrDimension is returned when a sample has the wrong number of features.
var ErrDimension = errors.New("feature dimension mismatch")

// Regressor maps a feature sample to a scalar.
type Regressor interface {
	Predict(x []float64) (float64, error)
	// NumFeatures is the sample width the model was trained on.
	NumFeatures() int
}

func checkDim(x []float64, n int) error {
	if len(x) != n {
		return fmt.Errorf("%w: got %d features, want %d", ErrDimension, len(x), n)
	}
	return nil
}
