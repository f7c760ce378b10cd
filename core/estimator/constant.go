package estimator

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Constant predicts the same value for every sample of the right width.
type Constant struct {
	value     float64
	nFeatures int
}

// NewConstant returns a model that always predicts value.
func NewConstant(value float64, nFeatures int) *Constant {
	return &Constant{value: value, nFeatures: nFeatures}
}

func (c *Constant) Predict(x []float64) (float64, error) {
	if err := checkDim(x, c.nFeatures); err != nil {
		return 0, err
	}
	return c.value, nil
}

func (c *Constant) NumFeatures() int { return c.nFeatures }

// Value returns the constant prediction.
func (c *Constant) Value() float64 { return c.value }

// FitConstant fits the squared-error optimal constant, the target mean.
func FitConstant(X [][]float64, y []float64) (*Constant, error) {
	if len(X) == 0 {
		return nil, errors.New("fit: no samples")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("fit: %d samples but %d targets", len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("fit: sample %d has %d features, want %d", i, len(row), width)
		}
	}
	return NewConstant(stat.Mean(y, nil), width), nil
}

// Fallback trains the placeholder used when no artifact can be loaded: a
// single all-zero sample with target 0. It always predicts 0.
func Fallback(nFeatures int) (*Constant, error) {
	return FitConstant([][]float64{make([]float64, nFeatures)}, []float64{0})
}
