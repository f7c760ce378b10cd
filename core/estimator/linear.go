package estimator

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// Linear is an ordinary least squares style model: intercept + coef·x.
type Linear struct {
	intercept float64
	coef      []float64
}

// NewLinear copies coef so later changes by the caller do not leak in.
func NewLinear(intercept float64, coef []float64) (*Linear, error) {
	if len(coef) == 0 {
		return nil, errors.New("linear: no coefficients")
	}
	c := make([]float64, len(coef))
	copy(c, coef)
	return &Linear{intercept: intercept, coef: c}, nil
}

func (l *Linear) Predict(x []float64) (float64, error) {
	if err := checkDim(x, len(l.coef)); err != nil {
		return 0, err
	}
	return l.intercept + floats.Dot(l.coef, x), nil
}

func (l *Linear) NumFeatures() int { return len(l.coef) }
