package estimator

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregation selects how tree outputs are combined.
type Aggregation int

const (
	// Mean averages the trees, as a random forest does.
	Mean Aggregation = iota
	// Sum adds the scaled trees to a base score, as gradient boosting does.
	Sum
)

// Ensemble combines several trees trained on the same features.
type Ensemble struct {
	trees        []*Tree
	agg          Aggregation
	baseScore    float64
	learningRate float64
}

// NewForest builds a mean-aggregated ensemble.
func NewForest(trees []*Tree) (*Ensemble, error) {
	return newEnsemble(trees, Mean, 0, 1)
}

// NewBoosting builds a sum-aggregated ensemble.
func NewBoosting(trees []*Tree, baseScore, learningRate float64) (*Ensemble, error) {
	if learningRate <= 0 {
		return nil, fmt.Errorf("boosting: learning rate must be positive, got %v", learningRate)
	}
	return newEnsemble(trees, Sum, baseScore, learningRate)
}

func newEnsemble(trees []*Tree, agg Aggregation, base, lr float64) (*Ensemble, error) {
	if len(trees) == 0 {
		return nil, errors.New("ensemble: no trees")
	}
	n := trees[0].NumFeatures()
	for i, t := range trees {
		if t.NumFeatures() != n {
			return nil, fmt.Errorf("ensemble: tree %d uses %d features, tree 0 uses %d", i, t.NumFeatures(), n)
		}
	}
	cp := make([]*Tree, len(trees))
	copy(cp, trees)
	return &Ensemble{trees: cp, agg: agg, baseScore: base, learningRate: lr}, nil
}

func (e *Ensemble) Predict(x []float64) (float64, error) {
	if err := checkDim(x, e.NumFeatures()); err != nil {
		return 0, err
	}
	out := make([]float64, len(e.trees))
	for i, t := range e.trees {
		out[i] = t.eval(x)
	}
	if e.agg == Mean {
		return stat.Mean(out, nil), nil
	}
	return e.baseScore + e.learningRate*floats.Sum(out), nil
}

func (e *Ensemble) NumFeatures() int { return e.trees[0].NumFeatures() }

// Size returns the number of trees.
func (e *Ensemble) Size() int { return len(e.trees) }
