package estimator

import (
	"fmt"

	"github.com/kilianp07/gymcrowd/core/factory"
)

// Artifact kinds.
const (
	KindLinear   = "linear"
	KindTree     = "tree"
	KindForest   = "forest"
	KindBoosting = "boosting"
	KindConstant = "constant"
)

// Kinds builds regressors from the params block of an exported artifact.
var Kinds = factory.NewRegistry[Regressor]()

// TreeSpec is the serialized form of a tree.
type TreeSpec struct {
	NFeatures int    `json:"n_features"`
	Nodes     []Node `json:"nodes"`
}

type linearSpec struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

type ensembleSpec struct {
	NFeatures    int        `json:"n_features"`
	Trees        []TreeSpec `json:"trees"`
	BaseScore    float64    `json:"base_score"`
	LearningRate float64    `json:"learning_rate"`
}

type constantSpec struct {
	NFeatures int     `json:"n_features"`
	Value     float64 `json:"value"`
}

func init() {
	Kinds.MustRegister(KindLinear, func(conf map[string]any) (Regressor, error) {
		var s linearSpec
		if err := factory.Decode(conf, &s); err != nil {
			return nil, err
		}
		return NewLinear(s.Intercept, s.Coef)
	})
	Kinds.MustRegister(KindTree, func(conf map[string]any) (Regressor, error) {
		var s TreeSpec
		if err := factory.Decode(conf, &s); err != nil {
			return nil, err
		}
		return NewTree(s.Nodes, s.NFeatures)
	})
	Kinds.MustRegister(KindForest, func(conf map[string]any) (Regressor, error) {
		var s ensembleSpec
		if err := factory.Decode(conf, &s); err != nil {
			return nil, err
		}
		trees, err := buildTrees(s)
		if err != nil {
			return nil, err
		}
		return NewForest(trees)
	})
	Kinds.MustRegister(KindBoosting, func(conf map[string]any) (Regressor, error) {
		s := ensembleSpec{LearningRate: 1}
		if err := factory.Decode(conf, &s); err != nil {
			return nil, err
		}
		trees, err := buildTrees(s)
		if err != nil {
			return nil, err
		}
		return NewBoosting(trees, s.BaseScore, s.LearningRate)
	})
	Kinds.MustRegister(KindConstant, func(conf map[string]any) (Regressor, error) {
		var s constantSpec
		if err := factory.Decode(conf, &s); err != nil {
			return nil, err
		}
		if s.NFeatures <= 0 {
			return nil, fmt.Errorf("constant: invalid feature count %d", s.NFeatures)
		}
		return NewConstant(s.Value, s.NFeatures), nil
	})
}

// buildTrees lets trees inherit the ensemble-level feature count.
func buildTrees(s ensembleSpec) ([]*Tree, error) {
	trees := make([]*Tree, 0, len(s.Trees))
	for i, ts := range s.Trees {
		n := ts.NFeatures
		if n == 0 {
			n = s.NFeatures
		}
		t, err := NewTree(ts.Nodes, n)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, t)
	}
	return trees, nil
}
