package estimator

import (
	"errors"
	"fmt"
)

// leaf marks a node without children.
const leaf = -1

// Node is one entry of a flattened binary regression tree. Samples go to
// Left when x[Feature] <= Threshold and to Right otherwise.
type Node struct {
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Value     float64 `json:"value"`
}

// Tree is a regression tree rooted at node 0.
type Tree struct {
	nodes     []Node
	nFeatures int
}

// NewTree validates the node table. Children must point forward in the
// table, which rules out cycles and guarantees every walk terminates.
func NewTree(nodes []Node, nFeatures int) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, errors.New("tree: no nodes")
	}
	if nFeatures <= 0 {
		return nil, fmt.Errorf("tree: invalid feature count %d", nFeatures)
	}
	for i, n := range nodes {
		if n.Left == leaf || n.Right == leaf {
			if n.Left != n.Right {
				return nil, fmt.Errorf("tree: node %d has a single child", i)
			}
			continue
		}
		if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
			return nil, fmt.Errorf("tree: node %d has child out of range", i)
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return nil, fmt.Errorf("tree: node %d splits on feature %d of %d", i, n.Feature, nFeatures)
		}
	}
	cp := make([]Node, len(nodes))
	copy(cp, nodes)
	return &Tree{nodes: cp, nFeatures: nFeatures}, nil
}

func (t *Tree) Predict(x []float64) (float64, error) {
	if err := checkDim(x, t.nFeatures); err != nil {
		return 0, err
	}
	return t.eval(x), nil
}

// eval assumes x has already been checked.
func (t *Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.Left == leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (t *Tree) NumFeatures() int { return t.nFeatures }
