package estimator

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gymcrowd/core/factory"
)

// stump splits on feature 0 at 5: left predicts lo, right predicts hi.
func stump(t *testing.T, lo, hi float64) *Tree {
	t.Helper()
	tr, err := NewTree([]Node{
		{Left: 1, Right: 2, Feature: 0, Threshold: 5},
		{Left: leaf, Right: leaf, Value: lo},
		{Left: leaf, Right: leaf, Value: hi},
	}, 2)
	require.NoError(t, err)
	return tr
}

func TestLinear(t *testing.T) {
	coef := []float64{2, -1}
	l, err := NewLinear(3, coef)
	require.NoError(t, err)
	coef[0] = 100

	got, err := l.Predict([]float64{4, 5})
	require.NoError(t, err)
	assert.Equal(t, 3.0+8-5, got)
	assert.Equal(t, 2, l.NumFeatures())

	_, err = l.Predict([]float64{1})
	assert.True(t, errors.Is(err, ErrDimension))

	_, err = NewLinear(0, nil)
	assert.Error(t, err)
}

func TestTree_Routing(t *testing.T) {
	tr := stump(t, 10, 50)
	lo, err := tr.Predict([]float64{5, 0})
	require.NoError(t, err)
	assert.Equal(t, 10.0, lo, "threshold is inclusive on the left")
	hi, err := tr.Predict([]float64{5.01, 0})
	require.NoError(t, err)
	assert.Equal(t, 50.0, hi)
}

func TestNewTree_Validation(t *testing.T) {
	cases := map[string][]Node{
		"empty":        nil,
		"single child": {{Left: 1, Right: leaf}, {Left: leaf, Right: leaf}},
		"backward":     {{Left: 0, Right: 1}, {Left: leaf, Right: leaf}},
		"out of range": {{Left: 1, Right: 7}, {Left: leaf, Right: leaf}},
		"bad feature":  {{Left: 1, Right: 2, Feature: 9}, {Left: leaf, Right: leaf}, {Left: leaf, Right: leaf}},
	}
	for name, nodes := range cases {
		_, err := NewTree(nodes, 2)
		assert.Error(t, err, name)
	}
	_, err := NewTree([]Node{{Left: leaf, Right: leaf}}, 0)
	assert.Error(t, err)
}

func TestForest_Mean(t *testing.T) {
	f, err := NewForest([]*Tree{stump(t, 10, 50), stump(t, 20, 70)})
	require.NoError(t, err)
	got, err := f.Predict([]float64{9, 0})
	require.NoError(t, err)
	assert.Equal(t, 60.0, got)
	assert.Equal(t, 2, f.Size())
}

func TestBoosting_Sum(t *testing.T) {
	b, err := NewBoosting([]*Tree{stump(t, 1, 4), stump(t, 2, 6)}, 30, 0.5)
	require.NoError(t, err)
	got, err := b.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 30+0.5*3, got)

	_, err = NewBoosting([]*Tree{stump(t, 1, 2)}, 0, 0)
	assert.Error(t, err)
}

func TestEnsemble_MixedWidths(t *testing.T) {
	wide, err := NewTree([]Node{{Left: leaf, Right: leaf, Value: 1}}, 3)
	require.NoError(t, err)
	_, err = NewForest([]*Tree{stump(t, 0, 1), wide})
	assert.Error(t, err)
	_, err = NewForest(nil)
	assert.Error(t, err)
}

func TestFitConstantAndFallback(t *testing.T) {
	c, err := FitConstant([][]float64{{1, 2}, {3, 4}}, []float64{10, 20})
	require.NoError(t, err)
	assert.Equal(t, 15.0, c.Value())
	assert.Equal(t, 2, c.NumFeatures())

	_, err = FitConstant(nil, nil)
	assert.Error(t, err)
	_, err = FitConstant([][]float64{{1}}, []float64{1, 2})
	assert.Error(t, err)
	_, err = FitConstant([][]float64{{1}, {1, 2}}, []float64{1, 2})
	assert.Error(t, err)

	fb, err := Fallback(16)
	require.NoError(t, err)
	got, err := fb.Predict(make([]float64, 16))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	_, err = fb.Predict(make([]float64, 15))
	assert.True(t, errors.Is(err, ErrDimension))
}

func TestKinds_FromParams(t *testing.T) {
	node := func(l, r, f int, th, v float64) map[string]any {
		return map[string]any{"left": l, "right": r, "feature": f, "threshold": th, "value": v}
	}
	tree := map[string]any{"nodes": []any{
		node(1, 2, 1, 0.5, 0), node(-1, -1, 0, 0, 8), node(-1, -1, 0, 0, 40),
	}}

	cases := []struct {
		kind string
		conf map[string]any
		x    []float64
		want float64
	}{
		{KindLinear, map[string]any{"intercept": 1.0, "coef": []any{1.0, 2.0}}, []float64{1, 1}, 4},
		{KindConstant, map[string]any{"value": 7, "n_features": 2}, []float64{0, 0}, 7},
		{KindTree, map[string]any{"n_features": 2, "nodes": tree["nodes"]}, []float64{0, 1}, 40},
		{KindForest, map[string]any{"n_features": 2, "trees": []any{tree, tree}}, []float64{0, 0}, 8},
		{KindBoosting, map[string]any{"n_features": 2, "base_score": 2, "learning_rate": 0.5, "trees": []any{tree}}, []float64{0, 1}, 22},
	}
	for _, c := range cases {
		r, err := Kinds.Create(factory.ModuleConfig{Type: c.kind, Conf: c.conf})
		require.NoError(t, err, c.kind)
		got, err := r.Predict(c.x)
		require.NoError(t, err, c.kind)
		assert.InDelta(t, c.want, got, 1e-12, c.kind)
	}

	_, err := Kinds.Create(factory.ModuleConfig{Type: "svm"})
	assert.Error(t, err)
	_, err = Kinds.Create(factory.ModuleConfig{Type: KindConstant, Conf: map[string]any{"value": 1}})
	assert.Error(t, err, "missing feature count")
	_, err = Kinds.Create(factory.ModuleConfig{Type: KindForest, Conf: map[string]any{"trees": []any{tree}}})
	assert.Error(t, err, "trees without feature count")
}

func TestEnsemble_ConcurrentPredict(t *testing.T) {
	f, err := NewForest([]*Tree{stump(t, 10, 50), stump(t, 20, 70)})
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := f.Predict([]float64{float64(i % 10), 0})
			assert.NoError(t, err)
			if i%10 <= 5 {
				assert.Equal(t, 15.0, got)
			} else {
				assert.Equal(t, 60.0, got)
			}
		}(i)
	}
	wg.Wait()
}
