package prediction

import (
	"context"
	"sync"

	"github.com/kilianp07/gymcrowd/core/features"
)

// MockModel returns a fixed output and remembers the last sample it saw.
type MockModel struct {
	Output float64
	Err    error

	mu   sync.Mutex
	last []float64
	n    int
}

// Predict records x and returns the configured output or error.
func (m *MockModel) Predict(x []float64) (float64, error) {
	m.mu.Lock()
	m.last = append(m.last[:0], x...)
	m.n++
	m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Output, nil
}

// Last returns a copy of the most recent sample, nil before the first call.
func (m *MockModel) Last() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.n == 0 {
		return nil
	}
	cp := make([]float64, len(m.last))
	copy(cp, m.last)
	return cp
}

// Calls returns how many predictions were requested.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

// MockSource hands out a preset model or error.
type MockSource struct {
	Model Model
	Info  ModelInfo
	Err   error
	Loads int
}

func (s *MockSource) Load(_ context.Context) (Model, ModelInfo, error) {
	s.Loads++
	if s.Err != nil {
		return nil, ModelInfo{}, s.Err
	}
	info := s.Info
	if info.NumFeatures == 0 {
		info.NumFeatures = features.Len
	}
	return s.Model, info, nil
}
