package prediction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/gymcrowd/core/estimator"
	"github.com/kilianp07/gymcrowd/core/features"
	"github.com/kilianp07/gymcrowd/core/logger"
)

// State is a step of the model lifecycle.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Settled reports whether the state is terminal.
func (s State) Settled() bool { return s == StateReady || s == StateDegraded }

// DefaultFallback fits the placeholder estimator on a single all-zero sample.
func DefaultFallback() (Model, ModelInfo, error) {
	m, err := estimator.Fallback(features.Len)
	if err != nil {
		return nil, ModelInfo{}, err
	}
	return m, ModelInfo{Kind: estimator.KindConstant, Source: "fallback", NumFeatures: features.Len}, nil
}

// Lifecycle owns the loaded model. It moves Unloaded → Loading → Ready or
// Degraded exactly once; nothing reloads the artifact afterwards.
type Lifecycle struct {
	once  sync.Once
	state atomic.Int32
	log   logger.Logger

	// written once inside once.Do, read after observing a settled state
	model   Model
	info    ModelInfo
	loadErr error
	fatal   error
}

// NewLifecycle returns an Unloaded lifecycle.
func NewLifecycle(log logger.Logger) *Lifecycle {
	if log == nil {
		log = logger.Nop{}
	}
	return &Lifecycle{log: log}
}

// Preloaded returns a Ready lifecycle around an already built model.
func Preloaded(m Model, info ModelInfo) *Lifecycle {
	l := NewLifecycle(nil)
	l.once.Do(func() {
		if info.LoadedAt.IsZero() {
			info.LoadedAt = time.Now()
		}
		l.model, l.info = m, info
		l.state.Store(int32(StateReady))
	})
	return l
}

// Load performs the one-time transition out of Unloaded. A Source failure is
// recorded, logged and answered with the fallback model; the lifecycle then
// settles in Degraded and Load still returns a nil error. Load only fails
// when no model at all could be produced. Later calls return the settled
// outcome without touching src.
func (l *Lifecycle) Load(ctx context.Context, src Source, fallback FallbackFunc) (State, error) {
	l.once.Do(func() {
		l.state.Store(int32(StateLoading))
		if fallback == nil {
			fallback = DefaultFallback
		}
		m, info, err := src.Load(ctx)
		if err == nil && m == nil {
			err = errors.New("source returned no model")
		}
		if err == nil {
			if info.LoadedAt.IsZero() {
				info.LoadedAt = time.Now()
			}
			l.model, l.info = m, info
			l.log.Infof("model ready: kind=%s source=%s features=%d", info.Kind, info.Source, info.NumFeatures)
			l.state.Store(int32(StateReady))
			return
		}

		if !errors.Is(err, ErrModelLoad) {
			err = fmt.Errorf("%w: %w", ErrModelLoad, err)
		}
		l.loadErr = err
		l.log.Errorf("model unavailable, serving placeholder predictions: %v", err)
		fm, finfo, ferr := fallback()
		if ferr == nil && fm == nil {
			ferr = errors.New("fallback returned no model")
		}
		if ferr != nil {
			l.fatal = fmt.Errorf("fallback model: %w", errors.Join(ferr, err))
		} else {
			if finfo.LoadedAt.IsZero() {
				finfo.LoadedAt = time.Now()
			}
			l.model, l.info = fm, finfo
		}
		l.state.Store(int32(StateDegraded))
	})
	return l.State(), l.fatal
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State { return State(l.state.Load()) }

// Model returns the serving model, nil until the lifecycle settled.
func (l *Lifecycle) Model() Model {
	if !l.State().Settled() {
		return nil
	}
	return l.model
}

// Info describes the serving model.
func (l *Lifecycle) Info() ModelInfo {
	if !l.State().Settled() {
		return ModelInfo{}
	}
	return l.info
}

// LoadError returns why the artifact could not be used, nil when Ready.
func (l *Lifecycle) LoadError() error {
	if !l.State().Settled() {
		return nil
	}
	return l.loadErr
}

// Health is the operator-facing view of the lifecycle.
type Health struct {
	State     State     `json:"model_state"`
	Healthy   bool      `json:"healthy"`
	ModelKind string    `json:"model_kind,omitempty"`
	Source    string    `json:"source,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Health reports Healthy only in Ready state. Degraded keeps serving but is
// reported as unhealthy so operators notice the placeholder.
func (l *Lifecycle) Health() Health {
	st := l.State()
	h := Health{State: st, Healthy: st == StateReady}
	if st.Settled() {
		h.ModelKind = l.info.Kind
		h.Source = l.info.Source
		h.LoadedAt = l.info.LoadedAt
		if l.loadErr != nil {
			h.Error = l.loadErr.Error()
		}
	}
	return h
}
