package prediction

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gymcrowd/core/events"
	"github.com/kilianp07/gymcrowd/core/features"
	"github.com/kilianp07/gymcrowd/core/logger"
	"github.com/kilianp07/gymcrowd/core/model"
	"github.com/kilianp07/gymcrowd/core/monitoring"
	"github.com/kilianp07/gymcrowd/internal/eventbus"
)

// Server turns raw inputs into occupancy estimates using a settled Lifecycle.
type Server struct {
	lc      *Lifecycle
	log     logger.Logger
	monitor monitoring.Monitor
	pub     eventbus.Publisher[events.Event]
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for failures and debug traces.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMonitor reports inference failures to m.
func WithMonitor(m monitoring.Monitor) Option {
	return func(s *Server) {
		if m != nil {
			s.monitor = m
		}
	}
}

// WithPublisher publishes prediction and failure events to p.
func WithPublisher(p eventbus.Publisher[events.Event]) Option {
	return func(s *Server) { s.pub = p }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer builds a Server on a lifecycle that has already settled.
func NewServer(lc *Lifecycle, opts ...Option) (*Server, error) {
	if lc == nil || lc.Model() == nil {
		return nil, ErrNotLoaded
	}
	s := &Server{lc: lc, log: logger.Nop{}, monitor: monitoring.NopMonitor{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Health reports the model lifecycle state.
func (s *Server) Health() Health { return s.lc.Health() }

// Info describes the serving model.
func (s *Server) Info() ModelInfo { return s.lc.Info() }

// Predict encodes in, runs the model and labels the clamped headcount.
// Encoding errors are returned unchanged; they match features.ErrInvalidInput.
// Model failures and unusable outputs return an *InferenceError.
func (s *Server) Predict(in model.RawInput) (model.PredictionResult, error) {
	start := s.now()
	state := s.lc.State()

	vec, err := features.Encode(in)
	if err != nil {
		s.fail(in, nil, events.FailureInvalidInput, err, state, start)
		return model.PredictionResult{}, err
	}
	x := vec.Slice()

	raw, err := s.lc.Model().Predict(x)
	if err == nil {
		var count int
		count, err = Clamp(raw)
		if err == nil {
			res := model.PredictionResult{
				Count:    count,
				Status:   model.StatusForCount(count),
				Degraded: state == StateDegraded,
			}
			s.publish(events.PredictionEvent{
				ID:         uuid.NewString(),
				Time:       start,
				Input:      in,
				Features:   x,
				Raw:        raw,
				Result:     res,
				ModelState: state.String(),
				Latency:    s.now().Sub(start),
			})
			s.log.Debugw("prediction", map[string]any{
				"count":  res.Count,
				"status": res.Status.String(),
				"raw":    raw,
				"state":  state.String(),
			})
			return res, nil
		}
	}

	ierr := &InferenceError{Input: in, Features: x, Err: err}
	s.log.Errorf("%v features=%v", ierr, vec.Map())
	s.monitor.CaptureException(ierr, inputTags(in, state))
	s.fail(in, x, events.FailureInference, ierr, state, start)
	return model.PredictionResult{}, ierr
}

func (s *Server) fail(in model.RawInput, x []float64, kind string, err error, state State, at time.Time) {
	ev := events.FailureEvent{
		ID:         uuid.NewString(),
		Time:       at,
		Input:      in,
		Features:   x,
		Kind:       kind,
		Err:        err,
		ModelState: state.String(),
	}
	var ie *features.InvalidInputError
	if errors.As(err, &ie) {
		ev.Field = ie.Field
	}
	s.publish(ev)
}

func (s *Server) publish(ev events.Event) {
	if s.pub != nil {
		s.pub.Publish(ev)
	}
}

// Clamp converts a raw model output to a headcount: max(0, raw) truncated
// toward zero, so 59.9 becomes 59 and -5 becomes 0. NaN, infinities and
// values beyond the int range are rejected instead of being coerced.
func Clamp(raw float64) (int, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("non-finite model output %v", raw)
	}
	if raw <= 0 {
		return 0, nil
	}
	if raw >= math.MaxInt {
		return 0, fmt.Errorf("model output %v out of range", raw)
	}
	return int(raw), nil
}

func inputTags(in model.RawInput, state State) map[string]string {
	return map[string]string{
		"hour":            strconv.Itoa(in.Hour),
		"day":             in.Day,
		"month":           in.Month,
		"temperature":     strconv.FormatFloat(in.Temperature, 'f', -1, 64),
		"semester_status": in.SemesterStatus,
		"is_holiday":      strconv.FormatBool(in.IsHoliday),
		"model_state":     state.String(),
	}
}
