package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/gymcrowd/core/model"
)

// Predictor produces one occupancy estimate.
type Predictor interface {
	Predict(in model.RawInput) (model.PredictionResult, error)
}

// Conditions are the inputs shared by every hour of the planned day.
type Conditions struct {
	Temperature    float64
	SemesterStatus string
	IsHoliday      bool
	// HourlyTemperature overrides Temperature for the listed hours.
	HourlyTemperature map[int]float64
}

func (c Conditions) temperatureAt(hour int) float64 {
	if t, ok := c.HourlyTemperature[hour]; ok {
		return t
	}
	return c.Temperature
}

// Scheduler generates day-ahead occupancy plans.
type Scheduler struct {
	Config    SchedulerConfig
	Predictor Predictor
}

// Slot is the forecast for one hour.
type Slot struct {
	Start    time.Time    `json:"start"`
	Hour     int          `json:"hour"`
	Count    int          `json:"count"`
	Status   model.Status `json:"status"`
	Degraded bool         `json:"degraded"`
}

// Plan is the forecast for one day.
type Plan struct {
	Date      time.Time `json:"date"`
	Day       string    `json:"day"`
	Month     string    `json:"month"`
	Slots     []Slot    `json:"slots"`
	Suggested []Slot    `json:"suggested"`
	Degraded  bool      `json:"degraded"`
}

// GeneratePlan forecasts every opening hour of date. Day and month come
// from the date itself. Any prediction error aborts the plan.
func (s *Scheduler) GeneratePlan(date time.Time, c Conditions) (Plan, error) {
	cfg := s.Config
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Plan{}, err
	}
	if s.Predictor == nil {
		return Plan{}, fmt.Errorf("scheduler: no predictor")
	}

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	plan := Plan{
		Date:  startOfDay,
		Day:   startOfDay.Weekday().String(),
		Month: startOfDay.Month().String(),
		Slots: make([]Slot, 0, cfg.CloseHour-cfg.OpenHour),
	}
	for h := cfg.OpenHour; h < cfg.CloseHour; h++ {
		res, err := s.Predictor.Predict(model.RawInput{
			Hour:           h,
			Day:            plan.Day,
			Month:          plan.Month,
			Temperature:    c.temperatureAt(h),
			SemesterStatus: c.SemesterStatus,
			IsHoliday:      c.IsHoliday,
		})
		if err != nil {
			return Plan{}, fmt.Errorf("hour %d: %w", h, err)
		}
		plan.Slots = append(plan.Slots, Slot{
			Start:    time.Date(date.Year(), date.Month(), date.Day(), h, 0, 0, 0, date.Location()),
			Hour:     h,
			Count:    res.Count,
			Status:   res.Status,
			Degraded: res.Degraded,
		})
		plan.Degraded = plan.Degraded || res.Degraded
	}
	plan.Suggested = quietest(plan.Slots, cfg.Suggestions)
	return plan, nil
}

// quietest returns the n slots with the lowest count, earliest first on ties,
// in chronological order.
func quietest(slots []Slot, n int) []Slot {
	n = min(n, len(slots))
	ranked := make([]Slot, len(slots))
	copy(ranked, slots)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count < ranked[j].Count })
	out := ranked[:n]
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// Busiest returns the slot with the highest count, the earliest on ties.
func (p Plan) Busiest() (Slot, bool) {
	if len(p.Slots) == 0 {
		return Slot{}, false
	}
	best := p.Slots[0]
	for _, s := range p.Slots[1:] {
		if s.Count > best.Count {
			best = s
		}
	}
	return best, true
}
