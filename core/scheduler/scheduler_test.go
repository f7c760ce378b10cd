package scheduler

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/gymcrowd/core/model"
)

// hourPredictor returns counts[hour] and remembers what it was asked.
type hourPredictor struct {
	counts map[int]int
	seen   []model.RawInput
	err    error
}

func (p *hourPredictor) Predict(in model.RawInput) (model.PredictionResult, error) {
	p.seen = append(p.seen, in)
	if p.err != nil {
		return model.PredictionResult{}, p.err
	}
	c := p.counts[in.Hour]
	return model.PredictionResult{Count: c, Status: model.StatusForCount(c)}, nil
}

func TestGeneratePlanCoversOpeningHours(t *testing.T) {
	pred := &hourPredictor{counts: map[int]int{6: 12, 7: 25, 8: 40, 9: 8, 10: 65}}
	s := Scheduler{Config: SchedulerConfig{OpenHour: 6, CloseHour: 11, Suggestions: 2}, Predictor: pred}
	date := time.Date(2026, 9, 16, 15, 30, 0, 0, time.UTC)

	plan, err := s.GeneratePlan(date, Conditions{Temperature: 70, SemesterStatus: model.SemesterDuring})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}
	if len(plan.Slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(plan.Slots))
	}
	if plan.Day != "Wednesday" || plan.Month != "September" {
		t.Fatalf("unexpected day/month %s/%s", plan.Day, plan.Month)
	}
	for i, in := range pred.seen {
		if in.Hour != 6+i || in.Day != "Wednesday" || in.Month != "September" || in.Temperature != 70 {
			t.Fatalf("unexpected input %d: %+v", i, in)
		}
	}
	if !plan.Slots[0].Start.Equal(time.Date(2026, 9, 16, 6, 0, 0, 0, time.UTC)) {
		t.Fatalf("first slot starts at %v", plan.Slots[0].Start)
	}
	if plan.Slots[4].Status != model.StatusCrowded {
		t.Fatalf("10h should be crowded, got %v", plan.Slots[4].Status)
	}
	if len(plan.Suggested) != 2 || plan.Suggested[0].Hour != 6 || plan.Suggested[1].Hour != 9 {
		t.Fatalf("unexpected suggestions %+v", plan.Suggested)
	}
	busiest, ok := plan.Busiest()
	if !ok || busiest.Hour != 10 {
		t.Fatalf("unexpected busiest slot %+v", busiest)
	}
}

func TestGeneratePlanWallClockOnDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	s := Scheduler{Config: SchedulerConfig{OpenHour: 6, CloseHour: 12}, Predictor: &hourPredictor{}}
	// Clocks go forward at 02:00 on 2026-03-08.
	plan, err := s.GeneratePlan(time.Date(2026, 3, 8, 12, 0, 0, 0, loc), Conditions{SemesterStatus: model.SemesterDuring})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}
	for _, slot := range plan.Slots {
		if got := slot.Start.In(loc).Hour(); got != slot.Hour {
			t.Fatalf("slot %d starts at %02d:00 local", slot.Hour, got)
		}
	}
}

func TestGeneratePlanHourlyTemperature(t *testing.T) {
	pred := &hourPredictor{}
	s := Scheduler{Config: SchedulerConfig{OpenHour: 12, CloseHour: 14}, Predictor: pred}
	_, err := s.GeneratePlan(time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), Conditions{
		Temperature:       40,
		SemesterStatus:    model.SemesterBreak,
		IsHoliday:         true,
		HourlyTemperature: map[int]float64{13: 45},
	})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}
	if pred.seen[0].Temperature != 40 || pred.seen[1].Temperature != 45 {
		t.Fatalf("unexpected temperatures %+v", pred.seen)
	}
	if !pred.seen[0].IsHoliday || pred.seen[0].Day != "Saturday" {
		t.Fatalf("unexpected input %+v", pred.seen[0])
	}
}

func TestGeneratePlanDefaultsToFullDay(t *testing.T) {
	s := Scheduler{Predictor: &hourPredictor{}}
	plan, err := s.GeneratePlan(time.Now(), Conditions{SemesterStatus: model.SemesterDuring})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}
	if len(plan.Slots) != 24 || len(plan.Suggested) != 3 {
		t.Fatalf("expected 24 slots and 3 suggestions, got %d/%d", len(plan.Slots), len(plan.Suggested))
	}
}

func TestGeneratePlanPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	s := Scheduler{Predictor: &hourPredictor{err: boom}}
	if _, err := s.GeneratePlan(time.Now(), Conditions{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	s = Scheduler{Config: SchedulerConfig{OpenHour: 20, CloseHour: 8}, Predictor: &hourPredictor{}}
	if _, err := s.GeneratePlan(time.Now(), Conditions{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestPlanDegradedFlag(t *testing.T) {
	pred := predictorFunc(func(in model.RawInput) (model.PredictionResult, error) {
		return model.PredictionResult{Degraded: true}, nil
	})
	plan, err := (&Scheduler{Config: SchedulerConfig{OpenHour: 8, CloseHour: 9}, Predictor: pred}).GeneratePlan(time.Now(), Conditions{})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}
	if !plan.Degraded || !plan.Slots[0].Degraded {
		t.Fatalf("expected degraded plan")
	}
}

type predictorFunc func(model.RawInput) (model.PredictionResult, error)

func (f predictorFunc) Predict(in model.RawInput) (model.PredictionResult, error) { return f(in) }

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString("open_hour: 6\nclose_hour: 23\n"), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.OpenHour != 6 || cfg.CloseHour != 23 || cfg.Suggestions != 3 {
		t.Fatalf("bad cfg %#v", cfg)
	}
	if _, err := DecodeConfig(bytes.NewBufferString("open_hour: 6\nclose_hour: 5\n"), "yaml"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := DecodeConfig(bytes.NewBufferString(""), "toml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hours.json")
	if err := os.WriteFile(path, []byte(`{"open_hour":5,"close_hour":22,"suggestions":1}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenHour != 5 || cfg.CloseHour != 22 || cfg.Suggestions != 1 {
		t.Fatalf("bad cfg %#v", cfg)
	}
	if _, err := LoadConfig(path + ".txt"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
