package scenarios

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/kilianp07/gymcrowd/core/features"
	"github.com/kilianp07/gymcrowd/core/model"
)

// Predictor produces one occupancy estimate.
type Predictor interface {
	Predict(in model.RawInput) (model.PredictionResult, error)
}

// Failure describes a case whose outcome did not match.
type Failure struct {
	Case   string
	Reason string
}

// Report summarises one scenario run.
type Report struct {
	Scenario string
	Passed   int
	Failures []Failure
}

func (r Report) OK() bool { return len(r.Failures) == 0 }

// Run checks every case of sc against p.
func Run(sc *Scenario, p Predictor) Report {
	rep := Report{Scenario: sc.Name}
	for i, c := range sc.Cases {
		name := c.Name
		if name == "" {
			name = "#" + strconv.Itoa(i+1)
		}
		if reason := check(c, p); reason != "" {
			rep.Failures = append(rep.Failures, Failure{Case: name, Reason: reason})
			continue
		}
		rep.Passed++
	}
	return rep
}

func check(c Case, p Predictor) string {
	exp := c.Expected
	res, err := p.Predict(c.Input.ToModel())
	if exp.InvalidField != "" {
		var ie *features.InvalidInputError
		if !errors.As(err, &ie) {
			return fmt.Sprintf("expected invalid %s, got err=%v", exp.InvalidField, err)
		}
		if ie.Field != exp.InvalidField {
			return fmt.Sprintf("expected invalid %s, got invalid %s", exp.InvalidField, ie.Field)
		}
		return ""
	}
	if err != nil {
		return "unexpected error: " + err.Error()
	}
	if exp.Status != "" && res.Status.String() != exp.Status {
		return fmt.Sprintf("status %s, want %s (count %d)", res.Status, exp.Status, res.Count)
	}
	if exp.Count != nil && res.Count != *exp.Count {
		return fmt.Sprintf("count %d, want %d", res.Count, *exp.Count)
	}
	if exp.MinCount != nil && res.Count < *exp.MinCount {
		return fmt.Sprintf("count %d below %d", res.Count, *exp.MinCount)
	}
	if exp.MaxCount != nil && res.Count > *exp.MaxCount {
		return fmt.Sprintf("count %d above %d", res.Count, *exp.MaxCount)
	}
	if exp.Degraded != nil && res.Degraded != *exp.Degraded {
		return fmt.Sprintf("degraded %t, want %t", res.Degraded, *exp.Degraded)
	}
	return ""
}
