package model

import "fmt"

// Status is the qualitative occupancy label derived from a headcount.
type Status int

const (
	StatusEmpty Status = iota
	StatusModerate
	StatusCrowded
)

// Band thresholds. A band includes its lower bound and excludes its upper one.
const (
	ModerateThreshold = 20
	CrowdedThreshold  = 60
)

// StatusForCount maps a headcount to its band.
func StatusForCount(count int) Status {
	switch {
	case count < ModerateThreshold:
		return StatusEmpty
	case count < CrowdedThreshold:
		return StatusModerate
	default:
		return StatusCrowded
	}
}

// String returns the label name.
func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "Empty"
	case StatusModerate:
		return "Moderate"
	case StatusCrowded:
		return "Crowded"
	default:
		return "unknown"
	}
}

// Message returns the advice shown next to the headcount.
func (s Status) Message() string {
	switch s {
	case StatusEmpty:
		return "Empty (Great time to go!)"
	case StatusModerate:
		return "Moderate (Normal crowd)"
	case StatusCrowded:
		return "Crowded (Maybe wait a bit?)"
	default:
		return s.String()
	}
}

// MarshalText encodes the status as its label.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a label produced by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStatus converts a label back to a Status.
func ParseStatus(v string) (Status, error) {
	switch v {
	case "Empty":
		return StatusEmpty, nil
	case "Moderate":
		return StatusModerate, nil
	case "Crowded":
		return StatusCrowded, nil
	}
	return 0, fmt.Errorf("unknown status %q", v)
}

// PredictionResult is the outcome of one prediction.
type PredictionResult struct {
	// Count is the estimated headcount, never negative.
	Count  int    `json:"count"`
	Status Status `json:"status"`
	// Degraded is set when the placeholder model produced the estimate.
	Degraded bool `json:"degraded"`
}

// CountText formats the headcount the way it is displayed to end users.
func (r PredictionResult) CountText() string {
	return fmt.Sprintf("%d People", r.Count)
}
