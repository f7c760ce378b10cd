package history

import "github.com/kilianp07/gymcrowd/core/events"

// FromPrediction converts a successful prediction event into a record.
func FromPrediction(ev events.PredictionEvent) Record {
	return Record{
		ID:         ev.ID,
		Timestamp:  ev.Time.UTC(),
		Input:      ev.Input,
		Features:   ev.Features,
		Raw:        ev.Raw,
		Result:     ev.Result,
		ModelState: ev.ModelState,
	}
}

// FromFailure converts a failure event into a record.
func FromFailure(ev events.FailureEvent) Record {
	rec := Record{
		ID:         ev.ID,
		Timestamp:  ev.Time.UTC(),
		Input:      ev.Input,
		Features:   ev.Features,
		ModelState: ev.ModelState,
		Error:      ev.Kind,
		ErrorField: ev.Field,
	}
	if ev.Err != nil {
		rec.Error = ev.Kind + ": " + ev.Err.Error()
	}
	return rec
}
