// Package export writes plans and prediction history as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/gymcrowd/core/history"
	"github.com/kilianp07/gymcrowd/core/scheduler"
)

// Formats accepted by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePlanCSV writes one row per forecast slot.
func WritePlanCSV(w io.Writer, plan scheduler.Plan) error {
	suggested := make(map[int]bool, len(plan.Suggested))
	for _, s := range plan.Suggested {
		suggested[s.Hour] = true
	}
	rows := make([][]string, 0, len(plan.Slots))
	for _, s := range plan.Slots {
		rows = append(rows, []string{
			s.Start.Format(time.RFC3339),
			strconv.Itoa(s.Hour),
			strconv.Itoa(s.Count),
			s.Status.String(),
			strconv.FormatBool(suggested[s.Hour]),
			strconv.FormatBool(s.Degraded),
		})
	}
	return writeCSV(w, []string{"start", "hour", "count", "status", "suggested", "degraded"}, rows)
}

// WriteRecordsCSV writes one row per history record. Failed records leave
// the prediction columns empty.
func WriteRecordsCSV(w io.Writer, recs []history.Record) error {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		count, status := "", ""
		if !r.Failed() {
			count = strconv.Itoa(r.Result.Count)
			status = r.Result.Status.String()
		}
		rows = append(rows, []string{
			r.ID,
			r.Timestamp.Format(time.RFC3339Nano),
			strconv.Itoa(r.Input.Hour),
			r.Input.Day,
			r.Input.Month,
			strconv.FormatFloat(r.Input.Temperature, 'f', -1, 64),
			r.Input.SemesterStatus,
			strconv.FormatBool(r.Input.IsHoliday),
			count,
			status,
			r.ModelState,
			r.Error,
		})
	}
	header := []string{"id", "timestamp", "hour", "day", "month", "temperature",
		"semester_status", "is_holiday", "count", "status", "model_state", "error"}
	return writeCSV(w, header, rows)
}

// Plan writes plan in the given format.
func Plan(w io.Writer, format string, plan scheduler.Plan) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, plan)
	case FormatCSV:
		return WritePlanCSV(w, plan)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// Records writes recs in the given format.
func Records(w io.Writer, format string, recs []history.Record) error {
	switch format {
	case FormatJSON:
		if recs == nil {
			recs = []history.Record{}
		}
		return WriteJSON(w, recs)
	case FormatCSV:
		return WriteRecordsCSV(w, recs)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
