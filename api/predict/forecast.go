package predict

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/gymcrowd/core/features"
	"github.com/kilianp07/gymcrowd/core/model"
	"github.com/kilianp07/gymcrowd/core/prediction"
	"github.com/kilianp07/gymcrowd/core/scheduler"
	"github.com/kilianp07/gymcrowd/pkg/export"
)

// forecast answers GET /api/forecast with a day plan.
// Query: date (YYYY-MM-DD, default today), temperature, semester_status,
// is_holiday, format (json|csv).
func (h *handler) forecast(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	date := h.now()
	if s := v.Get("date"); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "date must be YYYY-MM-DD", Field: "date"})
			return
		}
		date = d
	}
	temp, err := strconv.ParseFloat(v.Get("temperature"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "temperature must be a number", Field: "temperature"})
		return
	}
	cond := scheduler.Conditions{Temperature: temp, SemesterStatus: v.Get("semester_status")}
	if s := v.Get("is_holiday"); s != "" {
		if cond.IsHoliday, err = strconv.ParseBool(s); err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "is_holiday must be a boolean", Field: "is_holiday"})
			return
		}
	}
	format := v.Get("format")
	if format == "" {
		format = export.FormatJSON
	}
	if format != export.FormatJSON && format != export.FormatCSV {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "format must be json or csv", Field: "format"})
		return
	}

	s := scheduler.Scheduler{Config: h.planner, Predictor: h.pred}
	plan, err := s.GeneratePlan(date, cond)
	if err != nil {
		var ie *features.InvalidInputError
		switch {
		case errors.As(err, &ie):
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: ie.Error(), Field: ie.Field})
		case errors.Is(err, prediction.ErrInference):
			writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "inference failed"})
		default:
			h.log.Errorf("forecast: %v", err)
			writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "internal error"})
		}
		return
	}
	if format == export.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		if err := export.WritePlanCSV(w, plan); err != nil {
			h.log.Warnf("write forecast csv: %v", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
