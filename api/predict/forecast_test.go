package predict

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gymcrowd/core/features"
	"github.com/kilianp07/gymcrowd/core/prediction"
	"github.com/kilianp07/gymcrowd/core/scheduler"
)

func hourlyServer(t *testing.T) *prediction.Server {
	t.Helper()
	m := prediction.ModelFunc(func(x []float64) (float64, error) { return x[features.Hour] * 4, nil })
	srv, err := prediction.NewServer(prediction.Preloaded(m, prediction.ModelInfo{Kind: "linear", NumFeatures: features.Len}))
	require.NoError(t, err)
	return srv
}

func TestForecast_JSON(t *testing.T) {
	h := NewRouter(Options{Predictor: hourlyServer(t), Planner: scheduler.SchedulerConfig{OpenHour: 6, CloseHour: 22, Suggestions: 2}})
	rr, out := do(t, h, http.MethodGet, "/api/forecast?date=2026-09-16&temperature=70&semester_status=During+Semester", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Wednesday", out["day"])
	assert.Equal(t, "September", out["month"])
	slots := out["slots"].([]any)
	require.Len(t, slots, 16)
	first := slots[0].(map[string]any)
	assert.EqualValues(t, 6, first["hour"])
	assert.EqualValues(t, 24, first["count"])
	assert.Equal(t, "Moderate", first["status"])
	last := slots[15].(map[string]any)
	assert.Equal(t, "Crowded", last["status"])
	suggested := out["suggested"].([]any)
	require.Len(t, suggested, 2)
	assert.EqualValues(t, 6, suggested[0].(map[string]any)["hour"])
	assert.EqualValues(t, 7, suggested[1].(map[string]any)["hour"])
}

func TestForecast_CSV(t *testing.T) {
	h := NewRouter(Options{Predictor: hourlyServer(t), Planner: scheduler.SchedulerConfig{OpenHour: 8, CloseHour: 10}})
	rr, _ := do(t, h, http.MethodGet, "/api/forecast?date=2026-09-16&temperature=70&semester_status=During+Semester&format=csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	rows, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "8", rows[1][1])
	assert.Equal(t, "32", rows[1][2])
}

func TestForecast_BadRequests(t *testing.T) {
	h := NewRouter(Options{Predictor: hourlyServer(t)})
	cases := []struct {
		query string
		field string
	}{
		{"date=16/09/2026&temperature=70&semester_status=During+Semester", "date"},
		{"semester_status=During+Semester", "temperature"},
		{"temperature=70&semester_status=During+Semester&is_holiday=maybe", "is_holiday"},
		{"temperature=70&semester_status=During+Semester&format=xml", "format"},
		{"temperature=70&semester_status=Summer", "semester_status"},
	}
	for _, c := range cases {
		rr, out := do(t, h, http.MethodGet, "/api/forecast?"+c.query, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, c.query)
		assert.Equal(t, c.field, out["field"], c.query)
	}
}

func TestForecast_Degraded(t *testing.T) {
	h := NewRouter(Options{Predictor: degradedServer(t)})
	rr, out := do(t, h, http.MethodGet, "/api/forecast?temperature=60&semester_status=Semester+Break", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, out["degraded"])
	assert.Len(t, out["slots"], 24)
}
