// Package predict exposes the occupancy predictor over HTTP.
package predict

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kilianp07/gymcrowd/core/features"
	"github.com/kilianp07/gymcrowd/core/history"
	"github.com/kilianp07/gymcrowd/core/logger"
	"github.com/kilianp07/gymcrowd/core/model"
	"github.com/kilianp07/gymcrowd/core/prediction"
	"github.com/kilianp07/gymcrowd/core/scheduler"
)

// Predictor is the part of the prediction server the API needs.
type Predictor interface {
	Predict(in model.RawInput) (model.PredictionResult, error)
	Health() prediction.Health
	Info() prediction.ModelInfo
}

// Options configures NewRouter.
type Options struct {
	Predictor Predictor
	// Store backs GET /api/predictions; nil answers 404.
	Store          history.Store
	AllowedOrigins []string
	// RateLimitRPS enables per-client limiting when positive.
	RateLimitRPS   float64
	RateLimitBurst int
	// Planner sets the opening hours of GET /api/forecast.
	Planner scheduler.SchedulerConfig
	Log     logger.Logger
}

type handler struct {
	pred    Predictor
	store   history.Store
	planner scheduler.SchedulerConfig
	log     logger.Logger
	now     func() time.Time
}

// NewRouter builds the API routes.
func NewRouter(o Options) http.Handler {
	h := &handler{pred: o.Predictor, store: o.Store, planner: o.Planner, log: o.Log, now: time.Now}
	if h.log == nil {
		h.log = logger.Nop{}
	}
	origins := o.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Get("/api/health", h.health)
	r.Get("/api/model", h.model)
	r.Group(func(r chi.Router) {
		if o.RateLimitRPS > 0 {
			r.Use(newClientLimiter(o.RateLimitRPS, o.RateLimitBurst).middleware)
		}
		r.Post("/api/predict", h.predict)
		r.Get("/api/predictions", h.predictions)
		r.Get("/api/forecast", h.forecast)
	})
	return r
}

// predictRequest uses pointers so missing fields can be reported by name.
type predictRequest struct {
	Hour           *int     `json:"hour"`
	Day            *string  `json:"day"`
	Month          *string  `json:"month"`
	Temperature    *float64 `json:"temperature"`
	SemesterStatus *string  `json:"semester_status"`
	IsHoliday      bool     `json:"is_holiday"`
}

func (p predictRequest) input() (model.RawInput, string) {
	switch {
	case p.Hour == nil:
		return model.RawInput{}, "hour"
	case p.Day == nil:
		return model.RawInput{}, features.FieldDay
	case p.Month == nil:
		return model.RawInput{}, features.FieldMonth
	case p.Temperature == nil:
		return model.RawInput{}, "temperature"
	case p.SemesterStatus == nil:
		return model.RawInput{}, features.FieldSemesterStatus
	}
	return model.RawInput{
		Hour:           *p.Hour,
		Day:            *p.Day,
		Month:          *p.Month,
		Temperature:    *p.Temperature,
		SemesterStatus: *p.SemesterStatus,
		IsHoliday:      p.IsHoliday,
	}, ""
}

func (h *handler) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	in, missing := req.input()
	if missing != "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "missing field", Field: missing})
		return
	}

	res, err := h.pred.Predict(in)
	if err != nil {
		var ie *features.InvalidInputError
		switch {
		case errors.As(err, &ie):
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Field: ie.Field})
		case errors.Is(err, prediction.ErrInference):
			writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "inference failed"})
		default:
			h.log.Errorf("predict: %v", err)
			writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "internal error"})
		}
		return
	}
	writeJSON(w, http.StatusOK, model.NewResponse(res, h.pred.Health().State.String()))
}

type healthResponse struct {
	Status     string `json:"status"`
	ModelState string `json:"model_state"`
	ModelKind  string `json:"model_kind,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	hl := h.pred.Health()
	resp := healthResponse{ModelState: hl.State.String(), ModelKind: hl.ModelKind, Error: hl.Error}
	switch {
	case hl.Healthy:
		resp.Status = "ok"
		writeJSON(w, http.StatusOK, resp)
	case hl.State == prediction.StateDegraded:
		resp.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, resp)
	default:
		resp.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
	}
}

type modelResponse struct {
	prediction.ModelInfo
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func (h *handler) model(w http.ResponseWriter, _ *http.Request) {
	hl := h.pred.Health()
	writeJSON(w, http.StatusOK, modelResponse{ModelInfo: h.pred.Info(), State: hl.State.String(), Error: hl.Error})
}

func (h *handler) predictions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "prediction history is disabled"})
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	recs, err := h.store.Query(r.Context(), q)
	if err != nil {
		h.log.Errorf("query history: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "history unavailable"})
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// maxLimit caps the page size of GET /api/predictions.
const maxLimit = 1000

func parseQuery(r *http.Request) (history.Query, error) {
	v := r.URL.Query()
	q := history.Query{Limit: 100}
	var err error
	if s := v.Get("since"); s != "" {
		if q.Start, err = time.Parse(time.RFC3339, s); err != nil {
			return q, errors.New("since must be RFC3339")
		}
	}
	if s := v.Get("until"); s != "" {
		if q.End, err = time.Parse(time.RFC3339, s); err != nil {
			return q, errors.New("until must be RFC3339")
		}
	}
	if s := v.Get("status"); s != "" {
		st, err := model.ParseStatus(s)
		if err != nil {
			return q, err
		}
		q.Status = &st
	}
	if s := v.Get("degraded"); s != "" {
		if q.DegradedOnly, err = strconv.ParseBool(s); err != nil {
			return q, errors.New("degraded must be a boolean")
		}
	}
	if s := v.Get("failed"); s != "" {
		if q.FailedOnly, err = strconv.ParseBool(s); err != nil {
			return q, errors.New("failed must be a boolean")
		}
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return q, errors.New("limit must be a positive integer")
		}
		q.Limit = min(n, maxLimit)
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
