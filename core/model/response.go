package model

// Response is the caller-facing rendering of a PredictionResult shared by
// the HTTP and MQTT transports.
type Response struct {
	RequestID  string `json:"request_id,omitempty"`
	Count      int    `json:"count"`
	CountText  string `json:"count_text"`
	Status     Status `json:"status"`
	Message    string `json:"message"`
	Degraded   bool   `json:"degraded"`
	ModelState string `json:"model_state"`
}

// NewResponse renders res for display.
func NewResponse(res PredictionResult, modelState string) Response {
	return Response{
		Count:      res.Count,
		CountText:  res.CountText(),
		Status:     res.Status,
		Message:    res.Status.Message(),
		Degraded:   res.Degraded,
		ModelState: modelState,
	}
}

// ErrorResponse is returned when no prediction could be produced.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
}
