package handlers

import "net/http"

type HealthResponse struct {
	Status          string   `json:"status"`
	TrackerEnabled  bool     `json:"trackerEnabled"`
	DisabledReasons []string `json:"disabledReasons,omitempty"`
}

type HealthHandler struct {
	trackerEnabled bool
	reasons        []string
}

func NewHealthHandler(trackerEnabled bool, reasons []string) *HealthHandler {
	return &HealthHandler{trackerEnabled: trackerEnabled, reasons: reasons}
}

func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) Result {
	return Ok(HealthResponse{
		Status:          "ok",
		TrackerEnabled:  h.trackerEnabled,
		DisabledReasons: h.reasons,
	})
}
