package handlers

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	dataKey string
	now     func() time.Time
}

func NewHealthHandler(dataKey string) *HealthHandler {
	return &HealthHandler{dataKey: dataKey, now: time.Now}
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	env := jsonResponse{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
		"dataFile":  h.dataKey,
	}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
