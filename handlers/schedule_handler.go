package handlers

import (
	"net/http"

	"github.com/Dosada05/sports-meet/services"
	"github.com/go-chi/chi/v5"
)

// ScheduleHandler serves the reshaped read views the front end renders.
type ScheduleHandler struct {
	query services.QueryService
}

func NewScheduleHandler(query services.QueryService) *ScheduleHandler {
	return &ScheduleHandler{query: query}
}

// GetSchedule godoc
// @Summary Schedule of one day grouped by track/field and morning/afternoon
// @Tags schedule
// @Produce json
// @Param day path string true "Day number, day key or fragment name"
// @Success 200 {object} models.Schedule
// @Failure 404 {object} map[string]string "Unknown day"
// @Router /api/schedule/{day} [get]
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.query.GetSchedule(r.Context(), chi.URLParam(r, "day"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, schedule, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRoster godoc
// @Summary Roster for a schedule entry
// @Description A miss returns {name, players: []} with status 200.
// @Tags schedule
// @Produce json
// @Param name query string true "Event name as written in the schedule"
// @Param grade query string false "Grade prefix"
// @Param time query string false "Event time"
// @Success 200 {object} models.PlayerList
// @Failure 404 {object} map[string]string "Aggregate not written yet"
// @Router /api/rosters [get]
func (h *ScheduleHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roster, err := h.query.GetRosterByName(r.Context(), q.Get("name"), q.Get("grade"), q.Get("time"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, roster, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SearchAthletes godoc
// @Summary Find athletes by name or class
// @Tags schedule
// @Produce json
// @Param q query string true "Case-insensitive substring"
// @Success 200 {object} map[string]interface{}
// @Router /api/athletes [get]
func (h *ScheduleHandler) SearchAthletes(w http.ResponseWriter, r *http.Request) {
	hits, err := h.query.SearchAthletes(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"athletes": hits, "count": len(hits)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
