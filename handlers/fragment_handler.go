package handlers

import (
	"net/http"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/services"
	"github.com/go-chi/chi/v5"
)

// FragmentHandler serves the per-day and per-event split files.
type FragmentHandler struct {
	fragments    services.FragmentService
	maxBodyBytes int64
}

func NewFragmentHandler(fragments services.FragmentService, maxBodyBytes int64) *FragmentHandler {
	return &FragmentHandler{fragments: fragments, maxBodyBytes: maxBodyBytes}
}

// ListGames godoc
// @Summary Names of the stored schedule fragments
// @Tags fragments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/fragments/games [get]
func (h *FragmentHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	files, err := h.fragments.ListSchedules(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"files": files}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetGames godoc
// @Summary One schedule fragment
// @Tags fragments
// @Produce json
// @Param file path string true "Fragment name, with or without .json"
// @Success 200 {array} array
// @Failure 404 {object} map[string]string
// @Router /api/fragments/games/{file} [get]
func (h *FragmentHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	day, err := h.fragments.GetSchedule(r.Context(), chi.URLParam(r, "file"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, day, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FragmentHandler) PostGames(w http.ResponseWriter, r *http.Request) {
	var day models.ScheduleDay
	if err := readJSONKind(w, r, &day, '[', h.maxBodyBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.fragments.SaveSchedule(r.Context(), chi.URLParam(r, "file"), day)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeSaved(w, r, "schedule fragment saved", res)
}

func (h *FragmentHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	files, err := h.fragments.ListRosters(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"files": files}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPlayers godoc
// @Summary One roster fragment
// @Tags fragments
// @Produce json
// @Param id path string true "Roster file id"
// @Success 200 {object} models.PlayerList
// @Failure 404 {object} map[string]string
// @Router /api/fragments/players/{id} [get]
func (h *FragmentHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	roster, err := h.fragments.GetRoster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, roster, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FragmentHandler) PostPlayers(w http.ResponseWriter, r *http.Request) {
	var roster models.PlayerList
	if err := readJSONKind(w, r, &roster, '{', h.maxBodyBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.fragments.SaveRoster(r.Context(), chi.URLParam(r, "id"), roster)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeSaved(w, r, "roster fragment saved", res)
}

func (h *FragmentHandler) GetClassMapping(w http.ResponseWriter, r *http.Request) {
	mapping, err := h.fragments.GetClassMapping(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, mapping, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FragmentHandler) PostClassMapping(w http.ResponseWriter, r *http.Request) {
	var mapping models.ClassMapping
	if err := readJSONKind(w, r, &mapping, '{', h.maxBodyBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.fragments.SaveClassMapping(r.Context(), mapping)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeSaved(w, r, "class mapping saved", res)
}
