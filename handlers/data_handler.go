package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/sports-meet/middleware"
	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/services"
	"github.com/go-chi/chi/v5"
)

// DataHandler serves the aggregate document and its day and roster sub-documents.
type DataHandler struct {
	query        services.QueryService
	documents    services.DocumentService
	maxBodyBytes int64
}

func NewDataHandler(query services.QueryService, documents services.DocumentService, maxBodyBytes int64) *DataHandler {
	return &DataHandler{query: query, documents: documents, maxBodyBytes: maxBodyBytes}
}

// GetData godoc
// @Summary Whole aggregate document
// @Tags data
// @Produce json
// @Success 200 {object} models.AggregateDocument
// @Failure 404 {object} map[string]string "Aggregate not written yet"
// @Failure 500 {object} map[string]string "Read or parse failure"
// @Router /api/data [get]
func (h *DataHandler) GetData(w http.ResponseWriter, r *http.Request) {
	doc, err := h.query.Aggregate(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, doc, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PostData godoc
// @Summary Replace the aggregate document
// @Description The current aggregate is copied to a timestamped backup before it is overwritten.
// @Tags data
// @Accept json
// @Produce json
// @Param document body models.AggregateDocument true "Replacement aggregate"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Body is not a JSON object"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 500 {object} map[string]string "Write failure"
// @Security BearerAuth
// @Router /api/data [post]
func (h *DataHandler) PostData(w http.ResponseWriter, r *http.Request) {
	doc := models.NewAggregateDocument()
	if err := readJSONKind(w, r, doc, '{', h.maxBodyBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.documents.SaveAggregate(r.Context(), doc)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeSaved(w, r, "data updated successfully", res)
}

// GetGames godoc
// @Summary Raw schedule of one day
// @Description day accepts the day number ("1"), the day key ("第一天") or the fragment name ("10").
// @Tags data
// @Produce json
// @Param day path string true "Day"
// @Success 200 {array} array
// @Failure 404 {object} map[string]string
// @Router /api/games/{day} [get]
func (h *DataHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	day, err := h.query.GetDay(r.Context(), chi.URLParam(r, "day"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, day, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DataHandler) PostGames(w http.ResponseWriter, r *http.Request) {
	var day models.ScheduleDay
	if err := readJSONKind(w, r, &day, '[', h.maxBodyBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.documents.SaveDay(r.Context(), chi.URLParam(r, "day"), day)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeSaved(w, r, "schedule updated successfully", res)
}

// GetPlayers godoc
// @Summary Roster of one event
// @Description id is the event name or a legacy roster file id.
// @Tags data
// @Produce json
// @Param id path string true "Roster id"
// @Success 200 {object} models.PlayerList
// @Failure 404 {object} map[string]string
// @Router /api/players/{id} [get]
func (h *DataHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	roster, err := h.query.GetRosterByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, roster, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DataHandler) PostPlayers(w http.ResponseWriter, r *http.Request) {
	var roster models.PlayerList
	if err := readJSONKind(w, r, &roster, '{', h.maxBodyBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.documents.SaveRoster(r.Context(), chi.URLParam(r, "id"), roster)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeSaved(w, r, "roster updated successfully", res)
}

func (h *DataHandler) GetClassMapping(w http.ResponseWriter, r *http.Request) {
	mapping, err := h.query.GetClassMapping(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, mapping, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func writeSaved(w http.ResponseWriter, r *http.Request, message string, res *services.WriteResult) {
	attrs := []any{slog.String("key", res.Key), slog.String("backup_id", res.BackupID)}
	if sub, err := middleware.GetSubjectFromContext(r.Context()); err == nil {
		attrs = append(attrs, slog.String("admin", sub))
	}
	slog.InfoContext(r.Context(), "document written", attrs...)

	env := jsonResponse{
		"success":   true,
		"message":   message,
		"timestamp": res.Timestamp,
		"key":       res.Key,
	}
	if res.BackupID != "" {
		env["backupId"] = res.BackupID
	}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
