package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/sports-meet/services"
	"github.com/go-chi/chi/v5"
)

// AdminHandler exposes backups and the server-side merge.
type AdminHandler struct {
	documents    services.DocumentService
	maxBodyBytes int64
}

func NewAdminHandler(documents services.DocumentService, maxBodyBytes int64) *AdminHandler {
	return &AdminHandler{documents: documents, maxBodyBytes: maxBodyBytes}
}

// ListBackups godoc
// @Summary Aggregate backups, newest first
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/backups [get]
func (h *AdminHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.documents.ListBackups(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"backups": backups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RestoreBackup godoc
// @Summary Make a backup the current aggregate
// @Tags admin
// @Produce json
// @Param id path string true "Backup id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/backups/{id}/restore [post]
func (h *AdminHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	res, err := h.documents.RestoreBackup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeSaved(w, r, "backup restored", res)
}

type mergeRequest struct {
	Strict bool `json:"strict"`
	DryRun bool `json:"dryRun"`
}

// Merge godoc
// @Summary Rebuild the aggregate from the stored fragments
// @Description With dryRun the merged document is returned instead of persisted.
// @Tags admin
// @Accept json
// @Produce json
// @Param options body mergeRequest false "Merge options"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Class mapping missing"
// @Failure 409 {object} map[string]string "Duplicate roster names in strict mode"
// @Security BearerAuth
// @Router /api/merge [post]
func (h *AdminHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var input mergeRequest
	if err := readJSON(w, r, &input, h.maxBodyBytes, true); err != nil && !errors.Is(err, errEmptyBody) {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.documents.RunMerge(r.Context(), services.MergeInput{Strict: input.Strict, DryRun: input.DryRun})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateRosterName) && res != nil {
			errorResponse(w, r, http.StatusConflict, jsonResponse{"message": err.Error(), "report": res.Report})
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	env := jsonResponse{"success": true, "report": res.Report}
	if res.Write != nil {
		env["timestamp"] = res.Write.Timestamp
		if res.Write.BackupID != "" {
			env["backupId"] = res.Write.BackupID
		}
	}
	if input.DryRun {
		env["document"] = res.Document
	}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
