package handler

import (
	"net/http"
	"strconv"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/telemetry/logger"
)

// checkExportSession rejects anything but a server-issued session id before
// it reaches the catalog.
func (h *Handler) checkExportSession(w http.ResponseWriter, r *http.Request, id string) bool {
	if domain.IsValidSessionID(id) {
		return true
	}
	h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails("malformed session id"))
	return false
}

// ListExports handles GET /exports. The optional session query parameter
// restricts the listing to one session.
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session != "" && !h.checkExportSession(w, r, session) {
		return
	}
	items, err := h.catalog.List(r.Context(), session)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ListExportsResponse{Items: items, Total: len(items)})
}

// GetExport handles GET /exports/{session}/{screen} and returns the stored
// PNG after checksum verification.
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	if !h.checkExportSession(w, r, session) {
		return
	}
	meta, data, err := h.catalog.Get(r.Context(), session, r.PathValue("screen"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", strconv.Quote(meta.Checksum))
	w.Header().Set("X-Artifact-ID", meta.ID)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// DeleteExports handles DELETE /exports/{session}.
func (h *Handler) DeleteExports(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	if !h.checkExportSession(w, r, session) {
		return
	}
	if err := h.catalog.Delete(r.Context(), session); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	logger.L(r.Context()).Info("exports deleted", "session_id", session)
	h.writeJSON(w, r, http.StatusOK, map[string]string{"session_id": session})
}
