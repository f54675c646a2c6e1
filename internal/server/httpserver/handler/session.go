package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/telemetry/logger"
)

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	t, err := h.registry.Create(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, CreateSessionResponse{
		SessionID: t.ID(),
		CreatedAt: t.CreatedAt(),
	})
}

// ListSessions handles GET /sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	items := h.registry.List()
	h.writeJSON(w, r, http.StatusOK, ListSessionsResponse{Items: items, Total: len(items)})
}

// GetSession handles GET /sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	t, r, err := h.tracker(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	records := t.Screens()
	screens := make([]ScreenResponse, 0, len(records))
	for _, rec := range records {
		screens = append(screens, screenToResponse(rec))
	}

	h.writeJSON(w, r, http.StatusOK, SessionResponse{
		SessionID: t.ID(),
		CreatedAt: t.CreatedAt(),
		Active:    t.Active(),
		Stats:     t.Stats(),
		Screens:   screens,
	})
}

// CloseSession handles DELETE /sessions/{id}. The session is flushed and
// stops being hosted.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	r = r.WithContext(logger.WithSessionID(r.Context(), id))

	report, err := h.registry.Close(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, report)
}

// FlushSession handles POST /sessions/{id}/flush. The session stays open
// with an empty store.
func (h *Handler) FlushSession(w http.ResponseWriter, r *http.Request) {
	t, r, err := h.tracker(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	report, err := t.Flush(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, report)
}

// Navigate handles POST /sessions/{id}/navigations.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	t, r, err := h.tracker(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req NavigateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	tr, err := t.Navigate(req.ScreenID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, tr)
}

// AddSamples handles POST /sessions/{id}/samples. Samples without a
// timestamp are stamped on arrival.
func (h *Handler) AddSamples(w http.ResponseWriter, r *http.Request) {
	t, r, err := h.tracker(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req SamplesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if req.ScreenID != "" {
		if err := domain.ValidateScreenID(req.ScreenID); err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}

	now := time.Now()
	var resp SamplesResponse
	for _, s := range req.Samples {
		if s.Timestamp.IsZero() {
			s.Timestamp = now
		}
		if t.AddSample(req.ScreenID, s) {
			resp.Accepted++
		} else {
			resp.Dropped++
		}
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// PutSnapshot handles PUT /sessions/{id}/screens/{screen}/snapshot. The
// body is a raw encoded image. Only the first snapshot of a screen is kept;
// later uploads report attached=false.
func (h *Handler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	t, r, err := h.tracker(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	screenID := r.PathValue("screen")
	if _, err := t.Screen(screenID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	img, format, err := render.DecodeImage(r.Body)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	b := img.Bounds()
	h.writeJSON(w, r, http.StatusOK, SnapshotResponse{
		ScreenID: screenID,
		Attached: t.AttachSnapshot(screenID, img),
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
	})
}

// Heatmap handles GET /sessions/{id}/screens/{screen}/heatmap.png. It
// renders the screen's current samples without draining them.
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	t, r, err := h.tracker(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	res, err := t.Preview(r.Context(), r.PathValue("screen"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	data, err := render.PNGBytes(res.Image)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Heatmap-Rendered", strconv.FormatBool(res.Rendered))
	w.Header().Set("X-Heatmap-Samples", strconv.Itoa(res.Samples))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
