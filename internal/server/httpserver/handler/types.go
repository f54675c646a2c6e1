package handler

import (
	"time"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/service"
	"github.com/yndnr/touchmap-go/internal/export"
	"github.com/yndnr/touchmap-go/internal/storage/memory"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// CreateSessionResponse is the response body for POST /sessions.
type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListSessionsResponse is the response body for GET /sessions.
type ListSessionsResponse struct {
	Items []service.SessionInfo `json:"items"`
	Total int                   `json:"total"`
}

// ScreenResponse summarizes one tracked screen.
type ScreenResponse struct {
	ScreenID    string            `json:"screen_id"`
	Samples     int               `json:"samples"`
	HasSnapshot bool              `json:"has_snapshot"`
	Width       int               `json:"width,omitempty"`
	Height      int               `json:"height,omitempty"`
	Provenance  domain.Provenance `json:"provenance"`
	FirstSeen   time.Time         `json:"first_seen"`
	LastSeen    time.Time         `json:"last_seen"`
}

// SessionResponse is the response body for GET /sessions/{id}.
type SessionResponse struct {
	SessionID string           `json:"session_id"`
	CreatedAt time.Time        `json:"created_at"`
	Active    string           `json:"active,omitempty"`
	Stats     memory.Stats     `json:"stats"`
	Screens   []ScreenResponse `json:"screens"`
}

// NavigateRequest is the request body for POST /sessions/{id}/navigations.
type NavigateRequest struct {
	ScreenID string `json:"screen_id"`
}

// SamplesRequest is the request body for POST /sessions/{id}/samples.
// An empty ScreenID records against the active screen.
type SamplesRequest struct {
	ScreenID string               `json:"screen_id,omitempty"`
	Samples  []domain.TouchSample `json:"samples"`
}

// SamplesResponse is the response body for POST /sessions/{id}/samples.
type SamplesResponse struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// SnapshotResponse is the response body for PUT .../snapshot.
type SnapshotResponse struct {
	ScreenID string `json:"screen_id"`
	Attached bool   `json:"attached"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ListExportsResponse is the response body for GET /exports.
type ListExportsResponse struct {
	Items []export.Metadata `json:"items"`
	Total int               `json:"total"`
}

func screenToResponse(rec *domain.Record) ScreenResponse {
	resp := ScreenResponse{
		ScreenID:    rec.ScreenID,
		Samples:     len(rec.Samples),
		HasSnapshot: rec.HasSnapshot(),
		Provenance:  rec.Provenance,
		FirstSeen:   rec.FirstSeen,
		LastSeen:    rec.LastSeen,
	}
	if rec.HasSnapshot() {
		b := rec.Snapshot.Bounds()
		resp.Width, resp.Height = b.Dx(), b.Dy()
	}
	return resp
}
