package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/service"
	"github.com/yndnr/touchmap-go/internal/export"
	"github.com/yndnr/touchmap-go/internal/telemetry/logger"
)

// Handler serves the session and export API.
type Handler struct {
	registry *service.Registry
	catalog  export.Catalog
	logger   *slog.Logger
}

// New creates a Handler. A nil catalog serves an empty export listing.
func New(registry *service.Registry, catalog export.Catalog, l *slog.Logger) *Handler {
	if catalog == nil {
		catalog = export.Nop{}
	}
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		registry: registry,
		catalog:  catalog,
		logger:   l,
	}
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "request_id", requestID, "error", err)
	}
}

// WriteError writes an error envelope. It is shared with the middleware
// chain so rejected requests look like any other API error.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := logger.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message, details))
}

// handleServiceError converts errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = domain.ErrPayloadTooLarge.WithDetails(fmt.Sprintf("limit %d bytes", tooLarge.Limit))
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		status := errorCodeToHTTPStatus(de.Code)
		if status >= http.StatusInternalServerError {
			logger.L(r.Context()).Error("request failed", "error", err)
		}
		WriteError(w, r, status, de.Code, de.Message, detailsOf(de))
		return
	}

	logger.L(r.Context()).Error("internal error", "error", err)
	WriteError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, nil)
}

func detailsOf(de *domain.DomainError) any {
	if de.Details != "" {
		return de.Details
	}
	if de.Cause != nil {
		return de.Cause.Error()
	}
	return nil
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"), strings.HasSuffix(code, "-4042"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4100"):
		return http.StatusGone
	case strings.HasSuffix(code, "-4130"):
		return http.StatusRequestEntityTooLarge
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "TH-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. Unknown fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		var de *domain.DomainError
		if errors.As(err, &de) {
			return de
		}
		return domain.ErrBadRequest.WithDetails("invalid request body").WithCause(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.ErrBadRequest.WithDetails("trailing data after request body")
	}
	return nil
}

// tracker resolves the {id} path value and tags the request context with
// the session id for logging.
func (h *Handler) tracker(r *http.Request) (*service.Tracker, *http.Request, error) {
	id := r.PathValue("id")
	if id == "" {
		return nil, r, domain.ErrMissingArgument.WithDetails("session_id is required")
	}
	t, err := h.registry.Get(id)
	if err != nil {
		return nil, r, err
	}
	return t, r.WithContext(logger.WithSessionID(r.Context(), id)), nil
}
