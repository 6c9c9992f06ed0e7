// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/albumplay/internal/library"
	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/session"
	"github.com/ManuGH/albumplay/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// scanRetryAfter is the Retry-After value, in seconds, sent while a scan runs.
const scanRetryAfter = "5"

// errBadRequest marks client input errors.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a stable error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := classify(err)
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.ErrorAttributes(kind)...)
	if code == http.StatusServiceUnavailable && errors.Is(err, library.ErrScanRunning) {
		w.Header().Set("Retry-After", scanRetryAfter)
	}
	if code >= http.StatusInternalServerError {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(log.FieldEvent, "api.error").Str(log.FieldPath, r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code, errorResponse{
		Error:     kind,
		Detail:    err.Error(),
		RequestID: log.RequestIDFromContext(r.Context()),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, session.ErrAlbumNotFound), errors.Is(err, library.ErrAlbumNotFound):
		return http.StatusNotFound, "album_not_found"
	case errors.Is(err, library.ErrRootNotFound):
		return http.StatusNotFound, "root_not_found"
	case errors.Is(err, library.ErrVideoNotFound):
		return http.StatusNotFound, "video_not_found"
	case errors.Is(err, session.ErrNoAlbumOpen):
		return http.StatusConflict, "no_album_open"
	case errors.Is(err, library.ErrScanRunning):
		return http.StatusServiceUnavailable, "scan_running"
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable, "session_closed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
