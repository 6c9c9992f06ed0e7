// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/albumplay/internal/gesture"
	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/session"
	"github.com/ManuGH/albumplay/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

const eventKeepAlive = 15 * time.Second

// POST /api/albums/{id}/open?portrait=true|false
func (s *Server) handleOpenAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	portrait := true
	if raw := r.URL.Query().Get("portrait"); raw != "" {
		portrait, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: portrait must be a boolean", errBadRequest))
			return
		}
	}

	snap, err := s.deps.Session.OpenAlbum(id, portrait)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.AlbumAttributes(id, snap.PlayListLen, snap.Sort.String())...)
	writeJSON(w, http.StatusOK, snap)
}

// GET /api/playback
func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Session.Snapshot()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// playbackCommand adapts a session command to a POST handler.
func (s *Server) playbackCommand(op string, cmd func() (session.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cmd()
		if err != nil {
			writeError(w, r, err)
			return
		}
		trace.SpanFromContext(r.Context()).SetAttributes(telemetry.PlaybackAttributes(op, snap.AlbumID, snap.PlayIndex)...)
		writeJSON(w, http.StatusOK, snap)
	}
}

type swipeRequest struct {
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	Threshold float64 `json:"threshold"`
}

type swipeResponse struct {
	Action   gesture.Action   `json:"action"`
	Playback session.Snapshot `json:"playback"`
}

// POST /api/playback/swipe
func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	snap, err := s.deps.Session.Snapshot()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !snap.AlbumOpen {
		writeError(w, r, session.ErrNoAlbumOpen)
		return
	}

	action := gesture.Resolve(gesture.Swipe{DX: req.DX, DY: req.DY}, snap.Rotation.Rotated(), snap.CanGoBack, req.Threshold)
	switch action {
	case gesture.Next:
		snap, err = s.deps.Session.NextPlay()
	case gesture.Previous:
		snap, err = s.deps.Session.PreviousPlay()
	case gesture.Close:
		snap, err = s.deps.Session.CloseAlbum()
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, swipeResponse{Action: action, Playback: snap})
}

// GET /api/playback/events streams session events as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, cancel, err := s.deps.Session.Subscribe()
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cancel()

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "api")
	keepAlive := time.NewTicker(eventKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error().Err(err).Str(log.FieldEventID, ev.ID.String()).Msg("failed to encode session event")
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Kind, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
