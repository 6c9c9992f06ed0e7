// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ManuGH/albumplay/internal/library"
	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/media"
	"github.com/go-chi/chi/v5"
)

type albumsResponse struct {
	Title        string          `json:"title"`
	Albums       []media.Summary `json:"albums"`
	AccessDenied bool            `json:"access_denied"`
}

type scanResultResponse struct {
	RootID       string             `json:"root_id"`
	Status       library.RootStatus `json:"status"`
	VideosFound  int                `json:"videos_found"`
	Albums       int                `json:"albums"`
	ErrorCount   int                `json:"error_count"`
	AccessDenied bool               `json:"access_denied"`
	Duration     string             `json:"duration"`
	Error        string             `json:"error,omitempty"`
}

type scanReportResponse struct {
	Results      []scanResultResponse `json:"results"`
	Albums       int                  `json:"albums"`
	AccessDenied bool                 `json:"access_denied"`
}

func toScanResult(res *library.ScanResult) scanResultResponse {
	return scanResultResponse{
		RootID:       res.RootID,
		Status:       res.FinalStatus,
		VideosFound:  res.VideosFound,
		Albums:       len(res.Albums),
		ErrorCount:   res.ErrorCount,
		AccessDenied: res.AccessDenied,
		Duration:     res.Finished.Sub(res.Started).Round(time.Millisecond).String(),
		Error:        res.LastError,
	}
}

// pathID returns the unescaped URL parameter. Album and video IDs contain
// slashes, which clients send escaped as %2F.
func pathID(r *http.Request, key string) (string, error) {
	id, err := url.PathUnescape(chi.URLParam(r, key))
	if err != nil || id == "" {
		return "", fmt.Errorf("%w: invalid %s", errBadRequest, key)
	}
	return id, nil
}

// GET /api/albums
func (s *Server) handleAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.deps.Session.Albums()
	if err != nil {
		writeError(w, r, err)
		return
	}
	title, err := s.deps.Session.NavigationTitle()
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := s.deps.Session.Snapshot()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, albumsResponse{
		Title:        title,
		Albums:       albums,
		AccessDenied: snap.LibraryAccessDenied,
	})
}

// GET /api/library/roots
func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := s.deps.Library.Roots(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roots)
}

// POST /api/library/scan
func (s *Server) handleScanAll(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Library.ScanAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	denied, err := s.deps.Library.AccessDenied(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Session.SetAlbums(report.Albums); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Session.SetLibraryAccess(denied); err != nil {
		writeError(w, r, err)
		return
	}

	resp := scanReportResponse{Albums: len(report.Albums), AccessDenied: denied}
	for _, res := range report.Results {
		resp.Results = append(resp.Results, toScanResult(res))
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/library/roots/{id}/scan
func (s *Server) handleScanRoot(w http.ResponseWriter, r *http.Request) {
	rootID := chi.URLParam(r, "id")
	res, err := s.deps.Library.TriggerScan(r.Context(), rootID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.refreshSession(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScanResult(res))
}

// refreshSession hands the indexed album list of every root to the session.
func (s *Server) refreshSession(ctx context.Context) error {
	albums, err := s.deps.Library.Albums(ctx)
	if err != nil {
		return err
	}
	denied, err := s.deps.Library.AccessDenied(ctx)
	if err != nil {
		return err
	}
	if err := s.deps.Session.SetAlbums(albums); err != nil {
		return err
	}
	return s.deps.Session.SetLibraryAccess(denied)
}

// GET /api/videos/{id}
func (s *Server) handleVideoContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Library.VideoPath(id)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Debug().Err(err).Str(log.FieldVideoID, id).Msg("video lookup failed")
		writeError(w, r, err)
		return
	}
	http.ServeFile(w, r, p)
}
