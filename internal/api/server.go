// SPDX-License-Identifier: MIT

// Package api exposes the album list, the playback session and the user
// settings over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/ManuGH/albumplay/internal/api/middleware"
	"github.com/ManuGH/albumplay/internal/health"
	"github.com/ManuGH/albumplay/internal/library"
	"github.com/ManuGH/albumplay/internal/media"
	"github.com/ManuGH/albumplay/internal/playback"
	"github.com/ManuGH/albumplay/internal/session"
	"github.com/ManuGH/albumplay/internal/settings"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Library is the album loader used by the API.
type Library interface {
	Roots(ctx context.Context) ([]library.Root, error)
	Albums(ctx context.Context) ([]media.Album, error)
	AccessDenied(ctx context.Context) (bool, error)
	TriggerScan(ctx context.Context, rootID string) (*library.ScanResult, error)
	ScanAll(ctx context.Context) (*library.ScanReport, error)
	VideoPath(id string) (string, error)
}

// Session is the playback session used by the API.
type Session interface {
	SetAlbums(albums []media.Album) error
	SetLibraryAccess(denied bool) error
	Albums() ([]media.Summary, error)
	NavigationTitle() (string, error)
	OpenAlbum(id string, displayPortrait bool) (session.Snapshot, error)
	NextPlay() (session.Snapshot, error)
	PreviousPlay() (session.Snapshot, error)
	PausePlay() (session.Snapshot, error)
	RestartPlay() (session.Snapshot, error)
	TogglePause() (session.Snapshot, error)
	CloseAlbum() (session.Snapshot, error)
	Snapshot() (session.Snapshot, error)
	Subscribe() (<-chan session.Event, func(), error)
}

// Settings is the user preference manager used by the API.
type Settings interface {
	Current() settings.Settings
	StoreOrientation(ctx context.Context, o settings.Orientation) error
	StoreSort(ctx context.Context, p playback.SortPolicy) error
	Patch(ctx context.Context, key string, mutate func(*settings.Settings)) error
}

// Deps bundles the collaborators of the server.
type Deps struct {
	Library  Library
	Session  Session
	Settings Settings
	Health   *health.Manager
}

// Config tunes the HTTP surface.
type Config struct {
	RateLimitPerMin int
	AllowedOrigins  []string
	TracingService  string // empty disables tracing
}

// Server holds the HTTP handlers.
type Server struct {
	cfg  Config
	deps Deps
}

// New creates a server.
func New(cfg Config, deps Deps) *Server {
	if deps.Health == nil {
		deps.Health = health.NewManager("")
	}
	return &Server{cfg: cfg, deps: deps}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            len(s.cfg.AllowedOrigins) > 0,
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        s.cfg.TracingService,
		EnableLogging:         true,
		RateLimitPerMin:       s.cfg.RateLimitPerMin,
	})

	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/albums", s.handleAlbums)
		r.Post("/albums/{id}/open", s.handleOpenAlbum)
		r.Get("/videos/{id}", s.handleVideoContent)

		r.Route("/library", func(r chi.Router) {
			r.Get("/roots", s.handleRoots)
			r.With(middleware.ScanRateLimit()).Post("/scan", s.handleScanAll)
			r.With(middleware.ScanRateLimit()).Post("/roots/{id}/scan", s.handleScanRoot)
		})

		r.Route("/playback", func(r chi.Router) {
			r.Get("/", s.handlePlayback)
			r.Get("/events", s.handleEvents)
			r.Post("/next", s.playbackCommand("next", s.deps.Session.NextPlay))
			r.Post("/previous", s.playbackCommand("previous", s.deps.Session.PreviousPlay))
			r.Post("/pause", s.playbackCommand("pause", s.deps.Session.PausePlay))
			r.Post("/restart", s.playbackCommand("restart", s.deps.Session.RestartPlay))
			r.Post("/toggle", s.playbackCommand("toggle", s.deps.Session.TogglePause))
			r.Post("/close", s.playbackCommand("close", s.deps.Session.CloseAlbum))
			r.Post("/swipe", s.handleSwipe)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
	})
	return r
}

// MetricsHandler returns the Prometheus scrape handler for the metrics listener.
func MetricsHandler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	return r
}
