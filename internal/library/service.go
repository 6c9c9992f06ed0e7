// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/albumplay/internal/cache"
	"github.com/ManuGH/albumplay/internal/fsutil"
	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/media"
	"github.com/ManuGH/albumplay/internal/metrics"
	"github.com/ManuGH/albumplay/internal/telemetry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const scanAllKey = "scan:all"

// Service is the album loader: it scans roots, persists the index and serves
// the album list.
type Service struct {
	configs []RootConfig
	store   *Store
	scanner *Scanner
	logger  zerolog.Logger

	cache    cache.AlbumCache
	cacheTTL time.Duration

	// One scan per root at a time; a second request gets ErrScanRunning.
	activeScans sync.Map // map[string]*sync.Mutex
	// Concurrent ScanAll calls share one run.
	group singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the album list cache and its TTL.
func WithCache(c cache.AlbumCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// NewService creates a library service and registers the configured roots.
func NewService(configs []RootConfig, store *Store, opts ...Option) *Service {
	svc := &Service{
		configs: configs,
		store:   store,
		scanner: NewScanner(),
		logger:  log.WithComponent("library"),
		cache:   cache.NewNoOp(),
	}
	for _, opt := range opts {
		opt(svc)
	}

	ctx := context.Background()
	for _, cfg := range configs {
		if err := store.UpsertRoot(ctx, cfg.ID, cfg.Type); err != nil {
			svc.logger.Error().Err(err).Str(log.FieldRootID, cfg.ID).Msg("failed to initialize library root")
		}
	}
	return svc
}

// Configs returns the root configurations.
func (s *Service) Configs() []RootConfig {
	return s.configs
}

// Roots returns all library roots with their current status. It never blocks
// on a running scan.
func (s *Service) Roots(ctx context.Context) ([]Root, error) {
	return s.store.Roots(ctx)
}

// Albums returns the indexed albums, each holding at least one video.
func (s *Service) Albums(ctx context.Context) ([]media.Album, error) {
	if albums, ok := s.cache.Albums(ctx); ok {
		metrics.RecordCacheLookup(true)
		return albums, nil
	}
	metrics.RecordCacheLookup(false)

	albums, err := s.store.Albums(ctx)
	if err != nil {
		return nil, fmt.Errorf("load albums: %w", err)
	}
	s.cache.SetAlbums(ctx, albums, s.cacheTTL)
	return albums, nil
}

// Album returns one album by ID.
func (s *Service) Album(ctx context.Context, id string) (media.Album, error) {
	if albums, ok := s.cache.Albums(ctx); ok {
		if a, found := media.FindAlbum(albums, id); found {
			return a, nil
		}
	}
	return s.store.Album(ctx, id)
}

// AccessDenied reports whether any root failed its last scan for lack of
// read permission.
func (s *Service) AccessDenied(ctx context.Context) (bool, error) {
	roots, err := s.store.Roots(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range roots {
		if r.AccessDenied {
			return true, nil
		}
	}
	return false, nil
}

// VideoPath resolves a video ID to the file it names. The path is confined to
// the video's root and must name a regular file with an allowed extension.
func (s *Service) VideoPath(id string) (string, error) {
	rootID, rel, ok := strings.Cut(id, ":/")
	if !ok || rel == "" {
		return "", fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	cfg, ok := s.rootConfig(rootID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRootNotFound, rootID)
	}
	allowed := cfg.IncludeExt
	if len(allowed) == 0 {
		allowed = DefaultVideoExt
	}
	if !isAllowedExtension(path.Ext(rel), allowed) {
		return "", fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	p, err := fsutil.ConfineRelPath(cfg.Path, rel)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVideoNotFound, err)
	}
	if err := fsutil.IsRegularFile(p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrVideoNotFound, err)
	}
	return p, nil
}

func (s *Service) rootConfig(rootID string) (RootConfig, bool) {
	for _, c := range s.configs {
		if c.ID == rootID {
			return c, true
		}
	}
	return RootConfig{}, false
}

// TriggerScan scans one root on demand. It returns ErrScanRunning when a scan
// of the root is already in progress and ErrRootNotFound for unknown roots.
// A scan that fails on the filesystem is not an error: the result carries
// the failed status.
func (s *Service) TriggerScan(ctx context.Context, rootID string) (*ScanResult, error) {
	cfg, ok := s.rootConfig(rootID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootID)
	}
	res, err := s.scanRoot(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return res, nil
}

// ScanAll scans every root concurrently and returns the resulting album list.
// Roots that are already being scanned are skipped.
func (s *Service) ScanAll(ctx context.Context) (*ScanReport, error) {
	v, err, shared := s.group.Do(scanAllKey, func() (any, error) {
		return s.scanAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug().Str(log.FieldEvent, "library.scan_shared").Msg("joined running scan")
	}
	return v.(*ScanReport), nil
}

func (s *Service) scanAll(ctx context.Context) (*ScanReport, error) {
	results := make([]*ScanResult, len(s.configs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, cfg := range s.configs {
		i, cfg := i, cfg
		g.Go(func() error {
			res, err := s.scanRoot(gctx, cfg)
			if errors.Is(err, ErrScanRunning) {
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	albums, err := s.Albums(ctx)
	if err != nil {
		return nil, err
	}

	// Skipped roots keep their last recorded access state.
	denied, err := s.AccessDenied(ctx)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{Albums: albums, AccessDenied: denied}
	for _, res := range results {
		if res == nil {
			continue
		}
		report.Results = append(report.Results, res)
	}
	metrics.SetAlbums(len(albums))
	return report, nil
}

// scanRoot holds the per-root lock for the duration of the scan and records
// the outcome. Only lock and persistence problems are returned as errors.
func (s *Service) scanRoot(ctx context.Context, cfg RootConfig) (*ScanResult, error) {
	mu, _ := s.activeScans.LoadOrStore(cfg.ID, &sync.Mutex{})
	scanMu := mu.(*sync.Mutex)
	if !scanMu.TryLock() {
		return nil, ErrScanRunning
	}
	defer scanMu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, "library.scan_root")
	var spanErr error
	defer func() { telemetry.EndSpan(span, spanErr) }()

	if err := s.store.MarkRunning(ctx, cfg.ID, time.Now()); err != nil {
		spanErr = err
		return nil, fmt.Errorf("mark scan running: %w", err)
	}

	res, scanErr := s.scanner.ScanRoot(ctx, cfg)
	span.SetAttributes(telemetry.ScanAttributes(cfg.ID, res.FinalStatus.String(), len(res.Albums), res.VideosFound, res.AccessDenied)...)
	if scanErr != nil {
		s.logger.Error().
			Err(scanErr).
			Str(log.FieldRootID, cfg.ID).
			Bool("access_denied", res.AccessDenied).
			Str(log.FieldEvent, "library.scan_failed").
			Msg("library scan failed")
	}

	// Record the outcome even if the scan context was cancelled.
	if err := s.store.RecordScan(context.WithoutCancel(ctx), res); err != nil {
		spanErr = err
		return nil, fmt.Errorf("record scan: %w", err)
	}

	duration := res.Finished.Sub(res.Started)
	metrics.RecordLibraryScan(cfg.ID, res.FinalStatus.String(), duration)
	s.logger.Info().
		Str(log.FieldRootID, cfg.ID).
		Str(log.FieldEvent, "library.scan_complete").
		Str("status", res.FinalStatus.String()).
		Int("albums", len(res.Albums)).
		Int("videos", res.VideosFound).
		Int("scanned", res.TotalScanned).
		Int("errors", res.ErrorCount).
		Dur(log.FieldDuration, duration).
		Msg("library scan complete")

	return res, nil
}
