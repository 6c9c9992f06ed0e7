// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/albumplay/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Watcher rescans the library when files under a root change and publishes
// each new report on Updates.
type Watcher struct {
	svc      *Service
	debounce time.Duration
	limiter  *rate.Limiter
	updates  chan *ScanReport
	logger   zerolog.Logger
}

// NewWatcher creates a watcher for the roots of svc. Bursts of changes within
// debounce trigger a single rescan, and at most perMinute rescans run per
// minute (unlimited when perMinute <= 0).
func NewWatcher(svc *Service, debounce time.Duration, perMinute int) *Watcher {
	limit := rate.Inf
	burst := 1
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		svc:      svc,
		debounce: debounce,
		limiter:  rate.NewLimiter(limit, burst),
		updates:  make(chan *ScanReport, 1),
		logger:   log.WithComponent("library.watcher"),
	}
}

// Updates delivers scan reports. Only the latest report is kept when the
// reader falls behind. The channel is closed when Run returns.
func (w *Watcher) Updates() <-chan *ScanReport {
	return w.updates
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.updates)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, cfg := range w.svc.Configs() {
		if err := addTree(fw, cfg.Path); err != nil {
			w.logger.Warn().Err(err).Str(log.FieldRootID, cfg.ID).Msg("cannot watch library root")
		}
	}

	// Armed only by file events.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str(log.FieldEvent, "library.watcher_stopped").Msg("library watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fw, event.Name); err != nil {
						w.logger.Debug().Err(err).Msg("cannot watch new directory")
					}
				}
			}
			w.logger.Debug().
				Str(log.FieldEvent, "library.fs_changed").
				Str("op", event.Op.String()).
				Msg("library content changed")
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Str(log.FieldEvent, "library.watcher_error").Msg("library watcher error")

		case <-timer.C:
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			report, err := w.svc.ScanAll(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error().Err(err).Str(log.FieldEvent, "library.rescan_failed").Msg("library rescan failed")
				continue
			}
			w.publish(report)
		}
	}
}

func (w *Watcher) publish(report *ScanReport) {
	select {
	case w.updates <- report:
		return
	default:
	}
	// Replace the stale report.
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- report:
	default:
		w.logger.Warn().Str(log.FieldEvent, "library.update_dropped").Msg("dropped library update")
	}
}

// addTree watches root and every non-hidden directory below it.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return fw.Add(p)
	})
}
