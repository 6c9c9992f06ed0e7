// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/albumplay/internal/library"
	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/media"
	"github.com/rs/zerolog"
)

// SessionRuntime is the part of the playback session driven by the daemon.
type SessionRuntime interface {
	Run(ctx context.Context) error
	SetAlbums(albums []media.Album) error
	SetLibraryAccess(denied bool) error
}

// LibraryRuntime loads and rescans the album index.
type LibraryRuntime interface {
	Albums(ctx context.Context) ([]media.Album, error)
	AccessDenied(ctx context.Context) (bool, error)
	ScanAll(ctx context.Context) (*library.ScanReport, error)
}

// LibraryWatcher publishes a scan report whenever the library changes on disk.
type LibraryWatcher interface {
	Run(ctx context.Context) error
	Updates() <-chan *library.ScanReport
}

// App owns the long-lived runtime (session loop, library loading, watcher)
// and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	session      SessionRuntime
	library      LibraryRuntime
	watcher      LibraryWatcher
	rescanSignal os.Signal
}

// NewApp creates a new App orchestrator. watcher may be nil.
func NewApp(logger zerolog.Logger, manager Manager, session SessionRuntime, lib LibraryRuntime, watcher LibraryWatcher) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		session:      session,
		library:      lib,
		watcher:      watcher,
		rescanSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or a fatal error occurs. The runtime is stopped by a shutdown
// hook so that it ends before the stores registered earlier are closed.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, gctx := errgroup.WithContext(ctx)
	rctx, stopRuntime := context.WithCancel(gctx)
	defer stopRuntime()

	var wg sync.WaitGroup
	spawn := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	if a.session != nil {
		spawn(func() {
			if err := a.session.Run(rctx); err != nil {
				a.logger.Error().Err(err).Str(log.FieldEvent, "session.failed").Msg("session loop failed")
			}
		})
		if a.library != nil {
			spawn(func() { a.loadLibrary(rctx) })
			if a.rescanSignal != nil {
				spawn(func() { a.rescanOnSignal(rctx) })
			}
		}
		if a.watcher != nil {
			spawn(func() {
				if err := a.watcher.Run(rctx); err != nil {
					a.logger.Warn().Err(err).Str(log.FieldEvent, "library.watcher_failed").Msg("library watcher failed")
				}
			})
			spawn(func() { a.forwardUpdates(rctx) })
		}
	}

	a.manager.RegisterShutdownHook("runtime", func(hookCtx context.Context) error {
		stopRuntime()
		stopped := make(chan struct{})
		go func() {
			wg.Wait()
			close(stopped)
		}()
		select {
		case <-stopped:
			return nil
		case <-hookCtx.Done():
			return hookCtx.Err()
		}
	})

	g.Go(func() error {
		err := a.manager.Start(gctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// loadLibrary publishes the persisted index first so the album list is
// available immediately, then rescans every root.
func (a *App) loadLibrary(ctx context.Context) {
	if albums, err := a.library.Albums(ctx); err != nil {
		a.logger.Warn().Err(err).Str(log.FieldEvent, "library.index_load_failed").Msg("cannot read persisted album index")
	} else if len(albums) > 0 {
		denied, _ := a.library.AccessDenied(ctx)
		a.publishLibrary(albums, denied)
	}
	a.rescan(ctx)
}

func (a *App) rescan(ctx context.Context) {
	report, err := a.library.ScanAll(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, library.ErrScanRunning) {
			return
		}
		a.logger.Error().Err(err).Str(log.FieldEvent, "library.scan_failed").Msg("library scan failed")
		return
	}
	a.apply(report)
}

func (a *App) rescanOnSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.rescanSignal)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			a.logger.Info().
				Str(log.FieldEvent, "library.rescan_signal").
				Str("signal", a.rescanSignal.String()).
				Msg("received rescan signal, rescanning library")
			a.rescan(ctx)
		}
	}
}

func (a *App) forwardUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-a.watcher.Updates():
			if !ok {
				return
			}
			a.apply(report)
		}
	}
}

func (a *App) apply(report *library.ScanReport) {
	if report == nil {
		return
	}
	a.publishLibrary(report.Albums, report.AccessDenied)
}

func (a *App) publishLibrary(albums []media.Album, denied bool) {
	if err := a.session.SetAlbums(albums); err != nil {
		a.logger.Debug().Err(err).Msg("session not accepting albums")
		return
	}
	_ = a.session.SetLibraryAccess(denied)
}
