// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"

	"github.com/ManuGH/albumplay/internal/api"
	"github.com/ManuGH/albumplay/internal/cache"
	"github.com/ManuGH/albumplay/internal/config"
	"github.com/ManuGH/albumplay/internal/health"
	"github.com/ManuGH/albumplay/internal/library"
	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/persistence/sqlite"
	"github.com/ManuGH/albumplay/internal/session"
	"github.com/ManuGH/albumplay/internal/settings"
	"github.com/ManuGH/albumplay/internal/telemetry"
)

// closer is a resource opened during bootstrap.
type closer struct {
	name  string
	close func(ctx context.Context) error
}

// Bootstrap wires every component described by cfg and returns an App ready
// to Run. Resources opened here are released by the manager's shutdown hooks,
// or immediately if bootstrap fails part way.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (app *App, err error) {
	logger := log.WithComponent("daemon")

	var closers []closer
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i].close(context.Background()); cerr != nil {
				logger.Warn().Err(cerr).Str("resource", closers[i].name).Msg("cleanup after failed bootstrap")
			}
		}
	}()
	track := func(name string, fn func(ctx context.Context) error) {
		closers = append(closers, closer{name: name, close: fn})
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	track("telemetry", tp.Shutdown)

	verifyLibraryDB(ctx, cfg.Library.DBPath)

	store, err := library.NewStore(cfg.Library.DBPath)
	if err != nil {
		return nil, err
	}
	track("library-store", func(context.Context) error { return store.Close() })

	albumCache, err := openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	track("album-cache", func(context.Context) error { return albumCache.Close() })

	settingsStore, err := settings.NewStore(ctx, cfg.Settings.Backend, settings.Options{
		Dir: filepath.Join(cfg.DataDir, "settings"),
		Redis: settings.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	track("settings-store", func(context.Context) error { return settingsStore.Close() })

	prefs, err := settings.NewManager(ctx, settingsStore)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	lang, err := language.Parse(cfg.Playback.Language)
	if err != nil {
		logger.Warn().Err(err).Str("language", cfg.Playback.Language).Msg("invalid playback language, using English")
		lang = language.English
	}
	sess := session.New(session.Config{
		HideNavDelay: cfg.Playback.HideNavDelay,
		Language:     lang,
		EventBuffer:  cfg.Playback.EventBuffer,
	}, prefs)

	svc := library.NewService(libraryRoots(cfg.Library.Roots), store, library.WithCache(albumCache, cfg.Cache.TTL))

	var watcher LibraryWatcher
	if cfg.Library.Watch {
		watcher = library.NewWatcher(svc, cfg.Library.WatchDebounce, cfg.Library.RescanPerMinute)
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewLibraryChecker(svc))
	hm.RegisterChecker(health.NewFuncChecker("session", func(context.Context) error {
		_, err := sess.Snapshot()
		return err
	}))

	apiCfg := api.Config{
		RateLimitPerMin: cfg.API.RateLimitPerMin,
		AllowedOrigins:  cfg.API.AllowedOrigins,
	}
	if cfg.Telemetry.Enabled {
		apiCfg.TracingService = cfg.LogService
	}
	server := api.New(apiCfg, api.Deps{
		Library:  svc,
		Session:  sess,
		Settings: prefs,
		Health:   hm,
	})

	mgr, err := NewManager(cfg.ServerConfig(), Deps{
		Logger:         logger,
		APIHandler:     server.Handler(),
		MetricsHandler: api.MetricsHandler(),
	})
	if err != nil {
		return nil, err
	}

	// LIFO: telemetry is flushed after every store is closed.
	for _, c := range closers {
		mgr.RegisterShutdownHook(c.name, c.close)
	}

	logger.Info().
		Int("roots", len(cfg.Library.Roots)).
		Str("settings_backend", cfg.Settings.Backend).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("watch", cfg.Library.Watch).
		Msg("daemon bootstrapped")

	return NewApp(logger, mgr, sess, svc, watcher), nil
}

func openCache(ctx context.Context, cfg config.AppConfig) (cache.AlbumCache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		c, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log.WithComponent("cache"))
		if err != nil {
			return nil, fmt.Errorf("connect album cache: %w", err)
		}
		return c, nil
	case "none":
		return cache.NewNoOp(), nil
	default:
		return cache.NewMemory(time.Minute), nil
	}
}

// verifyLibraryDB checks an existing index database. A corrupt index is
// only reported; the next scan rewrites it.
func verifyLibraryDB(ctx context.Context, path string) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return
	}
	logger := log.WithComponent("daemon")
	issues, err := sqlite.VerifyIntegrity(ctx, path, "quick")
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("library database verification failed")
		return
	}
	if len(issues) > 0 {
		logger.Warn().Strs("issues", issues).Str("path", path).Msg("library database integrity issues")
	}
}

func libraryRoots(in []config.RootConfig) []library.RootConfig {
	out := make([]library.RootConfig, 0, len(in))
	for _, r := range in {
		out = append(out, library.RootConfig{
			ID:         r.ID,
			Path:       r.Path,
			Type:       r.Type,
			MaxDepth:   r.MaxDepth,
			IncludeExt: r.IncludeExt,
		})
	}
	return out
}
