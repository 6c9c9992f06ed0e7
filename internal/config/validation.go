// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/text/language"
)

var (
	settingsBackends  = []string{"file", "sqlite", "badger", "redis", "memory"}
	cacheBackends     = []string{"memory", "redis", "none"}
	telemetryExporter = []string{"grpc", "http"}
)

// Validate checks a resolved AppConfig. Every returned error wraps ErrInvalid.
func Validate(cfg AppConfig) error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...)))
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		fail("dataDir", "must not be empty")
	}
	if err := validateListenAddr(cfg.API.ListenAddr); err != nil {
		fail("api.listenAddr", "%v", err)
	}
	if cfg.API.MetricsAddr != "" {
		if err := validateListenAddr(cfg.API.MetricsAddr); err != nil {
			fail("api.metricsAddr", "%v", err)
		}
	}
	if cfg.API.RateLimitPerMin < 0 {
		fail("api.rateLimitPerMin", "must be >= 0, got %d", cfg.API.RateLimitPerMin)
	}

	seen := make(map[string]struct{}, len(cfg.Library.Roots))
	for i, r := range cfg.Library.Roots {
		field := fmt.Sprintf("library.roots[%d]", i)
		if r.ID == "" {
			fail(field+".id", "must not be empty")
		} else if strings.Contains(r.ID, ":") {
			fail(field+".id", "must not contain ':' (%q)", r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			fail(field+".id", "duplicate root id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Path == "" {
			fail(field+".path", "must not be empty")
		}
		if r.MaxDepth < 0 {
			fail(field+".maxDepth", "must be >= 0")
		}
	}
	if cfg.Library.RescanPerMinute < 0 {
		fail("library.rescanPerMinute", "must be >= 0")
	}

	if !oneOf(cfg.Settings.Backend, settingsBackends) {
		fail("settings.backend", "unsupported %q (supported: %s)", cfg.Settings.Backend, strings.Join(settingsBackends, ", "))
	}
	if !oneOf(cfg.Cache.Backend, cacheBackends) {
		fail("cache.backend", "unsupported %q (supported: %s)", cfg.Cache.Backend, strings.Join(cacheBackends, ", "))
	}
	if (cfg.Settings.Backend == "redis" || cfg.Cache.Backend == "redis") && cfg.Redis.Addr == "" {
		fail("redis.addr", "required when a redis backend is selected")
	}

	if cfg.Telemetry.Enabled {
		if !oneOf(cfg.Telemetry.Exporter, telemetryExporter) {
			fail("telemetry.exporter", "unsupported %q", cfg.Telemetry.Exporter)
		}
		if cfg.Telemetry.Endpoint == "" {
			fail("telemetry.endpoint", "required when telemetry is enabled")
		}
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		fail("telemetry.samplingRate", "must be within [0,1], got %v", cfg.Telemetry.SamplingRate)
	}

	if cfg.Playback.HideNavDelay < 0 {
		fail("playback.hideNavDelay", "must be >= 0")
	}
	if _, err := language.Parse(cfg.Playback.Language); err != nil {
		fail("playback.language", "%v", err)
	}
	if cfg.Playback.EventBuffer < 0 {
		fail("playback.eventBuffer", "must be >= 0")
	}

	return errors.Join(errs...)
}

func validateListenAddr(addr string) error {
	if addr == "" {
		return errors.New("must not be empty")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return err
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
