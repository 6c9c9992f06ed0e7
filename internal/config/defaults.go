// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Defaults returns the configuration used when neither file nor environment set a value.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:    "/tmp/albumplay",
		LogLevel:   "info",
		LogService: "albumplay",
		API: APIConfig{
			ListenAddr:      ":8088",
			MetricsAddr:     ":9098",
			RateLimitPerMin: 600,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Library: LibraryConfig{
			Watch:           true,
			WatchDebounce:   500 * time.Millisecond,
			RescanPerMinute: 6,
		},
		Settings: SettingsConfig{Backend: "file"},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     5 * time.Minute,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
		Playback: PlaybackConfig{
			HideNavDelay: 2 * time.Second,
			Language:     "en",
			EventBuffer:  32,
		},
	}
}
