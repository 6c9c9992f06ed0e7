// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the fully resolved daemon configuration.
// The YAML file maps onto the same structure.
type AppConfig struct {
	Version    string `yaml:"-"`
	DataDir    string `yaml:"dataDir"`
	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	API       APIConfig       `yaml:"api"`
	Library   LibraryConfig   `yaml:"library"`
	Settings  SettingsConfig  `yaml:"settings"`
	Cache     CacheConfig     `yaml:"cache"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Playback  PlaybackConfig  `yaml:"playback"`
}

// APIConfig configures the HTTP listeners.
type APIConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	MetricsAddr     string        `yaml:"metricsAddr"` // empty disables the metrics listener
	RateLimitPerMin int           `yaml:"rateLimitPerMin"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"` // empty disables CORS
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// RootConfig is one library root as written in config.yaml library.roots[].
type RootConfig struct {
	ID         string   `yaml:"id"`
	Path       string   `yaml:"path"`
	Type       string   `yaml:"type"` // smb|nfs|local (label only)
	MaxDepth   int      `yaml:"maxDepth"`
	IncludeExt []string `yaml:"includeExt"`
}

// LibraryConfig configures album discovery.
type LibraryConfig struct {
	Roots           []RootConfig  `yaml:"roots"`
	DBPath          string        `yaml:"dbPath"` // defaults to <dataDir>/library.db
	Watch           bool          `yaml:"watch"`
	WatchDebounce   time.Duration `yaml:"watchDebounce"`
	RescanPerMinute int           `yaml:"rescanPerMinute"`
}

// SettingsConfig selects the persistence backend of user settings.
type SettingsConfig struct {
	Backend string `yaml:"backend"` // file|sqlite|badger|redis|memory
}

// CacheConfig selects the album listing cache.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory|redis
	TTL     time.Duration `yaml:"ttl"`
}

// RedisConfig holds the Redis connection shared by cache and settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // grpc|http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// PlaybackConfig tunes the session controller.
type PlaybackConfig struct {
	HideNavDelay time.Duration `yaml:"hideNavDelay"`
	Language     string        `yaml:"language"` // BCP 47 tag for user-facing titles
	EventBuffer  int           `yaml:"eventBuffer"`
}
