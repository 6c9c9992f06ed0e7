// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by NewStore.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options carries backend specific parameters.
type Options struct {
	Dir   string // data directory for file, sqlite and badger
	Redis RedisOptions
}

// RedisOptions locates the Redis hash.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewStore opens the settings store for backend. An empty backend selects
// the file store.
func NewStore(ctx context.Context, backend string, opts Options) (Store, error) {
	switch backend {
	case BackendFile, "", BackendSQLite, BackendBadger:
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create settings dir: %w", err)
		}
	}

	switch backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(opts.Dir, "settings.yaml")), nil
	case BackendSQLite:
		return OpenSQLiteStore(ctx, filepath.Join(opts.Dir, "settings.db"))
	case BackendBadger:
		return OpenBadgerStore(filepath.Join(opts.Dir, "settings.badger"))
	case BackendRedis:
		return OpenRedisStore(ctx, opts.Redis)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
