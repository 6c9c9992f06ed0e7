// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/metrics"
	"github.com/ManuGH/albumplay/internal/playback"
	"github.com/rs/zerolog"
)

// KeyAll labels a write that touches every setting.
const KeyAll = "all"

// Manager serves the current settings from memory and writes changes
// through to a Store.
type Manager struct {
	mu      sync.RWMutex
	store   Store
	current Settings
	logger  zerolog.Logger
}

// NewManager loads the persisted settings from store.
func NewManager(ctx context.Context, store Store) (*Manager, error) {
	current, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &Manager{
		store:   store,
		current: current,
		logger:  log.WithComponent("settings"),
	}, nil
}

// Current returns the active settings.
func (m *Manager) Current() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Orientation returns the preferred orientation.
func (m *Manager) Orientation() Orientation {
	return m.Current().Orientation
}

// Sort returns the active sort policy.
func (m *Manager) Sort() playback.SortPolicy {
	return m.Current().Sort
}

// StoreOrientation persists a new orientation.
func (m *Manager) StoreOrientation(ctx context.Context, o Orientation) error {
	return m.Patch(ctx, keyOrientation, func(s *Settings) { s.Orientation = o })
}

// StoreSort persists a new sort policy.
func (m *Manager) StoreSort(ctx context.Context, p playback.SortPolicy) error {
	return m.Patch(ctx, keySort, func(s *Settings) { s.Sort = p })
}

// Patch applies mutate to the current settings and persists the result while
// holding the manager lock. key labels the write in metrics and logs.
func (m *Manager) Patch(ctx context.Context, key string, mutate func(*Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current
	mutate(&next)
	next = next.Normalize()
	if err := m.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	m.current = next
	metrics.RecordSettingsWrite(key)

	m.logger.Info().
		Str(log.FieldEvent, "settings.updated").
		Str("key", key).
		Str(log.FieldOrientation, next.Orientation.String()).
		Str(log.FieldSortPolicy, next.Sort.String()).
		Msg("settings updated")
	return nil
}
