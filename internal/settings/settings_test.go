// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ManuGH/albumplay/internal/playback"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientationFromRaw(t *testing.T) {
	assert.Equal(t, Portrait, OrientationFromRaw(0))
	assert.Equal(t, Landscape, OrientationFromRaw(1))
	assert.Equal(t, Portrait, OrientationFromRaw(7))
	assert.Equal(t, Portrait, OrientationFromRaw(-1))
}

func TestFromRaw_FallsBack(t *testing.T) {
	got := FromRaw(5, 0)
	assert.Equal(t, Default(), got)

	got = FromRaw(1, 3)
	assert.Equal(t, Settings{Orientation: Landscape, Sort: playback.SortShuffle}, got)
}

func TestSettings_JSON(t *testing.T) {
	data, err := json.Marshal(Settings{Orientation: Landscape, Sort: playback.SortNewestFirst})
	require.NoError(t, err)
	assert.JSONEq(t, `{"orientation":"landscape","sort":"newest-first"}`, string(data))

	var back Settings
	require.NoError(t, json.Unmarshal([]byte(`{"orientation":"portrait","sort":"shuffle"}`), &back))
	assert.Equal(t, Settings{Orientation: Portrait, Sort: playback.SortShuffle}, back)

	assert.Error(t, json.Unmarshal([]byte(`{"orientation":"diagonal"}`), &back))
}

func TestRotationFor(t *testing.T) {
	tests := []struct {
		orientation     Orientation
		displayPortrait bool
		want            Rotation
	}{
		{Portrait, true, Rotate0},
		{Portrait, false, Rotate90},
		{Landscape, false, Rotate0},
		{Landscape, true, Rotate90},
	}
	for _, tt := range tests {
		got := RotationFor(tt.orientation, tt.displayPortrait)
		assert.Equal(t, tt.want, got, "%s display_portrait=%v", tt.orientation, tt.displayPortrait)
		assert.Equal(t, tt.want == Rotate90, got.Rotated())
	}
}

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	stores := map[string]Store{}
	for _, backend := range []string{BackendFile, BackendSQLite, BackendBadger, BackendRedis, BackendMemory} {
		s, err := NewStore(ctx, backend, Options{
			Dir:   filepath.Join(dir, backend),
			Redis: RedisOptions{Addr: mr.Addr()},
		})
		require.NoError(t, err, backend)
		t.Cleanup(func() { _ = s.Close() })
		stores[backend] = s
	}
	return stores
}

func TestStores_DefaultsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, Default(), got)

			want := Settings{Orientation: Landscape, Sort: playback.SortNewestFirst}
			require.NoError(t, store.Save(ctx, want))
			got, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			require.NoError(t, store.Save(ctx, Settings{Orientation: Orientation(9), Sort: playback.SortPolicy(9)}))
			got, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, Default(), got)
		})
	}
}

func TestNewStore_UnknownBackend(t *testing.T) {
	_, err := NewStore(context.Background(), "etcd", Options{Dir: t.TempDir()})
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestFileStore_UnknownRawValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("orientation: 4\nsort: 0\n"), 0o644))

	got, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestFileStore_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("orientation: 1\nzoom: 2\n"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_WritesRawValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewFileStore(path)
	require.NoError(t, store.Save(context.Background(), Settings{Orientation: Landscape, Sort: playback.SortShuffle}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "orientation: 1\nsort: 3\n", string(data))
}

func TestRedisStore_ConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenRedisStore(context.Background(), RedisOptions{Addr: addr})
	assert.Error(t, err)
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Save(context.Context, Settings) error { return errors.New("disk full") }

func TestManager_StoreAndReload(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))

	m, err := NewManager(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, Default(), m.Current())

	require.NoError(t, m.StoreOrientation(ctx, Landscape))
	require.NoError(t, m.StoreSort(ctx, playback.SortShuffle))
	assert.Equal(t, Landscape, m.Orientation())
	assert.Equal(t, playback.SortShuffle, m.Sort())

	reloaded, err := NewManager(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, m.Current(), reloaded.Current())

	require.NoError(t, m.Patch(ctx, KeyAll, func(s *Settings) {
		s.Orientation = Portrait
		s.Sort = playback.SortNewestFirst
	}))
	assert.Equal(t, Settings{Orientation: Portrait, Sort: playback.SortNewestFirst}, m.Current())
}

func TestManager_ConcurrentPatchesKeepEveryField(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(ctx, NewMemoryStore())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.StoreOrientation(ctx, Landscape))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, m.StoreSort(ctx, playback.SortShuffle))
		}()
	}
	wg.Wait()

	assert.Equal(t, Settings{Orientation: Landscape, Sort: playback.SortShuffle}, m.Current())
}

func TestManager_FailedSaveKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(ctx, &failingStore{MemoryStore: MemoryStore{value: Default()}})
	require.NoError(t, err)

	err = m.StoreSort(ctx, playback.SortShuffle)
	require.Error(t, err)
	assert.Equal(t, playback.DefaultSortPolicy, m.Sort())
}
