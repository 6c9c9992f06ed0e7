// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, ":8088", cfg.API.ListenAddr)
	assert.Equal(t, "file", cfg.Settings.Backend)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 2*time.Second, cfg.Playback.HideNavDelay)
	assert.Equal(t, filepath.Join(cfg.DataDir, "library.db"), cfg.Library.DBPath)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, `
dataDir: `+dataDir+`
api:
  listenAddr: ":9000"
library:
  roots:
    - id: movies
      path: /srv/movies
      maxDepth: 3
settings:
  backend: sqlite
playback:
  hideNavDelay: 5s
  language: ja
`)
	t.Setenv("ALBUMPLAY_LISTEN", ":9100")
	t.Setenv("ALBUMPLAY_CACHE_BACKEND", "memory")

	l := NewLoader(path, "test")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.API.ListenAddr, "env must win over file")
	assert.Equal(t, "sqlite", cfg.Settings.Backend)
	assert.Equal(t, 5*time.Second, cfg.Playback.HideNavDelay)
	assert.Equal(t, "ja", cfg.Playback.Language)
	want := []RootConfig{{ID: "movies", Path: "/srv/movies", Type: "local", MaxDepth: 3}}
	if diff := cmp.Diff(want, cfg.Library.Roots); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, l.ConsumedEnvKeys, "ALBUMPLAY_LISTEN")
}

func TestLoad_EnvRoots(t *testing.T) {
	t.Setenv("ALBUMPLAY_LIBRARY_ROOTS", "home=/data/home, /mnt/nas/videos")
	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)

	want := []RootConfig{
		{ID: "home", Path: "/data/home", Type: "local"},
		{ID: "videos", Path: "/mnt/nas/videos", Type: "local"},
	}
	if diff := cmp.Diff(want, cfg.Library.Roots); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, "bouquet: favourites\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)
}

func TestLoad_RejectsNonYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Settings.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		ok     bool
	}{
		{name: "defaults", mutate: func(*AppConfig) {}, ok: true},
		{name: "unknown settings backend", mutate: func(c *AppConfig) { c.Settings.Backend = "bolt" }},
		{name: "unknown cache backend", mutate: func(c *AppConfig) { c.Cache.Backend = "disk" }},
		{name: "bad listen addr", mutate: func(c *AppConfig) { c.API.ListenAddr = "8088" }},
		{name: "duplicate root", mutate: func(c *AppConfig) {
			c.Library.Roots = []RootConfig{{ID: "a", Path: "/a"}, {ID: "a", Path: "/b"}}
		}},
		{name: "root id with colon", mutate: func(c *AppConfig) {
			c.Library.Roots = []RootConfig{{ID: "a:b", Path: "/a"}}
		}},
		{name: "redis without addr", mutate: func(c *AppConfig) {
			c.Cache.Backend = "redis"
			c.Redis.Addr = ""
		}},
		{name: "sampling out of range", mutate: func(c *AppConfig) { c.Telemetry.SamplingRate = 2 }},
		{name: "bad language", mutate: func(c *AppConfig) { c.Playback.Language = "not a tag!" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseRoots_Invalid(t *testing.T) {
	_, err := ParseRoots("=/path")
	assert.Error(t, err)
}

func TestServerConfig(t *testing.T) {
	cfg := Defaults()
	sc := cfg.ServerConfig()
	assert.Equal(t, cfg.API.ListenAddr, sc.ListenAddr)
	assert.Equal(t, cfg.API.ShutdownTimeout, sc.ShutdownTimeout)
	assert.Equal(t, 1<<20, sc.MaxHeaderBytes)
}

func TestLoad_EnvCORSOrigins(t *testing.T) {
	t.Setenv("ALBUMPLAY_DATA", t.TempDir())
	t.Setenv("ALBUMPLAY_CORS_ORIGINS", "http://tv.local, https://phone.local ,")

	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://tv.local", "https://phone.local"}, cfg.API.AllowedOrigins)
}
