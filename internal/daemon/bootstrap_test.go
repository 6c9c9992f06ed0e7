// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/albumplay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bootstrapConfig(t *testing.T) config.AppConfig {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "trip"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "trip", "a.mp4"), []byte("video"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "trip", "b.mp4"), []byte("video"), 0o644))

	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.DataDir = t.TempDir()
	cfg.Library.DBPath = filepath.Join(cfg.DataDir, "library.db")
	cfg.Library.Roots = []config.RootConfig{{ID: "home", Path: root, Type: "local"}}
	cfg.Library.Watch = false
	cfg.Settings.Backend = "memory"
	cfg.Cache.Backend = "none"
	cfg.API.ListenAddr = reserveListenAddr(t)
	cfg.API.MetricsAddr = ""
	cfg.API.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestBootstrap_ServesScannedLibrary(t *testing.T) {
	cfg := bootstrapConfig(t)

	app, err := Bootstrap(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- app.Run(ctx) }()

	require.NoError(t, waitForListen(cfg.API.ListenAddr, 2*time.Second))

	var listing struct {
		Title  string `json:"title"`
		Albums []struct {
			ID    string `json:"id"`
			Count int    `json:"count"`
		} `json:"albums"`
	}
	require.Eventually(t, func() bool {
		code, body := get(t, "http://"+cfg.API.ListenAddr+"/api/albums")
		if code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal([]byte(body), &listing); err != nil {
			return false
		}
		return len(listing.Albums) == 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, "home:/trip", listing.Albums[0].ID)
	assert.Equal(t, 2, listing.Albums[0].Count)

	code, _ := get(t, "http://"+cfg.API.ListenAddr+"/readyz")
	assert.Equal(t, http.StatusOK, code)

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestBootstrap_InvalidSettingsBackend(t *testing.T) {
	cfg := bootstrapConfig(t)
	cfg.Settings.Backend = "carrier-pigeon"

	_, err := Bootstrap(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open settings store")
}
