// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfineRelPath(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "trip"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "trip", "a.mp4"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.mp4"), []byte("x"), 0o600))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.mp4"), filepath.Join(root, "link.mp4")))

	got, err := ConfineRelPath(root, "trip/a.mp4")
	require.NoError(t, err)
	realRoot, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, filepath.Join(realRoot, "trip", "a.mp4"), got)
	assert.NoError(t, IsRegularFile(got))

	for _, rel := range []string{"../secret.mp4", "trip/../../x", "/etc/passwd", "trip\\a.mp4", "link.mp4"} {
		_, err := ConfineRelPath(root, rel)
		assert.Error(t, err, rel)
	}

	_, err = ConfineRelPath(root, "link.mp4")
	assert.ErrorIs(t, err, ErrEscapesRoot)
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("/srv/media", "/srv/media/a/b"))
	assert.True(t, Within("/srv/media", "/srv/media"))
	assert.False(t, Within("/srv/media", "/srv/other"))
	assert.False(t, Within("/srv/media", "/srv"))
	assert.True(t, Within("/srv/media", "/srv/media/..hidden"))
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, IsRegularFile(dir))
	assert.Error(t, IsRegularFile(filepath.Join(dir, "missing")))
}
