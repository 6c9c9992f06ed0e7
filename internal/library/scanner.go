// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"cmp"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/albumplay/internal/fsutil"
	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/media"
	"golang.org/x/text/unicode/norm"
)

// Scanner walks a root and groups its videos into albums.
type Scanner struct {
	now func() time.Time
}

// NewScanner creates a new filesystem scanner.
func NewScanner() *Scanner {
	return &Scanner{now: time.Now}
}

// AlbumID returns the album ID of directory relDir (slash separated, "."
// for the root itself) inside root rootID.
func AlbumID(rootID, relDir string) string {
	if relDir == "." || relDir == "" {
		return rootID + ":/"
	}
	return rootID + ":/" + relDir
}

// VideoID returns the video ID of relPath inside root rootID.
func VideoID(rootID, relPath string) string {
	return rootID + ":/" + relPath
}

// relDirOf inverts AlbumID.
func relDirOf(rootID, albumID string) string {
	rel := strings.TrimPrefix(albumID, rootID+":/")
	if rel == "" {
		return "."
	}
	return rel
}

type albumBuilder struct {
	album  media.Album
	relDir string
}

// ScanRoot walks cfg.Path and returns the albums found. Files are confined to
// the resolved root; symlinks escaping it are counted as errors. A root that
// cannot be resolved or read fails the scan with AccessDenied set when the
// cause is a permission error.
func (sc *Scanner) ScanRoot(ctx context.Context, cfg RootConfig) (*ScanResult, error) {
	result := &ScanResult{
		RootID:      cfg.ID,
		Started:     sc.now(),
		FinalStatus: RootStatusOK,
	}
	fail := func(err error, format string) (*ScanResult, error) {
		result.Finished = sc.now()
		result.FinalStatus = RootStatusFailed
		result.AccessDenied = errors.Is(err, fs.ErrPermission)
		result.LastError = fmt.Sprintf(format, err)
		return result, err
	}

	rootResolved, err := filepath.EvalSymlinks(cfg.Path)
	if err != nil {
		return fail(fmt.Errorf("resolve root path: %w", err), "root path unresolvable: %v")
	}
	rootResolved = filepath.Clean(rootResolved)
	if _, err := os.ReadDir(rootResolved); err != nil {
		return fail(fmt.Errorf("read root: %w", err), "root unreadable: %v")
	}

	allowed := cfg.IncludeExt
	if len(allowed) == 0 {
		allowed = DefaultVideoExt
	}

	builders := map[string]*albumBuilder{}
	err = filepath.WalkDir(rootResolved, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			result.ErrorCount++
			logScanError(cfg.ID, "walk", walkErr, p)
			if d != nil && d.IsDir() && p != rootResolved {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(rootResolved, p)
		if err != nil {
			result.ErrorCount++
			return nil
		}

		if d.IsDir() {
			if p == rootResolved {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			depth := strings.Count(rel, string(os.PathSeparator)) + 1
			if cfg.MaxDepth > 0 && depth > cfg.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		result.TotalScanned++
		if strings.HasPrefix(d.Name(), ".") || !isAllowedExtension(filepath.Ext(d.Name()), allowed) {
			result.ItemsSkipped++
			return nil
		}

		fileResolved, err := filepath.EvalSymlinks(p)
		if err != nil {
			result.ItemsSkipped++
			logScanError(cfg.ID, "symlink", err, rel)
			return nil
		}
		if !fsutil.Within(rootResolved, fileResolved) {
			result.ErrorCount++
			logScanError(cfg.ID, "confinement", fmt.Errorf("%w: %s", fsutil.ErrEscapesRoot, rel), rel)
			return nil
		}

		info, err := os.Stat(fileResolved)
		if err != nil {
			result.ErrorCount++
			logScanError(cfg.ID, "stat", err, rel)
			return nil
		}
		if !info.Mode().IsRegular() || info.Size() == 0 {
			result.ItemsSkipped++
			return nil
		}

		relSlash := filepath.ToSlash(rel)
		relDir := path.Dir(relSlash)
		b, ok := builders[relDir]
		if !ok {
			b = &albumBuilder{
				album:  media.Album{ID: AlbumID(cfg.ID, relDir), Title: albumTitle(cfg.ID, relDir)},
				relDir: relDir,
			}
			builders[relDir] = b
		}
		b.album.Videos = append(b.album.Videos, media.Video{
			ID:        VideoID(cfg.ID, relSlash),
			CreatedAt: media.TimePtr(info.ModTime()),
			Ref:       relSlash,
		})
		result.VideosFound++
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fail(err, "scan cancelled: %v")
		}
		return fail(err, "walk failed: %v")
	}

	result.Albums = collectAlbums(builders)
	if result.ErrorCount > 0 {
		result.FinalStatus = RootStatusDegraded
	}
	result.Finished = sc.now()
	return result, nil
}

// collectAlbums orders albums by directory and videos newest first, which is
// the order in which the library hands albums to the player.
func collectAlbums(builders map[string]*albumBuilder) []media.Album {
	list := make([]*albumBuilder, 0, len(builders))
	for _, b := range builders {
		list = append(list, b)
	}
	slices.SortFunc(list, func(a, b *albumBuilder) int {
		return cmp.Compare(a.relDir, b.relDir)
	})

	albums := make([]media.Album, 0, len(list))
	for _, b := range list {
		if b.album.IsEmpty() {
			continue
		}
		slices.SortFunc(b.album.Videos, func(x, y media.Video) int {
			if c := media.CompareCreated(y, x); c != 0 {
				return c
			}
			return cmp.Compare(x.Ref, y.Ref)
		})
		albums = append(albums, b.album)
	}
	return albums
}

func albumTitle(rootID, relDir string) string {
	if relDir == "." {
		return rootID
	}
	return norm.NFC.String(path.Base(relDir))
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}

// logScanError logs scan errors with a hashed path instead of the path itself.
func logScanError(rootID, event string, err error, p string) {
	hash := sha256.Sum256([]byte(p))
	logger := log.L()
	logger.Warn().
		Str(log.FieldRootID, rootID).
		Str(log.FieldEvent, "library.scan_"+event).
		Str("rel_path_hash", fmt.Sprintf("%x", hash[:5])).
		Err(err).
		Msg("library scan error")
}
