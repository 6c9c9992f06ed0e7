// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/albumplay/internal/media"
	"github.com/ManuGH/albumplay/internal/persistence/sqlite"
)

// Store provides SQLite persistence for roots, albums and videos.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at dbPath and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("open library database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	return sqlite.Migrate(ctx, s.db,
		`CREATE TABLE IF NOT EXISTS library_roots (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			last_scan_time TEXT,
			last_scan_status TEXT NOT NULL DEFAULT 'never' CHECK(last_scan_status IN ('never', 'running', 'ok', 'degraded', 'failed')),
			total_albums INTEGER NOT NULL DEFAULT 0,
			total_videos INTEGER NOT NULL DEFAULT 0,
			access_denied INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS library_albums (
			id TEXT PRIMARY KEY,
			root_id TEXT NOT NULL REFERENCES library_roots(id) ON DELETE CASCADE,
			rel_dir TEXT NOT NULL,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS library_videos (
			id TEXT PRIMARY KEY,
			album_id TEXT NOT NULL REFERENCES library_albums(id) ON DELETE CASCADE,
			root_id TEXT NOT NULL,
			rel_path TEXT NOT NULL,
			created_at TEXT,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_library_albums_root ON library_albums(root_id, rel_dir)`,
		`CREATE INDEX IF NOT EXISTS idx_library_videos_album ON library_videos(album_id, position)`,
	)
}

// UpsertRoot inserts a root or updates its type label.
func (s *Store) UpsertRoot(ctx context.Context, id, typ string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO library_roots (id, type, last_scan_status)
	VALUES (?, ?, 'never')
	ON CONFLICT(id) DO UPDATE SET type = excluded.type
	`, id, typ)
	return err
}

const rootColumns = `id, type, last_scan_time, last_scan_status, total_albums, total_videos, access_denied`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoot(row rowScanner) (Root, error) {
	var r Root
	var lastScan sql.NullString
	if err := row.Scan(&r.ID, &r.Type, &lastScan, &r.LastScanStatus, &r.TotalAlbums, &r.TotalVideos, &r.AccessDenied); err != nil {
		return Root{}, err
	}
	if lastScan.Valid {
		if t, err := time.Parse(time.RFC3339Nano, lastScan.String); err == nil {
			r.LastScanTime = &t
		}
	}
	return r, nil
}

// Roots retrieves all library roots ordered by ID.
func (s *Store) Roots(ctx context.Context) ([]Root, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+rootColumns+` FROM library_roots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	roots := []Root{}
	for rows.Next() {
		r, err := scanRoot(rows)
		if err != nil {
			return nil, err
		}
		roots = append(roots, r)
	}
	return roots, rows.Err()
}

// Root retrieves a single root. It returns ErrRootNotFound when absent.
func (s *Store) Root(ctx context.Context, id string) (Root, error) {
	r, err := scanRoot(s.db.QueryRowContext(ctx, `SELECT `+rootColumns+` FROM library_roots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Root{}, fmt.Errorf("%w: %s", ErrRootNotFound, id)
	}
	return r, err
}

// MarkRunning sets a root's status to running.
func (s *Store) MarkRunning(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE library_roots SET last_scan_status = 'running', last_scan_time = ? WHERE id = ?
	`, at.UTC().Format(time.RFC3339Nano), id)
	return err
}

// RecordScan stores the outcome of a scan. When the scan produced albums
// (status ok or degraded) the root's albums and videos are replaced in the
// same transaction; a failed scan keeps the previous index.
func (s *Store) RecordScan(ctx context.Context, res *ScanResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	totalAlbums, totalVideos := 0, 0
	if res.FinalStatus != RootStatusFailed {
		if totalAlbums, totalVideos, err = replaceAlbums(ctx, tx, res.RootID, res.Albums); err != nil {
			return err
		}
	} else if err := tx.QueryRowContext(ctx,
		`SELECT total_albums, total_videos FROM library_roots WHERE id = ?`, res.RootID,
	).Scan(&totalAlbums, &totalVideos); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read previous totals: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	UPDATE library_roots
	SET last_scan_status = ?,
	    last_scan_time = ?,
	    total_albums = ?,
	    total_videos = ?,
	    access_denied = ?
	WHERE id = ?
	`, res.FinalStatus.String(), res.Finished.UTC().Format(time.RFC3339Nano), totalAlbums, totalVideos, res.AccessDenied, res.RootID); err != nil {
		return fmt.Errorf("update root status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func replaceAlbums(ctx context.Context, tx *sql.Tx, rootID string, albums []media.Album) (int, int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM library_videos WHERE root_id = ?`, rootID); err != nil {
		return 0, 0, fmt.Errorf("clear videos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM library_albums WHERE root_id = ?`, rootID); err != nil {
		return 0, 0, fmt.Errorf("clear albums: %w", err)
	}

	insAlbum, err := tx.PrepareContext(ctx, `INSERT INTO library_albums (id, root_id, rel_dir, title) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = insAlbum.Close() }()
	insVideo, err := tx.PrepareContext(ctx, `INSERT INTO library_videos (id, album_id, root_id, rel_path, created_at, position) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = insVideo.Close() }()

	videos := 0
	for _, a := range albums {
		if _, err := insAlbum.ExecContext(ctx, a.ID, rootID, relDirOf(rootID, a.ID), a.Title); err != nil {
			return 0, 0, fmt.Errorf("insert album %s: %w", a.ID, err)
		}
		for pos, v := range a.Videos {
			var created sql.NullString
			if v.CreatedAt != nil {
				created = sql.NullString{String: v.CreatedAt.UTC().Format(time.RFC3339Nano), Valid: true}
			}
			if _, err := insVideo.ExecContext(ctx, v.ID, a.ID, rootID, v.Ref, created, pos); err != nil {
				return 0, 0, fmt.Errorf("insert video %s: %w", v.ID, err)
			}
			videos++
		}
	}
	return len(albums), videos, nil
}

// Albums returns every indexed album with its videos in stored order.
func (s *Store) Albums(ctx context.Context) ([]media.Album, error) {
	return s.queryAlbums(ctx, "", nil)
}

// Album returns one album. It returns ErrAlbumNotFound when absent.
func (s *Store) Album(ctx context.Context, id string) (media.Album, error) {
	albums, err := s.queryAlbums(ctx, `WHERE a.id = ?`, []any{id})
	if err != nil {
		return media.Album{}, err
	}
	if len(albums) == 0 {
		return media.Album{}, fmt.Errorf("%w: %s", ErrAlbumNotFound, id)
	}
	return albums[0], nil
}

func (s *Store) queryAlbums(ctx context.Context, where string, args []any) ([]media.Album, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT a.id, a.title, v.id, v.rel_path, v.created_at
	FROM library_albums a
	JOIN library_videos v ON v.album_id = a.id
	`+where+`
	ORDER BY a.root_id, a.rel_dir, v.position
	`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	albums := []media.Album{}
	for rows.Next() {
		var (
			albumID, title, videoID, ref string
			created                      sql.NullString
		)
		if err := rows.Scan(&albumID, &title, &videoID, &ref, &created); err != nil {
			return nil, err
		}
		if n := len(albums); n == 0 || albums[n-1].ID != albumID {
			albums = append(albums, media.Album{ID: albumID, Title: title})
		}
		v := media.Video{ID: videoID, Ref: ref}
		if created.Valid {
			if t, err := time.Parse(time.RFC3339Nano, created.String); err == nil {
				v.CreatedAt = &t
			}
		}
		last := &albums[len(albums)-1]
		last.Videos = append(last.Videos, v)
	}
	return albums, rows.Err()
}
