// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ManuGH/albumplay/internal/persistence/sqlite"
)

const (
	keyOrientation = "orientation"
	keySort        = "sort"
)

// SQLiteStore keeps settings as rows of a key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and migrates) the database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlite.Open(path, sqlite.Config{BusyTimeout: sqlite.DefaultConfig().BusyTimeout, MaxOpenConns: 1})
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	if err := sqlite.Migrate(ctx, db, `CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orientation, sort := Default().Raw()
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case keyOrientation:
			orientation = value
		case keySort:
			sort = value
		}
	}
	if err := rows.Err(); err != nil {
		return Settings{}, err
	}
	return FromRaw(orientation, sort), nil
}

func (s *SQLiteStore) Save(ctx context.Context, st Settings) error {
	orientation, sort := st.Normalize().Raw()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range map[string]int{keyOrientation: orientation, keySort: sort} {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
