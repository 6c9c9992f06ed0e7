// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "settings:"

// BadgerStore keeps each setting under its own key.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens a badger database in dir. An empty dir opens an
// in-memory database.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open settings badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Load(_ context.Context) (Settings, error) {
	orientation, sort := Default().Raw()
	err := b.db.View(func(txn *badger.Txn) error {
		for key, dst := range map[string]*int{keyOrientation: &orientation, keySort: &sort} {
			item, err := txn.Get([]byte(badgerPrefix + key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				n, err := strconv.Atoi(string(val))
				if err != nil {
					return fmt.Errorf("setting %s: %w", key, err)
				}
				*dst = n
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Settings{}, err
	}
	return FromRaw(orientation, sort), nil
}

func (b *BadgerStore) Save(_ context.Context, s Settings) error {
	orientation, sort := s.Normalize().Raw()
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(badgerPrefix+keyOrientation), []byte(strconv.Itoa(orientation))); err != nil {
			return err
		}
		return txn.Set([]byte(badgerPrefix+keySort), []byte(strconv.Itoa(sort)))
	})
}

func (b *BadgerStore) Close() error { return b.db.Close() }
