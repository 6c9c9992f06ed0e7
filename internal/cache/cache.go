// SPDX-License-Identifier: MIT

// Package cache holds the loaded album list between library scans.
package cache

import (
	"context"
	"time"

	"github.com/ManuGH/albumplay/internal/media"
)

// AlbumCache stores the most recent album list produced by the library.
type AlbumCache interface {
	// Albums returns the cached list. ok is false when nothing is cached or
	// the entry has expired.
	Albums(ctx context.Context) (albums []media.Album, ok bool)
	// SetAlbums replaces the cached list. A non-positive ttl keeps the entry
	// until the next Invalidate.
	SetAlbums(ctx context.Context, albums []media.Album, ttl time.Duration)
	// Invalidate drops the cached list.
	Invalidate(ctx context.Context)
	// Stats returns cache statistics.
	Stats() Stats
	// Close releases background resources.
	Close() error
}

// Stats holds cache performance counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

func cloneAlbums(in []media.Album) []media.Album {
	if in == nil {
		return nil
	}
	out := make([]media.Album, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

// noOpCache never stores anything.
type noOpCache struct{}

// NewNoOp returns a cache that always misses.
func NewNoOp() AlbumCache { return noOpCache{} }

func (noOpCache) Albums(context.Context) ([]media.Album, bool)            { return nil, false }
func (noOpCache) SetAlbums(context.Context, []media.Album, time.Duration) {}
func (noOpCache) Invalidate(context.Context)                              {}
func (noOpCache) Stats() Stats                                            { return Stats{} }
func (noOpCache) Close() error                                            { return nil }
