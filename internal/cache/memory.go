// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/albumplay/internal/media"
)

type entry struct {
	albums     []media.Album
	expiration time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// memoryCache keeps the album list in process memory.
type memoryCache struct {
	mu      sync.RWMutex
	current *entry
	stats   Stats
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMemory creates an in-process cache. When cleanupInterval is positive a
// janitor goroutine evicts the expired entry; call Close to stop it.
func NewMemory(cleanupInterval time.Duration) AlbumCache {
	c := &memoryCache{
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

func (c *memoryCache) Albums(_ context.Context) ([]media.Album, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.isExpired(c.now()) {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return cloneAlbums(c.current.albums), true
}

func (c *memoryCache) SetAlbums(_ context.Context, albums []media.Album, ttl time.Duration) {
	e := &entry{albums: cloneAlbums(albums)}
	if e.albums == nil {
		e.albums = []media.Album{}
	}
	if ttl > 0 {
		e.expiration = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = e
	c.stats.Sets++
}

func (c *memoryCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	if c.current != nil {
		stats.Entries = 1
	}
	return stats
}

func (c *memoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
	return nil
}

func (c *memoryCache) deleteExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.isExpired(c.now()) {
		c.current = nil
		c.stats.Evictions++
		return true
	}
	return false
}

func (c *memoryCache) janitor(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}
