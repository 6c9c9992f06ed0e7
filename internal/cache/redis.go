// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ManuGH/albumplay/internal/media"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisKey is the key under which the album list is stored.
const DefaultRedisKey = "albumplay:albums"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
	Key      string // defaults to DefaultRedisKey
}

// RedisCache stores the album list as one JSON value in Redis so several
// daemons can share a scan.
type RedisCache struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// NewRedis connects to Redis and verifies the connection with a PING.
func NewRedis(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to redis album cache")

	return newRedisWithClient(client, cfg.Key, logger), nil
}

func newRedisWithClient(client *redis.Client, key string, logger zerolog.Logger) *RedisCache {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisCache{client: client, key: key, logger: logger}
}

func (c *RedisCache) Albums(ctx context.Context) ([]media.Album, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.stats.misses.Add(1)
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("redis get failed")
		c.stats.misses.Add(1)
		return nil, false
	}

	var albums []media.Album
	if err := json.Unmarshal(raw, &albums); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("cached album list is not valid json")
		c.stats.misses.Add(1)
		return nil, false
	}
	if albums == nil {
		albums = []media.Album{}
	}
	c.stats.hits.Add(1)
	return albums, true
}

func (c *RedisCache) SetAlbums(ctx context.Context, albums []media.Album, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if albums == nil {
		albums = []media.Album{}
	}
	data, err := json.Marshal(albums)
	if err != nil {
		c.logger.Warn().Err(err).Msg("album list marshal failed")
		return
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("redis set failed")
		return
	}
	c.stats.sets.Add(1)
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("redis delete failed")
	}
}

func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	entries := 0
	n, err := c.client.Exists(ctx, c.key).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("redis exists failed")
	} else {
		entries = int(n)
	}

	return Stats{
		Hits:    c.stats.hits.Load(),
		Misses:  c.stats.misses.Load(),
		Sets:    c.stats.sets.Load(),
		Entries: entries,
	}
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
