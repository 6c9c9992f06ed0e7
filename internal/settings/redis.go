// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding the settings.
const DefaultRedisKey = "albumplay:settings"

// RedisStore keeps settings in a Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
}

// OpenRedisStore connects and verifies the connection with a PING.
func OpenRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	key := opts.Key
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}, nil
}

func (r *RedisStore) Load(ctx context.Context) (Settings, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Settings{}, fmt.Errorf("redis hgetall: %w", err)
	}
	orientation, sort := Default().Raw()
	if v, ok := values[keyOrientation]; ok {
		if orientation, err = strconv.Atoi(v); err != nil {
			return Settings{}, fmt.Errorf("setting %s: %w", keyOrientation, err)
		}
	}
	if v, ok := values[keySort]; ok {
		if sort, err = strconv.Atoi(v); err != nil {
			return Settings{}, fmt.Errorf("setting %s: %w", keySort, err)
		}
	}
	return FromRaw(orientation, sort), nil
}

func (r *RedisStore) Save(ctx context.Context, s Settings) error {
	orientation, sort := s.Normalize().Raw()
	if err := r.client.HSet(ctx, r.key, keyOrientation, orientation, keySort, sort).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
