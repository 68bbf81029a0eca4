// Package cache is a Redis read-through cache for catalog and order reads.
// The placement path never reads from it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "checkout:"

// VersionTTL bounds how long an invalidation counter outlives its last bump.
const VersionTTL = 24 * time.Hour

var errStale = errors.New("cache entry invalidated during fill")

type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Connect dials addr and pings it. An empty addr disables caching and
// returns (nil, nil).
func Connect(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, PoolSize: 50})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return NewRedis(client, ttl), nil
}

func (r *Redis) Close() error { return r.client.Close() }

// Get decodes the cached JSON for key into dst. A miss is (false, nil).
func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Version returns the invalidation counter of key. Take it before reading
// the source of truth and hand it to Fill.
func (r *Redis) Version(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, versionKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Fill stores v under key unless key was invalidated after version was
// taken. A skipped fill is not an error.
func (r *Redis) Fill(ctx context.Context, key string, version int64, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	vk := versionKey(key)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyPrefix+key, raw, r.ttl)
			return nil
		})
		return err
	}, vk)
	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Delete drops keys and bumps their versions, so fills that started before
// the call are discarded.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, versionKey(k))
			pipe.Expire(ctx, versionKey(k), VersionTTL)
		}
		pipe.Del(ctx, full...)
		return nil
	})
	return err
}

func versionKey(key string) string { return keyPrefix + "v:" + key }
