// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/moodie/internal/metrics"
)

const redisBackend = "redis"

// RedisOptions selects the Redis server.
type RedisOptions struct {
	Addr     string
	DB       int
	Password string
}

// RedisCache is a PageCache shared by every replica pointing at the same
// Redis. Pages are stored with SET EX; each session has a set of its page
// keys with the same expiry, refreshed on every write, and an INCR counter
// as its generation.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis connects and pings. The caller owns Close.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRedis(ctx context.Context, opts RedisOptions, ttl time.Duration, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		DB:       opts.DB,
		Password: opts.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // best-effort cleanup after failed ping
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return NewRedisFromClient(client, ttl, logger), nil
}

// NewRedisFromClient wraps an existing client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRedisFromClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Str("backend", redisBackend).Logger(),
	}
}

// Get implements PageCache. Redis errors are logged and treated as misses so
// that a flaky cache degrades to recomputation.
func (r *RedisCache) Get(ctx context.Context, key Key) ([]byte, bool) {
	val, err := r.client.Get(ctx, key.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", key.String()).Msg("cache get failed")
		}
		metrics.CacheMisses.WithLabelValues(redisBackend).Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(redisBackend).Inc()
	return val, true
}

// Set implements PageCache. A failed write is logged; the page is simply
// recomputed on the next request.
func (r *RedisCache) Set(ctx context.Context, key Key, payload []byte) {
	idx := sessionIndexKey(key.SessionID())
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key.String(), payload, r.ttl)
		pipe.SAdd(ctx, idx, key.String())
		pipe.Expire(ctx, idx, r.ttl)
		return nil
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key.String()).Msg("cache set failed")
	}
}

// errStaleGeneration aborts a conditional write whose generation moved.
var errStaleGeneration = errors.New("session generation changed")

// SetIfGeneration implements PageCache. The generation key is WATCHed, so an
// Invalidate landing between the check and EXEC also aborts the write.
func (r *RedisCache) SetIfGeneration(ctx context.Context, key Key, payload []byte, gen uint64) bool {
	genKey := sessionGenerationKey(key.SessionID())
	idx := sessionIndexKey(key.SessionID())

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key.String(), payload, r.ttl)
			pipe.SAdd(ctx, idx, key.String())
			pipe.Expire(ctx, idx, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		metrics.CacheStaleWrites.WithLabelValues(redisBackend).Inc()
		r.logger.Debug().Str("key", key.String()).Msg("dropping page computed before invalidation")
	default:
		r.logger.Warn().Err(err).Str("key", key.String()).Msg("cache set failed")
	}
	return false
}

// Generation implements PageCache. A read failure yields 0, which at worst
// makes the following SetIfGeneration drop its page.
func (r *RedisCache) Generation(ctx context.Context, sessionID string) uint64 {
	gen, err := r.client.Get(ctx, sessionGenerationKey(sessionID)).Uint64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Msg("cache generation read failed")
		}
		return 0
	}
	return gen
}

// Invalidate implements PageCache. Unlike Get and Set, failures are returned:
// a page that survives invalidation would hide fresh feedback.
func (r *RedisCache) Invalidate(ctx context.Context, sessionID string) error {
	genKey := sessionGenerationKey(sessionID)
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, r.generationTTL())
		return nil
	}); err != nil {
		return fmt.Errorf("bump session generation: %w", err)
	}

	idx := sessionIndexKey(sessionID)

	members, err := r.client.SMembers(ctx, idx).Result()
	if err != nil {
		return fmt.Errorf("read session index: %w", err)
	}

	keys := append(members, idx)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete session pages: %w", err)
	}

	if len(members) > 0 {
		metrics.CacheInvalidations.WithLabelValues(redisBackend).Add(float64(len(members)))
	}
	return nil
}

// generationTTL keeps a session's generation alive well past any page it
// guards.
func (r *RedisCache) generationTTL() time.Duration {
	return 2 * r.ttl
}

// Ping checks connectivity for readiness probes.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
