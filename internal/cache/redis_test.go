// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// newTestRedis connects to MOODIE_TEST_REDIS_ADDR or skips.
func newTestRedis(t *testing.T, ttl time.Duration) *RedisCache {
	t.Helper()

	addr := os.Getenv("MOODIE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MOODIE_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := NewRedis(ctx, RedisOptions{Addr: addr}, ttl, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedis_SetGetInvalidate(t *testing.T) {
	c := newTestRedis(t, time.Minute)
	ctx := context.Background()

	session := "test-" + uuid.NewString()
	other := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_ = c.Invalidate(context.Background(), session)
		_ = c.Invalidate(context.Background(), other)
	})

	k1 := keyFor(session, 1)
	k2 := keyFor(session, 2)
	ko := keyFor(other, 1)

	if _, ok := c.Get(ctx, k1); ok {
		t.Fatal("unexpected hit on fresh key")
	}

	c.Set(ctx, k1, []byte("one"))
	c.Set(ctx, k2, []byte("two"))
	c.Set(ctx, ko, []byte("other"))

	if got, ok := c.Get(ctx, k1); !ok || string(got) != "one" {
		t.Errorf("Get(k1) = %q, %v", got, ok)
	}

	if err := c.Invalidate(ctx, session); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, ok := c.Get(ctx, k1); ok {
		t.Error("k1 survived invalidation")
	}
	if _, ok := c.Get(ctx, k2); ok {
		t.Error("k2 survived invalidation")
	}
	if _, ok := c.Get(ctx, ko); !ok {
		t.Error("other session's page was invalidated")
	}
}

func TestRedis_Expiry(t *testing.T) {
	c := newTestRedis(t, time.Second)
	ctx := context.Background()
	key := keyFor("test-"+uuid.NewString(), 1)

	c.Set(ctx, key, []byte("short"))
	time.Sleep(1500 * time.Millisecond)

	if _, ok := c.Get(ctx, key); ok {
		t.Error("entry outlived its TTL")
	}
}

func TestRedis_SetIfGeneration(t *testing.T) {
	c := newTestRedis(t, time.Minute)
	ctx := context.Background()

	session := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_ = c.Invalidate(context.Background(), session)
		_ = c.client.Del(context.Background(), sessionGenerationKey(session)).Err()
	})

	gen := c.Generation(ctx, session)
	if gen != 0 {
		t.Fatalf("Generation() = %d for a new session, want 0", gen)
	}
	if err := c.Invalidate(ctx, session); err != nil {
		t.Fatal(err)
	}

	key := keyFor(session, 1)
	if c.SetIfGeneration(ctx, key, []byte("stale"), gen) {
		t.Error("SetIfGeneration() stored a page older than the invalidation")
	}
	if _, ok := c.Get(ctx, key); ok {
		t.Error("stale page is visible")
	}

	fresh := c.Generation(ctx, session)
	if fresh != gen+1 {
		t.Errorf("Generation() after Invalidate = %d, want %d", fresh, gen+1)
	}
	if !c.SetIfGeneration(ctx, key, []byte("fresh"), fresh) {
		t.Error("SetIfGeneration() refused a current page")
	}
	if got, ok := c.Get(ctx, key); !ok || string(got) != "fresh" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
}
