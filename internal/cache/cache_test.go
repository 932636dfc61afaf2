// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "portal:view*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, "", 15)
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	// Verify connection.
	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

// store caches view under the current generation of slug.
func store(t *testing.T, vc *ViewCache, slug string, view []byte) {
	t.Helper()
	ctx := context.Background()
	gen, err := vc.Generation(ctx, slug)
	if err != nil {
		t.Fatalf("Generation(%q): %v", slug, err)
	}
	if !vc.SetIfCurrent(ctx, slug, gen, view) {
		t.Fatalf("SetIfCurrent(%q) did not store", slug)
	}
}

func TestViewCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	vc := NewViewCache(client, 1*time.Minute)

	ctx := context.Background()

	// Miss.
	data, ok := vc.Get(ctx, "ana-silva-1")
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	view := []byte(`{"client":{"slug":"ana-silva-1"}}`)
	store(t, vc, "ana-silva-1", view)

	data, ok = vc.Get(ctx, "ana-silva-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(view) {
		t.Errorf("data mismatch: got %q, want %q", data, view)
	}
}

func TestViewCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	vc := NewViewCache(client, 1*time.Minute)

	ctx := context.Background()

	store(t, vc, "invalidate-me", []byte("{}"))
	store(t, vc, "keep-me", []byte("{}"))

	if err := vc.Invalidate(ctx, "invalidate-me"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := vc.Get(ctx, "invalidate-me"); ok {
		t.Error("expected cache miss after invalidation")
	}
	if _, ok := vc.Get(ctx, "keep-me"); !ok {
		t.Error("other slugs must stay cached")
	}

	// Invalidating an absent key is not an error.
	if err := vc.Invalidate(ctx, "never-cached"); err != nil {
		t.Errorf("Invalidate absent: %v", err)
	}
}

func TestViewCacheInvalidateBumpsGeneration(t *testing.T) {
	client := testValkeyClient(t)
	vc := NewViewCache(client, 1*time.Minute)

	ctx := context.Background()
	before, err := vc.Generation(ctx, "racy")
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}

	// A resolution that started before the invalidation must not be stored.
	if err := vc.Invalidate(ctx, "racy"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if vc.SetIfCurrent(ctx, "racy", before, []byte(`{"title":"old"}`)) {
		t.Error("SetIfCurrent stored a view resolved before the invalidation")
	}
	if _, ok := vc.Get(ctx, "racy"); ok {
		t.Error("stale view is cached")
	}

	after, err := vc.Generation(ctx, "racy")
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	if after != before+1 {
		t.Errorf("generation: got %d, want %d", after, before+1)
	}
	if !vc.SetIfCurrent(ctx, "racy", after, []byte(`{"title":"new"}`)) {
		t.Fatal("SetIfCurrent with the current generation did not store")
	}
	if data, _ := vc.Get(ctx, "racy"); string(data) != `{"title":"new"}` {
		t.Errorf("cached view: got %q", data)
	}
}

func TestViewCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	vc := NewViewCache(client, 1*time.Minute)

	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c"} {
		store(t, vc, slug, []byte("{}"))
	}
	if err := vc.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if err := vc.InvalidateAll(ctx); err != nil {
		t.Fatalf("InvalidateAll: %v", err)
	}
	for _, slug := range []string{"a", "b", "c"} {
		if _, ok := vc.Get(ctx, slug); ok {
			t.Errorf("expected miss for %q after InvalidateAll", slug)
		}
	}
	// Generations survive the flush.
	if gen, err := vc.Generation(ctx, "a"); err != nil || gen == 0 {
		t.Errorf("generation of a: got %d, %v", gen, err)
	}
}

func TestViewCacheTTL(t *testing.T) {
	client := testValkeyClient(t)
	vc := NewViewCache(client, 30*time.Second)

	ctx := context.Background()
	store(t, vc, "ttl-check", []byte("{}"))

	ttl, err := client.TTL(ctx, ViewKey("ttl-check")).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > 30*time.Second {
		t.Errorf("unexpected TTL %v", ttl)
	}
}

func TestViewKeys(t *testing.T) {
	if got := ViewKey("about-us"); got != "portal:view:about-us" {
		t.Errorf("ViewKey: got %q, want %q", got, "portal:view:about-us")
	}
	if got := genKey("about-us"); got != "portal:viewgen:about-us" {
		t.Errorf("genKey: got %q, want %q", got, "portal:viewgen:about-us")
	}
}

func TestNewViewCacheDefaultTTL(t *testing.T) {
	// TTL = 0 should use default; no connection is made.
	vc := NewViewCache(redis.NewClient(&redis.Options{Addr: "localhost:0"}), 0)
	if vc.ttl != DefaultViewTTL {
		t.Errorf("expected DefaultViewTTL (%v), got %v", DefaultViewTTL, vc.ttl)
	}
}
