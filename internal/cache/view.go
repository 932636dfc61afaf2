// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// view.go provides a Valkey-backed cache of resolved portal views (L2).
// The public handler stores the encoded JSON of a resolved slug so repeat
// requests skip the database. Mutations drop the entry for the affected
// slug and bump its generation, and a view resolved under an older
// generation is never stored. The TTL bounds staleness if an invalidation
// is lost.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// viewKeyPrefix is the Valkey key prefix for cached views.
	viewKeyPrefix = "portal:view:"

	// genKeyPrefix holds the per-slug invalidation counter. It must not
	// share viewKeyPrefix, or InvalidateAll would reset the counters.
	genKeyPrefix = "portal:viewgen:"

	// DefaultViewTTL is how long a resolved view stays cached.
	DefaultViewTTL = 5 * time.Minute
)

// setIfCurrent stores ARGV[2] under KEYS[2] only while the generation in
// KEYS[1] still equals ARGV[1]. A missing generation counts as 0.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// ViewCache manages resolved view caching in Valkey.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache creates a new view cache backed by the given Valkey client.
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl == 0 {
		ttl = DefaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

// ViewKey returns the Valkey key for a portal slug.
func ViewKey(slug string) string {
	return viewKeyPrefix + slug
}

func genKey(slug string) string {
	return genKeyPrefix + slug
}

// Get retrieves the cached view for a slug. Errors count as misses.
func (vc *ViewCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	val, err := vc.client.Get(ctx, ViewKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("view cache get error", "slug", slug, "error", err)
		return nil, false
	}
	return val, true
}

// Generation returns the invalidation counter of a slug. Read it before
// resolving and hand it to SetIfCurrent.
func (vc *ViewCache) Generation(ctx context.Context, slug string) (int64, error) {
	gen, err := vc.client.Get(ctx, genKey(slug)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("view generation %q: %w", slug, err)
	}
	return gen, nil
}

// SetIfCurrent stores an encoded view with the configured TTL unless the
// slug was invalidated after gen was read. It reports whether the view was
// stored.
func (vc *ViewCache) SetIfCurrent(ctx context.Context, slug string, gen int64, view []byte) bool {
	keys := []string{genKey(slug), ViewKey(slug)}
	stored, err := setIfCurrent.Run(ctx, vc.client, keys,
		strconv.FormatInt(gen, 10), view, vc.ttl.Milliseconds()).Int()
	if err != nil {
		slog.Warn("view cache set error", "slug", slug, "error", err)
		return false
	}
	if stored == 0 {
		slog.Debug("view cache set skipped, slug invalidated", "slug", slug)
	}
	return stored == 1
}

// Invalidate removes the cached view for a slug and bumps its generation so
// that resolutions already in flight do not store their result.
func (vc *ViewCache) Invalidate(ctx context.Context, slug string) error {
	_, err := vc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(slug))
		pipe.Del(ctx, ViewKey(slug))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate view %q: %w", slug, err)
	}
	slog.Debug("view cache invalidated", "slug", slug)
	return nil
}

// InvalidateAll removes every cached view by scanning for the prefix.
func (vc *ViewCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := vc.client.Scan(ctx, cursor, viewKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan views: %w", err)
		}
		if len(keys) > 0 {
			if err := vc.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete views: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("view cache cleared", "deleted", deleted)
	}
	return nil
}
