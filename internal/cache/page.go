// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache of rendered public pages.
// Entries are keyed by locale and request URI. Any catalog or blog write
// clears the whole cache, since category navigation appears on every page.
//
// Clearing bumps a generation counter that is part of every entry key.
// A page rendered from data read before the bump is stored under the old
// generation, where no reader looks, and expires with its TTL.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageKeyPrefix = "page:"
	generationKey = pageKeyPrefix + "gen"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// Generation identifies the cache contents a lookup saw. Pass it back to
// Set together with the page rendered after that lookup.
type Generation int64

// PageCache manages full-page HTML caching in Valkey. A nil *PageCache is
// valid and caches nothing.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// PageKey returns the cache key for a page in a locale.
func PageKey(locale, requestURI string) string {
	return locale + ":" + requestURI
}

func entryKey(gen Generation, key string) string {
	return pageKeyPrefix + strconv.FormatInt(int64(gen), 10) + ":" + key
}

// Get retrieves cached HTML. The bool is false on a miss; the generation is
// valid either way unless Valkey failed, in which case it is negative and
// Set ignores it.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, Generation, bool) {
	if pc == nil {
		return nil, -1, false
	}
	gen, err := pc.generation(ctx)
	if err != nil {
		slog.Warn("page cache generation error", "error", err)
		return nil, -1, false
	}

	val, err := pc.client.Get(ctx, entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, -1, false
	}
	slog.Debug("page cache hit", "key", key, "generation", gen)
	return val, gen, true
}

// Set stores HTML rendered after a Get that returned gen.
func (pc *PageCache) Set(ctx context.Context, key string, gen Generation, html []byte) {
	if pc == nil || gen < 0 {
		return
	}
	if err := pc.client.Set(ctx, entryKey(gen, key), html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateAll makes every cached page unreachable.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if pc == nil {
		return
	}
	gen, err := pc.client.Incr(ctx, generationKey).Result()
	if err != nil {
		slog.Warn("page cache invalidate error", "error", err)
		return
	}
	slog.Info("page cache cleared", "generation", gen)
}

func (pc *PageCache) generation(ctx context.Context) (Generation, error) {
	n, err := pc.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return Generation(n), err
}
