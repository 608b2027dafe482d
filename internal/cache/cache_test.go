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

// testValkeyClient connects to Valkey DB 15 and skips when it is down.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		if keys, _ := client.Keys(ctx, pageKeyPrefix+"*").Result(); len(keys) > 0 {
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
	client, err := ConnectValkey(envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379"), os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	if pong, err := client.Ping(context.Background()).Result(); err != nil || pong != "PONG" {
		t.Errorf("Ping: got %q, %v", pong, err)
	}
}

func TestPageCacheSetGetInvalidate(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	key := PageKey("sk", "/category/sperky?subcategory=3")
	_, gen, ok := pc.Get(ctx, key)
	if ok {
		t.Fatal("expected cache miss")
	}
	if gen < 0 {
		t.Fatalf("miss should still report a usable generation, got %d", gen)
	}

	html := []byte("<html><body>Šperky</body></html>")
	pc.Set(ctx, key, gen, html)
	pc.Set(ctx, PageKey("en", "/"), gen, []byte("home"))

	data, hitGen, ok := pc.Get(ctx, key)
	if !ok || string(data) != string(html) {
		t.Errorf("Get: got %q, %v", data, ok)
	}
	if hitGen != gen {
		t.Errorf("generation changed without invalidation: %d -> %d", gen, hitGen)
	}

	pc.InvalidateAll(ctx)

	for _, k := range []string{key, PageKey("en", "/")} {
		if _, _, ok := pc.Get(ctx, k); ok {
			t.Errorf("expected miss for %q after InvalidateAll", k)
		}
	}
}

func TestPageCacheDropsRenderFromBeforeInvalidation(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()
	key := PageKey("sk", "/products/vaza")

	// A reader misses, then a write invalidates while it renders.
	_, staleGen, _ := pc.Get(ctx, key)
	pc.InvalidateAll(ctx)
	pc.Set(ctx, key, staleGen, []byte("price 15 €"))

	if data, _, ok := pc.Get(ctx, key); ok {
		t.Errorf("page rendered before the write must not be served, got %q", data)
	}
}

func TestPageCacheIgnoresFailedGeneration(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	pc.Set(ctx, "sk:/", -1, []byte("x"))
	if _, _, ok := pc.Get(ctx, "sk:/"); ok {
		t.Error("Set with a failed lookup generation must not store anything")
	}
}

func TestNilPageCache(t *testing.T) {
	var pc *PageCache
	ctx := context.Background()

	pc.Set(ctx, "k", 0, []byte("v"))
	if _, _, ok := pc.Get(ctx, "k"); ok {
		t.Error("nil cache must always miss")
	}
	pc.InvalidateAll(ctx)
}

func TestKeys(t *testing.T) {
	if got := PageKey("en", "/sold"); got != "en:/sold" {
		t.Errorf("PageKey: got %q", got)
	}
	if got := entryKey(7, "en:/sold"); got != "page:7:en:/sold" {
		t.Errorf("entryKey: got %q", got)
	}
}

func TestNewPageCacheDefaultTTL(t *testing.T) {
	if pc := NewPageCache(nil, 0); pc.ttl != DefaultPageTTL {
		t.Errorf("expected DefaultPageTTL (%v), got %v", DefaultPageTTL, pc.ttl)
	}
}
