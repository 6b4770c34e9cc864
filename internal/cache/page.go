// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go caches rendered pages in Valkey. Only pages whose output depends
// on nothing but the route, the build version and the year (Home, About,
// Legal) are cached; Contact carries per-browser state.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute

	// purgeBatch is how many keys one UNLINK removes during a purge.
	purgeBatch = 100
)

// Page is one cached rendering. Each page is a Valkey hash with the
// fields below.
type Page struct {
	HTML     []byte
	ETag     string // strong validator derived from HTML
	Rendered time.Time
}

// NewPage wraps rendered HTML, computing its ETag.
func NewPage(html []byte, rendered time.Time) Page {
	sum := sha256.Sum256(html)
	return Page{
		HTML:     html,
		ETag:     `"` + hex.EncodeToString(sum[:8]) + `"`,
		Rendered: rendered.UTC(),
	}
}

// PageCache stores rendered pages in Valkey with a TTL.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached page for key. Lookup errors count as a miss.
func (pc *PageCache) Get(ctx context.Context, key string) (Page, bool) {
	fields, err := pc.client.HGetAll(ctx, pageKeyPrefix+key).Result()
	if err != nil {
		slog.Warn("page cache get", "key", key, "error", err)
		return Page{}, false
	}
	html, ok := fields["html"]
	if !ok {
		return Page{}, false
	}

	rendered, _ := time.Parse(time.RFC3339, fields["rendered"])
	slog.Debug("page cache hit", "key", key)
	return Page{HTML: []byte(html), ETag: fields["etag"], Rendered: rendered}, true
}

// Set stores a page under key. The hash and its expiry are written in one
// transaction so a page never lingers without a TTL.
func (pc *PageCache) Set(ctx context.Context, key string, p Page) {
	k := pageKeyPrefix + key
	_, err := pc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k,
			"html", p.HTML,
			"etag", p.ETag,
			"rendered", p.Rendered.Format(time.RFC3339),
		)
		pipe.Expire(ctx, k, pc.ttl)
		return nil
	})
	if err != nil {
		slog.Warn("page cache set", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached page and returns how many were
// removed. The server calls it at startup since a new binary may ship new
// templates under an unchanged version.
func (pc *PageCache) InvalidateAll(ctx context.Context) (int, error) {
	var batch []string
	var removed int

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := pc.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("page cache unlink: %w", err)
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}

	iter := pc.client.Scan(ctx, 0, pageKeyPrefix+"*", purgeBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("page cache scan: %w", err)
	}
	if err := flush(); err != nil {
		return removed, err
	}

	if removed > 0 {
		slog.Info("page cache cleared", "removed", removed)
	}
	return removed, nil
}

// PageKey returns the cache key for a route. The footer year is part of the
// key so a cached page never outlives the year it was rendered in.
func PageKey(version, route string, year int) string {
	return fmt.Sprintf("%s:%s:%d", version, route, year)
}
