package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	searchKeyPrefix     = "applications:search"
	searchGenerationKey = searchKeyPrefix + ":gen"
)

// CachedApplication is the read model stored for each search result row.
type CachedApplication struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Domains []string `json:"domains"`
}

// SearchCache stores application search results keyed by query text.
//
// Every key embeds a generation number. Invalidate bumps the generation, which
// orphans all earlier entries at once; they age out through their TTL. A reader
// that fetched generation N before a write and stores its result afterwards
// writes under N, so the stale result is never served.
//
// Key format: "applications:search:{gen}:{lowercased query}"
type SearchCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewSearchCache returns a SearchCache backed by r. Returns nil when r is nil
// so callers can treat a nil cache as "caching disabled".
func NewSearchCache(r *RedisClient, ttl time.Duration) *SearchCache {
	if r == nil {
		return nil
	}
	return &SearchCache{client: r, ttl: ttl}
}

// Generation returns the current cache generation. A missing counter is 0.
func (c *SearchCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Client().Get(ctx, searchGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached result for query under gen.
// Returns redis.Nil when the entry does not exist or has expired.
func (c *SearchCache) Get(ctx context.Context, gen int64, query string) ([]CachedApplication, error) {
	data, err := c.client.Client().Get(ctx, SearchKey(gen, query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var apps []CachedApplication
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return apps, nil
}

// Set stores apps as the result for query under gen with the configured TTL.
func (c *SearchCache) Set(ctx context.Context, gen int64, query string, apps []CachedApplication) error {
	if apps == nil {
		apps = []CachedApplication{}
	}
	data, err := json.Marshal(apps)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Client().Set(ctx, SearchKey(gen, query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate starts a new generation so no earlier entry is read again.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	if err := c.client.Client().Incr(ctx, searchGenerationKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// SearchKey builds the Redis key for query under gen. Search is case
// insensitive, so queries differing only in case share an entry.
func SearchKey(gen int64, query string) string {
	return fmt.Sprintf("%s:%d:%s", searchKeyPrefix, gen, strings.ToLower(query))
}
