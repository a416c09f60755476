package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/binp/internal/domain"
)

const (
	DefaultCacheTTL  = 5 * time.Minute
	DefaultCacheSize = 1000

	layerMemory = "l1"
	layerRedis  = "l2"
)

// CacheMetrics receives cache events. *metrics.CacheMetrics satisfies it.
type CacheMetrics interface {
	Hit(layer string)
	Miss(layer string)
	Invalidated()
	SetEntries(n int)
}

type noopCacheMetrics struct{}

func (noopCacheMetrics) Hit(string) {}
func (noopCacheMetrics) Miss(string) {}
func (noopCacheMetrics) Invalidated() {}
func (noopCacheMetrics) SetEntries(int) {}

// SnippetCache is a read-through cache in front of a SnippetRepository.
// Lookups go to the in-memory LRU first, then Redis when configured, then
// the wrapped repository. Burn-after-read snippets are never cached, so
// their single successful delete still happens against the database.
// Cached entries never outlive the snippet's own expiry.
type SnippetCache struct {
	next    domain.SnippetRepository
	rdb     goredis.Cmdable
	mem     *memoryCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics CacheMetrics
	group   singleflight.Group
}

var _ domain.SnippetRepository = (*SnippetCache)(nil)

type CacheOption func(*SnippetCache)

// WithRedis enables the Redis layer.
func WithRedis(rdb goredis.Cmdable) CacheOption {
	return func(c *SnippetCache) { c.rdb = rdb }
}

func WithCacheMetrics(m CacheMetrics) CacheOption {
	return func(c *SnippetCache) { c.metrics = m }
}

func NewSnippetCache(next domain.SnippetRepository, clock clockwork.Clock, ttl time.Duration, size int, opts ...CacheOption) *SnippetCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &SnippetCache{
		next:    next,
		mem:     newMemoryCache(size),
		ttl:     ttl,
		clock:   clock,
		metrics: noopCacheMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SnippetCache) Create(ctx context.Context, snippet *domain.Snippet) error {
	if err := c.next.Create(ctx, snippet); err != nil {
		return err
	}
	if !snippet.BurnAfterRead {
		c.store(ctx, *snippet)
	}
	return nil
}

func (c *SnippetCache) GetByID(ctx context.Context, id string) (*domain.Snippet, error) {
	if snippet, ok := c.mem.get(id, c.clock.Now()); ok {
		c.metrics.Hit(layerMemory)
		return &snippet, nil
	}
	c.metrics.Miss(layerMemory)

	if c.rdb != nil {
		if snippet, ok := c.getCached(ctx, id); ok {
			c.metrics.Hit(layerRedis)
			if expiresAt, ok := c.entryExpiry(snippet); ok {
				c.mem.set(snippet, expiresAt)
			}
			return &snippet, nil
		}
		c.metrics.Miss(layerRedis)
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		return c.next.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	snippet := *v.(*domain.Snippet)
	if !snippet.BurnAfterRead {
		c.store(ctx, snippet)
	}
	return &snippet, nil
}

// Delete removes the snippet from the repository first so a concurrent
// read cannot refill the cache from a row that is about to disappear.
func (c *SnippetCache) Delete(ctx context.Context, id string) error {
	err := c.next.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *SnippetCache) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := c.next.DeleteExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	c.invalidate(ctx, ids...)
	if evicted := c.mem.evictExpired(c.clock.Now()); evicted > 0 {
		slog.DebugContext(ctx, "Evicted expired snippet cache entries", "count", evicted, "remaining", c.mem.size())
	}
	c.metrics.SetEntries(c.mem.size())
	return ids, nil
}

func (c *SnippetCache) store(ctx context.Context, snippet domain.Snippet) {
	expiresAt, ok := c.entryExpiry(snippet)
	if !ok {
		return
	}
	c.mem.set(snippet, expiresAt)
	c.metrics.SetEntries(c.mem.size())

	if c.rdb != nil {
		c.writeCache(ctx, snippet, expiresAt.Sub(c.clock.Now()))
	}
}

// entryExpiry caps the cache TTL at the snippet's expiry. It reports false
// when the snippet is already past it.
func (c *SnippetCache) entryExpiry(snippet domain.Snippet) (time.Time, bool) {
	now := c.clock.Now()
	expiresAt := now.Add(c.ttl)
	if snippet.ExpiresAt.Before(expiresAt) {
		expiresAt = snippet.ExpiresAt
	}
	return expiresAt, expiresAt.After(now)
}

func (c *SnippetCache) invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		if c.mem.invalidate(id) {
			c.metrics.Invalidated()
		}
	}
	c.metrics.SetEntries(c.mem.size())

	if c.rdb == nil {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = snippetCacheKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate Redis snippet cache", "count", len(keys), "error", err)
	}
}

func (c *SnippetCache) writeCache(ctx context.Context, snippet domain.Snippet, ttl time.Duration) {
	encoded, err := json.Marshal(snippet)
	if err != nil {
		slog.WarnContext(ctx, "Failed to marshal snippet for Redis cache", "snippet_id", snippet.ID, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, snippetCacheKey(snippet.ID), encoded, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Failed to populate Redis snippet cache", "snippet_id", snippet.ID, "error", err)
	}
}

func (c *SnippetCache) getCached(ctx context.Context, id string) (domain.Snippet, bool) {
	data, err := c.rdb.Get(ctx, snippetCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.WarnContext(ctx, "Redis snippet cache GET failed", "snippet_id", id, "error", err)
		}
		return domain.Snippet{}, false
	}

	var snippet domain.Snippet
	if err := json.Unmarshal(data, &snippet); err != nil {
		slog.WarnContext(ctx, "Failed to unmarshal cached snippet", "snippet_id", id, "error", err)
		return domain.Snippet{}, false
	}
	return snippet, true
}

func snippetCacheKey(id string) string {
	return "snippet_cache:" + id
}
