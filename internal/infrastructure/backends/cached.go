package backends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/infrastructure/cache"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// Cached serves repeated queries for the same item from a cache.
type Cached struct {
	backend scraping.Backend
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCached wraps backend. Cache failures never fail a query.
func NewCached(backend scraping.Backend, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{
		backend: backend,
		cache:   c,
		ttl:     ttl,
		logger:  logger.With(zap.String("backend", backend.Name())),
	}
}

// Name returns the wrapped backend's name
func (c *Cached) Name() string { return c.backend.Name() }

// Initialized returns the wrapped backend's state
func (c *Cached) Initialized() bool { return c.backend.Initialized() }

// Query returns cached results for item or queries the wrapped backend.
// Only successful queries are cached.
func (c *Cached) Query(ctx context.Context, item media.Item) (map[string]scraping.RawResult, error) {
	key := cacheKey(c.backend.Name(), item)

	if data, err := c.cache.Get(ctx, key); err == nil {
		var results map[string]scraping.RawResult
		if err := json.Unmarshal(data, &results); err == nil {
			c.logger.Debug("Serving cached results", zap.String("key", key), zap.Int("results", len(results)))
			return results, nil
		}
		c.logger.Debug("Discarding unreadable cache entry", zap.String("key", key))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Debug("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	results, err := c.backend.Query(ctx, item)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(results)
	if err != nil {
		return results, nil
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Debug("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return results, nil
}

// cacheKey identifies what a backend is asked for rather than the item
// instance, so two snapshots of the same episode share an entry.
func cacheKey(backend string, item media.Item) string {
	ref := item.IMDbID()
	if ref == "" {
		ref = strings.ToLower(item.Title())
	}
	season, episode := coordinates(item)
	return fmt.Sprintf("backend:%s:%s:%s:%d:%d", strings.ToLower(backend), item.Kind(), ref, season, episode)
}
