package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devpulse-api/internal/cache"
	"devpulse-api/internal/models"
)

// Cache namespaces, one per source. Keys are "<namespace>_<userId>".
const (
	GitHubNamespace   = "github_stats"
	LeetCodeNamespace = "leetcode_stats"
	WakaTimeNamespace = "wakatime_stats"
)

// Fetcher retrieves and normalizes one provider's metrics.
type Fetcher[T any] interface {
	Source() Source
	Fetch(ctx context.Context, cfg models.UserConfig) (T, error)
}

// Cached serves a Fetcher through the shared process cache.
type Cached[T any] struct {
	namespace string
	ttl       time.Duration
	fetcher   Fetcher[T]
	loader    *cache.Loader[any]
	logger    *slog.Logger
}

func NewCached[T any](namespace string, fetcher Fetcher[T], loader *cache.Loader[any], ttl time.Duration, logger *slog.Logger) *Cached[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached[T]{
		namespace: namespace,
		ttl:       ttl,
		fetcher:   fetcher,
		loader:    loader,
		logger:    logger,
	}
}

func (c *Cached[T]) Source() Source { return c.fetcher.Source() }

// Key is the cache key holding userID's result.
func (c *Cached[T]) Key(userID string) string {
	return c.namespace + "_" + userID
}

// Invalidate drops userID's cached result.
func (c *Cached[T]) Invalidate(userID string) {
	c.loader.Invalidate(c.Key(userID))
}

// Stats returns cfg's metrics from the cache, fetching them on a miss.
// Failed fetches are returned to the caller and never stored.
func (c *Cached[T]) Stats(ctx context.Context, cfg models.UserConfig) (T, error) {
	var zero T
	key := c.Key(cfg.UserID)
	v, hit, err := c.loader.Get(ctx, key, c.ttl, func(ctx context.Context) (any, error) {
		start := time.Now()
		out, err := c.fetcher.Fetch(ctx, cfg)
		if err != nil {
			c.logger.Warn("upstream fetch failed", "source", c.Source(), "user_id", cfg.UserID, "err", err)
			return nil, err
		}
		c.logger.Debug("upstream fetch", "source", c.Source(), "user_id", cfg.UserID, "duration", time.Since(start))
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache key %q holds %T", key, v)
	}
	if hit {
		c.logger.Debug("cache hit", "key", key)
	}
	return out, nil
}
