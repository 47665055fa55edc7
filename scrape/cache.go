package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.SourceAdapter = (*CachedAdapter)(nil)

// CachedAdapter serves adapter results from a cache and fills it on miss.
// Cache failures are logged and treated as misses; failed operations are
// never cached.
type CachedAdapter struct {
	next   reelscout.SourceAdapter
	cache  reelscout.Cache
	logger *slog.Logger
}

// NewCachedAdapter wraps next with cache-aside reads.
func NewCachedAdapter(next reelscout.SourceAdapter, cache reelscout.Cache, logger *slog.Logger) *CachedAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedAdapter{next: next, cache: cache, logger: logger}
}

func (a *CachedAdapter) Source() *reelscout.Source {
	return a.next.Source()
}

func (a *CachedAdapter) ScrapeList(ctx context.Context, limit int) ([]*reelscout.ContentItem, error) {
	key := reelscout.ScrapeCacheKey(a.Source().ID, reelscout.ActionScrape, "", limit)
	return cached(ctx, a, key, reelscout.ScrapeListTTL, func() ([]*reelscout.ContentItem, error) {
		return a.next.ScrapeList(ctx, limit)
	})
}

func (a *CachedAdapter) Search(ctx context.Context, query string, limit int) ([]*reelscout.ContentItem, error) {
	key := reelscout.ScrapeCacheKey(a.Source().ID, reelscout.ActionSearch, query, limit)
	return cached(ctx, a, key, reelscout.SearchTTL, func() ([]*reelscout.ContentItem, error) {
		return a.next.Search(ctx, query, limit)
	})
}

func (a *CachedAdapter) GetDetails(ctx context.Context, itemRef string) (*reelscout.ContentItem, error) {
	key := reelscout.ScrapeCacheKey(a.Source().ID, reelscout.ActionDetails, itemRef, 1)
	return cached(ctx, a, key, reelscout.DetailsTTL, func() (*reelscout.ContentItem, error) {
		return a.next.GetDetails(ctx, itemRef)
	})
}

func cached[T any](ctx context.Context, a *CachedAdapter, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var hit T
	found, err := a.cache.Get(ctx, key, &hit)
	if err != nil {
		a.logger.Warn("cache read failed", "key", key, "err", err)
	} else if found {
		return hit, nil
	}

	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	if err := a.cache.Set(ctx, key, v, ttl); err != nil {
		a.logger.Warn("cache write failed", "key", key, "err", err)
	}
	return v, nil
}
