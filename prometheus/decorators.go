package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.Fetcher = (*Fetcher)(nil)

// Fetcher counts and times fetches of the wrapped backend.
type Fetcher struct {
	next    reelscout.Fetcher
	backend string
	metrics *Metrics
}

// NewFetcher wraps next. backend labels its series.
func (m *Metrics) NewFetcher(next reelscout.Fetcher, backend string) *Fetcher {
	return &Fetcher{next: next, backend: backend, metrics: m}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	html, err := f.next.Fetch(ctx, url)
	f.metrics.fetchDuration.WithLabelValues(f.backend).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = reelscout.ErrorCode(err)
	}
	f.metrics.fetchTotal.WithLabelValues(f.backend, outcome).Inc()
	return html, err
}

func (f *Fetcher) Close() error {
	return f.next.Close()
}

var _ reelscout.SourceAdapter = (*Adapter)(nil)

// Adapter counts items and failures of the wrapped source adapter.
type Adapter struct {
	next    reelscout.SourceAdapter
	metrics *Metrics
}

// NewAdapter wraps next.
func (m *Metrics) NewAdapter(next reelscout.SourceAdapter) *Adapter {
	return &Adapter{next: next, metrics: m}
}

func (a *Adapter) Source() *reelscout.Source {
	return a.next.Source()
}

func (a *Adapter) ScrapeList(ctx context.Context, limit int) ([]*reelscout.ContentItem, error) {
	items, err := a.next.ScrapeList(ctx, limit)
	a.observe(reelscout.ActionScrape, len(items), err)
	return items, err
}

func (a *Adapter) Search(ctx context.Context, query string, limit int) ([]*reelscout.ContentItem, error) {
	items, err := a.next.Search(ctx, query, limit)
	a.observe(reelscout.ActionSearch, len(items), err)
	return items, err
}

func (a *Adapter) GetDetails(ctx context.Context, itemRef string) (*reelscout.ContentItem, error) {
	item, err := a.next.GetDetails(ctx, itemRef)
	n := 0
	if item != nil {
		n = 1
	}
	a.observe(reelscout.ActionDetails, n, err)
	return item, err
}

func (a *Adapter) observe(action reelscout.TaskAction, n int, err error) {
	source := a.next.Source().ID
	if err != nil {
		a.metrics.scrapeErrors.WithLabelValues(source, string(action)).Inc()
		return
	}
	a.metrics.scrapeItems.WithLabelValues(source, string(action)).Add(float64(n))
}

var _ reelscout.Cache = (*Cache)(nil)

// Cache counts hits, misses and read errors of the wrapped cache.
type Cache struct {
	next    reelscout.Cache
	metrics *Metrics
}

// NewCache wraps next.
func (m *Metrics) NewCache(next reelscout.Cache) *Cache {
	return &Cache{next: next, metrics: m}
}

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	found, err := c.next.Get(ctx, key, dst)
	switch {
	case err != nil:
		c.metrics.cacheTotal.WithLabelValues("error").Inc()
	case found:
		c.metrics.cacheTotal.WithLabelValues("hit").Inc()
	default:
		c.metrics.cacheTotal.WithLabelValues("miss").Inc()
	}
	return found, err
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	return c.next.Set(ctx, key, v, ttl)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.next.Delete(ctx, key)
}
