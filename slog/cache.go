package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reelscout"
)

// Ensure LoggingCache implements reelscout.Cache.
var _ reelscout.Cache = (*LoggingCache)(nil)

// LoggingCache wraps a Cache with debug logging of hits and misses.
type LoggingCache struct {
	next   reelscout.Cache
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next reelscout.Cache, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

func (c *LoggingCache) Get(ctx context.Context, key string, dst any) (found bool, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache get", "key", key, "hit", found, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return c.next.Get(ctx, key, dst)
}

func (c *LoggingCache) Set(ctx context.Context, key string, v any, ttl time.Duration) (err error) {
	defer func() {
		c.logger.Debug("cache set", "key", key, "ttl", ttl, "err", err)
	}()
	return c.next.Set(ctx, key, v, ttl)
}

func (c *LoggingCache) Delete(ctx context.Context, key string) (err error) {
	defer func() {
		c.logger.Debug("cache delete", "key", key, "err", err)
	}()
	return c.next.Delete(ctx, key)
}
