package mock

import (
	"context"
	"time"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.Cache = (*Cache)(nil)

// Cache is a mock implementation of reelscout.Cache.
type Cache struct {
	GetFn    func(ctx context.Context, key string, dst any) (bool, error)
	SetFn    func(ctx context.Context, key string, v any, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error
}

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	return c.GetFn(ctx, key, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	return c.SetFn(ctx, key, v, ttl)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.DeleteFn(ctx, key)
}
