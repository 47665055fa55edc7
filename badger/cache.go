// Package badger implements reelscout.Cache on top of BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fwojciec/reelscout"
	"github.com/goccy/go-json"
)

// Compile-time interface verification.
var _ reelscout.Cache = (*Cache)(nil)

const keyPrefix = "cache:"

// Cache stores JSON-encoded values as BadgerDB entries with a TTL.
// Expired entries are invisible to reads and reclaimed by compaction.
type Cache struct {
	db   *badger.DB
	path string
}

// NewCache creates a Cache backed by the directory at path.
// An empty path keeps everything in memory.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Open opens the underlying BadgerDB.
func (c *Cache) Open() error {
	opts := badger.DefaultOptions(c.path).WithLogger(nil)
	if c.path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	c.db = db
	return nil
}

// Close closes the underlying BadgerDB.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get decodes the value at key into dst.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get %q: %w", key, err)
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Set stores v at key. A non-positive ttl stores the entry without expiry.
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}

// RunValueLogGC reclaims space in the value log until nothing is left to
// rewrite. It is a no-op for in-memory caches.
func (c *Cache) RunValueLogGC(discardRatio float64) error {
	if c.path == "" {
		return nil
	}
	for {
		err := c.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
