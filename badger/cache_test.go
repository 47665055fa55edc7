package badger_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) *badger.Cache {
	t.Helper()
	c := badger.NewCache("")
	require.NoError(t, c.Open())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache(t *testing.T) {
	t.Parallel()

	t.Run("reports miss for absent key", func(t *testing.T) {
		t.Parallel()

		c := setupCache(t)
		var dst []reelscout.Item
		found, err := c.Get(context.Background(), "dramacool:scrape::10", &dst)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("round trips a value", func(t *testing.T) {
		t.Parallel()

		c := setupCache(t)
		ctx := context.Background()
		rating := 9.1
		items := []reelscout.Item{{Title: "Queen of Tears", URL: "https://dramacool.example/q", Rating: &rating}}

		require.NoError(t, c.Set(ctx, "dramacool:scrape::10", items, time.Hour))

		var got []reelscout.Item
		found, err := c.Get(ctx, "dramacool:scrape::10", &got)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, got, 1)
		assert.Equal(t, "Queen of Tears", got[0].Title)
		require.NotNil(t, got[0].Rating)
		assert.InDelta(t, 9.1, *got[0].Rating, 0.001)
	})

	t.Run("expires entries after ttl", func(t *testing.T) {
		t.Parallel()

		c := setupCache(t)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "short", "v", time.Second))
		time.Sleep(2100 * time.Millisecond)

		var got string
		found, err := c.Get(ctx, "short", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("deletes keys", func(t *testing.T) {
		t.Parallel()

		c := setupCache(t)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "k", 1, time.Hour))
		require.NoError(t, c.Delete(ctx, "k"))
		require.NoError(t, c.Delete(ctx, "never-set"))

		var got int
		found, err := c.Get(ctx, "k", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		t.Parallel()

		c := setupCache(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := c.Set(ctx, "k", 1, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
