package scrape_test

import (
	"testing"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/mock"
	"github.com/fwojciec/reelscout/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubAdapter(src *reelscout.Source) reelscout.SourceAdapter {
	return &mock.SourceAdapter{SourceFn: func() *reelscout.Source { return src }}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	sources := []*reelscout.Source{
		{ID: "gogo", ContentType: reelscout.ContentTypeAnime},
		{ID: "dramacool", ContentType: reelscout.ContentTypeDrama},
	}

	t.Run("looks adapters up by source id", func(t *testing.T) {
		t.Parallel()

		r := scrape.NewRegistry(sources, stubAdapter)

		a, err := r.Adapter("gogo")
		require.NoError(t, err)
		assert.Equal(t, reelscout.ContentTypeAnime, a.Source().ContentType)
	})

	t.Run("returns ENOTFOUND for unknown source", func(t *testing.T) {
		t.Parallel()

		r := scrape.NewRegistry(sources, stubAdapter)

		_, err := r.Adapter("missing")
		assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))
	})

	t.Run("lists adapters by source id", func(t *testing.T) {
		t.Parallel()

		r := scrape.NewRegistry(sources, stubAdapter)
		r.Register(stubAdapter(&reelscout.Source{ID: "bolly"}))

		var ids []string
		for _, a := range r.Adapters() {
			ids = append(ids, a.Source().ID)
		}
		assert.Equal(t, []string{"bolly", "dramacool", "gogo"}, ids)
	})

	t.Run("wraps every adapter into a new registry", func(t *testing.T) {
		t.Parallel()

		r := scrape.NewRegistry(sources, stubAdapter)
		wrapped := 0
		w := r.Wrap(func(next reelscout.SourceAdapter) reelscout.SourceAdapter {
			wrapped++
			return next
		})

		assert.Equal(t, 2, wrapped)
		assert.Len(t, w.Adapters(), 2)
	})
}
