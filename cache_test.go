package reelscout_test

import (
	"testing"

	"github.com/fwojciec/reelscout"
	"github.com/stretchr/testify/assert"
)

func TestCacheKeys(t *testing.T) {
	t.Parallel()

	t.Run("scrape key joins source action query and limit", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "dramacool:search:queen:10", reelscout.ScrapeCacheKey("dramacool", reelscout.ActionSearch, "queen", 10))
	})

	t.Run("recommendation key joins types", func(t *testing.T) {
		t.Parallel()

		key := reelscout.RecommendationsCacheKey("u1", []reelscout.ContentType{reelscout.ContentTypeDrama, reelscout.ContentTypeAnime}, 5)
		assert.Equal(t, "recommendations:u1:drama,anime:5", key)
	})

	t.Run("recommendation key appends normalized genres", func(t *testing.T) {
		t.Parallel()

		types := []reelscout.ContentType{reelscout.ContentTypeDrama}
		key := reelscout.RecommendationsCacheKey("u1", types, 5, "Thriller", " romance", "thriller")
		assert.Equal(t, "recommendations:u1:drama:5:romance,thriller", key)
		assert.Equal(t, key, reelscout.RecommendationsCacheKey("u1", types, 5, "romance", "THRILLER"))
		assert.NotEqual(t, key, reelscout.RecommendationsCacheKey("u1", types, 5, "romance"))
		assert.Equal(t, "recommendations:u1:drama:5", reelscout.RecommendationsCacheKey("u1", types, 5, " "))
	})

	t.Run("fallback key has no user", func(t *testing.T) {
		t.Parallel()

		key := reelscout.FallbackCacheKey([]reelscout.ContentType{reelscout.ContentTypeMovie}, 20)
		assert.Equal(t, "recommendations:fallback:movie:20", key)
	})

	t.Run("profile keys", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "user:u1:preferences", reelscout.PreferencesCacheKey("u1"))
		assert.Equal(t, "user:u1:history", reelscout.HistoryCacheKey("u1"))
	})
}

func TestScrapeTTL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, reelscout.ScrapeListTTL, reelscout.ScrapeTTL(reelscout.ActionScrape))
	assert.Equal(t, reelscout.SearchTTL, reelscout.ScrapeTTL(reelscout.ActionSearch))
	assert.Equal(t, reelscout.DetailsTTL, reelscout.ScrapeTTL(reelscout.ActionDetails))
}
