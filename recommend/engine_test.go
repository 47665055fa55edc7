package recommend_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/badger"
	"github.com/fwojciec/reelscout/mock"
	"github.com/fwojciec/reelscout/recommend"
	"github.com/fwojciec/reelscout/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	contents *sqlite.ContentService
	users    *sqlite.UserService
	recs     *sqlite.RecommendationService
	cache    *badger.Cache
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	cache := badger.NewCache("")
	require.NoError(t, cache.Open())
	t.Cleanup(func() { cache.Close() })

	ctx := context.Background()
	sources := sqlite.NewSourceService(db)
	for _, src := range []struct {
		id string
		ct reelscout.ContentType
	}{
		{"dramacool", reelscout.ContentTypeDrama},
		{"gogoanime", reelscout.ContentTypeAnime},
		{"movies", reelscout.ContentTypeMovie},
	} {
		require.NoError(t, sources.UpsertSource(ctx, &reelscout.Source{
			ID:          src.id,
			Name:        src.id,
			BaseURL:     "https://" + src.id + ".example",
			ContentType: src.ct,
			Selectors:   reelscout.SelectorSet{reelscout.FieldItem: {"li"}},
			IsActive:    true,
		}))
	}

	return &fixture{
		contents: sqlite.NewContentService(db),
		users:    sqlite.NewUserService(db),
		recs:     sqlite.NewRecommendationService(db),
		cache:    cache,
	}
}

func (f *fixture) engine(opts ...recommend.Option) *recommend.Engine {
	opts = append([]recommend.Option{
		recommend.WithCache(f.cache),
		recommend.WithClock(func() time.Time { return now }),
	}, opts...)
	return recommend.NewEngine(f.contents, f.users, f.recs, opts...)
}

func (f *fixture) seed(t *testing.T, items ...*reelscout.ContentItem) {
	t.Helper()
	require.NoError(t, f.contents.UpsertContents(context.Background(), items))
}

func content(sourceID, localID string, ct reelscout.ContentType, rating float64, year int, genres ...string) *reelscout.ContentItem {
	return &reelscout.ContentItem{
		ID:          reelscout.ContentID(sourceID, localID),
		SourceID:    sourceID,
		URL:         "https://" + sourceID + ".example/" + localID,
		Title:       localID,
		Type:        ct,
		Rating:      rating,
		ReleaseYear: year,
		Metadata:    reelscout.Metadata{Genres: genres},
	}
}

func catalog(n int) []*reelscout.ContentItem {
	var items []*reelscout.ContentItem
	for i := range n {
		items = append(items, content("dramacool", fmt.Sprintf("d%02d", i), reelscout.ContentTypeDrama, float64(i%10), 2015+i%12))
	}
	return items
}

func TestEngine_Recommend(t *testing.T) {
	t.Parallel()

	t.Run("uses defaults for a user without history", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		f.seed(t, catalog(12)...)

		recs, err := f.engine().Recommend(context.Background(), "newcomer", reelscout.RecommendOptions{Limit: 5})

		require.NoError(t, err)
		require.Len(t, recs, 5)
		for _, r := range recs {
			assert.Equal(t, "newcomer", r.UserID)
			assert.GreaterOrEqual(t, r.Score, 0.0)
			assert.LessOrEqual(t, r.Score, 1.0)
		}
		for i := 1; i < len(recs); i++ {
			assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
		}
	})

	t.Run("replaces stored rows with exactly limit recommendations", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		items := catalog(12)
		f.seed(t, items...)
		ctx := context.Background()

		var prior []*reelscout.Recommendation
		for _, it := range items[:8] {
			prior = append(prior, &reelscout.Recommendation{ContentID: it.ID, Score: 0.01})
		}
		require.NoError(t, f.recs.ReplaceRecommendations(ctx, "u1", prior))

		_, err := f.engine().Recommend(ctx, "u1", reelscout.RecommendOptions{Limit: 5})
		require.NoError(t, err)

		stored, err := f.recs.FindRecommendations(ctx, "u1", 0)
		require.NoError(t, err)
		require.Len(t, stored, 5)
		for _, r := range stored {
			assert.Greater(t, r.Score, 0.01)
		}
	})

	t.Run("excludes watched content and boosts watched types", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		ctx := context.Background()
		watched := content("gogoanime", "frieren", reelscout.ContentTypeAnime, 9, 2024)
		anime := content("gogoanime", "dandadan", reelscout.ContentTypeAnime, 8, 2024)
		movie := content("movies", "dune", reelscout.ContentTypeMovie, 8, 2024)
		f.seed(t, watched, anime, movie)
		require.NoError(t, f.users.RecordWatch(ctx, &reelscout.WatchHistoryEntry{UserID: "u1", ContentID: watched.ID, Progress: 1}))

		recs, err := f.engine().Recommend(ctx, "u1", reelscout.RecommendOptions{Limit: 10})

		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, anime.ID, recs[0].ContentID)
		assert.Greater(t, recs[0].Score, recs[1].Score)
	})

	t.Run("filters requested and avoided genres", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		ctx := context.Background()
		f.seed(t,
			content("dramacool", "romance", reelscout.ContentTypeDrama, 9, 2024, "Romance"),
			content("dramacool", "horror-romance", reelscout.ContentTypeDrama, 8, 2024, "Romance", "Horror"),
			content("dramacool", "thriller", reelscout.ContentTypeDrama, 7, 2024, "Thriller"),
		)
		require.NoError(t, f.users.SavePreferences(ctx, &reelscout.UserPreferences{
			UserID:        "u1",
			AvoidedGenres: []string{"horror"},
		}))

		recs, err := f.engine().Recommend(ctx, "u1", reelscout.RecommendOptions{Genres: []string{"romance"}})

		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "dramacool:romance", recs[0].ContentID)
	})

	t.Run("recent strategy drops titles outside the window", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		f.seed(t,
			content("movies", "new", reelscout.ContentTypeMovie, 5, 2025),
			content("movies", "old", reelscout.ContentTypeMovie, 9, 2010),
		)
		strategy, err := recommend.NewStrategy(recommend.StrategyRecent, 3)
		require.NoError(t, err)

		recs, err := f.engine(recommend.WithStrategy(strategy)).Recommend(context.Background(), "u1", reelscout.RecommendOptions{})

		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "movies:new", recs[0].ContentID)
	})

	t.Run("returns identical results for identical inputs", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		f.seed(t, catalog(20)...)
		e := f.engine()
		ctx := context.Background()

		first, err := e.Refresh(ctx, "u1", reelscout.RecommendOptions{Limit: 8})
		require.NoError(t, err)
		second, err := e.Refresh(ctx, "u1", reelscout.RecommendOptions{Limit: 8})
		require.NoError(t, err)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].ContentID, second[i].ContentID)
			assert.InDelta(t, first[i].Score, second[i].Score, 1e-12)
		}
	})

	t.Run("serves cached results", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		ctx := context.Background()
		opts := reelscout.RecommendOptions{Limit: 3}.Normalize()
		cached := []*reelscout.Recommendation{{UserID: "u1", ContentID: "dramacool:cached", Score: 0.7}}
		require.NoError(t, f.cache.Set(ctx, reelscout.RecommendationsCacheKey("u1", opts.Types, 3), cached, time.Hour))

		users := &mock.UserService{
			FindPreferencesFn: func(ctx context.Context, userID string) (*reelscout.UserPreferences, error) {
				t.Fatal("store read on cache hit")
				return nil, nil
			},
		}
		e := recommend.NewEngine(f.contents, users, f.recs, recommend.WithCache(f.cache))

		recs, err := e.Recommend(ctx, "u1", reelscout.RecommendOptions{Limit: 3})

		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "dramacool:cached", recs[0].ContentID)
	})

	t.Run("caches each genre filter separately", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		f.seed(t,
			content("dramacool", "romance", reelscout.ContentTypeDrama, 8, 2024, "Romance"),
			content("dramacool", "thriller", reelscout.ContentTypeDrama, 7, 2024, "Thriller"),
		)
		e := f.engine()
		ctx := context.Background()

		romance, err := e.Recommend(ctx, "u1", reelscout.RecommendOptions{Genres: []string{"romance"}})
		require.NoError(t, err)
		thriller, err := e.Recommend(ctx, "u1", reelscout.RecommendOptions{Genres: []string{"thriller"}})
		require.NoError(t, err)
		all, err := e.Recommend(ctx, "u1", reelscout.RecommendOptions{})
		require.NoError(t, err)

		require.Len(t, romance, 1)
		assert.Equal(t, "dramacool:romance", romance[0].ContentID)
		require.Len(t, thriller, 1)
		assert.Equal(t, "dramacool:thriller", thriller[0].ContentID)
		assert.Len(t, all, 2)
	})

	t.Run("falls back when personalization fails", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		f.seed(t,
			content("dramacool", "top", reelscout.ContentTypeDrama, 9, 2020),
			content("dramacool", "mid", reelscout.ContentTypeDrama, 6, 2020),
			content("movies", "film", reelscout.ContentTypeMovie, 10, 2020),
		)
		users := &mock.UserService{
			FindPreferencesFn: func(ctx context.Context, userID string) (*reelscout.UserPreferences, error) {
				return nil, reelscout.Errorf(reelscout.ESTORE, "database is locked")
			},
		}
		var replaced atomic.Int32
		recs := &mock.RecommendationService{
			ReplaceRecommendationsFn: func(ctx context.Context, userID string, r []*reelscout.Recommendation) error {
				replaced.Add(1)
				return nil
			},
		}
		e := recommend.NewEngine(f.contents, users, recs, recommend.WithCache(f.cache))
		ctx := context.Background()
		opts := reelscout.RecommendOptions{Limit: 5, Types: []reelscout.ContentType{reelscout.ContentTypeDrama}}

		got, err := e.Recommend(ctx, "u1", opts)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "dramacool:top", got[0].ContentID)
		for _, r := range got {
			assert.InDelta(t, recommend.FallbackScore, r.Score, 1e-9)
		}
		assert.Zero(t, replaced.Load())

		var cached []*reelscout.Recommendation
		found, err := f.cache.Get(ctx, reelscout.FallbackCacheKey(opts.Types, 5), &cached)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Len(t, cached, 2)
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		_, err := f.engine().Recommend(context.Background(), "", reelscout.RecommendOptions{})
		assert.Equal(t, reelscout.EINVALID, reelscout.ErrorCode(err))
	})

	t.Run("rejects unknown content types", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		_, err := f.engine().Recommend(context.Background(), "u1", reelscout.RecommendOptions{Types: []reelscout.ContentType{"podcast"}})
		assert.Equal(t, reelscout.EINVALID, reelscout.ErrorCode(err))
	})
}

func TestBuildProfile(t *testing.T) {
	t.Parallel()

	t.Run("weights count missing content in the denominator", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		f.seed(t,
			content("dramacool", "a", reelscout.ContentTypeDrama, 5, 2020),
			content("dramacool", "b", reelscout.ContentTypeDrama, 5, 2020),
			content("gogoanime", "c", reelscout.ContentTypeAnime, 5, 2020),
		)
		history := []*reelscout.WatchHistoryEntry{
			{ContentID: "dramacool:a"},
			{ContentID: "dramacool:b"},
			{ContentID: "gogoanime:c"},
			{ContentID: "dramacool:deleted"},
		}

		p, err := recommend.BuildProfile(context.Background(), f.contents, reelscout.DefaultPreferences("u1"), history)

		require.NoError(t, err)
		assert.InDelta(t, 0.5, p.TypeWeights[reelscout.ContentTypeDrama], 1e-9)
		assert.InDelta(t, 0.25, p.TypeWeights[reelscout.ContentTypeAnime], 1e-9)
		assert.InDelta(t, 0.5, p.SourceWeights["dramacool"], 1e-9)
		assert.True(t, p.PreferredTypes[reelscout.ContentTypeMovie])
	})

	t.Run("has no implicit weights without history", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		p, err := recommend.BuildProfile(context.Background(), f.contents, &reelscout.UserPreferences{
			UserID:         "u1",
			AvoidedSources: []string{"gogoanime"},
		}, nil)

		require.NoError(t, err)
		assert.Empty(t, p.TypeWeights)
		assert.Empty(t, p.SourceWeights)
		assert.True(t, p.AvoidedSources["gogoanime"])
	})
}
