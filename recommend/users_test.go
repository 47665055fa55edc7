package recommend_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/mock"
	"github.com/fwojciec/reelscout/recommend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedUsers(t *testing.T) {
	t.Parallel()

	t.Run("caches preferences until saved", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		calls := 0
		next := &mock.UserService{
			FindPreferencesFn: func(ctx context.Context, userID string) (*reelscout.UserPreferences, error) {
				calls++
				return &reelscout.UserPreferences{UserID: userID, PreferredSources: []string{fmt.Sprint(calls)}}, nil
			},
			SavePreferencesFn: func(ctx context.Context, prefs *reelscout.UserPreferences) error {
				return nil
			},
		}
		users := recommend.NewCachedUsers(next, f.cache, nil)
		ctx := context.Background()

		first, err := users.FindPreferences(ctx, "u1")
		require.NoError(t, err)
		second, err := users.FindPreferences(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, first.PreferredSources, second.PreferredSources)
		assert.Equal(t, 1, calls)

		require.NoError(t, users.SavePreferences(ctx, &reelscout.UserPreferences{UserID: "u1"}))
		third, err := users.FindPreferences(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, third.PreferredSources)
	})

	t.Run("does not cache missing preferences", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		next := &mock.UserService{
			FindPreferencesFn: func(ctx context.Context, userID string) (*reelscout.UserPreferences, error) {
				return nil, reelscout.Errorf(reelscout.ENOTFOUND, "preferences for %q not found", userID)
			},
		}
		users := recommend.NewCachedUsers(next, f.cache, nil)

		_, err := users.FindPreferences(context.Background(), "u1")
		assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))

		found, err := f.cache.Get(context.Background(), reelscout.PreferencesCacheKey("u1"), &reelscout.UserPreferences{})
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("serves smaller history limits from the cached list", func(t *testing.T) {
		t.Parallel()

		f := setup(t)
		var limits []int
		next := &mock.UserService{
			FindHistoryFn: func(ctx context.Context, userID string, limit int) ([]*reelscout.WatchHistoryEntry, error) {
				limits = append(limits, limit)
				var h []*reelscout.WatchHistoryEntry
				for i := range 4 {
					h = append(h, &reelscout.WatchHistoryEntry{UserID: userID, ContentID: fmt.Sprintf("dramacool:%d", i), WatchedAt: time.Unix(int64(100-i), 0)})
				}
				return h, nil
			},
			RecordWatchFn: func(ctx context.Context, entry *reelscout.WatchHistoryEntry) error {
				return nil
			},
		}
		users := recommend.NewCachedUsers(next, f.cache, nil)
		ctx := context.Background()

		all, err := users.FindHistory(ctx, "u1", reelscout.MaxHistory)
		require.NoError(t, err)
		assert.Len(t, all, 4)

		two, err := users.FindHistory(ctx, "u1", 2)
		require.NoError(t, err)
		assert.Len(t, two, 2)
		assert.Equal(t, []int{reelscout.MaxHistory}, limits)

		require.NoError(t, users.RecordWatch(ctx, &reelscout.WatchHistoryEntry{UserID: "u1", ContentID: "dramacool:new"}))
		_, err = users.FindHistory(ctx, "u1", 2)
		require.NoError(t, err)
		assert.Len(t, limits, 2)
	})
}
