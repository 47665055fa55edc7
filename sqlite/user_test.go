package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Preferences(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND when nothing saved", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		_, err := sqlite.NewUserService(db).FindPreferences(context.Background(), "u1")
		assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))
	})

	t.Run("saves and replaces preferences", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewUserService(db)
		ctx := context.Background()

		prefs := &reelscout.UserPreferences{
			UserID:          "u1",
			PreferredTypes:  []reelscout.ContentType{reelscout.ContentTypeDrama},
			PreferredGenres: []string{"Romance"},
			AvoidedGenres:   []string{"Horror"},
		}
		require.NoError(t, svc.SavePreferences(ctx, prefs))

		prefs.PreferredGenres = []string{"Thriller"}
		require.NoError(t, svc.SavePreferences(ctx, prefs))

		found, err := svc.FindPreferences(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []reelscout.ContentType{reelscout.ContentTypeDrama}, found.PreferredTypes)
		assert.Equal(t, []string{"Thriller"}, found.PreferredGenres)
		assert.Equal(t, []string{"Horror"}, found.AvoidedGenres)
		assert.Empty(t, found.PreferredSources)
		assert.False(t, found.UpdatedAt.IsZero())
	})
}

func TestUserService_RecordWatch(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND for unknown content", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		err := sqlite.NewUserService(db).RecordWatch(context.Background(), &reelscout.WatchHistoryEntry{
			UserID:    "u1",
			ContentID: "dramacool:missing",
		})
		assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))
	})

	t.Run("clamps progress to unit range", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewUserService(db)
		ctx := context.Background()
		seedSource(t, db, "dramacool", reelscout.ContentTypeDrama)
		seedContent(t, db, item("dramacool", "a", reelscout.ContentTypeDrama, 7, 2015))

		require.NoError(t, svc.RecordWatch(ctx, &reelscout.WatchHistoryEntry{UserID: "u1", ContentID: "dramacool:a", Progress: 1.5}))

		history, err := svc.FindHistory(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.InDelta(t, 1.0, history[0].Progress, 0.001)
	})

	t.Run("keeps one entry per content and orders newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewUserService(db)
		ctx := context.Background()
		seedSource(t, db, "dramacool", reelscout.ContentTypeDrama)
		seedContent(t, db,
			item("dramacool", "a", reelscout.ContentTypeDrama, 7, 2015),
			item("dramacool", "b", reelscout.ContentTypeDrama, 8, 2020),
		)

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, svc.RecordWatch(ctx, &reelscout.WatchHistoryEntry{UserID: "u1", ContentID: "dramacool:a", WatchedAt: base}))
		require.NoError(t, svc.RecordWatch(ctx, &reelscout.WatchHistoryEntry{UserID: "u1", ContentID: "dramacool:b", WatchedAt: base.Add(time.Hour)}))
		require.NoError(t, svc.RecordWatch(ctx, &reelscout.WatchHistoryEntry{UserID: "u1", ContentID: "dramacool:a", WatchedAt: base.Add(2 * time.Hour), Progress: 0.5}))

		history, err := svc.FindHistory(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "dramacool:a", history[0].ContentID)
		assert.InDelta(t, 0.5, history[0].Progress, 0.001)
		assert.Equal(t, "dramacool:b", history[1].ContentID)

		limited, err := svc.FindHistory(ctx, "u1", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}

func TestUserService_FindActiveUsers(t *testing.T) {
	t.Parallel()

	t.Run("combines history and preference activity", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewUserService(db)
		ctx := context.Background()
		seedSource(t, db, "dramacool", reelscout.ContentTypeDrama)
		seedContent(t, db, item("dramacool", "a", reelscout.ContentTypeDrama, 7, 2015))

		now := time.Now().UTC()
		require.NoError(t, svc.RecordWatch(ctx, &reelscout.WatchHistoryEntry{UserID: "recent", ContentID: "dramacool:a", WatchedAt: now}))
		require.NoError(t, svc.RecordWatch(ctx, &reelscout.WatchHistoryEntry{UserID: "stale", ContentID: "dramacool:a", WatchedAt: now.AddDate(0, 0, -60)}))
		require.NoError(t, svc.SavePreferences(ctx, reelscout.DefaultPreferences("configured")))

		users, err := svc.FindActiveUsers(ctx, now.AddDate(0, 0, -30))
		require.NoError(t, err)
		assert.Equal(t, []string{"configured", "recent"}, users)
	})
}
