package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationService_ReplaceRecommendations(t *testing.T) {
	t.Parallel()

	t.Run("replaces previous rows for the user only", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecommendationService(db)
		ctx := context.Background()
		seedSource(t, db, "dramacool", reelscout.ContentTypeDrama)

		var items []*reelscout.ContentItem
		for i := range 8 {
			items = append(items, item("dramacool", fmt.Sprintf("d%d", i), reelscout.ContentTypeDrama, float64(i), 2020))
		}
		seedContent(t, db, items...)

		var old []*reelscout.Recommendation
		for i := range 8 {
			old = append(old, &reelscout.Recommendation{ContentID: items[i].ID, Score: 0.1})
		}
		require.NoError(t, svc.ReplaceRecommendations(ctx, "u1", old))
		require.NoError(t, svc.ReplaceRecommendations(ctx, "u2", old[:2]))

		var fresh []*reelscout.Recommendation
		for i := range 5 {
			fresh = append(fresh, &reelscout.Recommendation{ContentID: items[i].ID, Score: float64(i) / 10})
		}
		require.NoError(t, svc.ReplaceRecommendations(ctx, "u1", fresh))

		stored, err := svc.FindRecommendations(ctx, "u1", 0)
		require.NoError(t, err)
		require.Len(t, stored, 5)
		assert.Equal(t, "dramacool:d4", stored[0].ContentID)
		assert.InDelta(t, 0.4, stored[0].Score, 0.001)
		require.NotNil(t, stored[0].Content)
		assert.Equal(t, "d4", stored[0].Content.Title)
		assert.Equal(t, "u1", stored[0].UserID)

		other, err := svc.FindRecommendations(ctx, "u2", 0)
		require.NoError(t, err)
		assert.Len(t, other, 2)
	})

	t.Run("rolls back when an insert fails", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecommendationService(db)
		ctx := context.Background()
		seedSource(t, db, "dramacool", reelscout.ContentTypeDrama)
		seedContent(t, db, item("dramacool", "a", reelscout.ContentTypeDrama, 7, 2015))

		require.NoError(t, svc.ReplaceRecommendations(ctx, "u1", []*reelscout.Recommendation{{ContentID: "dramacool:a", Score: 0.9}}))

		err := svc.ReplaceRecommendations(ctx, "u1", []*reelscout.Recommendation{{ContentID: "dramacool:missing", Score: 0.5}})
		assert.Equal(t, reelscout.ESTORE, reelscout.ErrorCode(err))

		stored, err := svc.FindRecommendations(ctx, "u1", 0)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "dramacool:a", stored[0].ContentID)
	})

	t.Run("requires user id", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		err := sqlite.NewRecommendationService(db).ReplaceRecommendations(context.Background(), "", nil)
		assert.Equal(t, reelscout.EINVALID, reelscout.ErrorCode(err))
	})
}
