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

func TestMonitorService_Sessions(t *testing.T) {
	t.Parallel()

	t.Run("records session lifecycle with source logs", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMonitorService(db)
		ctx := context.Background()

		session := &reelscout.ScrapingSession{}
		require.NoError(t, svc.StartSession(ctx, session))
		assert.NotEmpty(t, session.ID)
		assert.Equal(t, reelscout.SessionStarted, session.Status)

		require.NoError(t, svc.LogSource(ctx, &reelscout.ScrapingSourceLog{
			SessionID: session.ID, SourceID: "dramacool", Success: true, ItemsCount: 12, DurationMs: 800,
		}))
		require.NoError(t, svc.LogSource(ctx, &reelscout.ScrapingSourceLog{
			SessionID: session.ID, SourceID: "gogo", ErrorsCount: 1, Error: "fetch failed",
		}))
		require.NoError(t, svc.LogError(ctx, &reelscout.ScrapingError{
			SessionID: session.ID, SourceID: "gogo", Message: "fetch failed",
		}))

		session.Status = reelscout.SessionCompleted
		session.ItemsCount = 12
		session.ErrorsCount = 1
		session.DurationMs = 1200
		require.NoError(t, svc.FinishSession(ctx, session))

		sessions, err := svc.FindSessions(ctx, 10)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, reelscout.SessionCompleted, sessions[0].Status)
		assert.Equal(t, 12, sessions[0].ItemsCount)
		assert.Equal(t, 1, sessions[0].ErrorsCount)
		require.NotNil(t, sessions[0].FinishedAt)

		logs, err := svc.FindSourceLogs(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.True(t, logs[0].Success)
		assert.Equal(t, "dramacool", logs[0].SourceID)
		assert.False(t, logs[1].Success)
		assert.Equal(t, "fetch failed", logs[1].Error)
	})

	t.Run("lists newest sessions first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMonitorService(db)
		ctx := context.Background()

		older := &reelscout.ScrapingSession{StartedAt: time.Now().Add(-time.Hour)}
		newer := &reelscout.ScrapingSession{StartedAt: time.Now()}
		require.NoError(t, svc.StartSession(ctx, older))
		require.NoError(t, svc.StartSession(ctx, newer))

		sessions, err := svc.FindSessions(ctx, 1)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, newer.ID, sessions[0].ID)
	})

	t.Run("returns ENOTFOUND when finishing unknown session", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		err := sqlite.NewMonitorService(db).FinishSession(context.Background(), &reelscout.ScrapingSession{ID: "nope"})
		assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))
	})
}

func TestMonitorService_Executions(t *testing.T) {
	t.Parallel()

	t.Run("records start and finish", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMonitorService(db)
		ctx := context.Background()

		exec := &reelscout.ScheduledExecution{Kind: reelscout.ExecutionScrape}
		require.NoError(t, svc.StartExecution(ctx, exec))
		assert.NotEmpty(t, exec.ID)

		exec.Status = reelscout.SessionCompleted
		exec.Details = "3 sources"
		require.NoError(t, svc.FinishExecution(ctx, exec))

		var status, details string
		err := db.QueryRowContext(ctx, "SELECT status, details FROM scheduled_executions WHERE id = ?", exec.ID).Scan(&status, &details)
		require.NoError(t, err)
		assert.Equal(t, "completed", status)
		assert.Equal(t, "3 sources", details)
	})
}
