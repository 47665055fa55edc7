package mock

import (
	"context"
	"time"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.UserService = (*UserService)(nil)

// UserService is a mock implementation of reelscout.UserService.
type UserService struct {
	FindPreferencesFn func(ctx context.Context, userID string) (*reelscout.UserPreferences, error)
	SavePreferencesFn func(ctx context.Context, prefs *reelscout.UserPreferences) error
	RecordWatchFn     func(ctx context.Context, entry *reelscout.WatchHistoryEntry) error
	FindHistoryFn     func(ctx context.Context, userID string, limit int) ([]*reelscout.WatchHistoryEntry, error)
	FindActiveUsersFn func(ctx context.Context, since time.Time) ([]string, error)
}

func (s *UserService) FindPreferences(ctx context.Context, userID string) (*reelscout.UserPreferences, error) {
	return s.FindPreferencesFn(ctx, userID)
}

func (s *UserService) SavePreferences(ctx context.Context, prefs *reelscout.UserPreferences) error {
	return s.SavePreferencesFn(ctx, prefs)
}

func (s *UserService) RecordWatch(ctx context.Context, entry *reelscout.WatchHistoryEntry) error {
	return s.RecordWatchFn(ctx, entry)
}

func (s *UserService) FindHistory(ctx context.Context, userID string, limit int) ([]*reelscout.WatchHistoryEntry, error) {
	return s.FindHistoryFn(ctx, userID, limit)
}

func (s *UserService) FindActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	return s.FindActiveUsersFn(ctx, since)
}
