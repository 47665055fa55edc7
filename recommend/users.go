package recommend

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.UserService = (*CachedUsers)(nil)

// CachedUsers is a cache-aside decorator for preference and history reads.
// Writes invalidate the user's cached entries.
type CachedUsers struct {
	next   reelscout.UserService
	cache  reelscout.Cache
	logger *slog.Logger
}

// NewCachedUsers wraps next with cache.
func NewCachedUsers(next reelscout.UserService, cache reelscout.Cache, logger *slog.Logger) *CachedUsers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedUsers{next: next, cache: cache, logger: logger}
}

func (u *CachedUsers) FindPreferences(ctx context.Context, userID string) (*reelscout.UserPreferences, error) {
	key := reelscout.PreferencesCacheKey(userID)

	var prefs reelscout.UserPreferences
	if u.get(ctx, key, &prefs) {
		return &prefs, nil
	}

	p, err := u.next.FindPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.set(ctx, key, p, reelscout.PreferencesTTL)
	return p, nil
}

func (u *CachedUsers) SavePreferences(ctx context.Context, prefs *reelscout.UserPreferences) error {
	if err := u.next.SavePreferences(ctx, prefs); err != nil {
		return err
	}
	u.invalidate(ctx, reelscout.PreferencesCacheKey(prefs.UserID))
	return nil
}

func (u *CachedUsers) RecordWatch(ctx context.Context, entry *reelscout.WatchHistoryEntry) error {
	if err := u.next.RecordWatch(ctx, entry); err != nil {
		return err
	}
	u.invalidate(ctx, reelscout.HistoryCacheKey(entry.UserID))
	return nil
}

// FindHistory caches the most recent MaxHistory entries and serves smaller
// limits from that list.
func (u *CachedUsers) FindHistory(ctx context.Context, userID string, limit int) ([]*reelscout.WatchHistoryEntry, error) {
	if limit <= 0 || limit > reelscout.MaxHistory {
		return u.next.FindHistory(ctx, userID, limit)
	}

	key := reelscout.HistoryCacheKey(userID)
	var history []*reelscout.WatchHistoryEntry
	if !u.get(ctx, key, &history) {
		var err error
		history, err = u.next.FindHistory(ctx, userID, reelscout.MaxHistory)
		if err != nil {
			return nil, err
		}
		u.set(ctx, key, history, reelscout.HistoryTTL)
	}

	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (u *CachedUsers) FindActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	return u.next.FindActiveUsers(ctx, since)
}

func (u *CachedUsers) get(ctx context.Context, key string, dst any) bool {
	ok, err := u.cache.Get(ctx, key, dst)
	if err != nil {
		u.logger.Warn("cache read failed", "key", key, "err", err)
		return false
	}
	return ok
}

func (u *CachedUsers) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := u.cache.Set(ctx, key, v, ttl); err != nil {
		u.logger.Warn("cache write failed", "key", key, "err", err)
	}
}

func (u *CachedUsers) invalidate(ctx context.Context, key string) {
	if err := u.cache.Delete(ctx, key); err != nil {
		u.logger.Warn("cache invalidation failed", "key", key, "err", err)
	}
}
