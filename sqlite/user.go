package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/reelscout"
)

// Compile-time interface verification.
var _ reelscout.UserService = (*UserService)(nil)

// UserService implements reelscout.UserService using SQLite.
type UserService struct {
	db *DB
}

// NewUserService creates a new UserService.
func NewUserService(db *DB) *UserService {
	return &UserService{db: db}
}

// FindPreferences retrieves a user's preferences.
func (s *UserService) FindPreferences(ctx context.Context, userID string) (*reelscout.UserPreferences, error) {
	var prefs reelscout.UserPreferences
	var types, genres, sources, avoidedGenres, avoidedSources, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, preferred_types, preferred_genres, preferred_sources, avoided_genres, avoided_sources, updated_at
		FROM user_preferences
		WHERE user_id = ?
	`, userID).Scan(&prefs.UserID, &types, &genres, &sources, &avoidedGenres, &avoidedSources, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, reelscout.Errorf(reelscout.ENOTFOUND, "preferences for user %q not found", userID)
	}
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		name  string
		value string
		dst   any
	}{
		{"preferred_types", types, &prefs.PreferredTypes},
		{"preferred_genres", genres, &prefs.PreferredGenres},
		{"preferred_sources", sources, &prefs.PreferredSources},
		{"avoided_genres", avoidedGenres, &prefs.AvoidedGenres},
		{"avoided_sources", avoidedSources, &prefs.AvoidedSources},
	} {
		if err := unmarshalJSON(col.value, col.name, col.dst); err != nil {
			return nil, err
		}
	}

	if prefs.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &prefs, nil
}

// SavePreferences creates or replaces a user's preferences.
func (s *UserService) SavePreferences(ctx context.Context, prefs *reelscout.UserPreferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	cols := make([]any, 0, 5)
	for _, v := range []any{prefs.PreferredTypes, prefs.PreferredGenres, prefs.PreferredSources, prefs.AvoidedGenres, prefs.AvoidedSources} {
		encoded, err := marshalJSON(v)
		if err != nil {
			return err
		}
		cols = append(cols, encoded)
	}

	prefs.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	args := append([]any{prefs.UserID}, cols...)
	args = append(args, formatTime(prefs.UpdatedAt))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, preferred_types, preferred_genres, preferred_sources, avoided_genres, avoided_sources, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			preferred_types = excluded.preferred_types,
			preferred_genres = excluded.preferred_genres,
			preferred_sources = excluded.preferred_sources,
			avoided_genres = excluded.avoided_genres,
			avoided_sources = excluded.avoided_sources,
			updated_at = excluded.updated_at
	`, args...)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "save preferences for %q", prefs.UserID)
	}
	return nil
}

// RecordWatch stores a history entry, replacing an earlier one for the same content.
func (s *UserService) RecordWatch(ctx context.Context, entry *reelscout.WatchHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.WatchedAt.IsZero() {
		entry.WatchedAt = time.Now().UTC().Truncate(time.Second)
	}
	entry.Progress = min(max(entry.Progress, 0), 1)

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM contents WHERE id = ?", entry.ContentID).Scan(&exists)
	if err == sql.ErrNoRows {
		return reelscout.Errorf(reelscout.ENOTFOUND, "content %q not found", entry.ContentID)
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_history (user_id, content_id, watched_at, progress)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, content_id) DO UPDATE SET
			watched_at = excluded.watched_at,
			progress = excluded.progress
	`, entry.UserID, entry.ContentID, formatTime(entry.WatchedAt), entry.Progress)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "record watch for %q", entry.UserID)
	}
	return nil
}

// FindHistory returns up to limit entries, most recent first.
func (s *UserService) FindHistory(ctx context.Context, userID string, limit int) ([]*reelscout.WatchHistoryEntry, error) {
	if limit <= 0 {
		limit = reelscout.MaxHistory
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, content_id, watched_at, progress
		FROM user_history
		WHERE user_id = ?
		ORDER BY watched_at DESC, content_id ASC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*reelscout.WatchHistoryEntry
	for rows.Next() {
		var entry reelscout.WatchHistoryEntry
		var watchedAt string
		if err := rows.Scan(&entry.UserID, &entry.ContentID, &watchedAt, &entry.Progress); err != nil {
			return nil, err
		}
		if entry.WatchedAt, err = parseRFC3339(watchedAt, "watched_at"); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// FindActiveUsers returns IDs of users with activity at or after since.
func (s *UserService) FindActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	cutoff := formatTime(since)
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM user_history WHERE watched_at >= ?
		UNION
		SELECT user_id FROM user_preferences WHERE updated_at >= ?
		ORDER BY 1
	`, cutoff, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}

	return users, rows.Err()
}
