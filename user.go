package reelscout

import (
	"context"
	"time"
)

// UserPreferences holds explicit personalization settings for a user.
type UserPreferences struct {
	UserID           string        `json:"user_id"`
	PreferredTypes   []ContentType `json:"preferred_types"`
	PreferredGenres  []string      `json:"preferred_genres"`
	PreferredSources []string      `json:"preferred_sources"`
	AvoidedGenres    []string      `json:"avoided_genres"`
	AvoidedSources   []string      `json:"avoided_sources"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// DefaultPreferences returns the preferences used for users who never set any:
// every content type, no source or genre bias.
func DefaultPreferences(userID string) *UserPreferences {
	types := make([]ContentType, len(ContentTypes))
	copy(types, ContentTypes)
	return &UserPreferences{
		UserID:         userID,
		PreferredTypes: types,
	}
}

// Validate returns an error if the preferences contain invalid fields.
func (p *UserPreferences) Validate() error {
	if p.UserID == "" {
		return Errorf(EINVALID, "user id required")
	}
	for _, t := range p.PreferredTypes {
		if !t.Valid() {
			return Errorf(EINVALID, "unknown content type %q", t)
		}
	}
	return nil
}

// WatchHistoryEntry records that a user watched a title.
// Progress is the watched fraction, clamped to [0, 1] when stored.
type WatchHistoryEntry struct {
	UserID    string    `json:"user_id"`
	ContentID string    `json:"content_id"`
	WatchedAt time.Time `json:"watched_at"`
	Progress  float64   `json:"progress"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *WatchHistoryEntry) Validate() error {
	if e.UserID == "" {
		return Errorf(EINVALID, "user id required")
	}
	if e.ContentID == "" {
		return Errorf(EINVALID, "content id required")
	}
	return nil
}

// MaxHistory bounds how many history rows feed a user profile.
const MaxHistory = 100

// UserService represents a service for managing user preferences and history.
type UserService interface {
	// FindPreferences retrieves a user's preferences.
	// Returns ENOTFOUND if the user never saved any.
	FindPreferences(ctx context.Context, userID string) (*UserPreferences, error)

	// SavePreferences creates or replaces a user's preferences.
	SavePreferences(ctx context.Context, prefs *UserPreferences) error

	// RecordWatch stores a history entry. A later entry for the same
	// (user, content) pair replaces the earlier one.
	// Returns ENOTFOUND if the content does not exist.
	RecordWatch(ctx context.Context, entry *WatchHistoryEntry) error

	// FindHistory returns up to limit entries, most recent first.
	FindHistory(ctx context.Context, userID string, limit int) ([]*WatchHistoryEntry, error)

	// FindActiveUsers returns IDs of users with history or preference
	// activity at or after since.
	FindActiveUsers(ctx context.Context, since time.Time) ([]string, error)
}
