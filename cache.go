package reelscout

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Cache is a best-effort key-value store with per-entry expiry.
// It is never the source of truth; callers treat errors as misses.
type Cache interface {
	// Get decodes the value stored at key into dst.
	// Reports false when the key is absent or expired.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set stores v at key for ttl.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Cache lifetimes.
const (
	ScrapeListTTL        = 3 * time.Hour
	SearchTTL            = time.Hour
	DetailsTTL           = 24 * time.Hour
	RecommendationsTTL   = time.Hour
	FallbackRecommendTTL = 24 * time.Hour
	PreferencesTTL       = time.Hour
	HistoryTTL           = 30 * time.Minute
)

// ScrapeCacheKey is the key of an adapter result:
// {source}:{action}:{queryOrId}:{limit}.
func ScrapeCacheKey(sourceID string, action TaskAction, queryOrID string, limit int) string {
	return fmt.Sprintf("%s:%s:%s:%d", sourceID, action, queryOrID, limit)
}

// ScrapeTTL returns the cache lifetime of an adapter action.
func ScrapeTTL(action TaskAction) time.Duration {
	switch action {
	case ActionSearch:
		return SearchTTL
	case ActionDetails:
		return DetailsTTL
	default:
		return ScrapeListTTL
	}
}

// RecommendationsCacheKey is the key of a user's recommendations:
// recommendations:{userId}:{typesJoined}:{limit}. A genre filter appends
// :{genres} in lowercase sorted form, so differently filtered lists never
// share an entry.
func RecommendationsCacheKey(userID string, types []ContentType, limit int, genres ...string) string {
	key := fmt.Sprintf("recommendations:%s:%s:%d", userID, joinTypes(types), limit)
	if g := joinGenres(genres); g != "" {
		key += ":" + g
	}
	return key
}

// FallbackCacheKey is the key of the non-personalized list for a type set.
func FallbackCacheKey(types []ContentType, limit int) string {
	return fmt.Sprintf("recommendations:fallback:%s:%d", joinTypes(types), limit)
}

// PreferencesCacheKey is the key of a user's preferences.
func PreferencesCacheKey(userID string) string {
	return "user:" + userID + ":preferences"
}

// HistoryCacheKey is the key of a user's recent history.
func HistoryCacheKey(userID string) string {
	return "user:" + userID + ":history"
}

func joinTypes(types []ContentType) string {
	if len(types) == 0 {
		return "all"
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func joinGenres(genres []string) string {
	norm := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			norm = append(norm, g)
		}
	}
	slices.Sort(norm)
	return strings.Join(slices.Compact(norm), ",")
}
