package recommend

import (
	"context"

	"github.com/fwojciec/reelscout"
)

// Profile is the scoring view of a user: explicit preferences plus implicit
// weights derived from watch history.
type Profile struct {
	UserID string

	PreferredTypes   map[reelscout.ContentType]bool
	PreferredSources map[string]bool
	AvoidedSources   map[string]bool
	PreferredGenres  []string
	AvoidedGenres    []string

	// TypeWeights and SourceWeights are the share of history entries of
	// each type and source. Both are empty for users without history.
	TypeWeights   map[reelscout.ContentType]float64
	SourceWeights map[string]float64
}

// BuildProfile combines prefs with the content referenced by history.
// History entries whose content no longer exists count toward the total
// but contribute no weight.
func BuildProfile(ctx context.Context, contents reelscout.ContentService, prefs *reelscout.UserPreferences, history []*reelscout.WatchHistoryEntry) (*Profile, error) {
	p := &Profile{
		UserID:           prefs.UserID,
		PreferredTypes:   make(map[reelscout.ContentType]bool, len(prefs.PreferredTypes)),
		PreferredSources: set(prefs.PreferredSources),
		AvoidedSources:   set(prefs.AvoidedSources),
		PreferredGenres:  prefs.PreferredGenres,
		AvoidedGenres:    prefs.AvoidedGenres,
		TypeWeights:      make(map[reelscout.ContentType]float64),
		SourceWeights:    make(map[string]float64),
	}
	for _, t := range prefs.PreferredTypes {
		p.PreferredTypes[t] = true
	}

	if len(history) == 0 {
		return p, nil
	}

	ids := make([]string, len(history))
	for i, h := range history {
		ids[i] = h.ContentID
	}
	watched, err := contents.FindContents(ctx, reelscout.ContentFilter{IDs: ids, Limit: len(ids)})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*reelscout.ContentItem, len(watched))
	for _, c := range watched {
		byID[c.ID] = c
	}

	total := float64(len(history))
	for _, h := range history {
		c, ok := byID[h.ContentID]
		if !ok {
			continue
		}
		p.TypeWeights[c.Type] += 1 / total
		p.SourceWeights[c.SourceID] += 1 / total
	}

	return p, nil
}

func set(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
