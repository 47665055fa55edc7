package recommend

import (
	"time"

	"github.com/fwojciec/reelscout"
)

// Strategy names.
const (
	StrategyWeighted = "weighted"
	StrategyRecent   = "recent"
)

// DefaultTargetYearWindow is how many years back the recent strategy looks.
const DefaultTargetYearWindow = 3

// Score weights.
const (
	recencyWeight    = 0.3
	popularityWeight = 0.2
	similarityWeight = 0.5
)

// Strategy ranks candidate content for a profile.
type Strategy interface {
	// Name identifies the strategy in config and logs.
	Name() string

	// Narrow restricts the candidate query before scoring.
	Narrow(filter *reelscout.ContentFilter, now time.Time)

	// Score returns a value in [0, 1]; higher ranks first.
	Score(item *reelscout.ContentItem, profile *Profile, now time.Time) float64
}

// NewStrategy returns the strategy registered under name.
func NewStrategy(name string, targetYearWindow int) (Strategy, error) {
	switch name {
	case "", StrategyWeighted:
		return Weighted{}, nil
	case StrategyRecent:
		if targetYearWindow <= 0 {
			targetYearWindow = DefaultTargetYearWindow
		}
		return Recent{Window: targetYearWindow}, nil
	default:
		return nil, reelscout.Errorf(reelscout.EINVALID, "unknown recommendation strategy %q", name)
	}
}

// Weighted blends recency, popularity and similarity over every candidate.
type Weighted struct{}

func (Weighted) Name() string { return StrategyWeighted }

func (Weighted) Narrow(*reelscout.ContentFilter, time.Time) {}

func (Weighted) Score(item *reelscout.ContentItem, profile *Profile, now time.Time) float64 {
	return Score(item, profile, now)
}

// Recent scores like Weighted but only considers titles released within
// the last Window years.
type Recent struct {
	Window int
}

func (Recent) Name() string { return StrategyRecent }

func (r Recent) Narrow(filter *reelscout.ContentFilter, now time.Time) {
	minYear := now.Year() - r.Window
	filter.MinYear = &minYear
}

func (Recent) Score(item *reelscout.ContentItem, profile *Profile, now time.Time) float64 {
	return Score(item, profile, now)
}

// Score combines the three components of an item's rank.
func Score(item *reelscout.ContentItem, profile *Profile, now time.Time) float64 {
	return clamp(recencyWeight*Recency(item.ReleaseYear, now) +
		popularityWeight*Popularity(item.Rating) +
		similarityWeight*Similarity(item, profile))
}

// Recency is 1 for titles from the current year onward and decays by 0.1
// per year of age down to 0.1. Unknown years score 0.1.
func Recency(year int, now time.Time) float64 {
	if year <= 0 {
		return 0.1
	}
	age := now.Year() - year
	switch {
	case age <= 0:
		return 1
	case age >= 10:
		return 0.1
	default:
		return 1 - float64(age)/10
	}
}

// Popularity maps a rating onto [0, 1].
func Popularity(rating float64) float64 {
	return clamp(rating / reelscout.MaxRating)
}

// Similarity measures how well item matches the profile.
func Similarity(item *reelscout.ContentItem, profile *Profile) float64 {
	s := 0.5
	if profile.PreferredTypes[item.Type] {
		s += 0.2
	}
	if profile.PreferredSources[item.SourceID] {
		s += 0.1
	}
	if profile.AvoidedSources[item.SourceID] {
		s -= 0.2
	}
	s += 0.2 * profile.TypeWeights[item.Type]
	s += 0.1 * profile.SourceWeights[item.SourceID]
	return clamp(s)
}

func clamp(v float64) float64 {
	return min(max(v, 0), 1)
}
