// Package recommend ranks catalog content for users from their preferences
// and watch history.
package recommend

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/fwojciec/reelscout"
)

// FallbackScore is the flat score of non-personalized recommendations.
const FallbackScore = 0.5

var _ reelscout.Recommender = (*Engine)(nil)

// Engine implements reelscout.Recommender.
type Engine struct {
	contents reelscout.ContentService
	users    reelscout.UserService
	recs     reelscout.RecommendationService
	cache    reelscout.Cache
	strategy Strategy
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy sets the scoring strategy. Defaults to Weighted.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		e.strategy = s
	}
}

// WithCache enables caching of results.
func WithCache(c reelscout.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithClock sets the time source used for recency and year windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an Engine.
func NewEngine(contents reelscout.ContentService, users reelscout.UserService, recs reelscout.RecommendationService, opts ...Option) *Engine {
	e := &Engine{
		contents: contents,
		users:    users,
		recs:     recs,
		strategy: Weighted{},
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend returns cached recommendations for the user when present, and
// computes fresh ones otherwise.
func (e *Engine) Recommend(ctx context.Context, userID string, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error) {
	opts, err := prepare(userID, opts)
	if err != nil {
		return nil, err
	}

	var cached []*reelscout.Recommendation
	if e.cacheGet(ctx, reelscout.RecommendationsCacheKey(userID, opts.Types, opts.Limit, opts.Genres...), &cached) {
		return cached, nil
	}

	return e.recommend(ctx, userID, opts)
}

// Refresh computes and stores recommendations without reading the cache.
func (e *Engine) Refresh(ctx context.Context, userID string, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error) {
	opts, err := prepare(userID, opts)
	if err != nil {
		return nil, err
	}
	return e.recommend(ctx, userID, opts)
}

func (e *Engine) recommend(ctx context.Context, userID string, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error) {
	recs, err := e.personalize(ctx, userID, opts)
	if err != nil {
		e.logger.Warn("personalized recommendations failed, using fallback",
			"user", userID, "strategy", e.strategy.Name(), "err", err)
		return e.Fallback(ctx, opts)
	}
	return recs, nil
}

func (e *Engine) personalize(ctx context.Context, userID string, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error) {
	now := e.now()

	prefs, err := e.preferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := e.users.FindHistory(ctx, userID, reelscout.MaxHistory)
	if err != nil {
		return nil, err
	}

	profile, err := BuildProfile(ctx, e.contents, prefs, history)
	if err != nil {
		return nil, err
	}

	filter := reelscout.ContentFilter{
		Types: opts.Types,
		Limit: 2 * opts.Limit,
	}
	for _, h := range history {
		filter.ExcludeIDs = append(filter.ExcludeIDs, h.ContentID)
	}
	e.strategy.Narrow(&filter, now)

	candidates, err := e.contents.FindContents(ctx, filter)
	if err != nil {
		return nil, err
	}

	recs := make([]*reelscout.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if len(opts.Genres) > 0 && !c.Metadata.HasGenre(opts.Genres...) {
			continue
		}
		if len(profile.AvoidedGenres) > 0 && c.Metadata.HasGenre(profile.AvoidedGenres...) {
			continue
		}
		recs = append(recs, &reelscout.Recommendation{
			UserID:    userID,
			ContentID: c.ID,
			Score:     e.strategy.Score(c, profile, now),
			CreatedAt: now,
			Content:   c,
		})
	}

	slices.SortFunc(recs, func(a, b *reelscout.Recommendation) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Content.Rating, a.Content.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ContentID, b.ContentID)
	})
	if len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}

	if err := e.recs.ReplaceRecommendations(ctx, userID, recs); err != nil {
		return nil, err
	}

	e.cacheSet(ctx, reelscout.RecommendationsCacheKey(userID, opts.Types, opts.Limit, opts.Genres...), recs, reelscout.RecommendationsTTL)
	return recs, nil
}

// Fallback returns the highest rated content of the requested types with a
// flat score. Results are cached but never stored per user.
func (e *Engine) Fallback(ctx context.Context, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error) {
	opts = opts.Normalize()
	key := reelscout.FallbackCacheKey(opts.Types, opts.Limit)

	var cached []*reelscout.Recommendation
	if e.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	items, err := e.contents.FindContents(ctx, reelscout.ContentFilter{Types: opts.Types, Limit: opts.Limit})
	if err != nil {
		return nil, err
	}

	now := e.now()
	recs := make([]*reelscout.Recommendation, len(items))
	for i, c := range items {
		recs[i] = &reelscout.Recommendation{
			ContentID: c.ID,
			Score:     FallbackScore,
			CreatedAt: now,
			Content:   c,
		}
	}

	e.cacheSet(ctx, key, recs, reelscout.FallbackRecommendTTL)
	return recs, nil
}

// preferences returns the user's saved preferences or the defaults.
func (e *Engine) preferences(ctx context.Context, userID string) (*reelscout.UserPreferences, error) {
	prefs, err := e.users.FindPreferences(ctx, userID)
	if reelscout.ErrorCode(err) == reelscout.ENOTFOUND {
		return reelscout.DefaultPreferences(userID), nil
	}
	return prefs, err
}

func (e *Engine) cacheGet(ctx context.Context, key string, dst any) bool {
	if e.cache == nil {
		return false
	}
	ok, err := e.cache.Get(ctx, key, dst)
	if err != nil {
		e.logger.Warn("cache read failed", "key", key, "err", err)
		return false
	}
	return ok
}

func (e *Engine) cacheSet(ctx context.Context, key string, v any, ttl time.Duration) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, key, v, ttl); err != nil {
		e.logger.Warn("cache write failed", "key", key, "err", err)
	}
}

func prepare(userID string, opts reelscout.RecommendOptions) (reelscout.RecommendOptions, error) {
	if userID == "" {
		return opts, reelscout.Errorf(reelscout.EINVALID, "user id required")
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts.Normalize(), nil
}
