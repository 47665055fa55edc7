package mock

import (
	"context"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.RecommendationService = (*RecommendationService)(nil)

// RecommendationService is a mock implementation of reelscout.RecommendationService.
type RecommendationService struct {
	ReplaceRecommendationsFn func(ctx context.Context, userID string, recs []*reelscout.Recommendation) error
	FindRecommendationsFn    func(ctx context.Context, userID string, limit int) ([]*reelscout.Recommendation, error)
}

func (s *RecommendationService) ReplaceRecommendations(ctx context.Context, userID string, recs []*reelscout.Recommendation) error {
	return s.ReplaceRecommendationsFn(ctx, userID, recs)
}

func (s *RecommendationService) FindRecommendations(ctx context.Context, userID string, limit int) ([]*reelscout.Recommendation, error) {
	return s.FindRecommendationsFn(ctx, userID, limit)
}

var _ reelscout.Recommender = (*Recommender)(nil)

// Recommender is a mock implementation of reelscout.Recommender.
type Recommender struct {
	RecommendFn func(ctx context.Context, userID string, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error)
	RefreshFn   func(ctx context.Context, userID string, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error)
	FallbackFn  func(ctx context.Context, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error)
}

func (r *Recommender) Recommend(ctx context.Context, userID string, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error) {
	return r.RecommendFn(ctx, userID, opts)
}

func (r *Recommender) Refresh(ctx context.Context, userID string, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error) {
	return r.RefreshFn(ctx, userID, opts)
}

func (r *Recommender) Fallback(ctx context.Context, opts reelscout.RecommendOptions) ([]*reelscout.Recommendation, error) {
	return r.FallbackFn(ctx, opts)
}
