package reelscout

import (
	"context"
	"time"
)

// Recommendation is a scored suggestion of a catalog item for a user.
type Recommendation struct {
	UserID    string       `json:"user_id"`
	ContentID string       `json:"content_id"`
	Score     float64      `json:"score"`
	CreatedAt time.Time    `json:"created_at"`
	Content   *ContentItem `json:"content,omitempty"`
}

// RecommendationService persists the latest recommendations per user.
type RecommendationService interface {
	// ReplaceRecommendations atomically deletes a user's existing rows and
	// inserts recs in their place.
	ReplaceRecommendations(ctx context.Context, userID string, recs []*Recommendation) error

	// FindRecommendations returns a user's stored rows ordered by score
	// descending, with Content populated.
	FindRecommendations(ctx context.Context, userID string, limit int) ([]*Recommendation, error)
}

// Default and maximum number of recommendations per request.
const (
	DefaultRecommendationLimit = 20
	MaxRecommendationLimit     = 100
)

// RecommendOptions narrows a recommendation request.
type RecommendOptions struct {
	Limit  int           `json:"limit"`
	Types  []ContentType `json:"types"`
	Genres []string      `json:"genres"`
}

// Normalize applies defaults and bounds. Empty Types means every type.
func (o RecommendOptions) Normalize() RecommendOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultRecommendationLimit
	}
	if o.Limit > MaxRecommendationLimit {
		o.Limit = MaxRecommendationLimit
	}
	if len(o.Types) == 0 {
		o.Types = append([]ContentType(nil), ContentTypes...)
	}
	return o
}

// Validate returns an error if the options contain invalid fields.
func (o RecommendOptions) Validate() error {
	for _, t := range o.Types {
		if !t.Valid() {
			return Errorf(EINVALID, "unknown content type %q", t)
		}
	}
	return nil
}

// Recommender produces ranked recommendations.
type Recommender interface {
	// Recommend returns up to opts.Limit personalized recommendations.
	// Failures while personalizing degrade to Fallback, so an error is only
	// returned when the fallback also fails.
	Recommend(ctx context.Context, userID string, opts RecommendOptions) ([]*Recommendation, error)

	// Refresh recomputes and stores a user's recommendations, bypassing cached results.
	Refresh(ctx context.Context, userID string, opts RecommendOptions) ([]*Recommendation, error)

	// Fallback returns a non-personalized list ranked by rating.
	Fallback(ctx context.Context, opts RecommendOptions) ([]*Recommendation, error)
}
