package chi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/go-chi/chi/v5"
)

type recommendationRequest struct {
	UserID      string   `json:"userId"`
	UserIDSnake string   `json:"user_id"`
	Limit       int      `json:"limit"`
	Types       []string `json:"types"`
	Genres      []string `json:"genres"`
}

type recommendationMeta struct {
	Count     int       `json:"count"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// handleRecommendations serves GET and POST /api/recommendations[/{userId}].
// The user comes from the path, then the body, then the x-user-id header.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var body recommendationRequest
	if r.Method == http.MethodPost {
		if err := decode(r, &body); err != nil {
			s.Error(w, r, err)
			return
		}
	}

	userID := firstNonEmpty(chi.URLParam(r, "userId"), body.UserID, body.UserIDSnake, r.Header.Get("X-User-ID"))
	if userID == "" {
		s.Error(w, r, reelscout.Errorf(reelscout.EINVALID, "userId is required"))
		return
	}

	opts := reelscout.RecommendOptions{Limit: body.Limit}
	if v := r.URL.Query().Get("limit"); v != "" && opts.Limit == 0 {
		limit, err := strconv.Atoi(v)
		if err != nil {
			s.Error(w, r, reelscout.Errorf(reelscout.EINVALID, "invalid limit %q", v))
			return
		}
		opts.Limit = limit
	}
	for _, t := range append(listParam(r, "types"), body.Types...) {
		opts.Types = append(opts.Types, reelscout.ContentType(t))
	}
	opts.Genres = append(listParam(r, "genres"), body.Genres...)

	recs, err := s.Recommender.Recommend(r.Context(), userID, opts)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if recs == nil {
		recs = []*reelscout.Recommendation{}
	}

	s.writeData(w, http.StatusOK, recs, recommendationMeta{
		Count:     len(recs),
		UserID:    userID,
		Timestamp: s.now().UTC(),
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
