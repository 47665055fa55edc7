package sqlite

import (
	"context"
	"time"

	"github.com/fwojciec/reelscout"
)

// Compile-time interface verification.
var _ reelscout.RecommendationService = (*RecommendationService)(nil)

// RecommendationService implements reelscout.RecommendationService using SQLite.
type RecommendationService struct {
	db *DB
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(db *DB) *RecommendationService {
	return &RecommendationService{db: db}
}

// ReplaceRecommendations deletes a user's rows and inserts recs in one transaction.
func (s *RecommendationService) ReplaceRecommendations(ctx context.Context, userID string, recs []*reelscout.Recommendation) error {
	if userID == "" {
		return reelscout.Errorf(reelscout.EINVALID, "user id required")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "begin recommendation replace")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_recommendations WHERE user_id = ?", userID); err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "delete recommendations for %q", userID)
	}

	now := time.Now().UTC().Truncate(time.Second)
	for _, rec := range recs {
		rec.UserID = userID
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_recommendations (user_id, content_id, score, created_at)
			VALUES (?, ?, ?, ?)
		`, userID, rec.ContentID, rec.Score, formatTime(rec.CreatedAt)); err != nil {
			return reelscout.WrapError(reelscout.ESTORE, err, "insert recommendation %q", rec.ContentID)
		}
	}

	if err := tx.Commit(); err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "commit recommendation replace")
	}
	return nil
}

// FindRecommendations returns a user's stored rows with their content.
func (s *RecommendationService) FindRecommendations(ctx context.Context, userID string, limit int) ([]*reelscout.Recommendation, error) {
	if limit <= 0 {
		limit = reelscout.MaxRecommendationLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.user_id, r.score, r.created_at, `+contentColumns+`
		FROM user_recommendations r
		JOIN contents c ON c.id = r.content_id
		WHERE r.user_id = ?
		ORDER BY r.score DESC, c.rating DESC, c.id ASC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*reelscout.Recommendation
	for rows.Next() {
		var rec reelscout.Recommendation
		var createdAt string
		item, err := scanContent(prefixScanner{rows: rows, prefix: []any{&rec.UserID, &rec.Score, &createdAt}})
		if err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		rec.ContentID = item.ID
		rec.Content = item
		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}

// prefixScanner scans leading columns into prefix before handing the rest
// to a row scanner.
type prefixScanner struct {
	rows   scanner
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.rows.Scan(append(p.prefix, dest...)...)
}
