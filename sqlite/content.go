package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/reelscout"
)

// Compile-time interface verification.
var _ reelscout.ContentService = (*ContentService)(nil)

// ContentService implements reelscout.ContentService using SQLite.
type ContentService struct {
	db *DB
}

// NewContentService creates a new ContentService.
func NewContentService(db *DB) *ContentService {
	return &ContentService{db: db}
}

const contentColumns = `c.id, c.source_id, c.url, c.title, c.description, c.poster_url, c.backdrop_url,
	c.release_year, c.rating, c.type, c.status, c.metadata, c.created_at, c.updated_at`

// UpsertContents inserts or updates items in a single transaction. Empty
// fields of an update keep the stored value, and metadata is merged key by
// key, so a listing re-scrape never erases what a details scrape found.
func (s *ContentService) UpsertContents(ctx context.Context, items []*reelscout.ContentItem) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "begin content upsert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contents (id, source_id, url, title, description, poster_url, backdrop_url,
			release_year, rating, type, status, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			description = CASE WHEN excluded.description != '' THEN excluded.description ELSE contents.description END,
			poster_url = CASE WHEN excluded.poster_url != '' THEN excluded.poster_url ELSE contents.poster_url END,
			backdrop_url = CASE WHEN excluded.backdrop_url != '' THEN excluded.backdrop_url ELSE contents.backdrop_url END,
			release_year = CASE WHEN excluded.release_year != 0 THEN excluded.release_year ELSE contents.release_year END,
			rating = CASE WHEN excluded.rating != 0 THEN excluded.rating ELSE contents.rating END,
			type = excluded.type,
			status = CASE WHEN excluded.status != '' THEN excluded.status ELSE contents.status END,
			metadata = json_patch(contents.metadata, excluded.metadata),
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "prepare content upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC().Truncate(time.Second)
	for _, item := range items {
		metadata, err := marshalJSON(item.Metadata)
		if err != nil {
			return err
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now

		if _, err := stmt.ExecContext(ctx, item.ID, item.SourceID, item.URL, item.Title, item.Description,
			item.PosterURL, item.BackdropURL, item.ReleaseYear, item.Rating, string(item.Type),
			string(item.Status), metadata, formatTime(item.CreatedAt), formatTime(item.UpdatedAt)); err != nil {
			return reelscout.WrapError(reelscout.ESTORE, err, "upsert content %q", item.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "commit content upsert")
	}
	return nil
}

// FindContentByID retrieves an item by ID.
func (s *ContentService) FindContentByID(ctx context.Context, id string) (*reelscout.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM contents c WHERE c.id = ?`, id)
	item, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, reelscout.Errorf(reelscout.ENOTFOUND, "content %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// FindContents retrieves items matching the filter.
func (s *ContentService) FindContents(ctx context.Context, filter reelscout.ContentFilter) ([]*reelscout.ContentItem, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + contentColumns + ` FROM contents c WHERE 1=1`)

	if len(filter.IDs) > 0 {
		query.WriteString(" AND c.id IN (" + placeholders(len(filter.IDs)) + ")")
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}
	if filter.SourceID != nil {
		query.WriteString(" AND c.source_id = ?")
		args = append(args, *filter.SourceID)
	}
	if len(filter.Types) > 0 {
		query.WriteString(" AND c.type IN (" + placeholders(len(filter.Types)) + ")")
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}
	if len(filter.ExcludeIDs) > 0 {
		query.WriteString(" AND c.id NOT IN (" + placeholders(len(filter.ExcludeIDs)) + ")")
		for _, id := range filter.ExcludeIDs {
			args = append(args, id)
		}
	}
	if filter.MinYear != nil {
		query.WriteString(" AND c.release_year >= ?")
		args = append(args, *filter.MinYear)
	}
	if filter.Query != nil && *filter.Query != "" {
		query.WriteString(" AND c.title LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(*filter.Query)+"%")
	}

	query.WriteString(" ORDER BY c.rating DESC, c.created_at DESC, c.id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*reelscout.ContentItem
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// DeleteContent removes an item; history and recommendation rows cascade.
func (s *ContentService) DeleteContent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM contents WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return reelscout.Errorf(reelscout.ENOTFOUND, "content %q not found", id)
	}

	return nil
}

func scanContent(row scanner) (*reelscout.ContentItem, error) {
	var item reelscout.ContentItem
	var contentType, status, metadata, createdAt, updatedAt string

	if err := row.Scan(&item.ID, &item.SourceID, &item.URL, &item.Title, &item.Description,
		&item.PosterURL, &item.BackdropURL, &item.ReleaseYear, &item.Rating, &contentType, &status,
		&metadata, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	item.Type = reelscout.ContentType(contentType)
	item.Status = reelscout.ContentStatus(status)
	if metadata != "[]" {
		if err := unmarshalJSON(metadata, "metadata", &item.Metadata); err != nil {
			return nil, err
		}
	}

	var err error
	if item.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &item, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
