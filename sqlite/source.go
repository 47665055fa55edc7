package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/reelscout"
)

// Compile-time interface verification.
var _ reelscout.SourceService = (*SourceService)(nil)

// SourceService implements reelscout.SourceService using SQLite.
type SourceService struct {
	db *DB
}

// NewSourceService creates a new SourceService.
func NewSourceService(db *DB) *SourceService {
	return &SourceService{db: db}
}

const sourceColumns = `id, name, base_url, content_type, selectors, list_paths, search_path, details_path, is_active, last_scraped_at`

// UpsertSource creates the source or replaces its configuration.
func (s *SourceService) UpsertSource(ctx context.Context, source *reelscout.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}

	selectors, err := marshalJSON(source.Selectors)
	if err != nil {
		return err
	}
	if selectors == "[]" {
		selectors = "{}"
	}
	listPaths, err := marshalJSON(source.ListPaths)
	if err != nil {
		return err
	}

	now := formatTime(time.Now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, base_url, content_type, selectors, list_paths, search_path, details_path, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_url = excluded.base_url,
			content_type = excluded.content_type,
			selectors = excluded.selectors,
			list_paths = excluded.list_paths,
			search_path = excluded.search_path,
			details_path = excluded.details_path,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`, source.ID, source.Name, source.BaseURL, string(source.ContentType), selectors, listPaths,
		source.SearchPath, source.DetailsPath, source.IsActive, now, now)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "upsert source %q", source.ID)
	}
	return nil
}

// FindSourceByID retrieves a source by ID.
func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*reelscout.Source, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id)
	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, reelscout.Errorf(reelscout.ENOTFOUND, "source %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

// FindSources retrieves sources matching the filter.
func (s *SourceService) FindSources(ctx context.Context, filter reelscout.SourceFilter) ([]*reelscout.Source, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + sourceColumns + ` FROM sources WHERE 1=1`)

	if filter.IsActive != nil {
		query.WriteString(" AND is_active = ?")
		args = append(args, *filter.IsActive)
	}
	if filter.ContentType != nil {
		query.WriteString(" AND content_type = ?")
		args = append(args, string(*filter.ContentType))
	}

	query.WriteString(" ORDER BY id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*reelscout.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// MarkSourceScraped records a successful scrape of the source.
func (s *SourceService) MarkSourceScraped(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sources SET last_scraped_at = ?, updated_at = ? WHERE id = ?
	`, formatTime(at), formatTime(time.Now()), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return reelscout.Errorf(reelscout.ENOTFOUND, "source %q not found", id)
	}
	return nil
}

func scanSource(row scanner) (*reelscout.Source, error) {
	var source reelscout.Source
	var contentType, selectors, listPaths string
	var lastScrapedAt sql.NullString

	if err := row.Scan(&source.ID, &source.Name, &source.BaseURL, &contentType, &selectors, &listPaths,
		&source.SearchPath, &source.DetailsPath, &source.IsActive, &lastScrapedAt); err != nil {
		return nil, err
	}

	source.ContentType = reelscout.ContentType(contentType)
	if err := unmarshalJSON(selectors, "selectors", &source.Selectors); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(listPaths, "list_paths", &source.ListPaths); err != nil {
		return nil, err
	}
	if len(source.ListPaths) == 0 {
		source.ListPaths = nil
	}

	var err error
	source.LastScrapedAt, err = parseNullTime(lastScrapedAt, "last_scraped_at")
	if err != nil {
		return nil, err
	}

	return &source, nil
}
