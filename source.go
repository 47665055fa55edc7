package reelscout

import (
	"context"
	"net/url"
	"time"
)

// ContentType classifies catalog entries.
type ContentType string

const (
	ContentTypeDrama     ContentType = "drama"
	ContentTypeAnime     ContentType = "anime"
	ContentTypeMovie     ContentType = "movie"
	ContentTypeBollywood ContentType = "bollywood"
)

// ContentTypes lists every known content type in display order.
var ContentTypes = []ContentType{
	ContentTypeDrama,
	ContentTypeAnime,
	ContentTypeMovie,
	ContentTypeBollywood,
}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	for _, known := range ContentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Field names a piece of data extracted from a source page.
type Field string

const (
	// FieldItem selects the repeating container of a listing page.
	FieldItem Field = "item"

	FieldTitle       Field = "title"
	FieldURL         Field = "url"
	FieldImage       Field = "image"
	FieldRating      Field = "rating"
	FieldYear        Field = "year"
	FieldGenres      Field = "genres"
	FieldDescription Field = "description"
	FieldBackdrop    Field = "backdrop"
	FieldCast        Field = "cast"
	FieldStatus      Field = "status"
	FieldEpisodes    Field = "episodes"
)

// SelectorSet maps each field to its candidate CSS selectors in priority order.
// A selector may end in "@attr" to read an attribute instead of text.
type SelectorSet map[Field][]string

// Source is a third-party site that publishes listings of one content type.
type Source struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	BaseURL       string      `json:"base_url"`
	ContentType   ContentType `json:"content_type"`
	Selectors     SelectorSet `json:"selectors"`
	ListPaths     []string    `json:"list_paths,omitempty"`
	SearchPath    string      `json:"search_path,omitempty"`
	DetailsPath   string      `json:"details_path,omitempty"`
	IsActive      bool        `json:"is_active"`
	LastScrapedAt *time.Time  `json:"last_scraped_at,omitempty"`
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if s.ID == "" {
		return Errorf(EINVALID, "source id required")
	}
	if s.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Errorf(EINVALID, "source %q: base URL must be absolute", s.ID)
	}
	if !s.ContentType.Valid() {
		return Errorf(EINVALID, "source %q: unknown content type %q", s.ID, s.ContentType)
	}
	if len(s.Selectors[FieldItem]) == 0 {
		return Errorf(EINVALID, "source %q: item selector required", s.ID)
	}
	return nil
}

// SourceService represents a service for managing the source registry.
type SourceService interface {
	// UpsertSource creates the source or replaces its configuration.
	// LastScrapedAt is never overwritten by an upsert.
	UpsertSource(ctx context.Context, source *Source) error

	// FindSourceByID retrieves a source by ID.
	// Returns ENOTFOUND if source does not exist.
	FindSourceByID(ctx context.Context, id string) (*Source, error)

	// FindSources retrieves sources matching the filter, ordered by ID.
	FindSources(ctx context.Context, filter SourceFilter) ([]*Source, error)

	// MarkSourceScraped records a successful scrape of the source.
	// Returns ENOTFOUND if source does not exist.
	MarkSourceScraped(ctx context.Context, id string, at time.Time) error
}

// SourceFilter represents a filter for FindSources.
type SourceFilter struct {
	IsActive    *bool        `json:"is_active"`
	ContentType *ContentType `json:"content_type"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
