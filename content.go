package reelscout

import (
	"context"
	"strings"
	"time"
)

// ContentStatus is the airing status of a title.
type ContentStatus string

const (
	StatusCompleted ContentStatus = "completed"
	StatusOngoing   ContentStatus = "ongoing"
	StatusUpcoming  ContentStatus = "upcoming"
)

// MaxRating is the upper bound of the rating scale.
const MaxRating = 10.0

// Metadata holds loosely structured attributes of a title.
type Metadata struct {
	Genres     []string          `json:"genres,omitempty"`
	Episodes   int               `json:"episodes,omitempty"`
	Popularity float64           `json:"popularity,omitempty"`
	Cast       []string          `json:"cast,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// HasGenre reports whether the metadata lists any of the given genres,
// compared case-insensitively.
func (m Metadata) HasGenre(genres ...string) bool {
	for _, want := range genres {
		for _, g := range m.Genres {
			if strings.EqualFold(g, want) {
				return true
			}
		}
	}
	return false
}

// ContentItem is a normalized catalog entry scraped from a source.
// ID is "{SourceID}:{localID}" and never changes once assigned.
type ContentItem struct {
	ID          string        `json:"id"`
	SourceID    string        `json:"source_id"`
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	PosterURL   string        `json:"poster_url,omitempty"`
	BackdropURL string        `json:"backdrop_url,omitempty"`
	ReleaseYear int           `json:"release_year,omitempty"`
	Rating      float64       `json:"rating"`
	Type        ContentType   `json:"type"`
	Status      ContentStatus `json:"status,omitempty"`
	Metadata    Metadata      `json:"metadata"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Validate returns an error if the item contains invalid fields.
func (c *ContentItem) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "content id required")
	}
	if c.SourceID == "" {
		return Errorf(EINVALID, "content %q: source id required", c.ID)
	}
	if c.Title == "" && c.URL == "" {
		return Errorf(EINVALID, "content %q: title or url required", c.ID)
	}
	if c.Rating < 0 || c.Rating > MaxRating {
		return Errorf(EINVALID, "content %q: rating %.1f out of range", c.ID, c.Rating)
	}
	return nil
}

// ContentService represents a service for managing the content catalog.
type ContentService interface {
	// UpsertContents inserts or updates items by ID. CreatedAt is preserved
	// for existing rows and UpdatedAt is refreshed.
	UpsertContents(ctx context.Context, items []*ContentItem) error

	// FindContentByID retrieves an item by ID.
	// Returns ENOTFOUND if item does not exist.
	FindContentByID(ctx context.Context, id string) (*ContentItem, error)

	// FindContents retrieves items matching the filter, ordered by
	// rating descending, then creation time descending.
	FindContents(ctx context.Context, filter ContentFilter) ([]*ContentItem, error)

	// DeleteContent removes an item along with its history and recommendation rows.
	// Returns ENOTFOUND if item does not exist.
	DeleteContent(ctx context.Context, id string) error
}

// ContentFilter represents a filter for FindContents.
type ContentFilter struct {
	IDs        []string      `json:"ids"`
	SourceID   *string       `json:"source_id"`
	Types      []ContentType `json:"types"`
	ExcludeIDs []string      `json:"exclude_ids"`
	MinYear    *int          `json:"min_year"`
	Query      *string       `json:"query"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
