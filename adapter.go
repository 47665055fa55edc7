package reelscout

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// SourceAdapter exposes one source through a uniform set of operations.
// Returned items are normalized (ID, SourceID and Type set) but not stored.
type SourceAdapter interface {
	// Source returns the source this adapter is bound to.
	Source() *Source

	// ScrapeList returns up to limit items from the source's listing pages.
	ScrapeList(ctx context.Context, limit int) ([]*ContentItem, error)

	// Search returns up to limit items matching query.
	// Returns EINVALID for an empty query.
	Search(ctx context.Context, query string, limit int) ([]*ContentItem, error)

	// GetDetails returns the full item for a URL, path or local ID.
	// Returns ENOTFOUND if the page has no title.
	GetDetails(ctx context.Context, itemRef string) (*ContentItem, error)
}

// AdapterRegistry resolves adapters by source ID.
type AdapterRegistry interface {
	// Adapter returns the adapter for a source.
	// Returns ENOTFOUND if no adapter is registered.
	Adapter(sourceID string) (SourceAdapter, error)

	// Adapters returns every registered adapter ordered by source ID.
	Adapters() []SourceAdapter
}

// ContentID builds the composite catalog ID of an item.
func ContentID(sourceID, localID string) string {
	return sourceID + ":" + localID
}

// LocalID derives a source-local identifier from an item URL: its last
// non-empty path segment, or a hash of the URL when it has none.
func LocalID(itemURL string) string {
	u, err := url.Parse(itemURL)
	if err == nil {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if last := segments[len(segments)-1]; last != "" {
			last = strings.TrimSuffix(last, ".html")
			if last != "" {
				return last
			}
		}
	}
	return strconv.FormatUint(xxhash.Sum64String(itemURL), 16)
}
