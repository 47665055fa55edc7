package scrape

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/bloom"
)

// Adapter defaults.
const (
	DefaultLimit       = 20
	DefaultMaxPages    = 3
	DefaultSearchPath  = "/search?keyword={query}"
	DefaultDetailsPath = "/{id}"
)

// DefaultListPaths are tried in order when a source declares none.
var DefaultListPaths = []string{"/", "/latest", "/recently-added", "/popular"}

var _ reelscout.SourceAdapter = (*Adapter)(nil)

// Adapter binds one source to a fetcher and an extractor.
type Adapter struct {
	source    *reelscout.Source
	fetcher   reelscout.Fetcher
	extractor reelscout.Extractor
	limiter   reelscout.DomainLimiter
	maxPages  int
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLimiter rate limits requests per host.
func WithLimiter(l reelscout.DomainLimiter) AdapterOption {
	return func(a *Adapter) {
		a.limiter = l
	}
}

// WithMaxPages bounds how many pages of a {page} listing are read.
func WithMaxPages(n int) AdapterOption {
	return func(a *Adapter) {
		if n > 0 {
			a.maxPages = n
		}
	}
}

// NewAdapter creates an Adapter for source.
func NewAdapter(source *reelscout.Source, fetcher reelscout.Fetcher, extractor reelscout.Extractor, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		source:    source,
		fetcher:   fetcher,
		extractor: extractor,
		maxPages:  DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Source returns the bound source.
func (a *Adapter) Source() *reelscout.Source {
	return a.source
}

// ScrapeList tries each list path in order and returns the items of the
// first one that yields any. A failing path moves on to the next; the last
// failure is returned only when no path yields items.
func (a *Adapter) ScrapeList(ctx context.Context, limit int) ([]*reelscout.ContentItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	paths := a.source.ListPaths
	if len(paths) == 0 {
		paths = DefaultListPaths
	}

	var lastErr error
	for _, path := range paths {
		items, err := a.scrapePath(ctx, path, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	return nil, lastErr
}

// scrapePath reads one list path, following {page} placeholders until the
// limit is reached, a page adds nothing new or MaxPages is hit.
func (a *Adapter) scrapePath(ctx context.Context, path string, limit int) ([]*reelscout.ContentItem, error) {
	pages := 1
	if strings.Contains(path, "{page}") {
		pages = a.maxPages
	}

	seen := bloom.NewFilter(uint(limit*pages*2), 0.001)
	var items []*reelscout.ContentItem
	for page := 1; page <= pages && len(items) < limit; page++ {
		pageURL, err := a.resolve(strings.ReplaceAll(path, "{page}", strconv.Itoa(page)))
		if err != nil {
			return nil, err
		}

		res, err := a.list(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			break
		}

		added := 0
		for _, it := range res.Items {
			if seen.Seen(itemKey(it)) {
				continue
			}
			items = append(items, a.toContent(it))
			added++
			if len(items) >= limit {
				break
			}
		}
		if added == 0 {
			break
		}
	}

	return items, nil
}

// Search returns up to limit items for query.
func (a *Adapter) Search(ctx context.Context, query string, limit int) ([]*reelscout.ContentItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, reelscout.Errorf(reelscout.EINVALID, "search query required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	path := a.source.SearchPath
	if path == "" {
		path = DefaultSearchPath
	}
	searchURL, err := a.resolve(strings.ReplaceAll(path, "{query}", url.QueryEscape(query)))
	if err != nil {
		return nil, err
	}

	res, err := a.list(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	seen := bloom.NewFilter(uint(len(res.Items)+1), 0.001)
	items := make([]*reelscout.ContentItem, 0, min(limit, len(res.Items)))
	for _, it := range res.Items {
		if len(items) >= limit {
			break
		}
		if seen.Seen(itemKey(it)) {
			continue
		}
		items = append(items, a.toContent(it))
	}
	return items, nil
}

// GetDetails fetches and extracts a title page. itemRef may be an absolute
// URL, a path on the source, or a local ID expanded through DetailsPath.
func (a *Adapter) GetDetails(ctx context.Context, itemRef string) (*reelscout.ContentItem, error) {
	itemRef = strings.TrimSpace(itemRef)
	if itemRef == "" {
		return nil, reelscout.Errorf(reelscout.EINVALID, "item reference required")
	}

	pageURL, err := a.detailsURL(itemRef)
	if err != nil {
		return nil, err
	}

	html, err := a.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	d, err := a.extractor.ExtractDetails(html, pageURL, a.source.Selectors)
	if err != nil {
		return nil, err
	}

	item := &reelscout.ContentItem{
		ID:          reelscout.ContentID(a.source.ID, reelscout.LocalID(pageURL)),
		SourceID:    a.source.ID,
		URL:         pageURL,
		Title:       d.Title,
		Description: d.Description,
		PosterURL:   d.Image,
		BackdropURL: d.Backdrop,
		Type:        a.source.ContentType,
		Status:      d.Status,
		Metadata: reelscout.Metadata{
			Genres:   d.Genres,
			Cast:     d.Cast,
			Episodes: d.Episodes,
		},
	}
	if d.Rating != nil {
		item.Rating = *d.Rating
	}
	if d.Year != nil {
		item.ReleaseYear = *d.Year
	}
	return item, nil
}

func (a *Adapter) detailsURL(ref string) (string, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	if strings.HasPrefix(ref, "/") {
		return a.resolve(ref)
	}
	path := a.source.DetailsPath
	if path == "" {
		path = DefaultDetailsPath
	}
	return a.resolve(strings.ReplaceAll(path, "{id}", url.PathEscape(ref)))
}

func (a *Adapter) list(ctx context.Context, pageURL string) (*reelscout.ListResult, error) {
	html, err := a.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return a.extractor.ExtractList(html, pageURL, a.source.Selectors)
}

func (a *Adapter) fetch(ctx context.Context, pageURL string) (string, error) {
	if a.limiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return "", reelscout.WrapError(reelscout.EINVALID, err, "parse %s", pageURL)
		}
		if err := a.limiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}
	return a.fetcher.Fetch(ctx, pageURL)
}

func (a *Adapter) resolve(ref string) (string, error) {
	base, err := url.Parse(a.source.BaseURL)
	if err != nil {
		return "", reelscout.WrapError(reelscout.EINVALID, err, "source %q base URL", a.source.ID)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", reelscout.WrapError(reelscout.EINVALID, err, "source %q path %q", a.source.ID, ref)
	}
	return base.ResolveReference(rel).String(), nil
}

func (a *Adapter) toContent(it reelscout.Item) *reelscout.ContentItem {
	item := &reelscout.ContentItem{
		ID:        reelscout.ContentID(a.source.ID, localID(it)),
		SourceID:  a.source.ID,
		URL:       it.URL,
		Title:     it.Title,
		PosterURL: it.Image,
		Type:      a.source.ContentType,
		Metadata:  reelscout.Metadata{Genres: it.Genres},
	}
	if it.Rating != nil {
		item.Rating = *it.Rating
	}
	if it.Year != nil {
		item.ReleaseYear = *it.Year
	}
	return item
}

func localID(it reelscout.Item) string {
	if it.URL != "" {
		return reelscout.LocalID(it.URL)
	}
	return strconv.FormatUint(xxhash.Sum64String(it.Title), 16)
}

func itemKey(it reelscout.Item) string {
	if it.URL != "" {
		return it.URL
	}
	return "title:" + it.Title
}
