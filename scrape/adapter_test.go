package scrape_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/goquery"
	"github.com/fwojciec/reelscout/mock"
	"github.com/fwojciec/reelscout/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dramacool() *reelscout.Source {
	return &reelscout.Source{
		ID:          "dramacool",
		Name:        "DramaCool",
		BaseURL:     "https://dramacool.example",
		ContentType: reelscout.ContentTypeDrama,
		Selectors: reelscout.SelectorSet{
			reelscout.FieldItem:   {"ul.list-episode-item li"},
			reelscout.FieldTitle:  {"h3.title", "h1"},
			reelscout.FieldURL:    {"a"},
			reelscout.FieldImage:  {"img"},
			reelscout.FieldRating: {".rating"},
			reelscout.FieldYear:   {".year"},
		},
		IsActive: true,
	}
}

func listingHTML(slugs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="list-episode-item">`)
	for _, slug := range slugs {
		fmt.Fprintf(&b, `<li><a href="/drama-detail/%s"><img src="/covers/%s.jpg"></a><h3 class="title">%s</h3><span class="rating">8.5</span><span class="year">2024</span></li>`, slug, slug, slug)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

// routeFetcher serves pages by URL and records requests.
type routeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	requests []string
}

func (f *routeFetcher) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.requests = append(f.requests, url)
			html, ok := f.pages[url]
			if !ok {
				return "", reelscout.Errorf(reelscout.EFETCH, "HTTP 404 for %s", url)
			}
			return html, nil
		},
	}
}

func TestAdapter_ScrapeList(t *testing.T) {
	t.Parallel()

	t.Run("normalizes one item per listing node", func(t *testing.T) {
		t.Parallel()

		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/": listingHTML("queen-of-tears", "moving", "my-demon"),
		}}
		a := scrape.NewAdapter(dramacool(), routes.fetcher(), goquery.NewExtractor())

		items, err := a.ScrapeList(context.Background(), 10)

		require.NoError(t, err)
		require.Len(t, items, 3)
		for _, item := range items {
			assert.Equal(t, "dramacool", item.SourceID)
			assert.Equal(t, reelscout.ContentTypeDrama, item.Type)
			assert.True(t, strings.HasPrefix(item.ID, "dramacool:"))
		}
		assert.Equal(t, "dramacool:queen-of-tears", items[0].ID)
		assert.Equal(t, "https://dramacool.example/drama-detail/queen-of-tears", items[0].URL)
		assert.Equal(t, "https://dramacool.example/covers/queen-of-tears.jpg", items[0].PosterURL)
		assert.InDelta(t, 8.5, items[0].Rating, 0.001)
		assert.Equal(t, 2024, items[0].ReleaseYear)
	})

	t.Run("moves to next list path when one yields nothing", func(t *testing.T) {
		t.Parallel()

		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/":               `<html><body>maintenance</body></html>`,
			"https://dramacool.example/recently-added": listingHTML("moving"),
		}}
		a := scrape.NewAdapter(dramacool(), routes.fetcher(), goquery.NewExtractor())

		items, err := a.ScrapeList(context.Background(), 10)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "dramacool:moving", items[0].ID)
		assert.Equal(t, []string{
			"https://dramacool.example/",
			"https://dramacool.example/latest",
			"https://dramacool.example/recently-added",
		}, routes.requests)
	})

	t.Run("returns last error when no path yields items", func(t *testing.T) {
		t.Parallel()

		routes := &routeFetcher{pages: map[string]string{}}
		a := scrape.NewAdapter(dramacool(), routes.fetcher(), goquery.NewExtractor())

		_, err := a.ScrapeList(context.Background(), 10)

		assert.Equal(t, reelscout.EFETCH, reelscout.ErrorCode(err))
		assert.Len(t, routes.requests, 4)
	})

	t.Run("follows page placeholders and drops duplicates", func(t *testing.T) {
		t.Parallel()

		src := dramacool()
		src.ListPaths = []string{"/recently-added?page={page}"}
		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/recently-added?page=1": listingHTML("a", "b"),
			"https://dramacool.example/recently-added?page=2": listingHTML("b", "c"),
			"https://dramacool.example/recently-added?page=3": listingHTML("d"),
		}}
		a := scrape.NewAdapter(src, routes.fetcher(), goquery.NewExtractor(), scrape.WithMaxPages(2))

		items, err := a.ScrapeList(context.Background(), 10)

		require.NoError(t, err)
		var ids []string
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		assert.Equal(t, []string{"dramacool:a", "dramacool:b", "dramacool:c"}, ids)
		assert.Len(t, routes.requests, 2)
	})

	t.Run("stops paging once limit is reached", func(t *testing.T) {
		t.Parallel()

		src := dramacool()
		src.ListPaths = []string{"/list/{page}"}
		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/list/1": listingHTML("a", "b", "c"),
		}}
		a := scrape.NewAdapter(src, routes.fetcher(), goquery.NewExtractor())

		items, err := a.ScrapeList(context.Background(), 2)

		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Len(t, routes.requests, 1)
	})

	t.Run("waits on the host limiter", func(t *testing.T) {
		t.Parallel()

		var hosts []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(ctx context.Context, domain string) error {
				hosts = append(hosts, domain)
				return nil
			},
		}
		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/": listingHTML("a"),
		}}
		a := scrape.NewAdapter(dramacool(), routes.fetcher(), goquery.NewExtractor(), scrape.WithLimiter(limiter))

		_, err := a.ScrapeList(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"dramacool.example"}, hosts)
	})
}

func TestAdapter_Search(t *testing.T) {
	t.Parallel()

	t.Run("substitutes escaped query", func(t *testing.T) {
		t.Parallel()

		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/search?keyword=queen+of+tears": listingHTML("queen-of-tears", "queen-2"),
		}}
		a := scrape.NewAdapter(dramacool(), routes.fetcher(), goquery.NewExtractor())

		items, err := a.Search(context.Background(), " queen of tears ", 1)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "dramacool:queen-of-tears", items[0].ID)
	})

	t.Run("rejects empty query", func(t *testing.T) {
		t.Parallel()

		a := scrape.NewAdapter(dramacool(), &mock.Fetcher{}, goquery.NewExtractor())
		_, err := a.Search(context.Background(), "  ", 10)
		assert.Equal(t, reelscout.EINVALID, reelscout.ErrorCode(err))
	})
}

func TestAdapter_GetDetails(t *testing.T) {
	t.Parallel()

	details := `<html><body><h1>Moving</h1></body></html>`

	t.Run("expands local id through details path", func(t *testing.T) {
		t.Parallel()

		src := dramacool()
		src.DetailsPath = "/drama-detail/{id}"
		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/drama-detail/moving": details,
		}}
		a := scrape.NewAdapter(src, routes.fetcher(), goquery.NewExtractor())

		item, err := a.GetDetails(context.Background(), "moving")

		require.NoError(t, err)
		assert.Equal(t, "dramacool:moving", item.ID)
		assert.Equal(t, "Moving", item.Title)
		assert.Equal(t, reelscout.ContentTypeDrama, item.Type)
	})

	t.Run("accepts absolute URLs and paths", func(t *testing.T) {
		t.Parallel()

		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/drama-detail/moving": details,
		}}
		a := scrape.NewAdapter(dramacool(), routes.fetcher(), goquery.NewExtractor())

		byURL, err := a.GetDetails(context.Background(), "https://dramacool.example/drama-detail/moving")
		require.NoError(t, err)
		byPath, err := a.GetDetails(context.Background(), "/drama-detail/moving")
		require.NoError(t, err)
		assert.Equal(t, byURL.ID, byPath.ID)
	})

	t.Run("returns ENOTFOUND for page without title", func(t *testing.T) {
		t.Parallel()

		routes := &routeFetcher{pages: map[string]string{
			"https://dramacool.example/gone": `<html><body><p>404</p></body></html>`,
		}}
		a := scrape.NewAdapter(dramacool(), routes.fetcher(), goquery.NewExtractor())

		_, err := a.GetDetails(context.Background(), "gone")
		assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))
	})
}
