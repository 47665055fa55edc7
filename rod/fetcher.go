package rod

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultFetchTimeout bounds navigation, load and idle waits of one page.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements reelscout.Fetcher at compile time.
var _ reelscout.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML through stealth pages of a managed
// browser. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager   *BrowserManager
	timeout   time.Duration
	userAgent string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the per-page timeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides the browser user agent on every page.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a Fetcher over manager. The Fetcher takes ownership
// of the manager and closes it on Close.
func NewFetcher(manager *BrowserManager, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		manager: manager,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch navigates to url and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser := f.manager.Browser()
	if browser == nil {
		return "", reelscout.Errorf(reelscout.EFETCH, "browser unavailable")
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return "", reelscout.WrapError(reelscout.EFETCH, err, "open page")
	}
	defer page.Close()
	defer f.manager.IncrementPageCount()

	page = page.Context(ctx).Timeout(f.timeout)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return "", reelscout.WrapError(reelscout.EFETCH, err, "set user agent")
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", reelscout.WrapError(reelscout.EFETCH, err, "navigate %s", url)
	}
	if err := page.WaitLoad(); err != nil {
		return "", reelscout.WrapError(reelscout.EFETCH, err, "load %s", url)
	}

	html, err := page.HTML()
	if err != nil {
		return "", reelscout.WrapError(reelscout.EFETCH, err, "read %s", url)
	}
	if strings.TrimSpace(html) == "" {
		return "", reelscout.Errorf(reelscout.EFETCH, "empty page for %s", url)
	}

	return html, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
