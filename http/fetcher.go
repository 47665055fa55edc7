// Package http provides plain HTTP implementations of reelscout.Fetcher:
// the relay backend and a remote rendering API backend.
package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/reelscout"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 10 << 20

// Ensure Fetcher implements reelscout.Fetcher at compile time.
var _ reelscout.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML with a GET request, optionally routed through a
// relay that receives the escaped target URL appended to its own URL.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	relayURL  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithRelay routes requests through relayURL, e.g.
// "https://relay.example/raw?url=".
func WithRelay(relayURL string) Option {
	return func(f *Fetcher) {
		f.relayURL = relayURL
	}
}

// WithClient replaces the underlying HTTP client. The timeout option is
// ignored when a client is supplied.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new relay Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	requestURL := target
	if f.relayURL != "" {
		requestURL = f.relayURL + url.QueryEscape(target)
	}
	return get(ctx, f.client, requestURL, target, f.userAgent)
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// get performs the request and enforces the success contract shared by all
// HTTP backends: 2xx status and a non-empty body.
func get(ctx context.Context, client *http.Client, requestURL, target, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", reelscout.WrapError(reelscout.EINVALID, err, "build request for %s", target)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return "", reelscout.WrapError(reelscout.EFETCH, err, "request %s", target)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return "", reelscout.Errorf(reelscout.EFETCH, "HTTP %d for %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", reelscout.WrapError(reelscout.EFETCH, err, "read body of %s", target)
	}

	html := string(body)
	if strings.TrimSpace(html) == "" {
		return "", reelscout.Errorf(reelscout.EFETCH, "empty body for %s", target)
	}

	return html, nil
}
