package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/reelscout"
)

// DefaultRenderTimeout allows for the remote browser render.
const DefaultRenderTimeout = 60 * time.Second

var _ reelscout.Fetcher = (*RenderAPIFetcher)(nil)

// RenderAPIFetcher fetches pages through a remote rendering API that runs
// JavaScript server side. The target is passed as the url query parameter
// together with api_key, render=true and premium=true.
type RenderAPIFetcher struct {
	client  *http.Client
	apiURL  string
	apiKey  string
	timeout time.Duration
}

// RenderOption configures a RenderAPIFetcher.
type RenderOption func(*RenderAPIFetcher)

// WithRenderTimeout sets the request timeout.
func WithRenderTimeout(d time.Duration) RenderOption {
	return func(f *RenderAPIFetcher) {
		f.timeout = d
	}
}

// NewRenderAPIFetcher creates a fetcher for the rendering API at apiURL.
func NewRenderAPIFetcher(apiURL, apiKey string, opts ...RenderOption) *RenderAPIFetcher {
	f := &RenderAPIFetcher{
		apiURL:  apiURL,
		apiKey:  apiKey,
		timeout: DefaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch renders target remotely and returns the resulting HTML.
func (f *RenderAPIFetcher) Fetch(ctx context.Context, target string) (string, error) {
	if f.apiKey == "" {
		return "", reelscout.Errorf(reelscout.EUNAUTHORIZED, "render API key not configured")
	}

	u, err := url.Parse(f.apiURL)
	if err != nil {
		return "", reelscout.WrapError(reelscout.EINVALID, err, "parse render API url")
	}
	q := u.Query()
	q.Set("api_key", f.apiKey)
	q.Set("url", target)
	q.Set("render", "true")
	q.Set("premium", "true")
	u.RawQuery = q.Encode()

	return get(ctx, f.client, u.String(), target, "")
}

// Close is a no-op.
func (f *RenderAPIFetcher) Close() error {
	return nil
}
