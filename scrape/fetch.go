// Package scrape turns configured sources into catalog items: fetch backend
// fallback, per-source adapters, retries, caching and batch runs.
package scrape

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/reelscout"
)

// DefaultEnhancedTimeout bounds one enhanced backend attempt.
const DefaultEnhancedTimeout = 45 * time.Second

var _ reelscout.Fetcher = (*FallbackFetcher)(nil)

// FallbackFetcher tries the enhanced backend first and the relay backend on
// any enhanced failure, including a timeout or an empty body.
type FallbackFetcher struct {
	enhanced reelscout.Fetcher
	relay    reelscout.Fetcher
	timeout  time.Duration
}

// FallbackOption configures a FallbackFetcher.
type FallbackOption func(*FallbackFetcher)

// WithEnhancedTimeout sets the per-request timeout of the enhanced backend.
func WithEnhancedTimeout(d time.Duration) FallbackOption {
	return func(f *FallbackFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewFallbackFetcher creates a FallbackFetcher. enhanced may be nil, in
// which case every request goes straight to relay.
func NewFallbackFetcher(enhanced, relay reelscout.Fetcher, opts ...FallbackOption) *FallbackFetcher {
	f := &FallbackFetcher{
		enhanced: enhanced,
		relay:    relay,
		timeout:  DefaultEnhancedTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the first non-empty document. When both backends fail the
// error is EFETCH and names both failures.
func (f *FallbackFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var enhancedErr error
	if f.enhanced != nil {
		html, err := f.fetchEnhanced(ctx, url)
		if err == nil {
			return html, nil
		}
		enhancedErr = err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	html, err := f.relay.Fetch(ctx, url)
	if err == nil && strings.TrimSpace(html) == "" {
		err = errors.New("empty body")
	}
	if err == nil {
		return html, nil
	}

	if enhancedErr != nil {
		return "", reelscout.Errorf(reelscout.EFETCH, "fetch %s: enhanced: %v; relay: %v", url, enhancedErr, err)
	}
	return "", reelscout.Errorf(reelscout.EFETCH, "fetch %s: relay: %v", url, err)
}

func (f *FallbackFetcher) fetchEnhanced(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	html, err := f.enhanced.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(html) == "" {
		return "", errors.New("empty body")
	}
	return html, nil
}

// Close closes both backends.
func (f *FallbackFetcher) Close() error {
	var errs []error
	if f.enhanced != nil {
		errs = append(errs, f.enhanced.Close())
	}
	errs = append(errs, f.relay.Close())
	return errors.Join(errs...)
}
