package scrape

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/fwojciec/reelscout"
)

// Retry defaults.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Retrier runs an operation with bounded exponential backoff. The delay
// before attempt n (n >= 2) is 2^(n-1) * BaseDelay, stretched by up to
// Jitter of itself. ENOTFOUND, EINVALID and EUNAUTHORIZED are returned as is
// after one attempt; other failures surface as EEXHAUSTED wrapping the last
// error once MaxRetries attempts are spent.
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	Jitter     float64
	Logger     *slog.Logger
}

// NewRetrier returns a Retrier with the default budget.
func NewRetrier() *Retrier {
	return &Retrier{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

// WithMaxRetries returns a copy of r with a different attempt budget.
// Non-positive n keeps the current budget.
func (r *Retrier) WithMaxRetries(n int) *Retrier {
	cp := *r
	if n > 0 {
		cp.MaxRetries = n
	}
	return &cp
}

// Delay returns the wait before the given 1-based attempt, without jitter.
func (r *Retrier) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return r.BaseDelay << (attempt - 1)
}

// Do runs fn until it succeeds, fails permanently or the budget is spent.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := r.MaxRetries
	if attempts <= 0 {
		attempts = DefaultMaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, r.jittered(r.Delay(attempt))); err != nil {
				return err
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !reelscout.IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err
		if r.Logger != nil && attempt < attempts {
			r.Logger.Warn("retrying", "attempt", attempt+1, "of", attempts, "err", err)
		}
	}

	return reelscout.WrapError(reelscout.EEXHAUSTED, lastErr, "gave up after %d attempts", attempts)
}

func (r *Retrier) jittered(d time.Duration) time.Duration {
	if r.Jitter <= 0 || d <= 0 {
		return d
	}
	return d + time.Duration(rand.Float64()*r.Jitter*float64(d))
}

// Retry is Do for operations that produce a value.
func Retry[T any](ctx context.Context, r *Retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ reelscout.SourceAdapter = (*RetryingAdapter)(nil)

// RetryingAdapter retries every operation of the wrapped adapter.
type RetryingAdapter struct {
	next    reelscout.SourceAdapter
	retrier *Retrier
}

// NewRetryingAdapter wraps next with retrier.
func NewRetryingAdapter(next reelscout.SourceAdapter, retrier *Retrier) *RetryingAdapter {
	return &RetryingAdapter{next: next, retrier: retrier}
}

func (a *RetryingAdapter) Source() *reelscout.Source {
	return a.next.Source()
}

func (a *RetryingAdapter) ScrapeList(ctx context.Context, limit int) ([]*reelscout.ContentItem, error) {
	return Retry(ctx, a.retrier, func(ctx context.Context) ([]*reelscout.ContentItem, error) {
		return a.next.ScrapeList(ctx, limit)
	})
}

func (a *RetryingAdapter) Search(ctx context.Context, query string, limit int) ([]*reelscout.ContentItem, error) {
	return Retry(ctx, a.retrier, func(ctx context.Context) ([]*reelscout.ContentItem, error) {
		return a.next.Search(ctx, query, limit)
	})
}

func (a *RetryingAdapter) GetDetails(ctx context.Context, itemRef string) (*reelscout.ContentItem, error) {
	return Retry(ctx, a.retrier, func(ctx context.Context) (*reelscout.ContentItem, error) {
		return a.next.GetDetails(ctx, itemRef)
	})
}
