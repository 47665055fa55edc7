package scrape_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/mock"
	"github.com/fwojciec/reelscout/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier() *scrape.Retrier {
	return &scrape.Retrier{MaxRetries: 3, BaseDelay: time.Millisecond}
}

func TestRetrier_Do(t *testing.T) {
	t.Parallel()

	t.Run("doubles the delay per attempt", func(t *testing.T) {
		t.Parallel()

		r := scrape.NewRetrier()
		assert.Equal(t, time.Duration(0), r.Delay(1))
		assert.Equal(t, 2*time.Second, r.Delay(2))
		assert.Equal(t, 4*time.Second, r.Delay(3))
	})

	t.Run("makes three attempts for fetch errors and wraps the last", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		cause := reelscout.Errorf(reelscout.EFETCH, "HTTP 503")
		err := fastRetrier().Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return cause
		})

		assert.Equal(t, 3, attempts)
		assert.Equal(t, reelscout.EEXHAUSTED, reelscout.ErrorCode(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, error(cause), errors.Unwrap(err))
	})

	t.Run("returns not found after one attempt", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		err := fastRetrier().Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return reelscout.Errorf(reelscout.ENOTFOUND, "no title")
		})

		assert.Equal(t, 1, attempts)
		assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))
	})

	t.Run("returns invalid input after one attempt", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		err := fastRetrier().Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return reelscout.Errorf(reelscout.EINVALID, "bad")
		})

		assert.Equal(t, 1, attempts)
		assert.Equal(t, reelscout.EINVALID, reelscout.ErrorCode(err))
	})

	t.Run("stops once an attempt succeeds", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		err := fastRetrier().Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 2 {
				return errors.New("transient")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("returns context error when cancelled during backoff", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Retrier{MaxRetries: 3, BaseDelay: time.Hour}
		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		err := r.Do(ctx, func(ctx context.Context) error {
			attempts++
			cancel()
			return errors.New("transient")
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("applies jitter within bounds", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Retrier{MaxRetries: 2, BaseDelay: 10 * time.Millisecond, Jitter: 0.5}
		begin := time.Now()
		_ = r.Do(context.Background(), func(ctx context.Context) error {
			return errors.New("transient")
		})
		elapsed := time.Since(begin)

		assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
		assert.Less(t, elapsed, time.Second)
	})

	t.Run("overrides budget per run", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		_ = fastRetrier().WithMaxRetries(5).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errors.New("transient")
		})
		assert.Equal(t, 5, attempts)
	})
}

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns the typed value", func(t *testing.T) {
		t.Parallel()

		calls := 0
		v, err := scrape.Retry(context.Background(), fastRetrier(), func(ctx context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})
}

func TestRetryingAdapter(t *testing.T) {
	t.Parallel()

	t.Run("retries list scrapes", func(t *testing.T) {
		t.Parallel()

		calls := 0
		next := &mock.SourceAdapter{
			ScrapeListFn: func(ctx context.Context, limit int) ([]*reelscout.ContentItem, error) {
				calls++
				if calls < 3 {
					return nil, reelscout.Errorf(reelscout.EFETCH, "timeout")
				}
				return []*reelscout.ContentItem{{ID: "dramacool:a"}}, nil
			},
		}

		items, err := scrape.NewRetryingAdapter(next, fastRetrier()).ScrapeList(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry missing details", func(t *testing.T) {
		t.Parallel()

		calls := 0
		next := &mock.SourceAdapter{
			GetDetailsFn: func(ctx context.Context, itemRef string) (*reelscout.ContentItem, error) {
				calls++
				return nil, reelscout.Errorf(reelscout.ENOTFOUND, "no title")
			},
		}

		_, err := scrape.NewRetryingAdapter(next, fastRetrier()).GetDetails(context.Background(), "x")
		assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})
}
