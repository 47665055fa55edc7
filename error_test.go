package reelscout_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/reelscout"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := reelscout.Errorf(reelscout.ENOTFOUND, "source %q not found", "test")

	assert.Equal(t, reelscout.ENOTFOUND, reelscout.ErrorCode(err))
	assert.Equal(t, "source \"test\" not found", reelscout.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, reelscout.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, reelscout.ErrorMessage(nil))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("returns EINTERNAL for foreign errors", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, reelscout.EINTERNAL, reelscout.ErrorCode(errors.New("boom")))
	})

	t.Run("finds code through fmt wrapping", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("scrape list: %w", reelscout.Errorf(reelscout.EFETCH, "all backends failed"))
		assert.Equal(t, reelscout.EFETCH, reelscout.ErrorCode(err))
	})

	t.Run("returns outermost code for wrapped application errors", func(t *testing.T) {
		t.Parallel()

		cause := reelscout.Errorf(reelscout.EFETCH, "relay: HTTP 503")
		err := reelscout.WrapError(reelscout.EEXHAUSTED, cause, "gave up after %d attempts", 3)

		assert.Equal(t, reelscout.EEXHAUSTED, reelscout.ErrorCode(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, cause, errors.Unwrap(err))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("falls back to cause message when empty", func(t *testing.T) {
		t.Parallel()

		err := &reelscout.Error{Code: reelscout.ESTORE, Err: errors.New("disk full")}
		assert.Equal(t, "disk full", reelscout.ErrorMessage(err))
	})

	t.Run("hides foreign error details", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Internal error", reelscout.ErrorMessage(errors.New("secret")))
	})
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	t.Run("fetch errors are retryable", func(t *testing.T) {
		t.Parallel()

		assert.True(t, reelscout.IsRetryable(reelscout.Errorf(reelscout.EFETCH, "timeout")))
		assert.True(t, reelscout.IsRetryable(errors.New("connection reset")))
	})

	t.Run("not found and invalid are not retryable", func(t *testing.T) {
		t.Parallel()

		assert.False(t, reelscout.IsRetryable(reelscout.Errorf(reelscout.ENOTFOUND, "no title")))
		assert.False(t, reelscout.IsRetryable(reelscout.Errorf(reelscout.EINVALID, "empty query")))
		assert.False(t, reelscout.IsRetryable(nil))
	})
}
