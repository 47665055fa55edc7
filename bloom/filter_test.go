package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/reelscout/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	t.Run("reports first sighting as new", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.01)

		assert.False(t, f.Seen("https://dramacool.example/drama-detail/queen"))
		assert.True(t, f.Seen("https://dramacool.example/drama-detail/queen"))
		assert.False(t, f.Seen("https://dramacool.example/drama-detail/moving"))
	})

	t.Run("never reports a repeated key as new", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.01)
		for i := range 500 {
			f.Seen(fmt.Sprintf("https://gogo.example/anime/%d", i))
		}
		for i := range 500 {
			assert.True(t, f.Seen(fmt.Sprintf("https://gogo.example/anime/%d", i)))
		}
	})

	t.Run("estimates the number of keys", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.01)
		assert.Equal(t, uint(0), f.EstimatedCount())

		f.Seen("a")
		f.Seen("b")
		f.Seen("c")
		f.Seen("a")

		count := f.EstimatedCount()
		assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
	})
}
