package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("keeps emphasis in a synopsis", func(t *testing.T) {
		t.Parallel()

		html := `<p>A <strong>chaebol</strong> heiress and her <em>small-town</em> husband.</p>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Equal(t, "A **chaebol** heiress and her *small-town* husband.", md)
	})

	t.Run("keeps paragraphs apart", func(t *testing.T) {
		t.Parallel()

		html := `<div class="synopsis"><p>First season.</p><p>Second season.</p></div>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Equal(t, "First season.\n\nSecond season.", md)
	})

	t.Run("drops images and players", func(t *testing.T) {
		t.Parallel()

		html := `<p>Plot.</p><img src="/poster.jpg" alt="poster"><iframe src="https://player.example/embed"></iframe>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Plot.")
		assert.NotContains(t, md, "poster.jpg")
		assert.NotContains(t, md, "player.example")
	})

	t.Run("renders cast lists", func(t *testing.T) {
		t.Parallel()

		html := `<ul><li>Kim Soo Hyun</li><li>Kim Ji Won</li></ul>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "- Kim Soo Hyun")
		assert.Contains(t, md, "- Kim Ji Won")
	})

	t.Run("returns EINVALID for blank input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("  \n")

		require.Error(t, err)
		assert.Equal(t, reelscout.EINVALID, reelscout.ErrorCode(err))
	})
}
