// Package trafilatura extracts the main text block of a title page.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/reelscout"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ reelscout.SynopsisExtractor = (*Extractor)(nil)

// Extractor finds the synopsis of pages whose description selectors miss.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
}

// Extract returns the page title and the main content as HTML.
func (e *Extractor) Extract(rawHTML string) (*reelscout.SynopsisResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, reelscout.Errorf(reelscout.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, reelscout.WrapError(reelscout.ENOTFOUND, err, "no synopsis found")
	}

	var content string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, reelscout.WrapError(reelscout.EINTERNAL, err, "render synopsis")
		}
		content = buf.String()
	}

	return &reelscout.SynopsisResult{
		Title:       result.Metadata.Title,
		ContentHTML: content,
	}, nil
}
