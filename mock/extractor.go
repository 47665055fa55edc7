package mock

import "github.com/fwojciec/reelscout"

var _ reelscout.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of reelscout.Extractor.
type Extractor struct {
	ExtractListFn    func(html, baseURL string, selectors reelscout.SelectorSet) (*reelscout.ListResult, error)
	ExtractDetailsFn func(html, pageURL string, selectors reelscout.SelectorSet) (*reelscout.Details, error)
}

func (e *Extractor) ExtractList(html, baseURL string, selectors reelscout.SelectorSet) (*reelscout.ListResult, error) {
	return e.ExtractListFn(html, baseURL, selectors)
}

func (e *Extractor) ExtractDetails(html, pageURL string, selectors reelscout.SelectorSet) (*reelscout.Details, error) {
	return e.ExtractDetailsFn(html, pageURL, selectors)
}

var _ reelscout.SynopsisExtractor = (*SynopsisExtractor)(nil)

// SynopsisExtractor is a mock implementation of reelscout.SynopsisExtractor.
type SynopsisExtractor struct {
	ExtractFn func(html string) (*reelscout.SynopsisResult, error)
}

func (e *SynopsisExtractor) Extract(html string) (*reelscout.SynopsisResult, error) {
	return e.ExtractFn(html)
}
