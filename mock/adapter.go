package mock

import (
	"context"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.SourceAdapter = (*SourceAdapter)(nil)

// SourceAdapter is a mock implementation of reelscout.SourceAdapter.
type SourceAdapter struct {
	SourceFn     func() *reelscout.Source
	ScrapeListFn func(ctx context.Context, limit int) ([]*reelscout.ContentItem, error)
	SearchFn     func(ctx context.Context, query string, limit int) ([]*reelscout.ContentItem, error)
	GetDetailsFn func(ctx context.Context, itemRef string) (*reelscout.ContentItem, error)
}

func (a *SourceAdapter) Source() *reelscout.Source {
	return a.SourceFn()
}

func (a *SourceAdapter) ScrapeList(ctx context.Context, limit int) ([]*reelscout.ContentItem, error) {
	return a.ScrapeListFn(ctx, limit)
}

func (a *SourceAdapter) Search(ctx context.Context, query string, limit int) ([]*reelscout.ContentItem, error) {
	return a.SearchFn(ctx, query, limit)
}

func (a *SourceAdapter) GetDetails(ctx context.Context, itemRef string) (*reelscout.ContentItem, error) {
	return a.GetDetailsFn(ctx, itemRef)
}

var _ reelscout.AdapterRegistry = (*AdapterRegistry)(nil)

// AdapterRegistry is a mock implementation of reelscout.AdapterRegistry.
type AdapterRegistry struct {
	AdapterFn  func(sourceID string) (reelscout.SourceAdapter, error)
	AdaptersFn func() []reelscout.SourceAdapter
}

func (r *AdapterRegistry) Adapter(sourceID string) (reelscout.SourceAdapter, error) {
	return r.AdapterFn(sourceID)
}

func (r *AdapterRegistry) Adapters() []reelscout.SourceAdapter {
	return r.AdaptersFn()
}
