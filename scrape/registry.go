package scrape

import (
	"sort"
	"sync"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.AdapterRegistry = (*Registry)(nil)

// AdapterFactory builds the adapter of a source.
type AdapterFactory func(source *reelscout.Source) reelscout.SourceAdapter

// AdapterDecorator wraps an adapter with extra behavior.
type AdapterDecorator func(next reelscout.SourceAdapter) reelscout.SourceAdapter

// Registry is the capability table of sources: callers look adapters up by
// source ID and never branch on content type.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]reelscout.SourceAdapter
}

// NewRegistry builds one adapter per source.
func NewRegistry(sources []*reelscout.Source, build AdapterFactory) *Registry {
	r := &Registry{adapters: make(map[string]reelscout.SourceAdapter, len(sources))}
	for _, src := range sources {
		r.adapters[src.ID] = build(src)
	}
	return r
}

// Register adds or replaces the adapter of its source.
func (r *Registry) Register(a reelscout.SourceAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Source().ID] = a
}

// Adapter returns the adapter of sourceID.
func (r *Registry) Adapter(sourceID string) (reelscout.SourceAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[sourceID]
	if !ok {
		return nil, reelscout.Errorf(reelscout.ENOTFOUND, "source %q not found", sourceID)
	}
	return a, nil
}

// Adapters returns every adapter ordered by source ID.
func (r *Registry) Adapters() []reelscout.SourceAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]reelscout.SourceAdapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Source().ID < out[j].Source().ID
	})
	return out
}

// Wrap returns a new registry whose adapters are the decorated adapters of r.
func (r *Registry) Wrap(decorate AdapterDecorator) *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wrapped := &Registry{adapters: make(map[string]reelscout.SourceAdapter, len(r.adapters))}
	for id, a := range r.adapters {
		wrapped.adapters[id] = decorate(a)
	}
	return wrapped
}
