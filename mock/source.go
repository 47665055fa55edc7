package mock

import (
	"context"
	"time"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of reelscout.SourceService.
type SourceService struct {
	UpsertSourceFn      func(ctx context.Context, source *reelscout.Source) error
	FindSourceByIDFn    func(ctx context.Context, id string) (*reelscout.Source, error)
	FindSourcesFn       func(ctx context.Context, filter reelscout.SourceFilter) ([]*reelscout.Source, error)
	MarkSourceScrapedFn func(ctx context.Context, id string, at time.Time) error
}

func (s *SourceService) UpsertSource(ctx context.Context, source *reelscout.Source) error {
	return s.UpsertSourceFn(ctx, source)
}

func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*reelscout.Source, error) {
	return s.FindSourceByIDFn(ctx, id)
}

func (s *SourceService) FindSources(ctx context.Context, filter reelscout.SourceFilter) ([]*reelscout.Source, error) {
	return s.FindSourcesFn(ctx, filter)
}

func (s *SourceService) MarkSourceScraped(ctx context.Context, id string, at time.Time) error {
	return s.MarkSourceScrapedFn(ctx, id, at)
}
