package mock

import (
	"context"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.ContentService = (*ContentService)(nil)

// ContentService is a mock implementation of reelscout.ContentService.
type ContentService struct {
	UpsertContentsFn  func(ctx context.Context, items []*reelscout.ContentItem) error
	FindContentByIDFn func(ctx context.Context, id string) (*reelscout.ContentItem, error)
	FindContentsFn    func(ctx context.Context, filter reelscout.ContentFilter) ([]*reelscout.ContentItem, error)
	DeleteContentFn   func(ctx context.Context, id string) error
}

func (s *ContentService) UpsertContents(ctx context.Context, items []*reelscout.ContentItem) error {
	return s.UpsertContentsFn(ctx, items)
}

func (s *ContentService) FindContentByID(ctx context.Context, id string) (*reelscout.ContentItem, error) {
	return s.FindContentByIDFn(ctx, id)
}

func (s *ContentService) FindContents(ctx context.Context, filter reelscout.ContentFilter) ([]*reelscout.ContentItem, error) {
	return s.FindContentsFn(ctx, filter)
}

func (s *ContentService) DeleteContent(ctx context.Context, id string) error {
	return s.DeleteContentFn(ctx, id)
}
