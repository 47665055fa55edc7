package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reelscout"
)

// Ensure LoggingAdapter implements reelscout.SourceAdapter.
var _ reelscout.SourceAdapter = (*LoggingAdapter)(nil)

// LoggingAdapter wraps a SourceAdapter and logs each operation with its
// item count and duration.
type LoggingAdapter struct {
	next   reelscout.SourceAdapter
	logger *slog.Logger
}

// NewLoggingAdapter creates a new LoggingAdapter.
func NewLoggingAdapter(next reelscout.SourceAdapter, logger *slog.Logger) *LoggingAdapter {
	return &LoggingAdapter{next: next, logger: logger.With("source", next.Source().ID)}
}

// Source delegates to the wrapped adapter.
func (a *LoggingAdapter) Source() *reelscout.Source {
	return a.next.Source()
}

// ScrapeList logs the listing scrape.
func (a *LoggingAdapter) ScrapeList(ctx context.Context, limit int) (items []*reelscout.ContentItem, err error) {
	defer func(begin time.Time) {
		a.logger.Info("scrape list",
			"limit", limit,
			"items", len(items),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.ScrapeList(ctx, limit)
}

// Search logs the search.
func (a *LoggingAdapter) Search(ctx context.Context, query string, limit int) (items []*reelscout.ContentItem, err error) {
	defer func(begin time.Time) {
		a.logger.Info("search",
			"query", query,
			"limit", limit,
			"items", len(items),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Search(ctx, query, limit)
}

// GetDetails logs the details lookup.
func (a *LoggingAdapter) GetDetails(ctx context.Context, itemRef string) (item *reelscout.ContentItem, err error) {
	defer func(begin time.Time) {
		a.logger.Info("details",
			"ref", itemRef,
			"found", item != nil,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.GetDetails(ctx, itemRef)
}
