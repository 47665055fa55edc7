// Package slog provides logging decorators for reelscout services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reelscout"
)

// Ensure LoggingFetcher implements reelscout.Fetcher.
var _ reelscout.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next    reelscout.Fetcher
	backend string
	logger  *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher. backend names the wrapped
// fetcher in log lines.
func NewLoggingFetcher(next reelscout.Fetcher, backend string, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, backend: backend, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		f.logger.Log(ctx, level, "fetch",
			"backend", f.backend,
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
