package scrape

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/fwojciec/reelscout"
	"golang.org/x/sync/errgroup"
)

// Runner defaults.
const (
	DefaultConcurrency = 2
	SampleSize         = 5
)

// Runner scrapes sources in sequential groups; sources within a group run
// concurrently. Each source is listed with retries and its items upserted
// before the source counts as done. A failing source never aborts the run.
type Runner struct {
	Registry    reelscout.AdapterRegistry
	Contents    reelscout.ContentService
	Sources     reelscout.SourceService
	Retrier     *Retrier
	Concurrency int
	Limit       int
	Logger      *slog.Logger
	Now         func() time.Time
}

// RunOptions narrows or tunes one run. Zero values fall back to the
// Runner settings.
type RunOptions struct {
	SourceID    string
	Concurrency int
	MaxRetries  int
	MaxSources  int
	SkipSources []string
	Limit       int
	Progress    ProgressFunc
}

// SourceResult is the outcome of one source.
type SourceResult struct {
	SourceID string                   `json:"-"`
	Success  bool                     `json:"success"`
	Count    int                      `json:"count"`
	Sample   []*reelscout.ContentItem `json:"data"`
	Error    string                   `json:"error,omitempty"`
	Duration time.Duration            `json:"-"`
	Err      error                    `json:"-"`
}

// ProgressFunc receives each source result as soon as it is known.
type ProgressFunc func(res *SourceResult)

// Targets returns the adapters a run with opts would visit.
func (r *Runner) Targets(opts RunOptions) ([]reelscout.SourceAdapter, error) {
	if opts.SourceID != "" {
		a, err := r.Registry.Adapter(opts.SourceID)
		if err != nil {
			return nil, err
		}
		return []reelscout.SourceAdapter{a}, nil
	}

	var targets []reelscout.SourceAdapter
	for _, a := range r.Registry.Adapters() {
		src := a.Source()
		if !src.IsActive || slices.Contains(opts.SkipSources, src.ID) {
			continue
		}
		targets = append(targets, a)
		if opts.MaxSources > 0 && len(targets) >= opts.MaxSources {
			break
		}
	}
	return targets, nil
}

// Run scrapes the selected sources and returns one result per source in
// visiting order. The error is non-nil only when the run itself cannot
// proceed (unknown source, cancelled context).
func (r *Runner) Run(ctx context.Context, opts RunOptions) ([]*SourceResult, error) {
	targets, err := r.Targets(opts)
	if err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = r.Concurrency
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	retrier := r.Retrier
	if retrier == nil {
		retrier = NewRetrier()
	}
	retrier = retrier.WithMaxRetries(opts.MaxRetries)

	results := make([]*SourceResult, len(targets))
	for start := 0; start < len(targets); start += concurrency {
		if err := ctx.Err(); err != nil {
			return results[:start], err
		}

		end := min(start+concurrency, len(targets))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				res := r.scrapeSource(gctx, targets[i], retrier, opts.Limit)
				results[i] = res
				if opts.Progress != nil {
					opts.Progress(res)
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	return results, nil
}

func (r *Runner) scrapeSource(ctx context.Context, a reelscout.SourceAdapter, retrier *Retrier, limit int) *SourceResult {
	if limit <= 0 {
		limit = r.Limit
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	src := a.Source()
	res := &SourceResult{SourceID: src.ID}
	begin := time.Now()
	defer func() {
		res.Duration = time.Since(begin)
		if res.Err != nil {
			res.Error = describe(res.Err)
		}
	}()

	items, err := Retry(ctx, retrier, func(ctx context.Context) ([]*reelscout.ContentItem, error) {
		return a.ScrapeList(ctx, limit)
	})
	if err != nil {
		res.Err = err
		return res
	}

	if len(items) > 0 {
		if err := r.Contents.UpsertContents(ctx, items); err != nil {
			res.Err = err
			return res
		}
	}

	res.Success = true
	res.Count = len(items)
	res.Sample = items[:min(SampleSize, len(items))]

	if r.Sources != nil {
		if err := r.Sources.MarkSourceScraped(ctx, src.ID, r.now()); err != nil {
			r.logger().Warn("mark source scraped", "source", src.ID, "err", err)
		}
	}
	return res
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// describe joins the messages of nested application errors, e.g.
// "gave up after 3 attempts: fetch ...: relay: HTTP 503".
func describe(err error) string {
	msg := reelscout.ErrorMessage(err)
	var e *reelscout.Error
	if errors.As(err, &e) && e.Message != "" && e.Err != nil {
		var inner *reelscout.Error
		if errors.As(e.Err, &inner) {
			msg += ": " + describe(e.Err)
		}
	}
	return msg
}
