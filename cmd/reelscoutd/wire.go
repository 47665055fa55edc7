package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/badger"
	reelchi "github.com/fwojciec/reelscout/chi"
	"github.com/fwojciec/reelscout/gobreaker"
	"github.com/fwojciec/reelscout/goquery"
	"github.com/fwojciec/reelscout/htmltomarkdown"
	reelhttp "github.com/fwojciec/reelscout/http"
	reelprom "github.com/fwojciec/reelscout/prometheus"
	"github.com/fwojciec/reelscout/queue"
	"github.com/fwojciec/reelscout/recommend"
	"github.com/fwojciec/reelscout/rod"
	"github.com/fwojciec/reelscout/schedule"
	"github.com/fwojciec/reelscout/scrape"
	reelslog "github.com/fwojciec/reelscout/slog"
	"github.com/fwojciec/reelscout/sqlite"
	"github.com/fwojciec/reelscout/trafilatura"
	"github.com/prometheus/client_golang/prometheus"
)

// wire opens storage, seeds the source registry and builds every service
// into deps. scraping enables the browser backend.
func (m *Main) wire(ctx context.Context, deps *Dependencies, logger *slog.Logger, scraping bool) error {
	cfg := m.Config
	deps.Config = cfg
	deps.Logger = logger

	m.DB = sqlite.NewDB(cfg.Database.Path)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", cfg.Database.Path, err)
	}

	m.Cache = badger.NewCache(cfg.Cache.Path)
	if err := m.Cache.Open(); err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	metrics := reelprom.NewMetrics(prometheus.NewRegistry())
	cache := metrics.NewCache(reelslog.NewLoggingCache(m.Cache, logger))

	sources := sqlite.NewSourceService(m.DB)
	contents := sqlite.NewContentService(m.DB)
	monitor := sqlite.NewMonitorService(m.DB)

	registered := mergeSources(builtinSources(), cfg.Sources)
	for _, src := range registered {
		if err := src.Validate(); err != nil {
			return err
		}
		if err := sources.UpsertSource(ctx, src); err != nil {
			return fmt.Errorf("failed to register source %s: %w", src.ID, err)
		}
	}

	fetcher, err := newFetcher(cfg.Fetch, metrics, logger, scraping)
	if err != nil {
		return err
	}
	m.Fetcher = fetcher

	extractor := goquery.NewExtractor(
		goquery.WithConverter(htmltomarkdown.NewConverter()),
		goquery.WithSynopsis(trafilatura.NewExtractor()),
	)
	limiter := scrape.NewDomainLimiter(cfg.Scrape.RateLimit)

	base := scrape.NewRegistry(registered, func(src *reelscout.Source) reelscout.SourceAdapter {
		a := scrape.NewAdapter(src, fetcher, extractor, scrape.WithLimiter(limiter))
		return metrics.NewAdapter(reelslog.NewLoggingAdapter(a, logger))
	})

	retrier := &scrape.Retrier{
		MaxRetries: cfg.Scrape.MaxRetries,
		BaseDelay:  cfg.Scrape.BaseDelay,
		Jitter:     cfg.Scrape.Jitter,
		Logger:     logger,
	}

	// Batch runs retry at the source level; on-demand tasks retry and
	// cache per adapter call.
	runner := &scrape.Runner{
		Registry:    base,
		Contents:    contents,
		Sources:     sources,
		Retrier:     retrier,
		Concurrency: cfg.Scrape.Concurrency,
		Limit:       cfg.Scrape.Limit,
		Logger:      logger,
	}
	cached := base.Wrap(func(next reelscout.SourceAdapter) reelscout.SourceAdapter {
		return scrape.NewCachedAdapter(scrape.NewRetryingAdapter(next, retrier), cache, logger)
	})

	tasks := &queue.Manager{
		Tasks:       sqlite.NewTaskService(m.DB),
		Sources:     sources,
		Contents:    contents,
		Registry:    cached,
		Concurrency: cfg.Scrape.Concurrency,
		Logger:      logger,
	}

	strategy, err := recommend.NewStrategy(cfg.Recommend.Strategy, cfg.Recommend.TargetYearWindow)
	if err != nil {
		return err
	}
	users := recommend.NewCachedUsers(sqlite.NewUserService(m.DB), cache, logger)
	engine := recommend.NewEngine(contents, users, sqlite.NewRecommendationService(m.DB),
		recommend.WithStrategy(strategy),
		recommend.WithCache(cache),
		recommend.WithLogger(logger),
	)

	scheduler := schedule.NewScheduler(runner, monitor, users, engine, tasks, schedule.Config{
		ScrapeInterval: cfg.Schedule.ScrapeInterval,
		TaskInterval:   cfg.Schedule.TaskInterval,
		TaskBatch:      cfg.Schedule.TaskBatch,
		ActiveWindow:   cfg.Schedule.ActiveWindow,
		RefreshWorkers: cfg.Schedule.RefreshWorkers,
	}, logger)

	server := reelchi.NewServer(reelchi.Config{
		Addr:       cfg.Server.Addr,
		APIKey:     cfg.Server.APIKey,
		RateLimit:  cfg.Server.RateLimit,
		Logger:     logger,
		Instrument: metrics.Middleware,
		Metrics:    metrics.Handler(),
	})
	server.Recommender = engine
	server.Contents = contents
	server.Sources = sources
	server.Users = users
	server.Queue = tasks
	server.Scraper = runner
	server.DB = m.DB

	deps.Sources = sources
	deps.Contents = contents
	deps.Monitor = monitor
	deps.Recommender = engine
	deps.Runner = runner
	deps.Queue = tasks
	deps.Scheduler = scheduler
	deps.Server = server
	return nil
}

// newFetcher builds the relay backend and, when configured, an enhanced
// backend behind a circuit breaker that the relay falls back from.
func newFetcher(cfg FetchConfig, metrics *reelprom.Metrics, logger *slog.Logger, scraping bool) (reelscout.Fetcher, error) {
	opts := []reelhttp.Option{reelhttp.WithTimeout(cfg.Timeout)}
	if cfg.UserAgent != "" {
		opts = append(opts, reelhttp.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Relay.URL != "" {
		opts = append(opts, reelhttp.WithRelay(cfg.Relay.URL))
	}
	relay := instrument(reelhttp.NewFetcher(opts...), "relay", metrics, logger)

	var enhanced reelscout.Fetcher
	switch cfg.Enhanced.Mode {
	case "browser":
		if !scraping {
			break
		}
		manager, err := rod.NewBrowserManager(
			rod.WithMaxPages(cfg.Enhanced.MaxPages),
			rod.WithProxy(cfg.Enhanced.Proxy),
			rod.WithLogger(logger.With("component", "chrome")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (is Chrome installed?): %w", err)
		}
		enhanced = rod.NewFetcher(manager,
			rod.WithFetchTimeout(cfg.Timeout),
			rod.WithUserAgent(cfg.UserAgent),
		)
	case "render":
		enhanced = reelhttp.NewRenderAPIFetcher(cfg.Enhanced.APIURL, cfg.Enhanced.APIKey,
			reelhttp.WithRenderTimeout(cfg.Enhanced.Timeout),
		)
	}

	if enhanced != nil {
		enhanced = gobreaker.NewFetcher(instrument(enhanced, cfg.Enhanced.Mode, metrics, logger), gobreaker.Config{
			Name:     cfg.Enhanced.Mode,
			Failures: cfg.Breaker.Failures,
			Timeout:  cfg.Breaker.Timeout,
			Logger:   logger,
		})
	}

	return scrape.NewFallbackFetcher(enhanced, relay, scrape.WithEnhancedTimeout(cfg.Enhanced.Timeout)), nil
}

func instrument(f reelscout.Fetcher, backend string, metrics *reelprom.Metrics, logger *slog.Logger) reelscout.Fetcher {
	return metrics.NewFetcher(reelslog.NewLoggingFetcher(f, backend, logger), backend)
}
