// Package schedule runs the periodic scrape, recommendation refresh and task
// processing jobs and records their outcomes.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/scrape"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
)

// Default intervals and bounds.
const (
	DefaultScrapeInterval = 6 * time.Hour
	DefaultTaskInterval   = 30 * time.Second
	DefaultTaskBatch      = 10
	DefaultActiveWindow   = 30 * 24 * time.Hour
	DefaultRefreshWorkers = 4

	// RecordTimeout bounds monitor writes made after a job's context is done.
	RecordTimeout = 5 * time.Second
)

// Scraper runs a scrape across sources.
type Scraper interface {
	Run(ctx context.Context, opts scrape.RunOptions) ([]*scrape.SourceResult, error)
}

// Config tunes the scheduler. Zero values use the defaults.
type Config struct {
	ScrapeInterval time.Duration
	TaskInterval   time.Duration
	TaskBatch      int
	ActiveWindow   time.Duration
	RefreshWorkers int
}

// Scheduler is a suture.Service driving the periodic jobs.
type Scheduler struct {
	scraper     Scraper
	monitor     reelscout.MonitorService
	users       reelscout.UserService
	recommender reelscout.Recommender
	queue       reelscout.TaskQueue
	config      Config
	logger      *slog.Logger
	now         func() time.Time
}

// NewScheduler creates a Scheduler. A nil queue disables the tasks job.
func NewScheduler(scraper Scraper, monitor reelscout.MonitorService, users reelscout.UserService, recommender reelscout.Recommender, queue reelscout.TaskQueue, config Config, logger *slog.Logger) *Scheduler {
	if config.ScrapeInterval <= 0 {
		config.ScrapeInterval = DefaultScrapeInterval
	}
	if config.TaskInterval <= 0 {
		config.TaskInterval = DefaultTaskInterval
	}
	if config.TaskBatch <= 0 {
		config.TaskBatch = DefaultTaskBatch
	}
	if config.ActiveWindow <= 0 {
		config.ActiveWindow = DefaultActiveWindow
	}
	if config.RefreshWorkers <= 0 {
		config.RefreshWorkers = DefaultRefreshWorkers
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		scraper:     scraper,
		monitor:     monitor,
		users:       users,
		recommender: recommender,
		queue:       queue,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// Serve implements suture.Service. It blocks until ctx is cancelled.
func (s *Scheduler) Serve(ctx context.Context) error {
	var wg conc.WaitGroup
	wg.Go(func() {
		s.every(ctx, s.config.ScrapeInterval, func(ctx context.Context) {
			if _, err := s.Scrape(ctx); err != nil {
				s.logger.Error("scheduled scrape failed", "err", err)
			}
		})
	})
	if s.queue != nil {
		wg.Go(func() {
			s.every(ctx, s.config.TaskInterval, func(ctx context.Context) {
				if _, err := s.ProcessTasks(ctx); err != nil {
					s.logger.Error("scheduled task processing failed", "err", err)
				}
			})
		})
	}
	wg.Wait()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *Scheduler) String() string {
	return "scheduler"
}

// every runs job at once and then on each tick of interval.
func (s *Scheduler) every(ctx context.Context, interval time.Duration, job func(context.Context)) {
	if ctx.Err() != nil {
		return
	}
	job(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

// Scrape runs one scraping session over all active sources and then
// refreshes recommendations of active users.
func (s *Scheduler) Scrape(ctx context.Context) (*reelscout.ScrapingSession, error) {
	exec := s.startExecution(ctx, reelscout.ExecutionScrape)

	session := &reelscout.ScrapingSession{StartedAt: s.now().UTC()}
	if err := s.monitor.StartSession(ctx, session); err != nil {
		s.logger.Warn("start session", "err", err)
	}

	results, err := s.scraper.Run(ctx, scrape.RunOptions{})
	for _, res := range results {
		if res == nil {
			continue
		}
		s.recordSource(ctx, session.ID, res)
		if res.Success {
			session.ItemsCount += res.Count
		} else {
			session.ErrorsCount++
		}
	}
	session.DurationMs = s.now().Sub(session.StartedAt).Milliseconds()

	if err != nil {
		session.Status = reelscout.SessionFailed
		s.logError(ctx, &reelscout.ScrapingError{SessionID: session.ID, Message: reelscout.ErrorMessage(err)})
		s.finishSession(ctx, session)
		s.finishExecution(ctx, exec, reelscout.SessionFailed, reelscout.ErrorMessage(err))
		return session, err
	}

	session.Status = reelscout.SessionCompleted
	s.finishSession(ctx, session)
	s.finishExecution(ctx, exec, reelscout.SessionCompleted,
		fmt.Sprintf("%d items from %d sources, %d failed", session.ItemsCount, len(results), session.ErrorsCount))
	s.logger.Info("scrape session finished",
		"session", session.ID,
		"items", session.ItemsCount,
		"errors", session.ErrorsCount,
		"duration", time.Duration(session.DurationMs)*time.Millisecond)

	if _, err := s.RefreshRecommendations(ctx); err != nil {
		s.logger.Error("refresh recommendations", "err", err)
	}
	return session, nil
}

// RefreshRecommendations recomputes recommendations for users active within
// the configured window. Per-user failures are logged and counted.
func (s *Scheduler) RefreshRecommendations(ctx context.Context) (refreshed int, err error) {
	exec := s.startExecution(ctx, reelscout.ExecutionRecommendations)

	users, err := s.users.FindActiveUsers(ctx, s.now().Add(-s.config.ActiveWindow))
	if err != nil {
		s.finishExecution(ctx, exec, reelscout.SessionFailed, reelscout.ErrorMessage(err))
		return 0, err
	}

	var ok atomic.Int32
	p := pool.New().WithMaxGoroutines(s.config.RefreshWorkers)
	for _, userID := range users {
		p.Go(func() {
			if _, err := s.recommender.Refresh(ctx, userID, reelscout.RecommendOptions{}); err != nil {
				s.logger.Warn("refresh user recommendations", "user", userID, "err", err)
				return
			}
			ok.Add(1)
		})
	}
	p.Wait()

	refreshed = int(ok.Load())
	s.finishExecution(ctx, exec, reelscout.SessionCompleted, fmt.Sprintf("refreshed %d of %d users", refreshed, len(users)))
	return refreshed, nil
}

// ProcessTasks processes one batch of pending tasks.
func (s *Scheduler) ProcessTasks(ctx context.Context) (*reelscout.ProcessResult, error) {
	exec := s.startExecution(ctx, reelscout.ExecutionTasks)

	res, err := s.queue.ProcessPending(ctx, s.config.TaskBatch)
	if err != nil {
		s.finishExecution(ctx, exec, reelscout.SessionFailed, reelscout.ErrorMessage(err))
		return nil, err
	}

	s.finishExecution(ctx, exec, reelscout.SessionCompleted,
		fmt.Sprintf("claimed %d, completed %d, failed %d", res.Claimed, res.Completed, res.Failed))
	return res, nil
}

// record detaches monitor writes from ctx so a shutdown mid-job still
// closes its session and execution rows.
func record(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), RecordTimeout)
}

func (s *Scheduler) recordSource(ctx context.Context, sessionID string, res *scrape.SourceResult) {
	ctx, cancel := record(ctx)
	defer cancel()

	log := &reelscout.ScrapingSourceLog{
		SessionID:  sessionID,
		SourceID:   res.SourceID,
		Success:    res.Success,
		ItemsCount: res.Count,
		DurationMs: res.Duration.Milliseconds(),
		Error:      res.Error,
	}
	if !res.Success {
		log.ErrorsCount = 1
		s.logError(ctx, &reelscout.ScrapingError{SessionID: sessionID, SourceID: res.SourceID, Message: res.Error})
	}
	if err := s.monitor.LogSource(ctx, log); err != nil {
		s.logger.Warn("log source", "session", sessionID, "source", res.SourceID, "err", err)
	}
}

func (s *Scheduler) logError(ctx context.Context, e *reelscout.ScrapingError) {
	ctx, cancel := record(ctx)
	defer cancel()

	e.OccurredAt = s.now().UTC()
	if err := s.monitor.LogError(ctx, e); err != nil {
		s.logger.Warn("log scraping error", "session", e.SessionID, "err", err)
	}
}

func (s *Scheduler) finishSession(ctx context.Context, session *reelscout.ScrapingSession) {
	ctx, cancel := record(ctx)
	defer cancel()

	finished := s.now().UTC()
	session.FinishedAt = &finished
	if err := s.monitor.FinishSession(ctx, session); err != nil {
		s.logger.Warn("finish session", "session", session.ID, "err", err)
	}
}

func (s *Scheduler) startExecution(ctx context.Context, kind reelscout.ExecutionKind) *reelscout.ScheduledExecution {
	exec := &reelscout.ScheduledExecution{Kind: kind, StartedAt: s.now().UTC()}
	if err := s.monitor.StartExecution(ctx, exec); err != nil {
		s.logger.Warn("start execution", "kind", kind, "err", err)
	}
	return exec
}

func (s *Scheduler) finishExecution(ctx context.Context, exec *reelscout.ScheduledExecution, status reelscout.SessionStatus, details string) {
	ctx, cancel := record(ctx)
	defer cancel()

	finished := s.now().UTC()
	exec.Status = status
	exec.FinishedAt = &finished
	exec.Details = details
	if err := s.monitor.FinishExecution(ctx, exec); err != nil {
		s.logger.Warn("finish execution", "kind", exec.Kind, "err", err)
	}
}
