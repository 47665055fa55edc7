// Package queue runs deferred adapter operations stored as scrape tasks.
package queue

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// Defaults for processing.
const (
	DefaultBatch       = 10
	DefaultConcurrency = 2

	// FinishTimeout bounds the write of a task's terminal state, which
	// outlives cancellation of the processing context.
	FinishTimeout = 5 * time.Second
)

var _ reelscout.TaskQueue = (*Manager)(nil)

// Manager validates and stores tasks, and processes claimed tasks through
// the adapter registry.
type Manager struct {
	Tasks       reelscout.TaskService
	Sources     reelscout.SourceService
	Contents    reelscout.ContentService
	Registry    reelscout.AdapterRegistry
	Concurrency int
	Logger      *slog.Logger
}

// Result is the JSON document stored on a completed task.
type Result struct {
	Count int                      `json:"count"`
	Items []*reelscout.ContentItem `json:"items,omitempty"`
	Item  *reelscout.ContentItem   `json:"item,omitempty"`
}

// Enqueue validates task and stores it as pending. The source must exist
// and be active.
func (m *Manager) Enqueue(ctx context.Context, task *reelscout.ScrapeTask) (*reelscout.ScrapeTask, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	src, err := m.Sources.FindSourceByID(ctx, task.SourceID)
	if err != nil {
		return nil, err
	}
	if !src.IsActive {
		return nil, reelscout.Errorf(reelscout.EINVALID, "source %q is not active", src.ID)
	}

	if err := m.Tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	m.logger().Info("task enqueued", "task", task.ID, "source", task.SourceID, "action", task.Action)
	return task, nil
}

// ProcessPending claims up to limit tasks and runs them concurrently.
// A task failure is recorded on the task and never fails the batch.
func (m *Manager) ProcessPending(ctx context.Context, limit int) (*reelscout.ProcessResult, error) {
	if limit <= 0 {
		limit = DefaultBatch
	}

	tasks, err := m.Tasks.ClaimPendingTasks(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := &reelscout.ProcessResult{Claimed: len(tasks)}
	if len(tasks) == 0 {
		return res, nil
	}

	concurrency := m.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var completed, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, task := range tasks {
		g.Go(func() error {
			if m.process(gctx, task) {
				completed.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	res.Completed = int(completed.Load())
	res.Failed = int(failed.Load())
	return res, nil
}

// GetStatus returns a task by ID.
func (m *Manager) GetStatus(ctx context.Context, id string) (*reelscout.ScrapeTask, error) {
	return m.Tasks.FindTaskByID(ctx, id)
}

// process runs one claimed task and records its terminal state. A cancelled
// ctx fails the task instead of leaving it processing.
func (m *Manager) process(ctx context.Context, task *reelscout.ScrapeTask) bool {
	result, err := m.execute(ctx, task)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FinishTimeout)
	defer cancel()

	if err == nil {
		var raw []byte
		raw, err = json.Marshal(result)
		if err == nil {
			err = m.Tasks.CompleteTask(ctx, task.ID, raw)
			if err == nil {
				return true
			}
			m.logger().Error("complete task", "task", task.ID, "err", err)
			return false
		}
	}

	m.logger().Warn("task failed", "task", task.ID, "source", task.SourceID, "action", task.Action, "err", err)
	if ferr := m.Tasks.FailTask(ctx, task.ID, reelscout.ErrorMessage(err)); ferr != nil {
		m.logger().Error("fail task", "task", task.ID, "err", ferr)
	}
	return false
}

func (m *Manager) execute(ctx context.Context, task *reelscout.ScrapeTask) (*Result, error) {
	adapter, err := m.Registry.Adapter(task.SourceID)
	if err != nil {
		return nil, err
	}

	switch task.Action {
	case reelscout.ActionScrape:
		items, err := adapter.ScrapeList(ctx, task.Params.Limit)
		if err != nil {
			return nil, err
		}
		return m.store(ctx, items)
	case reelscout.ActionSearch:
		items, err := adapter.Search(ctx, task.Params.Query, task.Params.Limit)
		if err != nil {
			return nil, err
		}
		return m.store(ctx, items)
	case reelscout.ActionDetails:
		item, err := adapter.GetDetails(ctx, task.Params.ItemRef)
		if err != nil {
			return nil, err
		}
		if err := m.Contents.UpsertContents(ctx, []*reelscout.ContentItem{item}); err != nil {
			return nil, err
		}
		return &Result{Count: 1, Item: item}, nil
	default:
		return nil, reelscout.Errorf(reelscout.EINVALID, "unknown task action %q", task.Action)
	}
}

func (m *Manager) store(ctx context.Context, items []*reelscout.ContentItem) (*Result, error) {
	if len(items) > 0 {
		if err := m.Contents.UpsertContents(ctx, items); err != nil {
			return nil, err
		}
	}
	return &Result{Count: len(items), Items: items}, nil
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.New(slog.DiscardHandler)
}
