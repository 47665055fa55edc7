package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.TaskService = (*TaskService)(nil)

// TaskService is a mock implementation of reelscout.TaskService.
type TaskService struct {
	CreateTaskFn        func(ctx context.Context, task *reelscout.ScrapeTask) error
	FindTaskByIDFn      func(ctx context.Context, id string) (*reelscout.ScrapeTask, error)
	ClaimPendingTasksFn func(ctx context.Context, limit int) ([]*reelscout.ScrapeTask, error)
	CompleteTaskFn      func(ctx context.Context, id string, result json.RawMessage) error
	FailTaskFn          func(ctx context.Context, id string, message string) error
}

func (s *TaskService) CreateTask(ctx context.Context, task *reelscout.ScrapeTask) error {
	return s.CreateTaskFn(ctx, task)
}

func (s *TaskService) FindTaskByID(ctx context.Context, id string) (*reelscout.ScrapeTask, error) {
	return s.FindTaskByIDFn(ctx, id)
}

func (s *TaskService) ClaimPendingTasks(ctx context.Context, limit int) ([]*reelscout.ScrapeTask, error) {
	return s.ClaimPendingTasksFn(ctx, limit)
}

func (s *TaskService) CompleteTask(ctx context.Context, id string, result json.RawMessage) error {
	return s.CompleteTaskFn(ctx, id, result)
}

func (s *TaskService) FailTask(ctx context.Context, id string, message string) error {
	return s.FailTaskFn(ctx, id, message)
}

var _ reelscout.TaskQueue = (*TaskQueue)(nil)

// TaskQueue is a mock implementation of reelscout.TaskQueue.
type TaskQueue struct {
	EnqueueFn        func(ctx context.Context, task *reelscout.ScrapeTask) (*reelscout.ScrapeTask, error)
	ProcessPendingFn func(ctx context.Context, limit int) (*reelscout.ProcessResult, error)
	GetStatusFn      func(ctx context.Context, id string) (*reelscout.ScrapeTask, error)
}

func (q *TaskQueue) Enqueue(ctx context.Context, task *reelscout.ScrapeTask) (*reelscout.ScrapeTask, error) {
	return q.EnqueueFn(ctx, task)
}

func (q *TaskQueue) ProcessPending(ctx context.Context, limit int) (*reelscout.ProcessResult, error) {
	return q.ProcessPendingFn(ctx, limit)
}

func (q *TaskQueue) GetStatus(ctx context.Context, id string) (*reelscout.ScrapeTask, error) {
	return q.GetStatusFn(ctx, id)
}
