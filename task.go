package reelscout

import (
	"context"
	"encoding/json"
	"time"
)

// TaskStatus is the lifecycle state of a scrape task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// TaskAction is the adapter operation a task runs.
type TaskAction string

const (
	ActionScrape  TaskAction = "scrape"
	ActionSearch  TaskAction = "search"
	ActionDetails TaskAction = "details"
)

// TaskParams are the arguments of a task's action.
type TaskParams struct {
	Query   string `json:"query,omitempty"`
	ItemRef string `json:"item_ref,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// ScrapeTask is a deferred adapter invocation.
type ScrapeTask struct {
	ID        string          `json:"id"`
	SourceID  string          `json:"source_id"`
	Action    TaskAction      `json:"action"`
	Params    TaskParams      `json:"params"`
	Status    TaskStatus      `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate returns an error if the task cannot be run.
func (t *ScrapeTask) Validate() error {
	if t.SourceID == "" {
		return Errorf(EINVALID, "task source id required")
	}
	switch t.Action {
	case ActionScrape:
	case ActionSearch:
		if t.Params.Query == "" {
			return Errorf(EINVALID, "search task requires a query")
		}
	case ActionDetails:
		if t.Params.ItemRef == "" {
			return Errorf(EINVALID, "details task requires an item ref")
		}
	default:
		return Errorf(EINVALID, "unknown task action %q", t.Action)
	}
	if t.Params.Limit < 0 {
		return Errorf(EINVALID, "task limit must not be negative")
	}
	return nil
}

// TaskService persists scrape tasks and guards their state machine.
type TaskService interface {
	// CreateTask stores a new pending task and assigns its ID.
	CreateTask(ctx context.Context, task *ScrapeTask) error

	// FindTaskByID retrieves a task.
	// Returns ENOTFOUND if task does not exist.
	FindTaskByID(ctx context.Context, id string) (*ScrapeTask, error)

	// ClaimPendingTasks moves up to limit pending tasks, oldest first, to
	// processing and returns them. A task is returned by at most one claim.
	ClaimPendingTasks(ctx context.Context, limit int) ([]*ScrapeTask, error)

	// CompleteTask moves a processing task to completed with its result.
	// Returns EINVALID if the task is not processing.
	CompleteTask(ctx context.Context, id string, result json.RawMessage) error

	// FailTask moves a processing task to failed with an error message.
	// Returns EINVALID if the task is not processing.
	FailTask(ctx context.Context, id string, message string) error
}

// TaskQueue accepts tasks and processes them in batches.
type TaskQueue interface {
	Enqueue(ctx context.Context, task *ScrapeTask) (*ScrapeTask, error)
	ProcessPending(ctx context.Context, limit int) (*ProcessResult, error)
	GetStatus(ctx context.Context, id string) (*ScrapeTask, error)
}

// ProcessResult summarizes one ProcessPending call.
type ProcessResult struct {
	Claimed   int `json:"claimed"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}
