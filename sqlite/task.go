package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ reelscout.TaskService = (*TaskService)(nil)

// TaskService implements reelscout.TaskService using SQLite.
type TaskService struct {
	db *DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *DB) *TaskService {
	return &TaskService{db: db}
}

const taskColumns = `id, source_id, action, params, status, result, error, created_at, updated_at`

// CreateTask stores a new pending task.
func (s *TaskService) CreateTask(ctx context.Context, task *reelscout.ScrapeTask) error {
	if err := task.Validate(); err != nil {
		return err
	}

	params, err := marshalJSON(task.Params)
	if err != nil {
		return err
	}

	task.ID = uuid.New().String()
	task.Status = reelscout.TaskPending
	task.Result = nil
	task.Error = ""
	now := time.Now().UTC().Truncate(time.Second)
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scrape_tasks (id, source_id, action, params, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.SourceID, string(task.Action), params, string(task.Status),
		formatTime(task.CreatedAt), formatTime(task.UpdatedAt))
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "create task")
	}
	return nil
}

// FindTaskByID retrieves a task.
func (s *TaskService) FindTaskByID(ctx context.Context, id string) (*reelscout.ScrapeTask, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM scrape_tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, reelscout.Errorf(reelscout.ENOTFOUND, "task %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ClaimPendingTasks moves up to limit pending tasks to processing in a
// single conditional UPDATE, so concurrent claimers never share a task.
func (s *TaskService) ClaimPendingTasks(ctx context.Context, limit int) ([]*reelscout.ScrapeTask, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		UPDATE scrape_tasks
		SET status = ?, updated_at = ?
		WHERE id IN (
			SELECT id FROM scrape_tasks
			WHERE status = ?
			ORDER BY created_at ASC, rowid ASC
			LIMIT ?
		) AND status = ?
		RETURNING `+taskColumns,
		string(reelscout.TaskProcessing), formatTime(time.Now()),
		string(reelscout.TaskPending), limit, string(reelscout.TaskPending))
	if err != nil {
		return nil, reelscout.WrapError(reelscout.ESTORE, err, "claim tasks")
	}
	defer rows.Close()

	var tasks []*reelscout.ScrapeTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// CompleteTask moves a processing task to completed.
func (s *TaskService) CompleteTask(ctx context.Context, id string, result json.RawMessage) error {
	var stored any
	if len(result) > 0 {
		stored = string(result)
	}
	return s.finish(ctx, id, reelscout.TaskCompleted, stored, "")
}

// FailTask moves a processing task to failed.
func (s *TaskService) FailTask(ctx context.Context, id string, message string) error {
	return s.finish(ctx, id, reelscout.TaskFailed, nil, message)
}

func (s *TaskService) finish(ctx context.Context, id string, status reelscout.TaskStatus, result any, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE scrape_tasks
		SET status = ?, result = ?, error = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(status), result, message, formatTime(time.Now()), id, string(reelscout.TaskProcessing))
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "finish task %q", id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.FindTaskByID(ctx, id); err != nil {
			return err
		}
		return reelscout.Errorf(reelscout.EINVALID, "task %q is not processing", id)
	}
	return nil
}

func scanTask(row scanner) (*reelscout.ScrapeTask, error) {
	var task reelscout.ScrapeTask
	var action, params, status, createdAt, updatedAt string
	var result sql.NullString

	if err := row.Scan(&task.ID, &task.SourceID, &action, &params, &status, &result, &task.Error,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	task.Action = reelscout.TaskAction(action)
	task.Status = reelscout.TaskStatus(status)
	if err := unmarshalJSON(params, "params", &task.Params); err != nil {
		return nil, err
	}
	if result.Valid && result.String != "" {
		task.Result = json.RawMessage(result.String)
	}

	var err error
	if task.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &task, nil
}
