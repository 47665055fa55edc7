package reelscout

import (
	"context"
	"time"
)

// SessionStatus is the state of a scraping session or scheduled run.
type SessionStatus string

const (
	SessionStarted   SessionStatus = "started"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// ScrapingSession aggregates one batch scrape across sources.
type ScrapingSession struct {
	ID          string        `json:"id"`
	Status      SessionStatus `json:"status"`
	ItemsCount  int           `json:"items_count"`
	ErrorsCount int           `json:"errors_count"`
	DurationMs  int64         `json:"duration_ms"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
}

// ScrapingSourceLog is the per-source outcome within a session.
type ScrapingSourceLog struct {
	SessionID   string `json:"session_id"`
	SourceID    string `json:"source_id"`
	Success     bool   `json:"success"`
	ItemsCount  int    `json:"items_count"`
	ErrorsCount int    `json:"errors_count"`
	DurationMs  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}

// ScrapingError records an error raised during a session.
// SourceID is empty for session-level failures.
type ScrapingError struct {
	SessionID  string    `json:"session_id"`
	SourceID   string    `json:"source_id,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ExecutionKind names a scheduled job.
type ExecutionKind string

const (
	ExecutionScrape          ExecutionKind = "scrape"
	ExecutionRecommendations ExecutionKind = "recommendations"
	ExecutionTasks           ExecutionKind = "tasks"
)

// ScheduledExecution records one run of a scheduled job.
type ScheduledExecution struct {
	ID         string        `json:"id"`
	Kind       ExecutionKind `json:"kind"`
	Status     SessionStatus `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Details    string        `json:"details,omitempty"`
}

// MonitorService persists scraping telemetry.
type MonitorService interface {
	// StartSession stores a new started session and assigns its ID.
	StartSession(ctx context.Context, session *ScrapingSession) error

	// FinishSession stores the final status and totals of a session.
	FinishSession(ctx context.Context, session *ScrapingSession) error

	// LogSource stores the outcome of one source within a session.
	LogSource(ctx context.Context, log *ScrapingSourceLog) error

	// LogError stores an error raised during a session.
	LogError(ctx context.Context, e *ScrapingError) error

	// FindSessions returns the most recent sessions first.
	FindSessions(ctx context.Context, limit int) ([]*ScrapingSession, error)

	// FindSourceLogs returns the per-source logs of a session.
	FindSourceLogs(ctx context.Context, sessionID string) ([]*ScrapingSourceLog, error)

	// StartExecution stores a new started execution and assigns its ID.
	StartExecution(ctx context.Context, exec *ScheduledExecution) error

	// FinishExecution stores the final status of an execution.
	FinishExecution(ctx context.Context, exec *ScheduledExecution) error
}
