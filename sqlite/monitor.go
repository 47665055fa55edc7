package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ reelscout.MonitorService = (*MonitorService)(nil)

// MonitorService implements reelscout.MonitorService using SQLite.
type MonitorService struct {
	db *DB
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(db *DB) *MonitorService {
	return &MonitorService{db: db}
}

// StartSession stores a new started session.
func (s *MonitorService) StartSession(ctx context.Context, session *reelscout.ScrapingSession) error {
	session.ID = uuid.New().String()
	session.Status = reelscout.SessionStarted
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scraping_sessions (id, status, started_at) VALUES (?, ?, ?)
	`, session.ID, string(session.Status), formatTime(session.StartedAt))
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "start session")
	}
	return nil
}

// FinishSession stores the final status and totals of a session.
func (s *MonitorService) FinishSession(ctx context.Context, session *reelscout.ScrapingSession) error {
	if session.FinishedAt == nil {
		now := time.Now().UTC()
		session.FinishedAt = &now
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE scraping_sessions
		SET status = ?, items_count = ?, errors_count = ?, duration_ms = ?, finished_at = ?
		WHERE id = ?
	`, string(session.Status), session.ItemsCount, session.ErrorsCount, session.DurationMs,
		nullTime(session.FinishedAt), session.ID)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "finish session %q", session.ID)
	}
	return requireRow(res, "session", session.ID)
}

// LogSource stores the outcome of one source within a session.
func (s *MonitorService) LogSource(ctx context.Context, log *reelscout.ScrapingSourceLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scraping_source_logs (session_id, source_id, success, items_count, errors_count, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.SessionID, log.SourceID, log.Success, log.ItemsCount, log.ErrorsCount, log.DurationMs, log.Error)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "log source %q", log.SourceID)
	}
	return nil
}

// LogError stores an error raised during a session.
func (s *MonitorService) LogError(ctx context.Context, e *reelscout.ScrapingError) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scraping_errors (session_id, source_id, message, occurred_at)
		VALUES (?, ?, ?, ?)
	`, e.SessionID, e.SourceID, e.Message, formatTime(e.OccurredAt))
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "log scraping error")
	}
	return nil
}

// FindSessions returns the most recent sessions first.
func (s *MonitorService) FindSessions(ctx context.Context, limit int) ([]*reelscout.ScrapingSession, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, items_count, errors_count, duration_ms, started_at, finished_at
		FROM scraping_sessions
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*reelscout.ScrapingSession
	for rows.Next() {
		var session reelscout.ScrapingSession
		var status, startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&session.ID, &status, &session.ItemsCount, &session.ErrorsCount,
			&session.DurationMs, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		session.Status = reelscout.SessionStatus(status)
		if session.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if session.FinishedAt, err = parseNullTime(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

// FindSourceLogs returns the per-source logs of a session in insertion order.
func (s *MonitorService) FindSourceLogs(ctx context.Context, sessionID string) ([]*reelscout.ScrapingSourceLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, source_id, success, items_count, errors_count, duration_ms, error
		FROM scraping_source_logs
		WHERE session_id = ?
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*reelscout.ScrapingSourceLog
	for rows.Next() {
		var log reelscout.ScrapingSourceLog
		if err := rows.Scan(&log.SessionID, &log.SourceID, &log.Success, &log.ItemsCount,
			&log.ErrorsCount, &log.DurationMs, &log.Error); err != nil {
			return nil, err
		}
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

// StartExecution stores a new started execution.
func (s *MonitorService) StartExecution(ctx context.Context, exec *reelscout.ScheduledExecution) error {
	exec.ID = uuid.New().String()
	exec.Status = reelscout.SessionStarted
	if exec.StartedAt.IsZero() {
		exec.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_executions (id, kind, status, started_at, details) VALUES (?, ?, ?, ?, ?)
	`, exec.ID, string(exec.Kind), string(exec.Status), formatTime(exec.StartedAt), exec.Details)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "start execution")
	}
	return nil
}

// FinishExecution stores the final status of an execution.
func (s *MonitorService) FinishExecution(ctx context.Context, exec *reelscout.ScheduledExecution) error {
	if exec.FinishedAt == nil {
		now := time.Now().UTC()
		exec.FinishedAt = &now
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_executions SET status = ?, finished_at = ?, details = ? WHERE id = ?
	`, string(exec.Status), nullTime(exec.FinishedAt), exec.Details, exec.ID)
	if err != nil {
		return reelscout.WrapError(reelscout.ESTORE, err, "finish execution %q", exec.ID)
	}
	return requireRow(res, "execution", exec.ID)
}

// requireRow returns ENOTFOUND when an UPDATE touched no rows.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return reelscout.Errorf(reelscout.ENOTFOUND, "%s %q not found", kind, id)
	}
	return nil
}
