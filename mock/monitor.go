package mock

import (
	"context"

	"github.com/fwojciec/reelscout"
)

var _ reelscout.MonitorService = (*MonitorService)(nil)

// MonitorService is a mock implementation of reelscout.MonitorService.
type MonitorService struct {
	StartSessionFn    func(ctx context.Context, session *reelscout.ScrapingSession) error
	FinishSessionFn   func(ctx context.Context, session *reelscout.ScrapingSession) error
	LogSourceFn       func(ctx context.Context, log *reelscout.ScrapingSourceLog) error
	LogErrorFn        func(ctx context.Context, e *reelscout.ScrapingError) error
	FindSessionsFn    func(ctx context.Context, limit int) ([]*reelscout.ScrapingSession, error)
	FindSourceLogsFn  func(ctx context.Context, sessionID string) ([]*reelscout.ScrapingSourceLog, error)
	StartExecutionFn  func(ctx context.Context, exec *reelscout.ScheduledExecution) error
	FinishExecutionFn func(ctx context.Context, exec *reelscout.ScheduledExecution) error
}

func (s *MonitorService) StartSession(ctx context.Context, session *reelscout.ScrapingSession) error {
	return s.StartSessionFn(ctx, session)
}

func (s *MonitorService) FinishSession(ctx context.Context, session *reelscout.ScrapingSession) error {
	return s.FinishSessionFn(ctx, session)
}

func (s *MonitorService) LogSource(ctx context.Context, log *reelscout.ScrapingSourceLog) error {
	return s.LogSourceFn(ctx, log)
}

func (s *MonitorService) LogError(ctx context.Context, e *reelscout.ScrapingError) error {
	return s.LogErrorFn(ctx, e)
}

func (s *MonitorService) FindSessions(ctx context.Context, limit int) ([]*reelscout.ScrapingSession, error) {
	return s.FindSessionsFn(ctx, limit)
}

func (s *MonitorService) FindSourceLogs(ctx context.Context, sessionID string) ([]*reelscout.ScrapingSourceLog, error) {
	return s.FindSourceLogsFn(ctx, sessionID)
}

func (s *MonitorService) StartExecution(ctx context.Context, exec *reelscout.ScheduledExecution) error {
	return s.StartExecutionFn(ctx, exec)
}

func (s *MonitorService) FinishExecution(ctx context.Context, exec *reelscout.ScheduledExecution) error {
	return s.FinishExecutionFn(ctx, exec)
}
