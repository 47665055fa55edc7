// Package gobreaker guards a reelscout.Fetcher with a circuit breaker so a
// dead backend is skipped quickly instead of timing out on every request.
package gobreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/sony/gobreaker/v2"
)

// Defaults for a Fetcher breaker.
const (
	DefaultFailures = 5
	DefaultTimeout  = time.Minute
)

var _ reelscout.Fetcher = (*Fetcher)(nil)

// Fetcher opens after a run of consecutive failures and rejects requests
// with EFETCH until Timeout elapses, then lets one probe through.
type Fetcher struct {
	next reelscout.Fetcher
	cb   *gobreaker.CircuitBreaker[string]
}

// Config configures a Fetcher.
type Config struct {
	// Name identifies the breaker in logs.
	Name string
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// Logger receives state transitions. Optional.
	Logger *slog.Logger
}

// NewFetcher wraps next with a circuit breaker.
func NewFetcher(next reelscout.Fetcher, cfg Config) *Fetcher {
	if cfg.Failures == 0 {
		cfg.Failures = DefaultFailures
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Name == "" {
		cfg.Name = "fetch"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// Caller cancellation says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Fetcher{next: next, cb: cb}
}

// Fetch delegates to the wrapped fetcher unless the breaker is open.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, err := f.cb.Execute(func() (string, error) {
		return f.next.Fetch(ctx, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", reelscout.WrapError(reelscout.EFETCH, err, "%s backend unavailable", f.cb.Name())
	}
	return html, err
}

// State reports the breaker state: closed, half-open or open.
func (f *Fetcher) State() string {
	return f.cb.State().String()
}

// Close delegates to the wrapped fetcher.
func (f *Fetcher) Close() error {
	return f.next.Close()
}
