// Package chi serves the reelscout HTTP API.
package chi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/scrape"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
)

// Server defaults.
const (
	DefaultAddr            = ":8080"
	DefaultRateLimit       = 120
	DefaultShutdownTimeout = 10 * time.Second
)

// Scraper runs an on-demand scrape.
type Scraper interface {
	Run(ctx context.Context, opts scrape.RunOptions) ([]*scrape.SourceResult, error)
}

// Pinger reports database liveness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config holds the transport settings of a Server.
type Config struct {
	Addr            string
	APIKey          string
	RateLimit       int // requests per minute per IP; negative disables
	ShutdownTimeout time.Duration
	Logger          *slog.Logger

	// Instrument wraps every request, e.g. with metrics collection.
	Instrument func(http.Handler) http.Handler
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// Server is the HTTP API. Services are assigned after NewServer and before
// the first request.
type Server struct {
	server   *http.Server
	router   chi.Router
	config   Config
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time

	Recommender reelscout.Recommender
	Contents    reelscout.ContentService
	Sources     reelscout.SourceService
	Users       reelscout.UserService
	Queue       reelscout.TaskQueue
	Scraper     Scraper
	DB          Pinger
}

// NewServer builds the router for config.
func NewServer(config Config) *Server {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.RateLimit == 0 {
		config.RateLimit = DefaultRateLimit
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		config:   config,
		logger:   config.Logger,
		validate: validator.New(),
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type", "X-API-Key", "X-User-ID", "X-Request-ID"},
		MaxAge:             86400,
		OptionsPassthrough: true,
	}))
	r.Use(preflight)
	if config.RateLimit > 0 {
		r.Use(httprate.LimitByIP(config.RateLimit, time.Minute))
	}
	if config.Instrument != nil {
		r.Use(config.Instrument)
	}

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/health", s.handleHealth)
	if config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", config.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/recommendations", s.handleRecommendations)
		r.Post("/recommendations", s.handleRecommendations)
		r.Get("/recommendations/{userId}", s.handleRecommendations)
		r.Post("/recommendations/{userId}", s.handleRecommendations)

		r.Get("/sources", s.handleSources)
		r.Get("/content/{id}", s.handleContent)

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/preferences", s.handleGetPreferences)
			r.Put("/preferences", s.handlePutPreferences)
			r.Get("/history", s.handleGetHistory)
			r.Post("/history", s.handlePostHistory)
		})

		r.Get("/tasks/{id}", s.handleGetTask)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAPIKey)
			r.Post("/scrape", s.handleScrape)
			r.Post("/tasks", s.handleCreateTask)
			r.Post("/tasks/process", s.handleProcessTasks)
		})
	})

	s.router = r
	s.server = &http.Server{
		Addr:              config.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve implements suture.Service: it listens until ctx is cancelled and
// then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.config.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Server) String() string {
	return "http-server"
}
