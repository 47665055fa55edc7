package main

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/reelscout"
	reelchi "github.com/fwojciec/reelscout/chi"
	"github.com/fwojciec/reelscout/queue"
	"github.com/fwojciec/reelscout/schedule"
	"github.com/fwojciec/reelscout/scrape"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *Config
	Logger *slog.Logger

	Sources     reelscout.SourceService
	Contents    reelscout.ContentService
	Monitor     reelscout.MonitorService
	Recommender reelscout.Recommender
	Runner      *scrape.Runner
	Queue       *queue.Manager
	Scheduler   *schedule.Scheduler
	Server      *reelchi.Server
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    string `short:"c" type:"path" help:"Config file (defaults to $REELSCOUT_CONFIG or ./reelscout.yaml)"`
	LogLevel  string `help:"Override logging.level (debug, info, warn, error)"`
	LogFormat string `help:"Override logging.format (json, console)"`

	Serve     ServeCmd     `cmd:"" help:"Run the HTTP API and background jobs"`
	Scrape    ScrapeCmd    `cmd:"" help:"Scrape sources once"`
	Recommend RecommendCmd `cmd:"" help:"Show recommendations for a user"`
	Sources   SourcesCmd   `cmd:"" help:"List registered sources"`
	Tasks     TasksCmd     `cmd:"" help:"Inspect and process queued scrape tasks"`
	Sessions  SessionsCmd  `cmd:"" help:"List recent scraping sessions"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr       string `help:"Listen address (overrides server.addr)"`
	NoSchedule bool   `help:"Disable periodic scraping, refresh and task jobs"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Source      string   `short:"s" help:"Scrape only this source"`
	Concurrency int      `help:"Sources scraped at once (overrides scrape.concurrency)"`
	MaxSources  int      `help:"Stop after this many sources"`
	MaxRetries  int      `help:"Attempts per source (overrides scrape.max_retries)"`
	Skip        []string `help:"Source IDs to skip"`
	Limit       int      `short:"n" help:"Items per source (overrides scrape.limit)"`
}

// RecommendCmd is the "recommend" subcommand.
type RecommendCmd struct {
	User    string   `arg:"" help:"User ID"`
	Limit   int      `short:"n" default:"20" help:"Number of recommendations"`
	Type    []string `short:"t" help:"Content types (drama, anime, movie, bollywood)"`
	Genre   []string `short:"g" help:"Required genres"`
	Refresh bool     `help:"Recompute instead of reading cached results"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct{}

// TasksCmd groups the task subcommands.
type TasksCmd struct {
	Process TasksProcessCmd `cmd:"" help:"Claim and run pending tasks"`
	Status  TasksStatusCmd  `cmd:"" help:"Show one task"`
}

// TasksProcessCmd is the "tasks process" subcommand.
type TasksProcessCmd struct {
	Limit int `short:"n" default:"10" help:"Maximum tasks to claim"`
}

// TasksStatusCmd is the "tasks status" subcommand.
type TasksStatusCmd struct {
	ID string `arg:"" help:"Task ID"`
}

// SessionsCmd is the "sessions" subcommand.
type SessionsCmd struct {
	Limit int `short:"n" default:"10" help:"Number of sessions"`
}

// apply copies flag overrides into cfg.
func (c *CLI) apply(cfg *Config) {
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Logging.Format = c.LogFormat
	}
	if c.Serve.Addr != "" {
		cfg.Server.Addr = c.Serve.Addr
	}
	if c.Serve.NoSchedule {
		cfg.Schedule.Enabled = false
	}
}

// scraping reports whether command may fetch pages, so the browser backend
// is only launched when it can be used.
func (c *CLI) scraping(command string) bool {
	name, _, _ := strings.Cut(command, " ")
	switch name {
	case "serve", "scrape", "tasks":
		return true
	}
	return false
}
