package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/reelscout"
)

// Run lists the source registry.
func (c *SourcesCmd) Run(deps *Dependencies) error {
	sources, err := deps.Sources.FindSources(deps.Ctx, reelscout.SourceFilter{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tACTIVE\tLAST SCRAPED\tURL")
	for _, src := range sources {
		last := "never"
		if src.LastScrapedAt != nil {
			last = humanize.Time(*src.LastScrapedAt)
		}
		active := "no"
		if src.IsActive {
			active = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", src.ID, src.ContentType, active, last, src.BaseURL)
	}
	return w.Flush()
}

// Run lists recent scraping sessions.
func (c *SessionsCmd) Run(deps *Dependencies) error {
	sessions, err := deps.Monitor.FindSessions(deps.Ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(deps.Stdout, "No scraping sessions yet.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tITEMS\tERRORS\tDURATION\tID")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			humanize.Time(s.StartedAt), s.Status, humanize.Comma(int64(s.ItemsCount)),
			s.ErrorsCount, time.Duration(s.DurationMs)*time.Millisecond, s.ID)
	}
	return w.Flush()
}

// Run claims and executes pending tasks.
func (c *TasksProcessCmd) Run(deps *Dependencies) error {
	res, err := deps.Queue.ProcessPending(deps.Ctx, c.Limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Claimed %d, completed %d, failed %d\n", res.Claimed, res.Completed, res.Failed)
	return nil
}

// Run prints one task.
func (c *TasksStatusCmd) Run(deps *Dependencies) error {
	task, err := deps.Queue.GetStatus(deps.Ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "ID:      %s\n", task.ID)
	fmt.Fprintf(deps.Stdout, "Source:  %s\n", task.SourceID)
	fmt.Fprintf(deps.Stdout, "Action:  %s\n", task.Action)
	fmt.Fprintf(deps.Stdout, "Status:  %s\n", task.Status)
	fmt.Fprintf(deps.Stdout, "Created: %s\n", humanize.Time(task.CreatedAt))
	if task.Error != "" {
		fmt.Fprintf(deps.Stdout, "Error:   %s\n", task.Error)
	}
	return nil
}
