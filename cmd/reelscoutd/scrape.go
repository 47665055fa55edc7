package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/reelscout/scrape"
	"github.com/schollz/progressbar/v3"
)

// Run scrapes the selected sources once and prints one row per source.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	opts := scrape.RunOptions{
		SourceID:    c.Source,
		Concurrency: c.Concurrency,
		MaxRetries:  c.MaxRetries,
		MaxSources:  c.MaxSources,
		SkipSources: c.Skip,
		Limit:       c.Limit,
	}

	targets, err := deps.Runner.Targets(opts)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Fprintln(deps.Stdout, "No active sources to scrape.")
		return nil
	}

	bar := progressbar.NewOptions(len(targets),
		progressbar.OptionSetWriter(deps.Stderr),
		progressbar.OptionSetDescription("Scraping"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	opts.Progress = func(res *scrape.SourceResult) {
		_ = bar.Add(1)
	}

	results, err := deps.Runner.Run(deps.Ctx, opts)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tSTATUS\tITEMS\tDURATION\tERROR")
	var total, failed int
	for _, res := range results {
		status := "ok"
		if !res.Success {
			status = "failed"
			failed++
		}
		total += res.Count
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			res.SourceID, status, humanize.Comma(int64(res.Count)),
			res.Duration.Round(time.Millisecond), res.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "\n%s items from %d sources\n", humanize.Comma(int64(total)), len(results)-failed)
	if failed == len(results) {
		return fmt.Errorf("all %d sources failed", failed)
	}
	return nil
}
