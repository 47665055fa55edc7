package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/reelscout"
)

// Run prints recommendations for a user.
func (c *RecommendCmd) Run(deps *Dependencies) error {
	opts := reelscout.RecommendOptions{
		Limit:  c.Limit,
		Genres: c.Genre,
	}
	for _, t := range c.Type {
		opts.Types = append(opts.Types, reelscout.ContentType(t))
	}

	get := deps.Recommender.Recommend
	if c.Refresh {
		get = deps.Recommender.Refresh
	}
	recs, err := get(deps.Ctx, c.User, opts)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintln(deps.Stdout, "No recommendations. Run 'reelscoutd scrape' to build the catalog.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tTYPE\tYEAR\tRATING\tTITLE")
	for i, rec := range recs {
		item := rec.Content
		if item == nil {
			fmt.Fprintf(w, "%d\t%.3f\t\t\t\t%s\n", i+1, rec.Score, rec.ContentID)
			continue
		}
		year := "-"
		if item.ReleaseYear > 0 {
			year = fmt.Sprint(item.ReleaseYear)
		}
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\t%.1f\t%s\n", i+1, rec.Score, item.Type, year, item.Rating, item.Title)
	}
	return w.Flush()
}
