package chi

import (
	"net/http"

	"github.com/fwojciec/reelscout"
	"github.com/fwojciec/reelscout/scrape"
)

type scrapeRequest struct {
	SourceID    string   `json:"source_id" validate:"omitempty,max=64"`
	Concurrency int      `json:"concurrency" validate:"omitempty,min=1,max=16"`
	MaxRetries  int      `json:"max_retries" validate:"omitempty,min=1,max=10"`
	MaxSources  int      `json:"max_sources" validate:"omitempty,min=1"`
	SkipSources []string `json:"skip_sources" validate:"omitempty,dive,required"`
	Limit       int      `json:"limit" validate:"omitempty,min=1,max=200"`
}

// handleScrape runs a synchronous scrape and reports per-source outcomes
// keyed by source ID.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.Error(w, r, reelscout.Errorf(reelscout.EINVALID, "invalid scrape request: %v", err))
		return
	}

	results, err := s.Scraper.Run(r.Context(), scrape.RunOptions{
		SourceID:    req.SourceID,
		Concurrency: req.Concurrency,
		MaxRetries:  req.MaxRetries,
		MaxSources:  req.MaxSources,
		SkipSources: req.SkipSources,
		Limit:       req.Limit,
	})
	if err != nil {
		s.Error(w, r, err)
		return
	}

	data := make(map[string]*scrape.SourceResult, len(results))
	for _, res := range results {
		if res.Sample == nil {
			res.Sample = []*reelscout.ContentItem{}
		}
		data[res.SourceID] = res
	}
	s.writeData(w, http.StatusOK, data, nil)
}
