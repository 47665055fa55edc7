package chi

import (
	"net/http"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.Sources.FindSources(r.Context(), reelscout.SourceFilter{})
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if sources == nil {
		sources = []*reelscout.Source{}
	}
	s.writeData(w, http.StatusOK, sources, nil)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	item, err := s.Contents.FindContentByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, item, nil)
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// handleHealth reports liveness and database connectivity. It answers 503
// while the database is unreachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Database:  "connected",
	}
	status := http.StatusOK
	if s.DB == nil || s.DB.PingContext(r.Context()) != nil {
		resp.Status = "degraded"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}
