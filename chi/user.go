package chi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/reelscout"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	prefs, err := s.Users.FindPreferences(r.Context(), userID)
	if reelscout.ErrorCode(err) == reelscout.ENOTFOUND {
		prefs, err = reelscout.DefaultPreferences(userID), nil
	}
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, prefs, nil)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs reelscout.UserPreferences
	if err := decode(r, &prefs); err != nil {
		s.Error(w, r, err)
		return
	}
	prefs.UserID = chi.URLParam(r, "userId")

	if err := s.Users.SavePreferences(r.Context(), &prefs); err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, &prefs, nil)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := reelscout.MaxHistory
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.Error(w, r, reelscout.Errorf(reelscout.EINVALID, "invalid limit %q", v))
			return
		}
		limit = n
	}

	history, err := s.Users.FindHistory(r.Context(), chi.URLParam(r, "userId"), limit)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if history == nil {
		history = []*reelscout.WatchHistoryEntry{}
	}
	s.writeData(w, http.StatusOK, history, nil)
}

type watchRequest struct {
	ContentID string     `json:"content_id" validate:"required"`
	Progress  float64    `json:"progress"`
	WatchedAt *time.Time `json:"watched_at"`
}

func (s *Server) handlePostHistory(w http.ResponseWriter, r *http.Request) {
	var req watchRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.Error(w, r, reelscout.Errorf(reelscout.EINVALID, "invalid history entry: %v", err))
		return
	}

	entry := &reelscout.WatchHistoryEntry{
		UserID:    chi.URLParam(r, "userId"),
		ContentID: req.ContentID,
		Progress:  req.Progress,
	}
	if req.WatchedAt != nil {
		entry.WatchedAt = *req.WatchedAt
	}
	if err := s.Users.RecordWatch(r.Context(), entry); err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeData(w, http.StatusCreated, entry, nil)
}
