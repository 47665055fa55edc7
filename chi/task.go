package chi

import (
	"net/http"

	"github.com/fwojciec/reelscout"
	"github.com/go-chi/chi/v5"
)

type taskRequest struct {
	SourceID string               `json:"source_id" validate:"required"`
	Action   reelscout.TaskAction `json:"action" validate:"required,oneof=scrape search details"`
	Params   reelscout.TaskParams `json:"params"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.Error(w, r, reelscout.Errorf(reelscout.EINVALID, "invalid task: %v", err))
		return
	}

	task, err := s.Queue.Enqueue(r.Context(), &reelscout.ScrapeTask{
		SourceID: req.SourceID,
		Action:   req.Action,
		Params:   req.Params,
	})
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeData(w, http.StatusAccepted, task, nil)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.Queue.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, task, nil)
}

type processRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

func (s *Server) handleProcessTasks(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.Error(w, r, reelscout.Errorf(reelscout.EINVALID, "invalid process request: %v", err))
		return
	}

	res, err := s.Queue.ProcessPending(r.Context(), req.Limit)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, res, nil)
}
