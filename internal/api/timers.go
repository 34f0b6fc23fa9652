package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/habitcanvas/timerd/internal/model"
	"github.com/habitcanvas/timerd/internal/timer"
)

const maxLabelLength = 200

// createTimerRequest is the JSON body for POST /v1/timers.
type createTimerRequest struct {
	Label string `json:"label"`
}

// listTimersResponse wraps the timer list.
type listTimersResponse struct {
	Timers []*model.Timer `json:"timers"`
	Total  int            `json:"total"`
}

func (s *Server) handleCreateTimer(w http.ResponseWriter, r *http.Request) {
	var req createTimerRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(req.Label) > maxLabelLength {
		s.writeError(w, http.StatusBadRequest, "label is too long")
		return
	}

	s.writeJSON(w, http.StatusCreated, s.timers.Create(req.Label))
}

func (s *Server) handleListTimers(w http.ResponseWriter, _ *http.Request) {
	timers := s.timers.List()
	s.writeJSON(w, http.StatusOK, listTimersResponse{
		Timers: timers,
		Total:  len(timers),
	})
}

func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := s.timers.Get(id)
	if errors.Is(err, timer.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "timer not found")
		return
	}
	if err != nil {
		s.logger.Error("get timer", "timer_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get timer")
		return
	}

	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTimer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := s.timers.Get(id)
	if err == nil {
		err = s.timers.Remove(id)
	}
	if errors.Is(err, timer.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "timer not found")
		return
	}
	if err != nil {
		s.logger.Error("delete timer", "timer_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete timer")
		return
	}

	s.writeJSON(w, http.StatusOK, t)
}
