package api

import (
	"net/http"
	"time"

	"github.com/habitcanvas/timerd/internal/model"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 100
)

// listSessionsResponse is the JSON response for GET /v1/sessions.
type listSessionsResponse struct {
	Sessions []*model.Session `json:"sessions"`
	Limit    int              `json:"limit"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetSessionStats(r.Context(), time.Now().In(s.loc))
	if err != nil {
		s.logger.Error("get session stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultSessionLimit)
	if limit <= 0 || limit > maxSessionLimit {
		limit = defaultSessionLimit
	}

	sessions, err := s.store.ListSessions(r.Context(), limit)
	if err != nil {
		s.logger.Error("list sessions", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	if sessions == nil {
		sessions = []*model.Session{}
	}

	s.writeJSON(w, http.StatusOK, listSessionsResponse{
		Sessions: sessions,
		Limit:    limit,
	})
}
