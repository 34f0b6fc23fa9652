package api

import "net/http"

func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.presets.List())
}
