package api

import "net/http"

// healthResponse reports liveness plus how many timers the process holds.
type healthResponse struct {
	Status string `json:"status"`
	Timers int    `json:"timers"`
	Active int    `json:"active"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	for _, t := range s.timers.List() {
		resp.Timers++
		if t.Active() {
			resp.Active++
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}
