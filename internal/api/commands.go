package api

import (
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/habitcanvas/timerd/internal/protocol"
	"github.com/habitcanvas/timerd/internal/timer"
)

// acceptedResponse acknowledges a queued command. The outcome is observable
// through the timer view or its event stream.
type acceptedResponse struct {
	ID      string     `json:"id"`
	Action  string     `json:"action"`
	EndTime *time.Time `json:"end_time,omitempty"`
}

// startTimerRequest is the JSON body for POST /v1/timers/{id}/start. Preset
// wins over DurationS; with neither, a paused timer resumes.
type startTimerRequest struct {
	Preset    string `json:"preset"`
	DurationS int    `json:"duration_s"`
}

func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	cmd, err := protocol.DecodeInbound(body)
	if errors.Is(err, protocol.ErrMalformed) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.timers.Send(id, cmd); err != nil {
		s.writeTimerError(w, id, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, acceptedResponse{ID: id, Action: string(cmd.Kind)})
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req startTimerRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		end    time.Time
		err    error
		action = "start"
	)
	switch {
	case req.Preset != "":
		p, perr := s.presets.Resolve(req.Preset)
		if perr != nil {
			s.writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		end, err = s.timers.StartFor(id, p.Duration)
	case req.DurationS > maxDurationS:
		s.writeError(w, http.StatusBadRequest, "duration_s too large")
		return
	case req.DurationS != 0:
		end, err = s.timers.StartFor(id, time.Duration(req.DurationS)*time.Second)
	default:
		action = "resume"
		end, err = s.timers.Resume(id)
	}
	if err != nil {
		s.writeTimerError(w, id, err)
		return
	}

	end = end.UTC()
	s.writeJSON(w, http.StatusAccepted, acceptedResponse{ID: id, Action: action, EndTime: &end})
}

// maxDurationS is the largest duration_s that converts to a time.Duration
// without overflowing.
const maxDurationS = int(math.MaxInt64 / int64(time.Second))

// writeTimerError maps timer manager errors to HTTP responses.
func (s *Server) writeTimerError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, timer.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "timer not found")
	case errors.Is(err, timer.ErrInvalidDuration):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, timer.ErrNotPaused):
		s.writeError(w, http.StatusConflict, "timer is not paused; give a preset or duration_s")
	default:
		s.logger.Error("timer command", "timer_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to send command")
	}
}
