package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/protocol"
)

// handleStreamEvents streams a timer's outbound messages as SSE, one named
// event per message. The stream opens with the timer's current state and
// ends with a "done" event when the timer is deleted.
func (s *Server) handleStreamEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.timers.Get(id); err != nil {
		s.writeTimerError(w, id, err)
		return
	}

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Error("set write deadline for SSE", "error", err)
	}

	// Subscribe before asking for state so the reply is not missed. A timer
	// deleted in between yields a closed channel and the loop exits at once.
	ch, unsub := s.timers.Broker().Subscribe(id)
	defer unsub()
	sseStreamsActive.Inc()
	defer sseStreamsActive.Dec()
	_ = s.timers.Send(id, countdown.QueryState())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				_ = writeSSEEvent(w, "done", "stream complete")
				if canFlush {
					flusher.Flush()
				}
				return
			}
			if err := writeSSEMessage(w, msg); err != nil {
				return // Write failed (e.g. client gone).
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return // Client disconnected.
		}
	}
}

// writeSSEMessage writes msg as an SSE event named after its type.
func writeSSEMessage(w http.ResponseWriter, msg protocol.Outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return writeSSEEvent(w, msg.Type, string(data))
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
