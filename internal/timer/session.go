package timer

import (
	"time"

	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/model"
)

// minFocus is the shortest focus time recorded as a session.
const minFocus = time.Second

// sessionTracker accumulates running time across pause/resume cycles and
// yields a finished session when the countdown completes or is abandoned.
type sessionTracker struct {
	open         bool
	startedAt    time.Time
	segmentStart time.Time
	focus        time.Duration
}

// observe feeds one event to the tracker and returns a finished session, or
// nil while the session is still open.
func (s *sessionTracker) observe(ev countdown.Event) *model.Session {
	switch ev.Type {
	case countdown.EventState:
		if ev.Running() {
			s.resume(ev.At)
			return nil
		}
		if ev.Phase == countdown.PhaseIdle {
			return s.finish(ev.At, false)
		}
	case countdown.EventPaused:
		if ev.Phase == countdown.PhasePaused {
			s.suspend(ev.At)
		}
	case countdown.EventFinished:
		return s.finish(ev.At, true)
	case countdown.EventStopped:
		return s.finish(ev.At, false)
	}
	return nil
}

// abandon closes an open session when the timer goes away without a final
// event.
func (s *sessionTracker) abandon(at time.Time) *model.Session {
	return s.finish(at, false)
}

func (s *sessionTracker) resume(at time.Time) {
	if !s.open {
		s.open = true
		s.startedAt = at
	}
	s.suspend(at)
	s.segmentStart = at
}

func (s *sessionTracker) suspend(at time.Time) {
	if !s.segmentStart.IsZero() {
		s.focus += max(0, at.Sub(s.segmentStart))
		s.segmentStart = time.Time{}
	}
}

func (s *sessionTracker) finish(at time.Time, completed bool) *model.Session {
	if !s.open {
		return nil
	}
	s.suspend(at)
	sess := &model.Session{
		FocusS:     int(s.focus.Round(time.Second) / time.Second),
		Completed:  completed,
		StartedAt:  s.startedAt,
		FinishedAt: at,
	}
	focus := s.focus
	*s = sessionTracker{}

	if focus < minFocus {
		return nil
	}
	return sess
}
