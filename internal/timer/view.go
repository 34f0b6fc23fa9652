package timer

import (
	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/model"
)

// apply folds ev into the controller-side view t. The engine forgets the
// remaining time of a paused countdown, so the view keeps it: a paused
// timer's time_left survives later paused or state events until the timer
// is started, stopped or synced to idle.
func apply(t *model.Timer, ev countdown.Event) {
	t.UpdatedAt = ev.At.UTC()

	switch ev.Type {
	case countdown.EventTick:
		t.Phase = model.PhaseRunning
		t.TimeLeft = ev.Remaining
	case countdown.EventFinished:
		t.Phase = model.PhaseFinished
		t.TimeLeft = 0
		t.EndTime = nil
	case countdown.EventPaused:
		if t.Phase == model.PhaseRunning {
			t.TimeLeft = ev.Remaining
		}
		t.Phase = string(ev.Phase)
		t.EndTime = nil
	case countdown.EventStopped:
		t.Phase = model.PhaseIdle
		t.TimeLeft = 0
		t.EndTime = nil
	case countdown.EventState:
		prev := t.Phase
		t.Phase = string(ev.Phase)
		switch {
		case ev.Running():
			end := ev.EndTime
			t.EndTime = &end
			t.TimeLeft = ev.Remaining
		case ev.Phase == countdown.PhasePaused && prev == model.PhasePaused:
			t.EndTime = nil
		default:
			t.EndTime = nil
			t.TimeLeft = 0
		}
	}
}
