package model

import "time"

// Timer phase constants, mirroring the countdown engine's phases.
const (
	PhaseIdle     = "idle"
	PhaseRunning  = "running"
	PhasePaused   = "paused"
	PhaseFinished = "finished"
)

// Timer is the controller-side view of a named countdown, folded from the
// events its engine emits.
type Timer struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Phase     string     `json:"phase"`
	TimeLeft  int        `json:"time_left"`
	EndTime   *time.Time `json:"end_time"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Active reports whether the timer is counting down or holding paused time.
func (t *Timer) Active() bool {
	return t.Phase == PhaseRunning || t.Phase == PhasePaused
}
