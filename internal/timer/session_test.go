package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habitcanvas/timerd/internal/countdown"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func running(at time.Duration) countdown.Event {
	return countdown.Event{
		Type:    countdown.EventState,
		Phase:   countdown.PhaseRunning,
		EndTime: t0.Add(time.Hour),
		At:      t0.Add(at),
	}
}

func ev(typ countdown.EventType, phase countdown.Phase, at time.Duration) countdown.Event {
	return countdown.Event{Type: typ, Phase: phase, At: t0.Add(at)}
}

func TestSessionCompleted(t *testing.T) {
	var s sessionTracker

	require.Nil(t, s.observe(running(0)))
	require.Nil(t, s.observe(ev(countdown.EventTick, countdown.PhaseRunning, time.Second)))
	sess := s.observe(ev(countdown.EventFinished, countdown.PhaseFinished, 25*time.Minute))

	require.NotNil(t, sess)
	require.True(t, sess.Completed)
	require.Equal(t, 1500, sess.FocusS)
	require.Equal(t, t0, sess.StartedAt)
	require.Equal(t, t0.Add(25*time.Minute), sess.FinishedAt)
}

func TestSessionExcludesPausedTime(t *testing.T) {
	var s sessionTracker

	s.observe(running(0))
	s.observe(ev(countdown.EventPaused, countdown.PhasePaused, 10*time.Minute))
	s.observe(running(40 * time.Minute))
	sess := s.observe(ev(countdown.EventFinished, countdown.PhaseFinished, 55*time.Minute))

	require.NotNil(t, sess)
	require.Equal(t, 25*60, sess.FocusS)
	require.Equal(t, t0, sess.StartedAt)
}

func TestSessionRestartWhileRunningKeepsOneSession(t *testing.T) {
	var s sessionTracker

	s.observe(running(0))
	s.observe(running(5 * time.Minute))
	sess := s.observe(ev(countdown.EventStopped, countdown.PhaseIdle, 8*time.Minute))

	require.NotNil(t, sess)
	require.False(t, sess.Completed)
	require.Equal(t, 8*60, sess.FocusS)
}

func TestSessionLenientPauseDoesNotCount(t *testing.T) {
	var s sessionTracker

	// A pause while idle carries the idle phase and opens nothing.
	require.Nil(t, s.observe(ev(countdown.EventPaused, countdown.PhaseIdle, 0)))
	require.Nil(t, s.observe(ev(countdown.EventStopped, countdown.PhaseIdle, time.Minute)))
}

func TestSessionSyncToIdleEndsSession(t *testing.T) {
	var s sessionTracker

	s.observe(running(0))
	sess := s.observe(ev(countdown.EventState, countdown.PhaseIdle, 3*time.Minute))

	require.NotNil(t, sess)
	require.False(t, sess.Completed)
	require.Equal(t, 180, sess.FocusS)
}

func TestSessionTooShortIsDropped(t *testing.T) {
	var s sessionTracker

	s.observe(running(0))
	require.Nil(t, s.observe(ev(countdown.EventStopped, countdown.PhaseIdle, 300*time.Millisecond)))

	// The tracker is reset for the next session.
	s.observe(running(time.Minute))
	sess := s.observe(ev(countdown.EventFinished, countdown.PhaseFinished, 2*time.Minute))
	require.NotNil(t, sess)
	require.Equal(t, 60, sess.FocusS)
}

func TestSessionAbandon(t *testing.T) {
	var s sessionTracker
	require.Nil(t, s.abandon(t0))

	s.observe(running(0))
	s.observe(ev(countdown.EventPaused, countdown.PhasePaused, 2*time.Minute))
	sess := s.abandon(t0.Add(time.Hour))

	require.NotNil(t, sess)
	require.False(t, sess.Completed)
	require.Equal(t, 120, sess.FocusS)
}
