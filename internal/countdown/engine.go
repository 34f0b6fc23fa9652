package countdown

import "time"

// noTick marks that no tick has been reported in the current start epoch.
const noTick = -1

// Engine holds a single countdown timeline. It is not safe for concurrent
// use: a Channel owns it from one goroutine, and tests drive it directly.
//
// Remaining time is never stored. Every tick computes
// ceil((endTime - now) / 1s) from the clock, so a delayed or coalesced tick
// reports the correct value instead of drifting.
type Engine struct {
	clock     Clock
	interval  time.Duration
	everyTick bool
	emit      func(Event)

	phase    Phase
	endTime  time.Time
	ticker   Ticker
	lastTick int
}

// NewEngine creates an idle engine that reports events through emit.
func NewEngine(emit func(Event), opts ...Option) *Engine {
	o := buildOptions(opts)
	return newEngine(emit, o)
}

func newEngine(emit func(Event), o options) *Engine {
	return &Engine{
		clock:     o.clock,
		interval:  o.interval,
		everyTick: o.everyTick,
		emit:      emit,
		phase:     PhaseIdle,
		lastTick:  noTick,
	}
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// EndTime returns the end of the running countdown, or the zero time.
func (e *Engine) EndTime() time.Time {
	return e.endTime
}

// Remaining returns the whole seconds left, derived from the clock.
func (e *Engine) Remaining() int {
	if e.phase != PhaseRunning {
		return 0
	}
	return remainingSeconds(e.endTime, e.clock.Now())
}

// C returns the active ticker channel, or nil when no countdown is running.
// A nil channel blocks forever in a select, which is what an idle owner wants.
func (e *Engine) C() <-chan time.Time {
	if e.ticker == nil {
		return nil
	}
	return e.ticker.C()
}

// Handle applies cmd. It reports false for an unknown command kind, which
// leaves the engine untouched.
func (e *Engine) Handle(cmd Command) bool {
	switch cmd.Kind {
	case CommandStart:
		e.Start(cmd.EndTime)
	case CommandPause:
		e.Pause()
	case CommandStop:
		e.Stop()
	case CommandSync:
		e.Sync(cmd.Running, cmd.EndTime)
	case CommandGetState:
		e.QueryState()
	default:
		return false
	}
	return true
}

// Start runs the countdown until end, replacing any running timeline, and
// emits a state event. A zero end is treated as "not running".
func (e *Engine) Start(end time.Time) {
	e.disarm()
	if end.IsZero() {
		e.resetIdle()
		e.QueryState()
		return
	}

	e.phase = PhaseRunning
	e.endTime = end
	e.lastTick = noTick
	e.ticker = e.clock.NewTicker(e.interval)
	e.QueryState()
}

// Pause freezes the countdown and emits the remaining seconds. Pausing an
// engine that is not running leaves its phase alone and reports zero.
func (e *Engine) Pause() {
	now := e.clock.Now()
	remaining := 0
	if e.phase == PhaseRunning {
		remaining = remainingSeconds(e.endTime, now)
		e.phase = PhasePaused
	}
	e.disarm()
	e.endTime = time.Time{}

	e.emit(Event{
		Type:      EventPaused,
		Phase:     e.phase,
		Remaining: remaining,
		At:        now,
	})
}

// Stop resets the engine to idle from any phase and emits a stopped event.
func (e *Engine) Stop() {
	e.disarm()
	e.resetIdle()
	e.emit(Event{
		Type:  EventStopped,
		Phase: PhaseIdle,
		At:    e.clock.Now(),
	})
}

// Sync reconciles the engine with controller-side state. A running state
// with a future end restarts the countdown; anything else, including
// contradictory input, leaves the engine idle. Either way a state event
// reports the outcome. Repeating the same Sync yields the same state.
func (e *Engine) Sync(running bool, end time.Time) {
	if running && !end.IsZero() && end.After(e.clock.Now()) {
		e.Start(end)
		return
	}
	e.disarm()
	e.resetIdle()
	e.QueryState()
}

// QueryState emits a state event without changing anything.
func (e *Engine) QueryState() {
	now := e.clock.Now()
	ev := Event{
		Type:  EventState,
		Phase: e.phase,
		At:    now,
	}
	if e.phase == PhaseRunning {
		ev.Remaining = remainingSeconds(e.endTime, now)
		ev.EndTime = e.endTime
	}
	e.emit(ev)
}

// Tick re-reads the clock for the running countdown. Once no whole second is
// left it stops the ticker, moves to PhaseFinished and emits exactly one
// finished event; later ticks are ignored until the next Start.
func (e *Engine) Tick() {
	if e.phase != PhaseRunning {
		return
	}

	now := e.clock.Now()
	remaining := remainingSeconds(e.endTime, now)
	if remaining <= 0 {
		e.disarm()
		e.phase = PhaseFinished
		e.endTime = time.Time{}
		e.emit(Event{
			Type:  EventFinished,
			Phase: PhaseFinished,
			At:    now,
		})
		return
	}

	// The wall clock stepped backwards; never report time going up.
	if e.lastTick != noTick && remaining > e.lastTick {
		remaining = e.lastTick
	}
	if !e.everyTick && remaining == e.lastTick {
		return
	}
	e.lastTick = remaining

	e.emit(Event{
		Type:      EventTick,
		Phase:     PhaseRunning,
		Remaining: remaining,
		EndTime:   e.endTime,
		At:        now,
	})
}

// Close stops the ticker. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.disarm()
}

func (e *Engine) disarm() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

func (e *Engine) resetIdle() {
	e.phase = PhaseIdle
	e.endTime = time.Time{}
	e.lastTick = noTick
}

// remainingSeconds returns ceil((end - now) / 1s), floored at zero.
func remainingSeconds(end, now time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	s := d / time.Second
	if d%time.Second != 0 {
		s++
	}
	return int(s)
}
