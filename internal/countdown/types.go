package countdown

import "time"

// Phase is the lifecycle phase of a countdown.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
	PhaseFinished Phase = "finished"
)

// CommandKind identifies a command sent to an engine.
type CommandKind string

const (
	CommandStart    CommandKind = "start"
	CommandPause    CommandKind = "pause"
	CommandStop     CommandKind = "stop"
	CommandSync     CommandKind = "sync"
	CommandGetState CommandKind = "getState"
)

// Command is a request from a controller to an engine. EndTime is used by
// start and sync; Running only by sync.
type Command struct {
	Kind    CommandKind
	EndTime time.Time
	Running bool
}

// Start returns a command that runs the countdown until end.
func Start(end time.Time) Command {
	return Command{Kind: CommandStart, EndTime: end}
}

// Pause returns a command that freezes the countdown.
func Pause() Command {
	return Command{Kind: CommandPause}
}

// Stop returns a command that resets the countdown to idle.
func Stop() Command {
	return Command{Kind: CommandStop}
}

// Sync returns a command that reconciles the engine with state persisted by
// the controller.
func Sync(running bool, end time.Time) Command {
	return Command{Kind: CommandSync, Running: running, EndTime: end}
}

// QueryState returns a command that asks the engine to report its state.
func QueryState() Command {
	return Command{Kind: CommandGetState}
}

// EventType identifies an event emitted by an engine.
type EventType string

const (
	EventTick     EventType = "tick"
	EventFinished EventType = "finished"
	EventPaused   EventType = "paused"
	EventStopped  EventType = "stopped"
	EventState    EventType = "state"
)

// Event is a notification from an engine. Remaining is in whole seconds and
// never negative. EndTime is zero unless Phase is PhaseRunning. At is the
// engine clock reading when the event was produced.
type Event struct {
	Type      EventType
	Phase     Phase
	Remaining int
	EndTime   time.Time
	At        time.Time
}

// Running reports whether the engine was running when the event was produced.
func (e Event) Running() bool {
	return e.Phase == PhaseRunning
}
