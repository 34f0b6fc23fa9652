package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/habitcanvas/timerd/internal/countdown"
)

var (
	// ErrUnknownAction is returned for an inbound message whose action is
	// missing or not recognized. Callers drop such messages silently.
	ErrUnknownAction = errors.New("unknown action")

	// ErrMalformed is returned when an inbound message is not valid JSON.
	ErrMalformed = errors.New("malformed message")
)

// Millis is an absolute timestamp carried as milliseconds since the Unix
// epoch. On input it also accepts an RFC 3339 string; null decodes to the
// zero time and the zero time encodes as null.
type Millis struct {
	time.Time
}

// MillisOf wraps t.
func MillisOf(t time.Time) *Millis {
	return &Millis{Time: t}
}

// MarshalJSON implements json.Marshaler.
func (m Millis) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, m.UnixMilli(), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.Time = time.Time{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		m.Time = t
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %s: %w", data, err)
	}
	m.Time = time.UnixMilli(int64(f))
	return nil
}

// Inbound is a controller→engine message.
type Inbound struct {
	Action string      `json:"action"`
	Data   InboundData `json:"data,omitzero"`
}

// InboundData holds the optional command arguments.
type InboundData struct {
	EndTime   *Millis `json:"endTime,omitempty"`
	IsRunning *bool   `json:"isRunning,omitempty"`
}

// DecodeInbound parses a JSON message and converts it to a command.
func DecodeInbound(data []byte) (countdown.Command, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return countdown.Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return in.Command()
}

// Command converts the message to an engine command. Missing arguments are
// passed through as zero values; the engine normalizes them to idle.
func (in Inbound) Command() (countdown.Command, error) {
	var end time.Time
	if in.Data.EndTime != nil {
		end = in.Data.EndTime.Time
	}

	switch countdown.CommandKind(in.Action) {
	case countdown.CommandStart:
		return countdown.Start(end), nil
	case countdown.CommandPause:
		return countdown.Pause(), nil
	case countdown.CommandStop:
		return countdown.Stop(), nil
	case countdown.CommandSync:
		running := in.Data.IsRunning != nil && *in.Data.IsRunning
		return countdown.Sync(running, end), nil
	case countdown.CommandGetState:
		return countdown.QueryState(), nil
	default:
		return countdown.Command{}, fmt.Errorf("%w: %q", ErrUnknownAction, in.Action)
	}
}

// NewInbound builds the wire form of cmd.
func NewInbound(cmd countdown.Command) Inbound {
	in := Inbound{Action: string(cmd.Kind)}
	switch cmd.Kind {
	case countdown.CommandStart:
		in.Data.EndTime = MillisOf(cmd.EndTime)
	case countdown.CommandSync:
		running := cmd.Running
		in.Data.IsRunning = &running
		if !cmd.EndTime.IsZero() {
			in.Data.EndTime = MillisOf(cmd.EndTime)
		}
	}
	return in
}

// Outbound is an engine→controller message. Field presence depends on the
// type: tick carries timeLeft and isRunning, finished and paused carry
// timeLeft, stopped carries nothing, and state carries all three with
// endTime null when the engine is not running.
type Outbound struct {
	Type      string  `json:"type"`
	TimeLeft  *int    `json:"timeLeft,omitempty"`
	IsRunning *bool   `json:"isRunning,omitempty"`
	EndTime   *Millis `json:"endTime,omitempty"`
}

// NewOutbound shapes ev for the wire.
func NewOutbound(ev countdown.Event) Outbound {
	out := Outbound{Type: string(ev.Type)}
	timeLeft := ev.Remaining
	running := ev.Running()

	switch ev.Type {
	case countdown.EventTick:
		out.TimeLeft = &timeLeft
		out.IsRunning = &running
	case countdown.EventFinished:
		zero := 0
		out.TimeLeft = &zero
	case countdown.EventPaused:
		out.TimeLeft = &timeLeft
	case countdown.EventState:
		out.TimeLeft = &timeLeft
		out.IsRunning = &running
		out.EndTime = MillisOf(ev.EndTime)
	}
	return out
}
