package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habitcanvas/timerd/internal/countdown"
)

var end = time.UnixMilli(1_772_355_600_000)

func TestDecodeInboundActions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want countdown.Command
	}{
		{
			name: "start with millis",
			body: `{"action":"start","data":{"endTime":1772355600000}}`,
			want: countdown.Start(end),
		},
		{
			name: "start with float millis",
			body: `{"action":"start","data":{"endTime":1.7723556e12}}`,
			want: countdown.Start(end),
		},
		{
			name: "start with RFC 3339",
			body: `{"action":"start","data":{"endTime":"` + end.UTC().Format(time.RFC3339Nano) + `"}}`,
			want: countdown.Start(end.UTC()),
		},
		{
			name: "start without end time",
			body: `{"action":"start"}`,
			want: countdown.Start(time.Time{}),
		},
		{
			name: "pause",
			body: `{"action":"pause"}`,
			want: countdown.Pause(),
		},
		{
			name: "stop ignores data",
			body: `{"action":"stop","data":{"endTime":1772355600000}}`,
			want: countdown.Stop(),
		},
		{
			name: "sync running",
			body: `{"action":"sync","data":{"isRunning":true,"endTime":1772355600000}}`,
			want: countdown.Sync(true, end),
		},
		{
			name: "sync with null end time",
			body: `{"action":"sync","data":{"isRunning":true,"endTime":null}}`,
			want: countdown.Sync(true, time.Time{}),
		},
		{
			name: "sync without data",
			body: `{"action":"sync"}`,
			want: countdown.Sync(false, time.Time{}),
		},
		{
			name: "get state",
			body: `{"action":"getState"}`,
			want: countdown.QueryState(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want.Kind, got.Kind)
			require.Equal(t, tt.want.Running, got.Running)
			require.True(t, tt.want.EndTime.Equal(got.EndTime), "EndTime = %v, want %v", got.EndTime, tt.want.EndTime)
		})
	}
}

func TestDecodeInboundUnknownAction(t *testing.T) {
	for _, body := range []string{`{"action":"reset"}`, `{}`, `{"action":""}`} {
		_, err := DecodeInbound([]byte(body))
		require.ErrorIs(t, err, ErrUnknownAction, body)
	}
}

func TestDecodeInboundMalformed(t *testing.T) {
	for _, body := range []string{`not json`, `{"action":"start","data":{"endTime":"yesterday"}}`, `{"action":"start","data":{"endTime":true}}`} {
		_, err := DecodeInbound([]byte(body))
		require.ErrorIs(t, err, ErrMalformed, body)
		require.False(t, errors.Is(err, ErrUnknownAction))
	}
}

func TestOutboundFieldPresence(t *testing.T) {
	tests := []struct {
		ev   countdown.Event
		want string
	}{
		{
			ev:   countdown.Event{Type: countdown.EventTick, Phase: countdown.PhaseRunning, Remaining: 7, EndTime: end},
			want: `{"type":"tick","timeLeft":7,"isRunning":true}`,
		},
		{
			ev:   countdown.Event{Type: countdown.EventFinished, Phase: countdown.PhaseFinished},
			want: `{"type":"finished","timeLeft":0}`,
		},
		{
			ev:   countdown.Event{Type: countdown.EventPaused, Phase: countdown.PhasePaused, Remaining: 3},
			want: `{"type":"paused","timeLeft":3}`,
		},
		{
			ev:   countdown.Event{Type: countdown.EventStopped, Phase: countdown.PhaseIdle},
			want: `{"type":"stopped"}`,
		},
		{
			ev:   countdown.Event{Type: countdown.EventState, Phase: countdown.PhaseRunning, Remaining: 42, EndTime: end},
			want: `{"type":"state","timeLeft":42,"isRunning":true,"endTime":1772355600000}`,
		},
		{
			ev:   countdown.Event{Type: countdown.EventState, Phase: countdown.PhaseIdle},
			want: `{"type":"state","timeLeft":0,"isRunning":false,"endTime":null}`,
		},
	}

	for _, tt := range tests {
		got, err := json.Marshal(NewOutbound(tt.ev))
		require.NoError(t, err)
		require.JSONEq(t, tt.want, string(got))
	}
}

func TestNewInboundRoundTrip(t *testing.T) {
	cmds := []countdown.Command{
		countdown.Start(end),
		countdown.Pause(),
		countdown.Stop(),
		countdown.Sync(true, end),
		countdown.Sync(false, time.Time{}),
		countdown.QueryState(),
	}

	for _, cmd := range cmds {
		data, err := json.Marshal(NewInbound(cmd))
		require.NoError(t, err)

		got, err := DecodeInbound(data)
		require.NoError(t, err, string(data))
		require.Equal(t, cmd.Kind, got.Kind)
		require.Equal(t, cmd.Running, got.Running)
		require.True(t, cmd.EndTime.Equal(got.EndTime), string(data))
	}
}

func TestNewInboundOmitsEmptyData(t *testing.T) {
	data, err := json.Marshal(NewInbound(countdown.Pause()))
	require.NoError(t, err)
	require.JSONEq(t, `{"action":"pause"}`, string(data))
}
