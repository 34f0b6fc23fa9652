package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habitcanvas/timerd/internal/agent"
	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/model"
	"github.com/habitcanvas/timerd/internal/protocol"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func startAgent(t *testing.T) string {
	t.Helper()
	l, err := agent.Listen("tcp:127.0.0.1:0")
	require.NoError(t, err)
	a := agent.New(l, discardLogger(), countdown.WithTickInterval(10*time.Millisecond))
	go a.Serve()
	t.Cleanup(func() { a.Close() })
	return "tcp:" + l.Addr().String()
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		-3:   "00:00",
		0:    "00:00",
		59:   "00:59",
		1500: "25:00",
		3661: "1:01:01",
	}
	for in, want := range cases {
		require.Equal(t, want, formatClock(in), "seconds=%d", in)
	}
}

func TestParseLine(t *testing.T) {
	end := time.Now().Add(time.Minute)

	cmd, quit, err := parseLine("pause", -1, end)
	require.NoError(t, err)
	require.False(t, quit)
	require.Equal(t, countdown.CommandPause, cmd.Kind)

	_, _, err = parseLine("resume", -1, end)
	require.Error(t, err)

	cmd, _, err = parseLine("r", 30, end)
	require.NoError(t, err)
	require.Equal(t, countdown.CommandStart, cmd.Kind)
	require.WithinDuration(t, time.Now().Add(30*time.Second), cmd.EndTime, time.Second)

	cmd, _, err = parseLine("sync", -1, end)
	require.NoError(t, err)
	require.Equal(t, countdown.CommandSync, cmd.Kind)
	require.True(t, cmd.Running)

	_, quit, err = parseLine("q", -1, end)
	require.NoError(t, err)
	require.True(t, quit)

	_, _, err = parseLine("launch", -1, end)
	require.Error(t, err)
}

func TestRenderEvent(t *testing.T) {
	left := 65
	running := true
	out := renderEvent(protocol.Outbound{Type: "tick", TimeLeft: &left, IsRunning: &running})
	require.Contains(t, out, "01:05")

	out = renderEvent(protocol.Outbound{Type: "paused", TimeLeft: &left})
	require.Contains(t, out, "paused")
	require.Contains(t, out, "01:05 left")

	idle := false
	zero := 0
	out = renderEvent(protocol.Outbound{Type: "state", TimeLeft: &zero, IsRunning: &idle})
	require.Contains(t, out, "not running")
}

func TestRenderStats(t *testing.T) {
	out := renderStats(&model.SessionStats{
		TotalSessions:         3,
		AverageSessionMinutes: 23.3,
		Streak:                2,
		LongestStreak:         4,
		DailyStats: []model.DailyMinutes{
			{Date: "2026-03-09", Minutes: 0},
			{Date: "2026-03-10", Minutes: 50},
		},
	})
	require.Contains(t, out, "23.3m")
	require.Contains(t, out, "2026-03-10")
	require.Contains(t, out, "50m")
}

func TestCountdownRunsToFinish(t *testing.T) {
	addr := startAgent(t)

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"-addr", addr, "countdown", "-for", "1s"}, strings.NewReader(""), &out)
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "countdown should finish before the deadline")
	require.Contains(t, out.String(), "state")
	require.Contains(t, out.String(), "finished")
}

func TestCountdownStopFromInput(t *testing.T) {
	addr := startAgent(t)

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"-addr", addr, "countdown", "-preset", "short_break"}, strings.NewReader("pause\nstop\n"), &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "paused")
	require.Contains(t, out.String(), "stopped")
}

func TestCountdownRejectsConflictingFlags(t *testing.T) {
	err := run(context.Background(), []string{"countdown", "-for", "1m", "-preset", "pomodoro"}, strings.NewReader(""), io.Discard)
	require.Error(t, err)
}

func TestWatchOnce(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.SessionStats{TotalSessions: 9, Streak: 3})
	}))
	defer ts.Close()

	var out bytes.Buffer
	err := run(context.Background(), []string{"watch", "-url", ts.URL, "-once"}, strings.NewReader(""), &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Focus stats")
	require.Contains(t, out.String(), "9")
}

func TestRunUnknownCommand(t *testing.T) {
	require.Error(t, run(context.Background(), []string{"explode"}, strings.NewReader(""), io.Discard))
	require.Error(t, run(context.Background(), nil, strings.NewReader(""), io.Discard))
}
