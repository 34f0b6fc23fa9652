package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/habitcanvas/timerd/internal/agent"
	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/preset"
	"github.com/habitcanvas/timerd/internal/protocol"
)

const countdownHelp = "commands: pause, resume, stop, state, sync, quit"

// countdownDuration resolves -for and -preset to a single duration.
func countdownDuration(args []string) (time.Duration, error) {
	fs := flag.NewFlagSet("countdown", flag.ContinueOnError)
	dur := fs.Duration("for", 0, "countdown length, e.g. 25m")
	name := fs.String("preset", "", "preset name (pomodoro, short_break, long_break)")
	presetsPath := fs.String("presets", "", "YAML presets file")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}

	switch {
	case *dur > 0 && *name != "":
		return 0, errors.New("-for and -preset are mutually exclusive")
	case *dur > 0:
		return *dur, nil
	}

	reg, err := preset.Load(*presetsPath)
	if err != nil {
		return 0, err
	}
	if *name == "" {
		*name = preset.Pomodoro
	}
	p, err := reg.Resolve(*name)
	if err != nil {
		return 0, err
	}
	return p.Duration, nil
}

// runCountdown starts a countdown on a fresh remote engine and relays
// commands typed on in until the countdown finishes, is stopped, or the
// user quits.
func runCountdown(ctx context.Context, addr string, args []string, in io.Reader, out io.Writer, logger *slog.Logger) error {
	d, err := countdownDuration(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := agent.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()

	events := make(chan protocol.Outbound)
	readErr := make(chan error, 1)
	go func() {
		for {
			msg, err := client.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case events <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
		close(lines)
	}()

	fmt.Fprintln(out, titleStyle.Render("countdown "+formatClock(int(d/time.Second))))
	fmt.Fprintln(out, mutedStyle.Render(countdownHelp))

	end := time.Now().Add(d)
	if err := client.Send(countdown.Start(end)); err != nil {
		return err
	}

	pausedLeft := -1
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return fmt.Errorf("connection lost: %w", err)
		case msg := <-events:
			fmt.Fprintln(out, renderEvent(msg))
			switch msg.Type {
			case "finished", "stopped":
				return nil
			case "paused":
				if msg.TimeLeft != nil && *msg.TimeLeft > 0 {
					pausedLeft = *msg.TimeLeft
				}
			case "state":
				if msg.IsRunning != nil && *msg.IsRunning && msg.EndTime != nil {
					end = msg.EndTime.Time
					pausedLeft = -1
				}
			}
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			cmd, quit, err := parseLine(line, pausedLeft, end)
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
				continue
			}
			if quit {
				return nil
			}
			if cmd.Kind == "" {
				continue
			}
			logger.Debug("sending command", "action", cmd.Kind)
			if err := client.Send(cmd); err != nil {
				return err
			}
		}
	}
}

// parseLine maps an interactive command to an engine command. Resume
// restarts the countdown from the seconds left when it was paused.
func parseLine(line string, pausedLeft int, end time.Time) (cmd countdown.Command, quit bool, err error) {
	switch line {
	case "":
		return countdown.Command{}, false, nil
	case "pause", "p":
		return countdown.Pause(), false, nil
	case "resume", "r":
		if pausedLeft <= 0 {
			return countdown.Command{}, false, errors.New("not paused")
		}
		return countdown.Start(time.Now().Add(time.Duration(pausedLeft) * time.Second)), false, nil
	case "stop", "s":
		return countdown.Stop(), false, nil
	case "state":
		return countdown.QueryState(), false, nil
	case "sync":
		return countdown.Sync(pausedLeft < 0, end), false, nil
	case "quit", "q":
		return countdown.Command{}, true, nil
	default:
		return countdown.Command{}, false, fmt.Errorf("unknown command %q (%s)", line, countdownHelp)
	}
}
