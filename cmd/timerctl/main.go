// Command timerctl drives a timerd control socket interactively and watches
// a server's session statistics.
//
// Usage:
//
//	timerctl [-addr unix:/run/timerd.sock] countdown [-for 25m | -preset pomodoro]
//	timerctl watch [-url http://localhost:8080] [-interval 30s]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/habitcanvas/timerd/internal/config"
)

const defaultAddr = "unix:/tmp/timerd.sock"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("timerctl: "+err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("timerctl", flag.ContinueOnError)
	addr := fs.String("addr", defaultAddr, "control socket address (unix:, tcp:, vsock:, hvsock:)")
	verbose := fs.Bool("v", false, "log debug output to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := config.NewLogger(os.Stderr, level)

	if fs.NArg() == 0 {
		return fmt.Errorf("missing command (countdown or watch)")
	}

	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "countdown":
		return runCountdown(ctx, *addr, rest, in, out, logger)
	case "watch":
		return runWatch(ctx, rest, out, logger)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
