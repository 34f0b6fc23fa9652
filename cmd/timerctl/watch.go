package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/habitcanvas/timerd/internal/model"
	"github.com/habitcanvas/timerd/internal/statsclient"
)

func runWatch(ctx context.Context, args []string, out io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	url := fs.String("url", "http://localhost:8080", "timerd HTTP base URL")
	interval := fs.Duration("interval", statsclient.DefaultInterval, "refresh interval")
	once := fs.Bool("once", false, "print the current stats and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	render := func(s *model.SessionStats) {
		fmt.Fprint(out, renderStats(s))
	}

	p := statsclient.New(*url, logger,
		statsclient.WithInterval(*interval),
		statsclient.WithOnUpdate(render),
	)

	if *once {
		stats, err := p.Fetch(ctx)
		if err != nil {
			return err
		}
		render(stats)
		return nil
	}

	p.Run(ctx)
	return nil
}
