// Command timerd serves named countdown timers over HTTP and, when
// TIMERD_CONTROL_ADDR is set, connection-scoped countdown engines over a
// framed control socket.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/habitcanvas/timerd/internal/agent"
	"github.com/habitcanvas/timerd/internal/api"
	"github.com/habitcanvas/timerd/internal/config"
	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/preset"
	"github.com/habitcanvas/timerd/internal/store"
	"github.com/habitcanvas/timerd/internal/timer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("timerd: starting",
		"listen_addr", cfg.ListenAddr,
		"control_addr", cfg.ControlAddr,
		"db_path", cfg.DBPath,
		"log_level", cfg.LogLevel.String(),
		"tick_interval", cfg.TickInterval.String(),
		"stats_timezone", cfg.StatsLocation.String(),
	)

	presets, err := preset.Load(cfg.PresetsPath)
	if err != nil {
		log.Fatalf("failed to load presets: %v", err)
	}

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	timers := timer.NewManager(db, logger, timer.Config{
		TickInterval: cfg.TickInterval,
		Location:     cfg.StatsLocation,
	})
	defer timers.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ControlAddr != "" {
		l, err := agent.Listen(cfg.ControlAddr)
		if err != nil {
			log.Fatalf("failed to open control socket: %v", err)
		}
		ag := agent.New(l, logger, countdown.WithTickInterval(cfg.TickInterval))
		go func() {
			logger.Info("control socket listening", "addr", cfg.ControlAddr)
			if err := ag.Serve(); err != nil {
				logger.Error("control socket", "error", err)
				stop()
			}
		}()
		defer func() {
			if err := ag.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				logger.Warn("close control socket", "error", err)
			}
		}()
	}

	srv := api.NewServer(cfg.ListenAddr, db, presets, timers, cfg.StatsLocation, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
