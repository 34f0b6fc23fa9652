package agent

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/protocol"
)

// Agent accepts control connections and runs one countdown engine per
// connection.
type Agent struct {
	listener net.Listener
	logger   *slog.Logger
	opts     []countdown.Option

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// New creates an agent serving on listener. opts configure each
// connection's engine.
func New(listener net.Listener, logger *slog.Logger, opts ...countdown.Option) *Agent {
	return &Agent{
		listener: listener,
		logger:   logger,
		opts:     append([]countdown.Option{countdown.WithLogger(logger)}, opts...),
		conns:    make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections until the listener is closed. It returns nil
// after Close.
func (a *Agent) Serve() error {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			conn.Close()
			return nil
		}
		a.conns[conn] = struct{}{}
		a.wg.Add(1)
		a.mu.Unlock()

		go func() {
			defer a.wg.Done()
			defer func() {
				a.mu.Lock()
				delete(a.conns, conn)
				a.mu.Unlock()
			}()
			a.handleConnection(conn)
		}()
	}
}

// Close stops accepting, closes every open connection and waits for their
// engines to shut down.
func (a *Agent) Close() error {
	err := a.listener.Close()

	a.mu.Lock()
	a.closed = true
	for conn := range a.conns {
		conn.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	return err
}

// handleConnection pumps frames between conn and a fresh engine until the
// peer disconnects or a framing error occurs.
func (a *Agent) handleConnection(conn net.Conn) {
	defer conn.Close()

	remote := "unknown"
	if ra := conn.RemoteAddr(); ra != nil && ra.String() != "" {
		remote = ra.String()
	}
	logger := a.logger.With("remote", remote)
	connectionsActive.Inc()
	defer connectionsActive.Dec()
	logger.Debug("control connection opened")

	ch := countdown.Open(a.opts...)

	// Events are drained even after a write error so the engine never
	// blocks on an abandoned consumer.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		var writeErr error
		for ev := range ch.Events() {
			if writeErr != nil {
				continue
			}
			if writeErr = protocol.WriteFrame(conn, protocol.NewOutbound(ev)); writeErr != nil {
				logger.Debug("write event", "error", writeErr)
				conn.Close()
			}
		}
	}()

	for {
		data, err := protocol.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Warn("read frame", "error", err)
			}
			break
		}

		cmd, err := protocol.DecodeInbound(data)
		if err != nil {
			logger.Debug("dropping inbound message", "error", err)
			continue
		}
		ch.Send(cmd)
	}

	ch.Close()
	<-writerDone
	logger.Debug("control connection closed")
}
