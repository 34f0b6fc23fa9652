package countdown

import (
	"log/slog"
	"sync"
)

// Channel is the asynchronous control channel in front of one Engine.
// Commands are applied one at a time in send order on the channel's own
// goroutine, and every resulting event is delivered on Events in emission
// order. Send never blocks and nothing is dropped in either direction.
// There is no request/response pairing: a controller learns the effect of a
// command from the events that follow it.
type Channel struct {
	inbox  *mailbox[Command]
	outbox *mailbox[Event]
	events chan Event
	logger *slog.Logger

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Open creates an idle engine and starts the goroutine that owns it.
// Callers must drain Events until it is closed.
func Open(opts ...Option) *Channel {
	o := buildOptions(opts)

	c := &Channel{
		inbox:  newMailbox[Command](),
		outbox: newMailbox[Event](),
		events: make(chan Event),
		logger: o.logger,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	eng := newEngine(func(ev Event) { c.outbox.push(ev) }, o)
	go c.run(eng)
	go c.deliver()

	return c
}

// Send queues cmd for the engine. It returns immediately; after Close it is
// a no-op.
func (c *Channel) Send(cmd Command) {
	if !c.inbox.push(cmd) {
		c.logger.Debug("countdown: command after close", "kind", cmd.Kind)
	}
}

// Events returns the ordered event stream. It is closed after Close once
// every queued event has been received.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Close stops the engine goroutine and its ticker. Commands still queued are
// discarded; events already emitted are still delivered. Close is safe to
// call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.inbox.close()
		close(c.quit)
	})
	<-c.done
}

// run is the engine's only goroutine. Commands and ticks are handled in the
// same select so a command never interleaves with a tick, and a ticker
// replaced by Start is never read again.
func (c *Channel) run(eng *Engine) {
	defer close(c.done)
	defer c.outbox.close()
	defer eng.Close()

	for {
		select {
		case <-c.quit:
			return
		case <-c.inbox.ready():
			cmds, _ := c.inbox.drain()
			for _, cmd := range cmds {
				if !eng.Handle(cmd) {
					c.logger.Debug("countdown: ignoring unknown command", "kind", cmd.Kind)
				}
			}
		case <-eng.C():
			eng.Tick()
		}
	}
}

// deliver moves emitted events from the outbox to the consumer.
func (c *Channel) deliver() {
	defer close(c.events)

	for range c.outbox.ready() {
		evs, closed := c.outbox.drain()
		for _, ev := range evs {
			c.events <- ev
		}
		if closed {
			return
		}
	}
}
