package countdown

import (
	"io"
	"log/slog"
	"time"
)

// DefaultTickInterval is the cadence at which a running engine re-reads the
// clock. It bounds how late a second boundary or completion can be observed.
const DefaultTickInterval = 100 * time.Millisecond

type options struct {
	clock     Clock
	interval  time.Duration
	everyTick bool
	logger    *slog.Logger
}

// Option configures an Engine or Channel.
type Option func(*options)

// WithClock injects the clock used for remaining-time math and tickers.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithTickInterval sets the ticker cadence. Non-positive values keep the default.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithEveryTick makes the engine emit a tick event on every cadence tick
// instead of only when the whole-second value changes.
func WithEveryTick() Option {
	return func(o *options) {
		o.everyTick = true
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock:    SystemClock,
		interval: DefaultTickInterval,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
