package countdown

import "time"

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock provides wall-clock time and periodic tickers.
// This interface enables dependency injection for testing countdown behavior.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// SystemClock is the default Clock implementation using the standard library.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }

func (s systemTicker) Stop() { s.t.Stop() }
