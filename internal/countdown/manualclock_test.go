package countdown

import (
	"sync"
	"time"
)

// manualClock is a Clock whose time only moves when the test advances it.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

type manualTicker struct {
	clock   *manualClock
	c       chan time.Time
	stopped bool
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (m *manualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualClock) NewTicker(time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{clock: m, c: make(chan time.Time, 1)}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance moves the clock forward and fires every active ticker once.
func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	for _, t := range m.tickers {
		if t.stopped {
			continue
		}
		select {
		case t.c <- m.now:
		default:
		}
	}
}

// Active returns the number of tickers that have not been stopped.
func (m *manualClock) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
