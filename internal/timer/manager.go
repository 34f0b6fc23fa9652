package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/model"
	"github.com/habitcanvas/timerd/internal/protocol"
	"github.com/habitcanvas/timerd/internal/store"
)

var (
	// ErrNotFound is returned when a timer ID is not registered.
	ErrNotFound = errors.New("timer not found")

	// ErrNotPaused is returned by Resume when the timer holds no paused time.
	ErrNotPaused = errors.New("timer is not paused")

	// ErrInvalidDuration is returned by StartFor for durations under a second.
	ErrInvalidDuration = errors.New("duration must be at least 1s")
)

// Config tunes the countdowns a Manager creates.
type Config struct {
	// TickInterval is the engine cadence. Zero uses countdown.DefaultTickInterval.
	TickInterval time.Duration
	// Location decides which calendar day a session belongs to. Nil uses time.Local.
	Location *time.Location
	// Clock drives the engines and server-side end time math. Nil uses the
	// system clock.
	Clock countdown.Clock
}

// Manager owns the set of named timers.
type Manager struct {
	store  store.Store
	logger *slog.Logger
	broker *Broker
	clock  countdown.Clock
	loc    *time.Location
	opts   []countdown.Option

	mu     sync.RWMutex
	timers map[string]*entry
	wg     sync.WaitGroup
}

type entry struct {
	ch *countdown.Channel

	mu      sync.Mutex
	view    model.Timer
	session sessionTracker
}

// NewManager creates a timer manager recording sessions in s.
func NewManager(s store.Store, logger *slog.Logger, cfg Config) *Manager {
	clock := cfg.Clock
	if clock == nil {
		clock = countdown.SystemClock
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &Manager{
		store:  s,
		logger: logger,
		broker: NewBroker(),
		clock:  clock,
		loc:    loc,
		opts: []countdown.Option{
			countdown.WithClock(clock),
			countdown.WithTickInterval(cfg.TickInterval),
			countdown.WithLogger(logger),
		},
		timers: make(map[string]*entry),
	}
}

// Broker returns the manager's event broker for SSE subscription.
func (m *Manager) Broker() *Broker {
	return m.broker
}

// Create registers a new idle timer and starts its countdown goroutine.
func (m *Manager) Create(label string) *model.Timer {
	now := m.clock.Now().UTC()
	e := &entry{
		ch: countdown.Open(m.opts...),
		view: model.Timer{
			ID:        model.NewID(),
			Label:     label,
			Phase:     model.PhaseIdle,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	m.mu.Lock()
	m.timers[e.view.ID] = e
	m.mu.Unlock()
	timersActive.Inc()

	m.wg.Go(func() {
		m.consume(e)
	})

	m.logger.Info("timer created", "timer_id", e.view.ID, "label", label)
	return e.snapshot()
}

// Get returns a snapshot of the timer's current view.
func (m *Manager) Get(id string) (*model.Timer, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.snapshot(), nil
}

// List returns snapshots of all timers, oldest first.
func (m *Manager) List() []*model.Timer {
	m.mu.RLock()
	timers := make([]*model.Timer, 0, len(m.timers))
	for _, e := range m.timers {
		timers = append(timers, e.snapshot())
	}
	m.mu.RUnlock()

	sort.Slice(timers, func(i, j int) bool {
		return timers[i].ID < timers[j].ID
	})
	return timers
}

// Send queues cmd for the timer's engine. The effect is observable only
// through subsequent events.
func (m *Manager) Send(id string, cmd countdown.Command) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.ch.Send(cmd)
	return nil
}

// StartFor starts the timer with an absolute end time d from now.
func (m *Manager) StartFor(id string, d time.Duration) (time.Time, error) {
	if d < time.Second {
		return time.Time{}, fmt.Errorf("%w: got %v", ErrInvalidDuration, d)
	}
	e, err := m.lookup(id)
	if err != nil {
		return time.Time{}, err
	}
	end := m.clock.Now().Add(d)
	e.ch.Send(countdown.Start(end))
	return end, nil
}

// Resume restarts a paused timer from the time left when it was paused.
func (m *Manager) Resume(id string) (time.Time, error) {
	e, err := m.lookup(id)
	if err != nil {
		return time.Time{}, err
	}

	e.mu.Lock()
	paused := e.view.Phase == model.PhasePaused && e.view.TimeLeft > 0
	left := time.Duration(e.view.TimeLeft) * time.Second
	e.mu.Unlock()

	if !paused {
		return time.Time{}, ErrNotPaused
	}
	end := m.clock.Now().Add(left)
	e.ch.Send(countdown.Start(end))
	return end, nil
}

// Remove closes the timer's countdown and forgets it. An open session is
// recorded as stopped.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	e, ok := m.timers[id]
	if ok {
		delete(m.timers, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.ch.Close()
	timersActive.Dec()
	m.logger.Info("timer removed", "timer_id", id)
	return nil
}

// Close removes every timer and waits for their goroutines to finish.
func (m *Manager) Close() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.timers))
	for id := range m.timers {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		_ = m.Remove(id)
	}
	m.wg.Wait()
}

// Wait blocks until all timer goroutines complete.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.timers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// consume drains the timer's event stream until the channel is closed.
func (m *Manager) consume(e *entry) {
	id := e.view.ID
	defer m.broker.Close(id)

	for ev := range e.ch.Events() {
		countdownEventsTotal.WithLabelValues(string(ev.Type)).Inc()

		e.mu.Lock()
		apply(&e.view, ev)
		sess := e.session.observe(ev)
		label := e.view.Label
		e.mu.Unlock()

		m.broker.Publish(id, protocol.NewOutbound(ev))

		if sess != nil {
			m.record(id, label, sess)
		}
	}

	e.mu.Lock()
	sess := e.session.abandon(m.clock.Now())
	label := e.view.Label
	e.mu.Unlock()
	if sess != nil {
		m.record(id, label, sess)
	}
}

func (m *Manager) record(timerID, label string, sess *model.Session) {
	sess.ID = model.NewID()
	sess.TimerID = timerID
	sess.Label = label
	sess.Day = sess.FinishedAt.In(m.loc).Format(model.DayLayout)
	sess.StartedAt = sess.StartedAt.UTC()
	sess.FinishedAt = sess.FinishedAt.UTC()

	if err := m.store.CreateSession(context.Background(), sess); err != nil {
		m.logger.Error("failed to record session", "timer_id", timerID, "error", err)
		return
	}
	sessionsTotal.WithLabelValues(sess.Outcome()).Inc()
	m.logger.Info("session recorded",
		"timer_id", timerID,
		"session_id", sess.ID,
		"outcome", sess.Outcome(),
		"focus_s", sess.FocusS,
	)
}

func (e *entry) snapshot() *model.Timer {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.view
	if t.EndTime != nil {
		end := t.EndTime.UTC()
		t.EndTime = &end
	}
	return &t
}
