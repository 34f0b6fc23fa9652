package countdown

import "sync"

// mailbox is an unbounded FIFO queue with a wake-up signal. Pushes never
// block, so neither side of a Channel can stall the other, and nothing is
// dropped. It is safe for concurrent use.
type mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	signal chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{signal: make(chan struct{}, 1)}
}

// push appends v. It reports false once the mailbox is closed.
func (m *mailbox[T]) push(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	m.wake()
	return true
}

// ready is signalled after a push or close. One signal may cover many items.
func (m *mailbox[T]) ready() <-chan struct{} {
	return m.signal
}

// drain removes and returns every queued item in push order, and whether the
// mailbox has been closed. Items pushed before close are always returned by
// a drain that also reports closed or by an earlier one.
func (m *mailbox[T]) drain() ([]T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.items
	m.items = nil
	return items, m.closed
}

// close rejects further pushes. Queued items stay available to drain.
func (m *mailbox[T]) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wake()
}

func (m *mailbox[T]) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}
