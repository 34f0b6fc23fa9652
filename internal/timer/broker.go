package timer

import (
	"sync"

	"github.com/habitcanvas/timerd/internal/protocol"
)

// subscriberBufferSize is the channel buffer for each event subscriber.
// A subscriber that falls this far behind is disconnected.
const subscriberBufferSize = 64

// Broker fans out per-timer outbound messages to subscribers.
// It is safe for concurrent use.
//
// Closed topics are retained as markers so that late subscribers (those
// subscribing after a timer is removed) receive a closed channel instead of
// blocking forever.
type Broker struct {
	mu     sync.Mutex
	topics map[string]*topic
}

type topic struct {
	subs   map[int]chan protocol.Outbound
	nextID int
	closed bool
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string]*topic),
	}
}

// Subscribe returns a channel that receives messages for the given timer and
// an unsubscribe function. If the timer has already been removed, the
// returned channel is immediately closed.
func (b *Broker) Subscribe(timerID string) (<-chan protocol.Outbound, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[timerID]
	if !ok {
		t = &topic{subs: make(map[int]chan protocol.Outbound)}
		b.topics[timerID] = t
	}

	ch := make(chan protocol.Outbound, subscriberBufferSize)
	if t.closed {
		close(ch)
		return ch, func() {}
	}

	id := t.nextID
	t.nextID++
	t.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(ch)
		}
	}
}

// Publish sends msg to all subscribers of the given timer. A subscriber
// whose buffer is full has its channel closed rather than missing a
// message, so a stalled SSE client never holds up the countdown and never
// sees a stream with gaps.
func (b *Broker) Publish(timerID string, msg protocol.Outbound) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[timerID]
	if !ok || t.closed {
		return
	}

	for id, ch := range t.subs {
		select {
		case ch <- msg:
		default:
			close(ch)
			delete(t.subs, id)
		}
	}
}

// Close signals that no more messages will be published for the given
// timer. All subscriber channels are closed and future Subscribe calls
// return a closed channel.
func (b *Broker) Close(timerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[timerID]
	if !ok {
		b.topics[timerID] = &topic{subs: make(map[int]chan protocol.Outbound), closed: true}
		return
	}

	t.closed = true
	for id, ch := range t.subs {
		close(ch)
		delete(t.subs, id)
	}
}
