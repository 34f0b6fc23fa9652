package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/habitcanvas/timerd/internal/protocol"
)

func TestBrokerSubscribePublishReceive(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("t1")
	defer unsub()

	b.Publish("t1", protocol.Outbound{Type: "tick"})
	b.Publish("t1", protocol.Outbound{Type: "finished"})

	for _, want := range []string{"tick", "finished"} {
		select {
		case got := <-ch:
			if got.Type != want {
				t.Errorf("got %q, want %q", got.Type, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestBrokerMultipleSubscribers(t *testing.T) {
	b := NewBroker()
	ch1, unsub1 := b.Subscribe("t1")
	defer unsub1()
	ch2, unsub2 := b.Subscribe("t1")
	defer unsub2()

	b.Publish("t1", protocol.Outbound{Type: "stopped"})

	for i, ch := range []<-chan protocol.Outbound{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Type != "stopped" {
				t.Errorf("subscriber %d: got %q", i, got.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timed out", i)
		}
	}
}

func TestBrokerTopicsAreIsolated(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("t1")
	defer unsub()

	b.Publish("t2", protocol.Outbound{Type: "tick"})

	select {
	case got := <-ch:
		t.Fatalf("received message for another timer: %+v", got)
	default:
	}
}

func TestBrokerDisconnectsSlowSubscriber(t *testing.T) {
	b := NewBroker()
	slow, unsubSlow := b.Subscribe("t1")
	defer unsubSlow()
	fast, unsubFast := b.Subscribe("t1")
	defer unsubFast()

	for i := 0; i <= subscriberBufferSize; i++ {
		b.Publish("t1", protocol.Outbound{Type: "tick"})
		<-fast
	}
	b.Publish("t1", protocol.Outbound{Type: "finished"})

	received := 0
	for range slow {
		received++
	}
	if received != subscriberBufferSize {
		t.Errorf("slow subscriber received %d messages before close, want %d", received, subscriberBufferSize)
	}

	select {
	case got := <-fast:
		if got.Type != "finished" {
			t.Errorf("fast subscriber got %q, want finished", got.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("fast subscriber missed the finished message")
	}
}

func TestBrokerCloseClosesSubscribers(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("t1")
	defer unsub()

	b.Close("t1")

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestBrokerLateSubscriberGetsClosedChannel(t *testing.T) {
	b := NewBroker()
	b.Close("t1")

	ch, unsub := b.Subscribe("t1")
	defer unsub()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel for late subscriber")
	}
}

func TestBrokerUnsubscribeAfterClose(t *testing.T) {
	b := NewBroker()
	_, unsub := b.Subscribe("t1")
	b.Close("t1")

	// Must not panic on double close.
	unsub()
}

func TestBrokerSlowSubscriberDropsMessages(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("t1")
	defer unsub()

	for range subscriberBufferSize + 10 {
		b.Publish("t1", protocol.Outbound{Type: "tick"})
	}

	if got := len(ch); got != subscriberBufferSize {
		t.Errorf("buffered = %d, want %d", got, subscriberBufferSize)
	}
}

func TestBrokerConcurrentPublish(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("t1")
	defer unsub()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 4 {
				b.Publish("t1", protocol.Outbound{Type: "tick"})
			}
		})
	}
	wg.Wait()

	if got := len(ch); got != 32 {
		t.Errorf("received %d messages, want 32", got)
	}
}
