package server

import (
	"testing"
	"time"
)

func TestEventHubBroadcast(t *testing.T) {
	hub := NewEventHub()
	defer hub.Close()

	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	hub.Broadcast(Event{Type: EventRefresh})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case event := <-ch:
			if event.Type != EventRefresh {
				t.Fatalf("unexpected event: %+v", event)
			}
			if event.Timestamp.IsZero() {
				t.Fatal("broadcast should stamp the event")
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed broadcast")
		}
	}
}

func TestEventHubUnsubscribe(t *testing.T) {
	hub := NewEventHub()
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	cancel() // second cancel is a no-op

	hub.Broadcast(Event{Type: EventRefresh})
}

func TestEventHubSlowSubscriberDrops(t *testing.T) {
	hub := NewEventHub()
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			hub.Broadcast(Event{Type: EventFileChanged})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on slow subscriber")
	}
	if len(ch) == 0 {
		t.Fatal("subscriber should have buffered some events")
	}
}

func TestEventHubClosed(t *testing.T) {
	hub := NewEventHub()
	hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()
	if _, ok := <-ch; ok {
		t.Fatal("subscribe after close should return a closed channel")
	}

	hub.Broadcast(Event{Type: EventRefresh})
	hub.Close()
}
