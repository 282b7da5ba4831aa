package sse

import "testing"

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()

	a := &Client{ID: "a", Username: "gate-a", Events: make(chan Event, 4)}
	b := &Client{ID: "b", Username: "gate-b", Events: make(chan Event, 4)}
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(Event{EventType: "status_update", Data: `{"truck_no":"ABC123"}`})

	for _, client := range []*Client{a, b} {
		select {
		case ev := <-client.Events:
			if ev.EventType != "status_update" {
				t.Fatalf("client %s got event %q", client.ID, ev.EventType)
			}
		default:
			t.Fatalf("client %s received nothing", client.ID)
		}
	}

	hub.Unregister("a")
	if _, ok := <-a.Events; ok {
		t.Fatal("expected closed channel after unregister")
	}

	// A full buffer must not block the publisher.
	for i := 0; i < 8; i++ {
		hub.Broadcast(Event{EventType: "status_update", Data: "{}"})
	}
}
