package server

import (
	"context"
	"testing"

	"arena-blitz/server/logging"
	"arena-blitz/server/logging/sinks"
)

// newEventCapture builds a hub whose gameplay events land in a memory sink.
func newEventCapture(t *testing.T) (*Hub, *sinks.MemorySink, func()) {
	t.Helper()
	sink := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	router, err := logging.NewRouter(cfg, nil, nil, map[string]logging.Sink{"memory": sink})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	pub := logging.WithFields(router, map[string]any{"service": "arena-blitz"})
	hub := NewHubWithConfig(DefaultHubConfig(), pub)
	return hub, sink, func() {
		if err := router.Close(context.Background()); err != nil {
			t.Fatalf("router close: %v", err)
		}
	}
}

func eventTypes(events []logging.Event) []logging.EventType {
	types := make([]logging.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func hasEventType(events []logging.Event, want logging.EventType) bool {
	for _, e := range events {
		if e.Type == want {
			return true
		}
	}
	return false
}

func TestHub_PublishesLifecycleEvents(t *testing.T) {
	hub, sink, done := newEventCapture(t)

	c1, c2 := &fakeConn{}, &fakeConn{}
	s1, _ := hub.Connect(c1)
	s2, _ := hub.Connect(c2)
	hub.HandleJoin(s1.ID(), "Alice")
	hub.HandleJoin(s2.ID(), "Bob")
	hub.Disconnect(s2.ID(), "connection closed")
	done()

	events := sink.Events()
	for _, want := range []logging.EventType{
		"lifecycle.player_joined",
		"lifecycle.match_started",
		"lifecycle.player_left",
		"lifecycle.match_ended",
	} {
		if !hasEventType(events, want) {
			t.Fatalf("missing %s in %v", want, eventTypes(events))
		}
	}
	for _, e := range events {
		if e.Extra["service"] != "arena-blitz" {
			t.Fatalf("event %s missing service field: %v", e.Type, e.Extra)
		}
	}
}

func TestHub_PublishesHitRejection(t *testing.T) {
	hub, sink, done := newEventCapture(t)

	c1, c2 := &fakeConn{}, &fakeConn{}
	s1, _ := hub.Connect(c1)
	s2, _ := hub.Connect(c2)
	hub.HandleJoin(s1.ID(), "Alice")
	hub.HandleJoin(s2.ID(), "Bob")

	hub.HandlePosition(s1.ID(), Vec3{}, Rotation{}, "idle")
	hub.HandlePosition(s2.ID(), Vec3{X: 400}, Rotation{}, "idle")
	hub.HandleHit(s1.ID(), s2.ID(), 30, false)
	done()

	events := sink.Events()
	if !hasEventType(events, "combat.hit_rejected") {
		t.Fatalf("expected a hit rejection event, got %v", eventTypes(events))
	}
	for _, e := range events {
		if e.Type != "combat.hit_rejected" {
			continue
		}
		if e.Severity != logging.SeverityWarn {
			t.Fatalf("rejections should carry warn severity, got %d", e.Severity)
		}
		if len(e.Targets) != 1 || e.Targets[0].ID != s2.ID() {
			t.Fatalf("rejection should target the victim: %+v", e.Targets)
		}
	}
}

func TestHub_PublishesDamageAndDefeat(t *testing.T) {
	hub, sink, done := newEventCapture(t)

	c1, c2 := &fakeConn{}, &fakeConn{}
	s1, _ := hub.Connect(c1)
	s2, _ := hub.Connect(c2)
	hub.HandleJoin(s1.ID(), "Alice")
	hub.HandleJoin(s2.ID(), "Bob")

	hub.HandlePosition(s1.ID(), Vec3{}, Rotation{}, "idle")
	hub.HandlePosition(s2.ID(), Vec3{X: 10}, Rotation{}, "idle")

	// Two full-damage rifle hits drop Bob from 100 to dead.
	hub.HandleHit(s1.ID(), s2.ID(), 60, false)
	hub.mu.Lock()
	hub.players[s1.ID()].limiter = NewRateLimiter()
	hub.mu.Unlock()
	hub.HandleHit(s1.ID(), s2.ID(), 60, false)
	done()

	events := sink.Events()
	if !hasEventType(events, "combat.damage") {
		t.Fatalf("expected damage events, got %v", eventTypes(events))
	}
	if !hasEventType(events, "combat.defeat") {
		t.Fatalf("expected a defeat event, got %v", eventTypes(events))
	}
}
