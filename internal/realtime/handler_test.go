package realtime

import (
	"io"
	"log/slog"
	"testing"
)

func newTestHandler(registry *ConnectionRegistry) *Handler {
	return NewHandler(registry, slog.New(slog.NewTextHandler(io.Discard, nil)), fixedClock)
}

func TestHandler_Control(t *testing.T) {
	t.Run("subscribe sets pass-code and link in one message", func(t *testing.T) {
		registry := NewConnectionRegistry()
		handler := newTestHandler(registry)
		conn := registry.Register(&fakeTransport{})

		handler.handleControl(conn, inboundMessage{Type: "subscribe", PassCode: "PASS-001", LinkID: "L1"})

		if got := registry.connectionsForPass("PASS-001"); len(got) != 1 {
			t.Fatalf("expected pass-code subscription, got %d", len(got))
		}
		if got := registry.connectionsForLink("L1"); len(got) != 1 {
			t.Fatalf("expected link subscription, got %d", len(got))
		}
	})

	t.Run("subscribe_slots and unsubscribe_slots manage link subscriptions", func(t *testing.T) {
		registry := NewConnectionRegistry()
		handler := newTestHandler(registry)
		conn := registry.Register(&fakeTransport{})

		handler.handleControl(conn, inboundMessage{Type: "subscribe_slots", LinkID: "L1"})
		if got := registry.connectionsForLink("L1"); len(got) != 1 {
			t.Fatalf("expected link subscription, got %d", len(got))
		}

		handler.handleControl(conn, inboundMessage{Type: "unsubscribe_slots", LinkID: "L1"})
		if got := registry.connectionsForLink("L1"); len(got) != 0 {
			t.Fatalf("expected link subscription released, got %d", len(got))
		}
	})

	t.Run("ping answers pong to the same connection only", func(t *testing.T) {
		registry := NewConnectionRegistry()
		handler := newTestHandler(registry)
		pinger := &fakeTransport{}
		other := &fakeTransport{}
		conn := registry.Register(pinger)
		registry.Register(other)

		handler.handleControl(conn, inboundMessage{Type: "ping"})

		got := pinger.received()
		if len(got) != 1 || got[0].Type != MessagePong {
			t.Fatalf("expected one pong, got %v", got)
		}
		if len(other.received()) != 0 {
			t.Fatalf("expected no pong on other connections")
		}
	})

	t.Run("unknown message types are ignored", func(t *testing.T) {
		registry := NewConnectionRegistry()
		handler := newTestHandler(registry)
		transport := &fakeTransport{}
		conn := registry.Register(transport)

		handler.handleControl(conn, inboundMessage{Type: "resync_everything"})

		if len(transport.received()) != 0 {
			t.Fatalf("expected no reply to unknown types")
		}
		if got := registry.allConnections(); len(got) != 1 {
			t.Fatalf("expected connection still registered, got %d", len(got))
		}
	})
}
