package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventBuffer   = 16
	writeDeadline = 10 * time.Second
)

// Event is one pipeline event pushed to /api/events subscribers.
type Event struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// EventHub broadcasts pipeline events to websocket subscribers. Slow
// subscribers are dropped rather than allowed to stall the pipeline.
type EventHub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan Event
}

// NewEventHub creates an event hub.
func NewEventHub(logger *zap.Logger) *EventHub {
	return &EventHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan Event),
	}
}

// Publish fans an event out to every subscriber.
func (h *EventHub) Publish(eventType, message string) {
	event := Event{
		Type:    eventType,
		Message: message,
		At:      time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			h.logger.Warn("event-subscriber-dropped",
				zap.String("remote", conn.RemoteAddr().String()))
			close(ch)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// Send lets the hub double as a notification sink for purchase events.
func (h *EventHub) Send(_ context.Context, message string, _ string) error {
	h.Publish("purchase", message)
	return nil
}

// Handler returns the /api/events websocket endpoint.
func (h *EventHub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("event-upgrade-failed", zap.Error(err))
			return
		}

		ch := make(chan Event, eventBuffer)

		h.mu.Lock()
		h.clients[conn] = ch
		h.mu.Unlock()

		h.logger.Info("event-subscriber-connected",
			zap.String("remote", conn.RemoteAddr().String()))

		go h.writeLoop(conn, ch)
		go h.readLoop(conn)
	}
}

// Close disconnects every subscriber.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, ch := range h.clients {
		close(ch)
		delete(h.clients, conn)
		_ = conn.Close()
	}
}

func (h *EventHub) writeLoop(conn *websocket.Conn, ch chan Event) {
	for event := range ch {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteJSON(event); err != nil {
			h.unregister(conn)
			return
		}
	}
}

// readLoop drains the connection so close frames are processed.
func (h *EventHub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(conn)
			return
		}
	}
}

func (h *EventHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}

	_ = conn.Close()
}
