package broadcast

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/models"
)

// Event types pushed to connected views
const (
	EventThemeChanged   = "theme.changed"
	EventSessionExpired = "session.expired"
	EventNotification   = "notification"
)

// Event is a single broadcast message. Every open view receives every
// event, which is what keeps theme and session state in lock-step
// across windows.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub fans events out to all subscribers: websocket-connected views and
// in-process listeners alike
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers an in-process listener. The returned cancel
// function must be called to release the subscription.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber. Slow subscribers are
// skipped rather than blocking the publisher.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Notify implements the session manager's notifier by broadcasting the
// notification to every connected view
func (h *Hub) Notify(n models.Notification) {
	h.Publish(Event{Type: EventNotification, Payload: n})
}

// SessionExpired broadcasts a forced-logout event
func (h *Hub) SessionExpired() {
	h.Publish(Event{Type: EventSessionExpired})
}

// ThemeChanged broadcasts the new theme so every open view switches at
// once
func (h *Hub) ThemeChanged(theme models.Theme) {
	h.Publish(Event{Type: EventThemeChanged, Payload: map[string]models.Theme{"theme": theme}})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// TokenValidator checks the bearer token presented on the websocket
// query string, since browsers cannot set headers on socket upgrades
type TokenValidator interface {
	IsAuthenticated() bool
	Token() string
}

// HandleWebSocket upgrades the connection and streams hub events to the
// view until it disconnects
func (h *Hub) HandleWebSocket(validator TokenValidator) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" || !validator.IsAuthenticated() || token != validator.Token() {
			return echo.NewHTTPError(401, "invalid token")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		events, cancel := h.Subscribe(32)

		// Reader drains control frames and detects disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for evt := range events {
			if err := conn.WriteJSON(evt); err != nil {
				log.Printf("events websocket write failed: %v", err)
				break
			}
		}

		cancel()
		conn.Close()
		return nil
	}
}
