// Package broadcast fans room events out to subscribed client sessions.
// Sessions subscribe per room code and receive every event published for
// that code, in publish order. Delivery never blocks on a slow subscriber:
// a session whose buffer is full is dropped and its channel closed.
package broadcast

import (
	"log"
	"sync"

	"github.com/philips413/liar-game/internal/events"
	"github.com/philips413/liar-game/internal/metrics"
)

const sendBuffer = 32

type subscriber struct {
	sessionID string
	playerID  string
	ch        chan events.Event
}

// Hub maps room codes to their subscriber sets. Publishing for one room
// holds the hub lock, so per-room event order is preserved end to end.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[string]*subscriber
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]*subscriber)}
}

// Subscribe registers a session under code, bound to playerID for
// personalized delivery, and returns the channel events arrive on.
// Subscribing an existing session again replaces its channel.
func (h *Hub) Subscribe(code, sessionID, playerID string) <-chan events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[code]
	if !ok {
		subs = make(map[string]*subscriber)
		h.rooms[code] = subs
	}
	if old, ok := subs[sessionID]; ok {
		close(old.ch)
	}
	sub := &subscriber{
		sessionID: sessionID,
		playerID:  playerID,
		ch:        make(chan events.Event, sendBuffer),
	}
	subs[sessionID] = sub
	return sub.ch
}

// Unsubscribe removes a session. Unknown sessions are a no-op, so
// disconnect paths can call it unconditionally.
func (h *Hub) Unsubscribe(code, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[code]
	if !ok {
		return
	}
	if sub, ok := subs[sessionID]; ok {
		close(sub.ch)
		delete(subs, sessionID)
	}
	if len(subs) == 0 {
		delete(h.rooms, code)
	}
}

// Publish delivers evt to every session subscribed to code.
func (h *Hub) Publish(code string, evt events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.rooms[code]
	for _, sub := range subs {
		h.send(code, subs, sub, evt)
	}
	metrics.EventsPublished.WithLabelValues(string(evt.Type)).Inc()
}

// PublishTo delivers evt only to sessions bound to playerID.
func (h *Hub) PublishTo(code, playerID string, evt events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.rooms[code]
	for _, sub := range subs {
		if sub.playerID == playerID {
			h.send(code, subs, sub, evt)
		}
	}
	metrics.EventsPublished.WithLabelValues(string(evt.Type)).Inc()
}

// Subscribers returns the number of sessions subscribed to code.
func (h *Hub) Subscribers(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[code])
}

// CloseRoom evicts every session for code, closing their channels.
func (h *Hub) CloseRoom(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.rooms[code] {
		close(sub.ch)
	}
	delete(h.rooms, code)
}

// send must be called with h.mu held.
func (h *Hub) send(code string, subs map[string]*subscriber, sub *subscriber, evt events.Event) {
	select {
	case sub.ch <- evt:
	default:
		// Buffer full: the session is dead or too slow to keep up.
		log.Printf("[Hub] Dropping session %s in room %s: send buffer full\n", sub.sessionID, code)
		close(sub.ch)
		delete(subs, sub.sessionID)
	}
}
