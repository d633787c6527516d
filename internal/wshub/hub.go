// Package wshub bridges broadcast subscriptions onto WebSocket
// connections: one Session per connection, with a write pump that
// serializes events to the socket.
package wshub

import (
	"context"
	"encoding/json"
	"log"

	"github.com/coder/websocket"

	"github.com/philips413/liar-game/internal/events"
)

// Session is a single subscribed WebSocket connection.
type Session struct {
	ID       string
	PlayerID string
	Conn     *websocket.Conn
}

// WritePump drains the subscription channel and writes each event to the
// connection as JSON. It returns when the channel closes (unsubscribe or
// room teardown), the context is cancelled, or a write fails.
func (s *Session) WritePump(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				s.Conn.Close(websocket.StatusNormalClosure, "room closed")
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				log.Printf("[WSHub] Marshal error: %v\n", err)
				continue
			}
			if err := s.Conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
