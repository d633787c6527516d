package server

import (
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/philips413/liar-game/internal/wshub"
)

// handleSubscribe upgrades the connection and streams the room's events to
// it until the client disconnects or the room is torn down. Inbound actions
// stay on the HTTP surface; the socket is outbound-only.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}

	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "playerId is required"})
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[Handle:Subscribe] Accept error: %v\n", err)
		return
	}

	sessionID := uuid.New().String()
	ch := s.Hub.Subscribe(room.Code, sessionID, playerID)
	defer s.Hub.Unsubscribe(room.Code, sessionID)

	session := &wshub.Session{
		ID:       sessionID,
		PlayerID: playerID,
		Conn:     conn,
	}

	// CloseRead surfaces the client hanging up as context cancellation.
	ctx := conn.CloseRead(r.Context())
	session.WritePump(ctx, ch)
	conn.Close(websocket.StatusNormalClosure, "")
}
