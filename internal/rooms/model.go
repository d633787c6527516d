package rooms

import (
	"sync"
	"time"

	"github.com/philips413/liar-game/internal/game"
)

type Room struct {
	Code      string
	Game      *game.Game
	CreatedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
}

// Touch marks the room as active. Handlers call it after every successful
// player action so the stale sweep only evicts idle rooms.
func (r *Room) Touch() {
	r.mu.Lock()
	r.lastActive = time.Now()
	r.mu.Unlock()
}

// LastActive returns the time of the room's most recent player action.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}
