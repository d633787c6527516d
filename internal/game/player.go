package game

import (
	"github.com/philips413/liar-game/internal/events"
	"github.com/philips413/liar-game/internal/roles"
)

// Player is one participant's authoritative state. Only the owning Game
// mutates it, under the room lock.
type Player struct {
	ID       string
	Nickname string
	IsHost   bool
	IsAlive  bool

	// Secret round state, cleared outside rounds.
	Role     roles.Role
	CardWord string
}

// Info returns the public view of the player, with role and word withheld.
func (p *Player) Info() events.PlayerInfo {
	return events.PlayerInfo{
		PlayerID: p.ID,
		Nickname: p.Nickname,
		IsHost:   p.IsHost,
		IsAlive:  p.IsAlive,
	}
}

// resetForLobby clears round state after a game ends or is interrupted.
func (p *Player) resetForLobby() {
	p.IsAlive = true
	p.Role = ""
	p.CardWord = ""
}
