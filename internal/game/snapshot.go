package game

import "github.com/philips413/liar-game/internal/events"

// Snapshot is the full public state of a room, reconstructed on demand for
// state queries and ROOM_STATE_UPDATE events. Roles and words are withheld;
// clients learn their own through personalized events.
type Snapshot struct {
	Code         string              `json:"roomCode"`
	Phase        Phase               `json:"phase"`
	MaxPlayers   int                 `json:"maxPlayers"`
	RoundLimit   int                 `json:"roundLimit"`
	CurrentRound int                 `json:"currentRound"`
	ThemeGroup   string              `json:"themeGroup,omitempty"`
	Players      []events.PlayerInfo `json:"players"`
	Round        *RoundSnapshot      `json:"round,omitempty"`
}

type RoundSnapshot struct {
	Index                int                         `json:"index"`
	Descriptions         []events.DescriptionPayload `json:"descriptions"`
	DescriptionsComplete bool                        `json:"descriptionsComplete"`
	VotesCast            int                         `json:"votesCast"`
	EligibleVoters       int                         `json:"eligibleVoters"`
	AccusedID            string                      `json:"accusedPlayerId,omitempty"`
	DefenseText          string                      `json:"finalDefenseText,omitempty"`
	FinalVotesCast       int                         `json:"finalVotesCast"`
}

// Snapshot returns the room's current state.
func (g *Game) Snapshot() (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return Snapshot{}, ErrRoomNotFound
	}
	return g.snapshotLocked(), nil
}

// snapshotLocked must be called with g.mu held.
func (g *Game) snapshotLocked() Snapshot {
	snap := Snapshot{
		Code:         g.code,
		Phase:        g.phase,
		MaxPlayers:   g.cfg.MaxPlayers,
		RoundLimit:   g.cfg.RoundLimit,
		CurrentRound: g.currentRound,
		ThemeGroup:   g.cfg.ThemeGroup,
		Players:      make([]events.PlayerInfo, 0, len(g.players)),
	}
	for _, p := range g.players {
		snap.Players = append(snap.Players, p.Info())
	}

	if g.round == nil {
		return snap
	}
	rs := &RoundSnapshot{
		Index:                g.round.Index,
		DescriptionsComplete: g.round.descComplete,
		AccusedID:            g.round.AccusedID,
		DefenseText:          g.round.DefenseText,
	}
	for _, d := range g.round.Descriptions {
		name := ""
		if p := g.player(d.PlayerID); p != nil {
			name = p.Nickname
		}
		rs.Descriptions = append(rs.Descriptions, events.DescriptionPayload{
			PlayerID: d.PlayerID,
			Nickname: name,
			Text:     d.Text,
		})
	}
	if g.round.Vote != nil {
		rs.VotesCast = g.round.Vote.Votes()
		rs.EligibleVoters = g.round.Vote.Eligible()
	}
	if g.round.FinalVote != nil {
		rs.FinalVotesCast = g.round.FinalVote.Votes()
	}
	snap.Round = rs
	return snap
}
