package game

import "github.com/philips413/liar-game/internal/ballot"

// Description is one submitted description, in submission order.
type Description struct {
	PlayerID string
	Text     string
}

// Round holds the state of one round. It is created fresh at round start
// and replaced wholesale by the next round.
type Round struct {
	Index        int
	LiarID       string
	Word         string
	Descriptions []Description

	// described tracks submissions for the current description pass; the
	// host may reset it to allow another pass without re-dealing roles.
	described    map[string]bool
	descComplete bool

	Vote        *ballot.Ballot
	AccusedID   string
	DefenseText string
	defenseDone bool
	FinalVote   *ballot.Ballot
}

func newRound(index int) *Round {
	return &Round{
		Index:     index,
		described: make(map[string]bool),
	}
}
