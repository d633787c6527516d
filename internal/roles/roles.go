// Package roles assigns round roles: exactly one uniformly random liar, and
// one word from the round's theme shared by every citizen. The liar gets no
// word.
package roles

import (
	"errors"
	"math/rand"

	"github.com/philips413/liar-game/internal/wordbank"
)

// MinPlayers is the smallest pool a round can be dealt to.
const MinPlayers = 3

var ErrTooFewPlayers = errors.New("at least 3 players are required")

type Role string

const (
	Citizen = Role("CITIZEN")
	Liar    = Role("LIAR")
)

// Assignment is one player's secret for the round.
type Assignment struct {
	Role Role
	Word string
}

// Assign deals roles for one round. Every invocation is independent: the
// liar and the citizen word are re-drawn with no memory of prior rounds.
func Assign(playerIDs []string, theme wordbank.Theme) (map[string]Assignment, error) {
	if len(playerIDs) < MinPlayers {
		return nil, ErrTooFewPlayers
	}

	word := theme.WordA
	if rand.Intn(2) == 1 {
		word = theme.WordB
	}

	liar := playerIDs[rand.Intn(len(playerIDs))]

	out := make(map[string]Assignment, len(playerIDs))
	for _, id := range playerIDs {
		if id == liar {
			out[id] = Assignment{Role: Liar}
			continue
		}
		out[id] = Assignment{Role: Citizen, Word: word}
	}
	return out, nil
}
