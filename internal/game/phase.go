package game

// Phase is the room lifecycle position. Transitions only happen through the
// guard table below; handlers never mutate phase directly.
type Phase string

const (
	PhaseLobby       = Phase("LOBBY")
	PhaseDescribing  = Phase("DESCRIBING")
	PhaseVoting      = Phase("VOTING")
	PhaseDefending   = Phase("DEFENDING")
	PhaseFinalVoting = Phase("FINAL_VOTING")
	PhaseRoundEnd    = Phase("ROUND_END")
	PhaseEnded       = Phase("ENDED")
)

func (p Phase) String() string {
	return string(p)
}

// InRound reports whether a round is currently being played.
func (p Phase) InRound() bool {
	switch p {
	case PhaseDescribing, PhaseVoting, PhaseDefending, PhaseFinalVoting, PhaseRoundEnd:
		return true
	}
	return false
}

var validTransitions = map[Phase][]Phase{
	PhaseLobby:       {PhaseDescribing},
	PhaseDescribing:  {PhaseDescribing, PhaseVoting, PhaseLobby},
	PhaseVoting:      {PhaseDefending, PhaseRoundEnd, PhaseLobby},
	PhaseDefending:   {PhaseFinalVoting, PhaseRoundEnd, PhaseLobby},
	PhaseFinalVoting: {PhaseRoundEnd, PhaseLobby},
	PhaseRoundEnd:    {PhaseDescribing, PhaseEnded, PhaseLobby},
	PhaseEnded:       {},
}

// CanTransitionTo reports whether target is reachable from p. Returning to
// LOBBY models a mid-round interruption; ENDED is terminal. Any in-round
// phase may end the game directly through ROUND_END evaluation.
func (p Phase) CanTransitionTo(target Phase) bool {
	if target == PhaseEnded && p.InRound() {
		return true
	}
	for _, next := range validTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}
