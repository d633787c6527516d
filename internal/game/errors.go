package game

import "errors"

// Validation errors: rejected synchronously, no state change, no broadcast.
var (
	ErrEmptyNickname   = errors.New("nickname must not be empty")
	ErrEmptyText       = errors.New("text must not be empty")
	ErrRoomFull        = errors.New("room is full")
	ErrGameInProgress  = errors.New("game has already started")
	ErrNotHost         = errors.New("only the host may perform this action")
	ErrNotAccused      = errors.New("only the accused may submit a final defense")
	ErrSelfVote        = errors.New("players may not vote for themselves")
	ErrDeadPlayer      = errors.New("eliminated players may not act")
	ErrDeadTarget      = errors.New("eliminated players may not be vote targets")
	ErrTooFewPlayers   = errors.New("at least 3 players are required to start")
	ErrInvalidDecision = errors.New("final vote decision must be SURVIVE or ELIMINATE")
	ErrAccusedVoter    = errors.New("the accused may not vote in the final ballot")
	ErrAlreadyVoted    = errors.New("vote already cast for this ballot")
	ErrAlreadySaid     = errors.New("description already submitted this round")
	ErrDefenseDone     = errors.New("final defense already submitted")
)

// Conflict errors: the caller lost a race against a transition and should
// re-fetch state.
var (
	ErrWrongPhase   = errors.New("action is not valid in the current phase")
	ErrRoundPending = errors.New("next round is already starting")
)

// Not-found errors.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
)
