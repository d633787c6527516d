// Package events defines the closed set of outbound event types a room can
// publish and the payloads they carry. Handlers and the broadcast hub only
// ever see these types; there is no generic string-tagged message.
package events

type Type string

const (
	PlayerJoined            = Type("PLAYER_JOINED")
	PlayerLeft              = Type("PLAYER_LEFT")
	RoomStateUpdate         = Type("ROOM_STATE_UPDATE")
	GameStarted             = Type("GAME_STARTED")
	DescriptionUpdate       = Type("DESCRIPTION_UPDATE")
	AllDescriptionsComplete = Type("ALL_DESCRIPTIONS_COMPLETE")
	VotingStarted           = Type("VOTING_STARTED")
	VoteResult              = Type("VOTE_RESULT")
	FinalDefenseComplete    = Type("FINAL_DEFENSE_COMPLETE")
	FinalVotingStarted      = Type("FINAL_VOTING_STARTED")
	FinalVoteResult         = Type("FINAL_VOTE_RESULT")
	NextRoundStart          = Type("NEXT_ROUND_START")
	GameEnd                 = Type("GAME_END")
	GameInterrupted         = Type("GAME_INTERRUPTED")
	RoomDeleted             = Type("ROOM_DELETED")
)

// Event is one outbound message for a room. Payload is one of the structs
// below, chosen by Type.
type Event struct {
	Type    Type   `json:"type"`
	Room    string `json:"roomCode"`
	Payload any    `json:"payload,omitempty"`
}

// PlayerInfo is the public view of a player. Role and word only ever appear
// in personalized payloads.
type PlayerInfo struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	IsHost   bool   `json:"isHost"`
	IsAlive  bool   `json:"isAlive"`
}

type PlayerPayload struct {
	Player PlayerInfo `json:"player"`
}

// RolePayload is sent to exactly one player on round start. Word is empty
// for the liar.
type RolePayload struct {
	Round int    `json:"round"`
	Role  string `json:"role"`
	Word  string `json:"word,omitempty"`
}

type DescriptionPayload struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
}

type VoteCount struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Votes    int    `json:"votes"`
}

// VoteResultPayload reports the discussion-vote outcome. Accused is nil
// when the vote tied or nobody received a vote.
type VoteResultPayload struct {
	Counts  []VoteCount `json:"counts"`
	IsTie   bool        `json:"isTie"`
	Accused *PlayerInfo `json:"accused,omitempty"`
}

type DefensePayload struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
}

type FinalVoteResultPayload struct {
	Accused    PlayerInfo `json:"accused"`
	Eliminate  int        `json:"eliminateVotes"`
	Survive    int        `json:"surviveVotes"`
	Eliminated bool       `json:"eliminated"`
}

type NextRoundPayload struct {
	NextRound int `json:"nextRound"`
}

// RoleReveal pairs a player with the role they held when the game ended.
type RoleReveal struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// GameEndPayload is personalized: Reason depends on the recipient's role.
type GameEndPayload struct {
	Winner    string       `json:"winner"`
	Reason    string       `json:"reason"`
	LiarID    string       `json:"liarId"`
	LiarName  string       `json:"liarName"`
	Rounds    int          `json:"totalRounds"`
	MaxRounds int          `json:"maxRounds"`
	Players   []RoleReveal `json:"players"`
}

type InterruptPayload struct {
	Reason     string      `json:"reason"`
	LeftPlayer *PlayerInfo `json:"leftPlayer,omitempty"`
}

type RoomDeletedPayload struct {
	Reason string `json:"reason"`
}
