// Package game owns a single room's authoritative state and serializes all
// actions against it. Every exported method takes the room lock, validates
// the action against the current phase and the caller's role, mutates state
// and publishes the resulting events before returning. Nothing outside this
// package mutates room state.
package game

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/philips413/liar-game/internal/ballot"
	"github.com/philips413/liar-game/internal/events"
	"github.com/philips413/liar-game/internal/roles"
	"github.com/philips413/liar-game/internal/wordbank"
)

// Winner values carried by GAME_END payloads.
const (
	WinnerCitizens = "CITIZENS"
	WinnerLiar     = "LIAR"
)

// Publisher delivers events to the room's subscribers. The broadcast hub
// implements it.
type Publisher interface {
	Publish(code string, evt events.Event)
	PublishTo(code, playerID string, evt events.Event)
}

// Config fixes a room's rules at creation time.
type Config struct {
	MaxPlayers int
	RoundLimit int
	ThemeGroup string

	// RerollRoles re-draws the liar and word every round (the default).
	// When false the round-one liar keeps the role for the whole game.
	RerollRoles bool

	// NextRoundDelay is the countdown between the host's proceed action
	// and the next round actually starting. Zero starts it immediately.
	NextRoundDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxPlayers:     8,
		RoundLimit:     3,
		RerollRoles:    true,
		NextRoundDelay: 3 * time.Second,
	}
}

// Game is the state machine for one room.
type Game struct {
	mu     sync.Mutex
	code   string
	cfg    Config
	bank   *wordbank.Bank
	pub    Publisher
	closed bool

	phase        Phase
	currentRound int
	players      []*Player
	round        *Round

	// seq guards timers: any transition that invalidates a pending timer
	// bumps it, making a stale fire a no-op.
	seq          uint64
	roundPending bool
	timer        *time.Timer
}

func New(code string, cfg Config, bank *wordbank.Bank, pub Publisher) *Game {
	return &Game{
		code:  code,
		cfg:   cfg,
		bank:  bank,
		pub:   pub,
		phase: PhaseLobby,
	}
}

// Join adds a player in the lobby. The first player to join is the host.
func (g *Game) Join(nickname string) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrRoomNotFound
	}
	if nickname == "" {
		return nil, ErrEmptyNickname
	}
	if g.phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	if len(g.players) >= g.cfg.MaxPlayers {
		return nil, ErrRoomFull
	}

	p := &Player{
		ID:       uuid.New().String(),
		Nickname: nickname,
		IsHost:   len(g.players) == 0,
		IsAlive:  true,
	}
	g.players = append(g.players, p)

	g.publish(events.PlayerJoined, events.PlayerPayload{Player: p.Info()})
	g.publishRoomState()
	return p, nil
}

// Leave removes a player. A host leave tears the whole room down; the
// caller must drop the room from the registry when closed is true.
func (g *Game) Leave(playerID string) (closed bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return false, ErrRoomNotFound
	}
	p := g.player(playerID)
	if p == nil {
		return false, ErrPlayerNotFound
	}

	if p.IsHost {
		g.closeLocked("HOST_LEFT")
		return true, nil
	}

	g.removePlayer(playerID)
	g.publish(events.PlayerLeft, events.PlayerPayload{Player: p.Info()})

	if len(g.players) == 0 {
		g.closeLocked("ROOM_EMPTY")
		return true, nil
	}

	if g.phase.InRound() {
		g.handleInRoundLeave(p)
	}
	if !g.closed {
		g.publishRoomState()
	}
	return false, nil
}

// handleInRoundLeave keeps the round consistent after a non-host leave.
// Must be called with g.mu held.
func (g *Game) handleInRoundLeave(p *Player) {
	if p.IsAlive && len(g.alivePlayers()) < roles.MinPlayers {
		g.interruptLocked(p)
		return
	}

	// The accused vanishing ends the judgment early with no elimination.
	if g.round != nil && g.round.AccusedID == p.ID &&
		(g.phase == PhaseDefending || g.phase == PhaseFinalVoting) {
		g.endRoundLocked(false)
		return
	}

	// Eligibility follows present alive players, so a leave can
	// retroactively complete the description pass or a ballot.
	switch g.phase {
	case PhaseDescribing:
		if !g.round.descComplete && g.allDescribed() {
			g.round.descComplete = true
			g.publish(events.AllDescriptionsComplete, nil)
		}
	case PhaseVoting:
		g.round.Vote.RemoveVoter(p.ID)
		g.round.Vote.RemoveTarget(p.ID)
		if g.round.Vote.Complete() {
			g.finishVoteLocked()
		}
	case PhaseFinalVoting:
		g.round.FinalVote.RemoveVoter(p.ID)
		if g.round.FinalVote.Complete() {
			g.finishFinalVoteLocked()
		}
	}
}

// Start begins the game: host-only, lobby-only, at least 3 players.
func (g *Game) Start(hostID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	if err := g.requireHost(hostID); err != nil {
		return err
	}
	if g.phase != PhaseLobby {
		return ErrWrongPhase
	}
	if len(g.players) < roles.MinPlayers {
		return ErrTooFewPlayers
	}

	g.currentRound = 1
	return g.startRoundLocked()
}

// startRoundLocked deals roles and opens the description phase. Must be
// called with g.mu held.
func (g *Game) startRoundLocked() error {
	alive := g.alivePlayers()
	ids := make([]string, len(alive))
	for i, p := range alive {
		ids[i] = p.ID
	}

	theme, err := g.bank.Random(g.cfg.ThemeGroup)
	if err != nil {
		return err
	}

	round := newRound(g.currentRound)

	if g.cfg.RerollRoles || g.currentRound == 1 {
		assigned, err := roles.Assign(ids, theme)
		if err != nil {
			return err
		}
		for _, p := range alive {
			a := assigned[p.ID]
			p.Role = a.Role
			p.CardWord = a.Word
			if a.Role == roles.Liar {
				round.LiarID = p.ID
			}
			if a.Role == roles.Citizen {
				round.Word = a.Word
			}
		}
	} else {
		// Sticky-liar policy: keep prior roles, only the word is known.
		for _, p := range alive {
			if p.Role == roles.Liar {
				round.LiarID = p.ID
			} else {
				round.Word = p.CardWord
			}
		}
	}

	g.round = round
	g.setPhase(PhaseDescribing)

	for _, p := range alive {
		g.pub.PublishTo(g.code, p.ID, events.Event{
			Type: events.GameStarted,
			Room: g.code,
			Payload: events.RolePayload{
				Round: g.currentRound,
				Role:  string(p.Role),
				Word:  p.CardWord,
			},
		})
	}
	g.publishRoomState()
	log.Printf("[Game] Room %s round %d started, %d players\n", g.code, g.currentRound, len(alive))
	return nil
}

// SubmitDescription records one description per alive player per pass.
func (g *Game) SubmitDescription(playerID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	p := g.player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if g.phase != PhaseDescribing {
		return ErrWrongPhase
	}
	if !p.IsAlive {
		return ErrDeadPlayer
	}
	if text == "" {
		return ErrEmptyText
	}
	if g.round.described[playerID] {
		return ErrAlreadySaid
	}

	g.round.described[playerID] = true
	g.round.Descriptions = append(g.round.Descriptions, Description{PlayerID: playerID, Text: text})

	g.publish(events.DescriptionUpdate, events.DescriptionPayload{
		PlayerID: playerID,
		Nickname: p.Nickname,
		Text:     text,
	})

	if !g.round.descComplete && g.allDescribed() {
		g.round.descComplete = true
		g.publish(events.AllDescriptionsComplete, nil)
	}
	return nil
}

// AllowMoreDescriptions opens another description pass without re-dealing
// roles. Host-only.
func (g *Game) AllowMoreDescriptions(hostID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	if err := g.requireHost(hostID); err != nil {
		return err
	}
	if g.phase != PhaseDescribing {
		return ErrWrongPhase
	}

	g.round.described = make(map[string]bool)
	g.round.descComplete = false
	g.publishRoomState()
	return nil
}

// StartVoting freezes descriptions and opens the discussion ballot.
// Host-only.
func (g *Game) StartVoting(hostID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	if err := g.requireHost(hostID); err != nil {
		return err
	}
	if g.phase != PhaseDescribing {
		return ErrWrongPhase
	}

	g.round.Vote = ballot.New(g.aliveIDs(""))
	g.setPhase(PhaseVoting)
	g.publish(events.VotingStarted, nil)
	return nil
}

// CastVote records one discussion vote. Self-votes and votes on or from
// eliminated players are rejected. The ballot auto-closes when the last
// eligible voter votes.
func (g *Game) CastVote(voterID, targetID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	voter := g.player(voterID)
	if voter == nil {
		return ErrPlayerNotFound
	}
	target := g.player(targetID)
	if target == nil {
		return ErrPlayerNotFound
	}
	if g.phase != PhaseVoting {
		return ErrWrongPhase
	}
	if !voter.IsAlive {
		return ErrDeadPlayer
	}
	if !target.IsAlive {
		return ErrDeadTarget
	}
	if voterID == targetID {
		return ErrSelfVote
	}

	if err := g.round.Vote.Cast(voterID, targetID); err != nil {
		return mapBallotErr(err)
	}
	if g.round.Vote.Complete() {
		g.finishVoteLocked()
	}
	return nil
}

// CloseVoting force-closes the discussion ballot with whatever votes are
// in. Host-only; covers abstention or disconnect deadlock.
func (g *Game) CloseVoting(hostID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	if err := g.requireHost(hostID); err != nil {
		return err
	}
	if g.phase != PhaseVoting {
		return ErrWrongPhase
	}
	g.finishVoteLocked()
	return nil
}

// finishVoteLocked tallies the discussion ballot and either opens the
// defense or ends the round with no accusation. Must hold g.mu.
func (g *Game) finishVoteLocked() {
	g.round.Vote.Close()
	res := g.round.Vote.Tally()

	payload := events.VoteResultPayload{IsTie: res.IsTie}
	for id, n := range res.Counts {
		name := ""
		if p := g.player(id); p != nil {
			name = p.Nickname
		}
		payload.Counts = append(payload.Counts, events.VoteCount{PlayerID: id, Nickname: name, Votes: n})
	}

	// A winner who is no longer in the room resolves like a tie: nobody is
	// accused and the round ends.
	accused := g.player(res.WinnerID)
	if accused == nil {
		g.publish(events.VoteResult, payload)
		g.endRoundLocked(false)
		return
	}

	info := accused.Info()
	payload.Accused = &info
	g.round.AccusedID = accused.ID
	g.setPhase(PhaseDefending)
	g.publish(events.VoteResult, payload)
}

// SubmitDefense records the accused player's one-time final statement.
func (g *Game) SubmitDefense(playerID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	p := g.player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if g.phase != PhaseDefending {
		return ErrWrongPhase
	}
	if playerID != g.round.AccusedID {
		return ErrNotAccused
	}
	if g.round.defenseDone {
		return ErrDefenseDone
	}
	if text == "" {
		return ErrEmptyText
	}

	g.round.DefenseText = text
	g.round.defenseDone = true
	g.publish(events.FinalDefenseComplete, events.DefensePayload{
		PlayerID: playerID,
		Nickname: p.Nickname,
		Text:     text,
	})
	return nil
}

// StartFinalVoting opens the survive/eliminate ballot. Host-only. The host
// may force-advance past an absent defense.
func (g *Game) StartFinalVoting(hostID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	if err := g.requireHost(hostID); err != nil {
		return err
	}
	if g.phase != PhaseDefending {
		return ErrWrongPhase
	}

	g.round.FinalVote = ballot.New(g.aliveIDs(g.round.AccusedID))
	g.setPhase(PhaseFinalVoting)

	accused := g.player(g.round.AccusedID)
	info := accused.Info()
	g.publish(events.FinalVotingStarted, events.PlayerPayload{Player: info})
	return nil
}

// CastFinalVote records one SURVIVE/ELIMINATE vote. The accused is not an
// eligible voter.
func (g *Game) CastFinalVote(voterID, decision string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	voter := g.player(voterID)
	if voter == nil {
		return ErrPlayerNotFound
	}
	if g.phase != PhaseFinalVoting {
		return ErrWrongPhase
	}
	if !voter.IsAlive {
		return ErrDeadPlayer
	}
	if voterID == g.round.AccusedID {
		return ErrAccusedVoter
	}
	if decision != ballot.DecisionSurvive && decision != ballot.DecisionEliminate {
		return ErrInvalidDecision
	}

	if err := g.round.FinalVote.Cast(voterID, decision); err != nil {
		return mapBallotErr(err)
	}
	if g.round.FinalVote.Complete() {
		g.finishFinalVoteLocked()
	}
	return nil
}

// CloseFinalVoting force-closes the survive/eliminate ballot. Host-only.
func (g *Game) CloseFinalVoting(hostID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	if err := g.requireHost(hostID); err != nil {
		return err
	}
	if g.phase != PhaseFinalVoting {
		return ErrWrongPhase
	}
	g.finishFinalVoteLocked()
	return nil
}

// finishFinalVoteLocked tallies the judgment and ends the round. A tie
// favors the accused. Must hold g.mu.
func (g *Game) finishFinalVoteLocked() {
	g.round.FinalVote.Close()
	res := g.round.FinalVote.TallyDecision()

	accused := g.player(g.round.AccusedID)
	if res.Eliminated {
		accused.IsAlive = false
	}

	g.publish(events.FinalVoteResult, events.FinalVoteResultPayload{
		Accused:    accused.Info(),
		Eliminate:  res.Eliminate,
		Survive:    res.Survive,
		Eliminated: res.Eliminated,
	})
	g.endRoundLocked(res.Eliminated)
}

// endRoundLocked runs the win-condition evaluation that every round ends
// with. Must hold g.mu.
func (g *Game) endRoundLocked(eliminated bool) {
	g.setPhase(PhaseRoundEnd)

	liarAlive := false
	if liar := g.player(g.round.LiarID); liar != nil && liar.IsAlive {
		liarAlive = true
	}

	// The liar's elimination ends the game immediately.
	if eliminated && !liarAlive {
		g.endGameLocked(WinnerCitizens)
		return
	}
	// Too few citizens left to ever out-vote the liar.
	if liarAlive && len(g.alivePlayers()) <= 2 {
		g.endGameLocked(WinnerLiar)
		return
	}
	// Surviving the last round is a liar win.
	if g.currentRound >= g.cfg.RoundLimit {
		g.endGameLocked(WinnerLiar)
		return
	}
	g.publishRoomState()
}

// ProceedNextRound advances past ROUND_END. Host-only. The round starts
// after the configured countdown; calling again while the countdown is
// pending is a conflict, so a double-submit advances only once.
func (g *Game) ProceedNextRound(hostID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRoomNotFound
	}
	if err := g.requireHost(hostID); err != nil {
		return err
	}
	if g.phase != PhaseRoundEnd {
		return ErrWrongPhase
	}
	if g.roundPending {
		return ErrRoundPending
	}

	g.currentRound++
	g.publish(events.NextRoundStart, events.NextRoundPayload{NextRound: g.currentRound})

	if g.cfg.NextRoundDelay <= 0 {
		return g.startRoundLocked()
	}

	g.roundPending = true
	g.seq++
	seq := g.seq
	g.timer = time.AfterFunc(g.cfg.NextRoundDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		// A teardown or interruption since scheduling makes this a no-op.
		if g.closed || g.seq != seq || !g.roundPending {
			return
		}
		g.roundPending = false
		if err := g.startRoundLocked(); err != nil {
			log.Printf("[Game] Room %s failed to start round %d: %v\n", g.code, g.currentRound, err)
		}
	})
	return nil
}

// endGameLocked finishes the game and sends each player a personalized
// GAME_END: the liar and the citizens see different reasons. Must hold g.mu.
func (g *Game) endGameLocked(winner string) {
	g.setPhase(PhaseEnded)
	g.cancelTimersLocked()

	liar := g.player(g.round.LiarID)
	liarID, liarName := "", ""
	if liar != nil {
		liarID, liarName = liar.ID, liar.Nickname
	}

	reveal := make([]events.RoleReveal, 0, len(g.players))
	for _, p := range g.players {
		reveal = append(reveal, events.RoleReveal{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Role:     string(p.Role),
		})
	}

	for _, p := range g.players {
		reason := ""
		switch {
		case p.Role == roles.Liar && winner == WinnerLiar:
			reason = "mission_success"
		case p.Role == roles.Liar:
			reason = "mission_failed"
		case winner == WinnerCitizens:
			reason = "citizens_victory"
		default:
			reason = "citizens_defeat"
		}
		g.pub.PublishTo(g.code, p.ID, events.Event{
			Type: events.GameEnd,
			Room: g.code,
			Payload: events.GameEndPayload{
				Winner:    winner,
				Reason:    reason,
				LiarID:    liarID,
				LiarName:  liarName,
				Rounds:    g.currentRound,
				MaxRounds: g.cfg.RoundLimit,
				Players:   reveal,
			},
		})
	}
	log.Printf("[Game] Room %s ended: winner=%s liar=%s\n", g.code, winner, liarName)
}

// interruptLocked aborts the round and returns the room to the lobby when
// it can no longer be played. Must hold g.mu.
func (g *Game) interruptLocked(left *Player) {
	g.cancelTimersLocked()
	g.round = nil
	g.currentRound = 0
	for _, p := range g.players {
		p.resetForLobby()
	}
	g.setPhase(PhaseLobby)

	payload := events.InterruptPayload{Reason: "NOT_ENOUGH_PLAYERS"}
	if left != nil {
		info := left.Info()
		payload.LeftPlayer = &info
	}
	g.publish(events.GameInterrupted, payload)
	log.Printf("[Game] Room %s interrupted: not enough players\n", g.code)
}

// Close tears the room down for reason and prevents all further
// transitions. In-flight actions that lose the race fail with
// ErrRoomNotFound.
func (g *Game) Close(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.closeLocked(reason)
	}
}

// closeLocked must be called with g.mu held.
func (g *Game) closeLocked(reason string) {
	g.cancelTimersLocked()
	g.publish(events.RoomDeleted, events.RoomDeletedPayload{Reason: reason})
	g.closed = true
	log.Printf("[Game] Room %s closed: %s\n", g.code, reason)
}

// Closed reports whether the room has been torn down.
func (g *Game) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// cancelTimersLocked invalidates any pending round-start timer. Must hold
// g.mu.
func (g *Game) cancelTimersLocked() {
	g.seq++
	g.roundPending = false
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Game) setPhase(next Phase) {
	if !g.phase.CanTransitionTo(next) {
		// Transitions are produced by the guard table above; reaching this
		// is a bug in the machine, not a user error.
		log.Printf("[Game] Room %s invalid transition %s -> %s\n", g.code, g.phase, next)
		return
	}
	g.phase = next
}

func (g *Game) requireHost(playerID string) error {
	p := g.player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if !p.IsHost {
		return ErrNotHost
	}
	return nil
}

func (g *Game) player(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) removePlayer(id string) {
	for i, p := range g.players {
		if p.ID == id {
			g.players = append(g.players[:i], g.players[i+1:]...)
			return
		}
	}
}

func (g *Game) alivePlayers() []*Player {
	var alive []*Player
	for _, p := range g.players {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

// aliveIDs returns alive player ids minus the excluded id, if any.
func (g *Game) aliveIDs(exclude string) []string {
	var ids []string
	for _, p := range g.players {
		if p.IsAlive && p.ID != exclude {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (g *Game) allDescribed() bool {
	for _, p := range g.players {
		if p.IsAlive && !g.round.described[p.ID] {
			return false
		}
	}
	return true
}

func (g *Game) publish(t events.Type, payload any) {
	g.pub.Publish(g.code, events.Event{Type: t, Room: g.code, Payload: payload})
}

func (g *Game) publishRoomState() {
	g.publish(events.RoomStateUpdate, g.snapshotLocked())
}

func mapBallotErr(err error) error {
	switch err {
	case ballot.ErrAlreadyVoted:
		return ErrAlreadyVoted
	case ballot.ErrNotEligible:
		return ErrDeadPlayer
	case ballot.ErrClosed:
		return ErrWrongPhase
	}
	return err
}
