package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/philips413/liar-game/internal/broadcast"
	"github.com/philips413/liar-game/internal/config"
	"github.com/philips413/liar-game/internal/game"
	"github.com/philips413/liar-game/internal/metrics"
	"github.com/philips413/liar-game/internal/rooms"
)

type Server struct {
	Cfg     config.Config
	Rooms   *rooms.Store
	Hub     *broadcast.Hub
	Limiter *ipLimiter
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("[Handle] Encode error: %v\n", err)
		}
	}
}

// writeActionErr maps the machine's error taxonomy onto HTTP statuses:
// not-found 404, lost-race conflicts 409, everything else is a validation
// failure 400. No error here is ever broadcast.
func writeActionErr(w http.ResponseWriter, action string, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrRoundPending):
		status = http.StatusConflict
	}
	metrics.ActionsTotal.WithLabelValues(action, "error").Inc()
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func actionOK(action string) {
	metrics.ActionsTotal.WithLabelValues(action, "ok").Inc()
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// getRoom resolves the room from the path, or writes a 404.
func (s *Server) getRoom(w http.ResponseWriter, r *http.Request) *rooms.Room {
	code := strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
	room := s.Rooms.Get(code)
	if room == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: game.ErrRoomNotFound.Error()})
		return nil
	}
	return room
}

type createRoomRequest struct {
	MaxPlayers int    `json:"maxPlayers"`
	RoundLimit int    `json:"roundLimit"`
	ThemeGroup string `json:"themeGroup"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if !s.Limiter.Allow(clientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many rooms created, slow down"})
		return
	}

	var req createRoomRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cfg := game.DefaultConfig()
	cfg.NextRoundDelay = s.Cfg.NextRoundDelay
	if req.MaxPlayers > 0 {
		cfg.MaxPlayers = req.MaxPlayers
	}
	if req.RoundLimit > 0 {
		cfg.RoundLimit = req.RoundLimit
	}
	cfg.ThemeGroup = req.ThemeGroup

	room, err := s.Rooms.Create(cfg)
	if err != nil {
		log.Printf("[Handle:CreateRoom] %v\n", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to create room"})
		return
	}

	log.Printf("[Handle:CreateRoom] Created room %s\n", room.Code)
	actionOK("create_room")
	writeJSON(w, http.StatusCreated, map[string]string{"roomCode": room.Code})
}

type joinRequest struct {
	Nickname string `json:"nickname"`
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}
	var req joinRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	player, err := room.Game.Join(strings.TrimSpace(req.Nickname))
	if err != nil {
		writeActionErr(w, "join_room", err)
		return
	}

	room.Touch()
	actionOK("join_room")
	writeJSON(w, http.StatusOK, map[string]any{
		"playerId": player.ID,
		"isHost":   player.IsHost,
	})
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}
	var req playerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	closed, err := room.Game.Leave(req.PlayerID)
	if err != nil {
		writeActionErr(w, "leave_room", err)
		return
	}
	if closed {
		s.Rooms.Remove(room.Code)
	} else {
		room.Touch()
	}

	actionOK("leave_room")
	writeJSON(w, http.StatusOK, map[string]bool{"roomClosed": closed})
}

func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}
	snap, err := room.Game.Snapshot()
	if err != nil {
		writeActionErr(w, "room_state", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type hostRequest struct {
	HostID string `json:"hostId"`
}

// hostAction covers the host-only transitions that share a request shape.
func (s *Server) hostAction(w http.ResponseWriter, r *http.Request, action string, fn func(g *game.Game, hostID string) error) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}
	var req hostRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := fn(room.Game, req.HostID); err != nil {
		writeActionErr(w, action, err)
		return
	}
	room.Touch()
	actionOK(action)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	s.hostAction(w, r, "start_game", (*game.Game).Start)
}

func (s *Server) handleAllowMoreDescriptions(w http.ResponseWriter, r *http.Request) {
	s.hostAction(w, r, "allow_more_descriptions", (*game.Game).AllowMoreDescriptions)
}

func (s *Server) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	s.hostAction(w, r, "start_voting", (*game.Game).StartVoting)
}

func (s *Server) handleCloseVoting(w http.ResponseWriter, r *http.Request) {
	s.hostAction(w, r, "close_voting", (*game.Game).CloseVoting)
}

func (s *Server) handleStartFinalVoting(w http.ResponseWriter, r *http.Request) {
	s.hostAction(w, r, "start_final_voting", (*game.Game).StartFinalVoting)
}

func (s *Server) handleCloseFinalVoting(w http.ResponseWriter, r *http.Request) {
	s.hostAction(w, r, "close_final_voting", (*game.Game).CloseFinalVoting)
}

func (s *Server) handleProceedNextRound(w http.ResponseWriter, r *http.Request) {
	s.hostAction(w, r, "proceed_next_round", (*game.Game).ProceedNextRound)
}

type textRequest struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}

func (s *Server) handleSubmitDescription(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}
	var req textRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := room.Game.SubmitDescription(req.PlayerID, strings.TrimSpace(req.Text)); err != nil {
		writeActionErr(w, "submit_description", err)
		return
	}
	room.Touch()
	actionOK("submit_description")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSubmitDefense(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}
	var req textRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := room.Game.SubmitDefense(req.PlayerID, strings.TrimSpace(req.Text)); err != nil {
		writeActionErr(w, "submit_defense", err)
		return
	}
	room.Touch()
	actionOK("submit_defense")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type voteRequest struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}
	var req voteRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := room.Game.CastVote(req.VoterID, req.TargetID); err != nil {
		writeActionErr(w, "cast_vote", err)
		return
	}
	room.Touch()
	actionOK("cast_vote")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type finalVoteRequest struct {
	PlayerID string `json:"playerId"`
	Decision string `json:"decision"`
}

func (s *Server) handleCastFinalVote(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(w, r)
	if room == nil {
		return
	}
	var req finalVoteRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := room.Game.CastFinalVote(req.PlayerID, strings.ToUpper(req.Decision)); err != nil {
		writeActionErr(w, "cast_final_vote", err)
		return
	}
	room.Touch()
	actionOK("cast_final_vote")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.Rooms.Count(),
	})
}
