package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/philips413/liar-game/internal/broadcast"
	"github.com/philips413/liar-game/internal/config"
	"github.com/philips413/liar-game/internal/db"
	"github.com/philips413/liar-game/internal/rooms"
	"github.com/philips413/liar-game/internal/wordbank"
)

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Optional database connection: the word bank falls back to the
	// built-in theme table when no database is configured.
	bank := wordbank.Default()
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (using built-in themes)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			themes, err := database.ListThemes()
			if err != nil {
				log.Printf("[DB] Loading themes failed: %v (using built-in themes)\n", err)
			} else if len(themes) > 0 {
				bank = wordbank.New(themes)
				log.Printf("[DB] Loaded %d themes\n", len(themes))
			}
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, using built-in themes")
	}

	hub := broadcast.NewHub()
	srv := &Server{
		Cfg:     cfg,
		Rooms:   rooms.NewStore(hub, bank, cfg.RoomTTL),
		Hub:     hub,
		Limiter: newIPLimiter(cfg.CreateRoomRate, 3),
	}

	addr := "0.0.0.0:" + cfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", cfg.Port)
	return http.ListenAndServe(addr, srv.routes())
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{code}", s.handleRoomState)
	mux.HandleFunc("POST /api/rooms/{code}/join", s.handleJoinRoom)
	mux.HandleFunc("POST /api/rooms/{code}/leave", s.handleLeaveRoom)
	mux.HandleFunc("POST /api/rooms/{code}/start", s.handleStartGame)
	mux.HandleFunc("POST /api/rooms/{code}/descriptions", s.handleSubmitDescription)
	mux.HandleFunc("POST /api/rooms/{code}/votes", s.handleCastVote)
	mux.HandleFunc("POST /api/rooms/{code}/defense", s.handleSubmitDefense)
	mux.HandleFunc("POST /api/rooms/{code}/final-votes", s.handleCastFinalVote)
	mux.HandleFunc("POST /api/rooms/{code}/actions/allow-more-descriptions", s.handleAllowMoreDescriptions)
	mux.HandleFunc("POST /api/rooms/{code}/actions/start-voting", s.handleStartVoting)
	mux.HandleFunc("POST /api/rooms/{code}/actions/close-voting", s.handleCloseVoting)
	mux.HandleFunc("POST /api/rooms/{code}/actions/start-final-voting", s.handleStartFinalVoting)
	mux.HandleFunc("POST /api/rooms/{code}/actions/close-final-voting", s.handleCloseFinalVoting)
	mux.HandleFunc("POST /api/rooms/{code}/actions/proceed-next-round", s.handleProceedNextRound)
	mux.HandleFunc("GET /ws/rooms/{code}", s.handleSubscribe)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
