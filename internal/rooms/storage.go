// Package rooms is the room registry: it creates, looks up, and destroys
// game rooms by code, and guarantees one authoritative state machine per
// live code.
package rooms

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/philips413/liar-game/internal/broadcast"
	"github.com/philips413/liar-game/internal/game"
	"github.com/philips413/liar-game/internal/metrics"
	"github.com/philips413/liar-game/internal/wordbank"
)

type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	hub   *broadcast.Hub
	bank  *wordbank.Bank
	ttl   time.Duration
}

func NewStore(hub *broadcast.Hub, bank *wordbank.Bank, ttl time.Duration) *Store {
	s := &Store{
		rooms: make(map[string]*Room),
		hub:   hub,
		bank:  bank,
		ttl:   ttl,
	}
	if ttl > 0 {
		go s.sweepStale()
	}
	return s
}

// Create makes a new room with a code unique among live rooms.
func (s *Store) Create(cfg game.Config) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try up to 10 times to generate a unique code
	for range 10 {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}

		now := time.Now()
		room := &Room{
			Code:       code,
			Game:       game.New(code, cfg, s.bank, s.hub),
			CreatedAt:  now,
			lastActive: now,
		}
		s.rooms[code] = room
		metrics.RoomsActive.Set(float64(len(s.rooms)))
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code after 10 attempts")
}

// Get returns the room for code, or nil. Rooms whose machine has been torn
// down are treated as gone even before the registry entry is removed, so a
// lookup never races a teardown into a half-alive handle.
func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.rooms[code]
	if room != nil && room.Game.Closed() {
		delete(s.rooms, code)
		metrics.RoomsActive.Set(float64(len(s.rooms)))
		return nil
	}
	return room
}

// Remove drops a room whose machine has already been closed and evicts its
// subscribers.
func (s *Store) Remove(code string) {
	s.mu.Lock()
	delete(s.rooms, code)
	metrics.RoomsActive.Set(float64(len(s.rooms)))
	s.mu.Unlock()
	s.hub.CloseRoom(code)
}

// Destroy closes the room's machine for reason, then removes it.
func (s *Store) Destroy(code, reason string) {
	s.mu.Lock()
	room := s.rooms[code]
	delete(s.rooms, code)
	metrics.RoomsActive.Set(float64(len(s.rooms)))
	s.mu.Unlock()

	if room != nil {
		room.Game.Close(reason)
	}
	s.hub.CloseRoom(code)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

func (s *Store) sweepStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.sweepOnce(time.Now())
	}
}

// sweepOnce destroys rooms with no player action for longer than the TTL.
func (s *Store) sweepOnce(now time.Time) {
	for _, room := range s.List() {
		if now.Sub(room.LastActive()) > s.ttl {
			log.Printf("[Rooms] Sweeping idle room %s\n", room.Code)
			s.Destroy(room.Code, "ROOM_EXPIRED")
		}
	}
}
