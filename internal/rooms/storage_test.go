package rooms

import (
	"testing"
	"time"

	"github.com/philips413/liar-game/internal/broadcast"
	"github.com/philips413/liar-game/internal/game"
	"github.com/philips413/liar-game/internal/wordbank"
)

func newTestStore() *Store {
	return NewStore(broadcast.NewHub(), wordbank.Default(), 0)
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore()

	room, err := s.Create(game.DefaultConfig())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(room.Code) != codeLength {
		t.Errorf("room code = %q, want %d characters", room.Code, codeLength)
	}
	if room.Game == nil {
		t.Fatal("room has no game")
	}

	if got := s.Get(room.Code); got != room {
		t.Errorf("Get(%q) = %p, want the created room", room.Code, got)
	}
	if got := s.Get("NOPE1234"); got != nil {
		t.Errorf("Get(unknown) = %v, want nil", got)
	}
	if got := s.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestStore_UniqueCodes(t *testing.T) {
	s := newTestStore()
	seen := make(map[string]bool)
	for range 50 {
		room, err := s.Create(game.DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if seen[room.Code] {
			t.Fatalf("code %q issued twice", room.Code)
		}
		seen[room.Code] = true
	}
}

func TestStore_Destroy(t *testing.T) {
	s := newTestStore()
	room, err := s.Create(game.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	s.Destroy(room.Code, "ROOM_EXPIRED")

	if got := s.Get(room.Code); got != nil {
		t.Errorf("Get() after Destroy = %v, want nil", got)
	}
	if !room.Game.Closed() {
		t.Error("game not closed after Destroy")
	}
	if got := s.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

// A room whose machine closed itself (host left) is gone from the registry
// even before the explicit Remove, so a lookup never revives it.
func TestStore_GetDropsClosedRooms(t *testing.T) {
	s := newTestStore()
	room, err := s.Create(game.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	host, err := room.Game.Join("alice")
	if err != nil {
		t.Fatal(err)
	}
	closed, err := room.Game.Leave(host.ID)
	if err != nil || !closed {
		t.Fatalf("Leave(host) = (%v, %v), want room closed", closed, err)
	}

	if got := s.Get(room.Code); got != nil {
		t.Errorf("Get() returned a torn-down room")
	}
	if got := s.Count(); got != 0 {
		t.Errorf("Count() = %d after lazy removal, want 0", got)
	}
}

// The sweep is keyed on activity, not age: an old but recently touched room
// survives, an idle one is destroyed.
func TestStore_SweepEvictsIdleRoomsOnly(t *testing.T) {
	s := NewStore(broadcast.NewHub(), wordbank.Default(), time.Hour)

	idle, err := s.Create(game.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	active, err := s.Create(game.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	stale := time.Now().Add(-2 * time.Hour)
	for _, room := range []*Room{idle, active} {
		room.mu.Lock()
		room.lastActive = stale
		room.mu.Unlock()
	}
	active.Touch()

	s.sweepOnce(time.Now())

	if s.Get(idle.Code) != nil {
		t.Error("idle room survived the sweep")
	}
	if s.Get(active.Code) == nil {
		t.Error("recently touched room was swept")
	}
	if !idle.Game.Closed() {
		t.Error("swept room's game was not closed")
	}
}

func TestRoom_TouchAdvancesLastActive(t *testing.T) {
	s := newTestStore()
	room, err := s.Create(game.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	before := room.LastActive()
	if before.IsZero() {
		t.Fatal("LastActive is zero for a fresh room")
	}

	room.mu.Lock()
	room.lastActive = before.Add(-time.Minute)
	room.mu.Unlock()

	room.Touch()
	if !room.LastActive().After(before.Add(-time.Minute)) {
		t.Error("Touch did not advance LastActive")
	}
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore()
	room, err := s.Create(game.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	room.Game.Close("HOST_LEFT")
	s.Remove(room.Code)

	if got := s.Get(room.Code); got != nil {
		t.Errorf("Get() after Remove = %v, want nil", got)
	}
}
