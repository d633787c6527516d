package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/philips413/liar-game/internal/broadcast"
	"github.com/philips413/liar-game/internal/config"
	"github.com/philips413/liar-game/internal/events"
	"github.com/philips413/liar-game/internal/game"
	"github.com/philips413/liar-game/internal/rooms"
	"github.com/philips413/liar-game/internal/wordbank"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	hub := broadcast.NewHub()
	srv := &Server{
		Cfg:     config.Config{NextRoundDelay: 0},
		Rooms:   rooms.NewStore(hub, wordbank.Default(), 0),
		Hub:     hub,
		Limiter: newIPLimiter(1000, 1000),
	}
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts, srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp, out
}

func createRoom(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, out := postJSON(t, ts.URL+"/api/rooms", map[string]any{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room status = %d, want 201", resp.StatusCode)
	}
	code, _ := out["roomCode"].(string)
	if code == "" {
		t.Fatal("create room returned no roomCode")
	}
	return code
}

func joinRoom(t *testing.T, ts *httptest.Server, code, nickname string) string {
	t.Helper()
	resp, out := postJSON(t, ts.URL+"/api/rooms/"+code+"/join", map[string]string{"nickname": nickname})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status = %d: %v", resp.StatusCode, out)
	}
	id, _ := out["playerId"].(string)
	if id == "" {
		t.Fatal("join returned no playerId")
	}
	return id
}

func TestCreateJoinAndState(t *testing.T) {
	ts, _ := newTestServer(t)
	code := createRoom(t, ts)

	hostID := joinRoom(t, ts, code, "alice")
	joinRoom(t, ts, code, "bob")
	joinRoom(t, ts, code, "carol")

	resp, err := http.Get(ts.URL + "/api/rooms/" + code)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state status = %d, want 200", resp.StatusCode)
	}

	var snap game.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Code != code || snap.Phase != game.PhaseLobby {
		t.Errorf("snapshot code/phase = %s/%s, want %s/LOBBY", snap.Code, snap.Phase, code)
	}

	nicknames := make([]string, 0, len(snap.Players))
	hosts := 0
	for _, p := range snap.Players {
		nicknames = append(nicknames, p.Nickname)
		if p.IsHost {
			hosts++
			if p.PlayerID != hostID {
				t.Errorf("host = %s, want first joiner %s", p.PlayerID, hostID)
			}
		}
	}
	if hosts != 1 {
		t.Errorf("host count = %d, want 1", hosts)
	}
	if diff := cmp.Diff([]string{"alice", "bob", "carol"}, nicknames); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateRoom_CustomRules(t *testing.T) {
	ts, srv := newTestServer(t)
	resp, out := postJSON(t, ts.URL+"/api/rooms", map[string]any{
		"maxPlayers": 4,
		"roundLimit": 5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	code := out["roomCode"].(string)
	snap, err := srv.Rooms.Get(code).Game.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.MaxPlayers != 4 || snap.RoundLimit != 5 {
		t.Errorf("rules = %d players / %d rounds, want 4/5", snap.MaxPlayers, snap.RoundLimit)
	}
}

func TestRoomLookup_CaseInsensitive(t *testing.T) {
	ts, _ := newTestServer(t)
	code := createRoom(t, ts)

	resp, err := http.Get(ts.URL + "/api/rooms/" + string(bytes.ToLower([]byte(code))))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("lowercase lookup status = %d, want 200", resp.StatusCode)
	}
}

func TestJoinRoom_Errors(t *testing.T) {
	ts, _ := newTestServer(t)
	code := createRoom(t, ts)

	resp, _ := postJSON(t, ts.URL+"/api/rooms/NOPE1234/join", map[string]string{"nickname": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("join unknown room status = %d, want 404", resp.StatusCode)
	}

	resp, out := postJSON(t, ts.URL+"/api/rooms/"+code+"/join", map[string]string{"nickname": "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("join with blank nickname status = %d, want 400: %v", resp.StatusCode, out)
	}
}

func TestStartGame_Statuses(t *testing.T) {
	ts, _ := newTestServer(t)
	code := createRoom(t, ts)
	hostID := joinRoom(t, ts, code, "alice")
	p2 := joinRoom(t, ts, code, "bob")

	start := ts.URL + "/api/rooms/" + code + "/start"

	// Too few players is a validation failure.
	resp, _ := postJSON(t, start, map[string]string{"hostId": hostID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("start with 2 players status = %d, want 400", resp.StatusCode)
	}

	joinRoom(t, ts, code, "carol")

	resp, _ = postJSON(t, start, map[string]string{"hostId": p2})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("start by non-host status = %d, want 400", resp.StatusCode)
	}

	resp, _ = postJSON(t, start, map[string]string{"hostId": hostID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}

	// A lost race against a phase change is a conflict.
	resp, _ = postJSON(t, start, map[string]string{"hostId": hostID})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("double start status = %d, want 409", resp.StatusCode)
	}
}

// Drives one full round over HTTP: describe, accuse, defend, judge.
func TestFullRoundOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)
	code := createRoom(t, ts)
	base := ts.URL + "/api/rooms/" + code

	hostID := joinRoom(t, ts, code, "alice")
	p2 := joinRoom(t, ts, code, "bob")
	p3 := joinRoom(t, ts, code, "carol")

	resp, _ := postJSON(t, base+"/start", map[string]string{"hostId": hostID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	for _, id := range []string{hostID, p2, p3} {
		resp, out := postJSON(t, base+"/descriptions", map[string]string{"playerId": id, "text": "something vague"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("description status = %d: %v", resp.StatusCode, out)
		}
	}

	resp, _ = postJSON(t, base+"/actions/start-voting", map[string]string{"hostId": hostID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start-voting status = %d", resp.StatusCode)
	}

	for voter, target := range map[string]string{hostID: p2, p2: p3, p3: p2} {
		resp, out := postJSON(t, base+"/votes", map[string]string{"voterId": voter, "targetId": target})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("vote status = %d: %v", resp.StatusCode, out)
		}
	}

	resp, _ = postJSON(t, base+"/defense", map[string]string{"playerId": p2, "text": "it was not me"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("defense status = %d", resp.StatusCode)
	}

	resp, _ = postJSON(t, base+"/actions/start-final-voting", map[string]string{"hostId": hostID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start-final-voting status = %d", resp.StatusCode)
	}

	// Lowercase decisions are accepted.
	for _, voter := range []string{hostID, p3} {
		resp, out := postJSON(t, base+"/final-votes", map[string]string{"playerId": voter, "decision": "survive"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("final vote status = %d: %v", resp.StatusCode, out)
		}
	}

	var snap game.Snapshot
	stateResp, err := http.Get(base)
	if err != nil {
		t.Fatal(err)
	}
	defer stateResp.Body.Close()
	if err := json.NewDecoder(stateResp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Phase != game.PhaseRoundEnd {
		t.Errorf("phase = %s, want ROUND_END after a unanimous survive", snap.Phase)
	}
	if snap.Round == nil || snap.Round.AccusedID != p2 {
		t.Errorf("round accused = %+v, want %s", snap.Round, p2)
	}
}

func TestLeaveRoom_HostClosesRegistryEntry(t *testing.T) {
	ts, srv := newTestServer(t)
	code := createRoom(t, ts)
	hostID := joinRoom(t, ts, code, "alice")
	joinRoom(t, ts, code, "bob")

	resp, out := postJSON(t, ts.URL+"/api/rooms/"+code+"/leave", map[string]string{"playerId": hostID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leave status = %d", resp.StatusCode)
	}
	if closed, _ := out["roomClosed"].(bool); !closed {
		t.Error("roomClosed = false, want true for host leave")
	}

	if srv.Rooms.Get(code) != nil {
		t.Error("room still in registry after host leave")
	}
	getResp, err := http.Get(ts.URL + "/api/rooms/" + code)
	if err != nil {
		t.Fatal(err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("state of deleted room status = %d, want 404", getResp.StatusCode)
	}
}

func TestSubscribe_ReceivesRoomEvents(t *testing.T) {
	ts, srv := newTestServer(t)
	code := createRoom(t, ts)
	hostID := joinRoom(t, ts, code, "alice")

	ch := srv.Hub.Subscribe(code, "test-session", hostID)
	joinRoom(t, ts, code, "bob")

	deadline := time.After(time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == events.PlayerJoined {
				return
			}
		case <-deadline:
			t.Fatal("no PLAYER_JOINED event within 1s")
		}
	}
}

func TestCreateRoom_RateLimited(t *testing.T) {
	hub := broadcast.NewHub()
	srv := &Server{
		Cfg:     config.Config{},
		Rooms:   rooms.NewStore(hub, wordbank.Default(), 0),
		Hub:     hub,
		Limiter: newIPLimiter(0.01, 2),
	}
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	limited := false
	for i := 0; i < 5; i++ {
		resp, _ := postJSON(t, ts.URL+"/api/rooms", map[string]any{})
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	if !limited {
		t.Error("burst of 5 creates was never rate limited")
	}
}

// Successful actions refresh the room's idle clock for the stale sweep.
func TestActionsTouchRoom(t *testing.T) {
	ts, srv := newTestServer(t)
	code := createRoom(t, ts)
	room := srv.Rooms.Get(code)

	before := room.LastActive()
	joinRoom(t, ts, code, "alice")
	if !room.LastActive().After(before) {
		t.Error("join did not advance LastActive")
	}

	// A failed action is not activity.
	before = room.LastActive()
	resp, _ := postJSON(t, ts.URL+"/api/rooms/"+code+"/start", map[string]string{"hostId": "nobody"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("start by unknown player status = %d, want 404", resp.StatusCode)
	}
	if room.LastActive().After(before) {
		t.Error("failed action advanced LastActive")
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	createRoom(t, ts)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["status"] != "ok" {
		t.Errorf("status = %v, want ok", out["status"])
	}
	if rooms, _ := out["rooms"].(float64); rooms != 1 {
		t.Errorf("rooms = %v, want 1", out["rooms"])
	}
}

func TestInvalidBody(t *testing.T) {
	ts, _ := newTestServer(t)
	code := createRoom(t, ts)

	resp, err := http.Post(ts.URL+"/api/rooms/"+code+"/join", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", resp.StatusCode)
	}
}

func TestUnknownPlayerIs404(t *testing.T) {
	ts, _ := newTestServer(t)
	code := createRoom(t, ts)
	joinRoom(t, ts, code, "alice")
	joinRoom(t, ts, code, "bob")
	joinRoom(t, ts, code, "carol")

	resp, _ := postJSON(t, ts.URL+"/api/rooms/"+code+"/start", map[string]string{"hostId": "not-a-player"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("start by unknown player status = %d, want 404", resp.StatusCode)
	}
}
