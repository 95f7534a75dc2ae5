package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/chessbot-backend/internal/config"
	"github.com/benbeisheim/chessbot-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
)

type stateResponse struct {
	FEN          string   `json:"fen"`
	ToMove       string   `json:"toMove"`
	IsCheck      bool     `json:"isCheck"`
	NoLegalMoves bool     `json:"noLegalMoves"`
	LegalMoves   []string `json:"legalMoves"`
	MoveHistory  []struct {
		Notation string `json:"notation"`
	} `json:"moveHistory"`
	Sound          string   `json:"sound"`
	SelectedSquare *string  `json:"selectedSquare"`
	Highlights     []string `json:"highlights"`
	Error          string   `json:"error"`
}

func newTestServer(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	gm := service.NewGameManager(cfg.Matchmaking.Interval)
	t.Cleanup(gm.Close)
	return NewApp(cfg, service.NewGameService(gm))
}

func do(t *testing.T, app *fiber.App, method, target, player, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decode(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func createGame(t *testing.T, app *fiber.App, body string) string {
	t.Helper()
	status, data := do(t, app, "POST", "/api/game/create", "alice", body)
	if status != http.StatusOK {
		t.Fatalf("create: status %d: %s", status, data)
	}
	var created struct {
		GameID string `json:"game_id"`
	}
	decode(t, data, &created)
	return created.GameID
}

func seat(t *testing.T, app *fiber.App, gameID string, players ...string) {
	t.Helper()
	for _, p := range players {
		if status, data := do(t, app, "POST", "/api/game/join/"+gameID, p, ""); status != http.StatusOK {
			t.Fatalf("join %s: status %d: %s", p, status, data)
		}
	}
}

func TestGameFlow(t *testing.T) {
	app := newTestServer(t, config.Default())
	gameID := createGame(t, app, "")
	seat(t, app, gameID, "alice", "bob")

	status, data := do(t, app, "GET", "/api/game/"+gameID, "carol", "")
	if status != http.StatusOK {
		t.Fatalf("state: status %d", status)
	}
	var st stateResponse
	decode(t, data, &st)
	if st.ToMove != "white" || len(st.LegalMoves) != 20 {
		t.Fatalf("initial state: toMove=%s legal=%d", st.ToMove, len(st.LegalMoves))
	}

	steps := []struct {
		name       string
		player     string
		path       string
		body       string
		wantStatus int
	}{
		{"black cannot move first", "bob", "/move", `{"from":"e7","to":"e5"}`, http.StatusUnprocessableEntity},
		{"spectator cannot move", "carol", "/move", `{"from":"e2","to":"e4"}`, http.StatusForbidden},
		{"illegal move", "alice", "/move", `{"from":"e2","to":"e5"}`, http.StatusUnprocessableEntity},
		{"empty square", "alice", "/move", `{"from":"e4","to":"e5"}`, http.StatusUnprocessableEntity},
		{"bad square", "alice", "/move", `{"from":"z9","to":"e4"}`, http.StatusBadRequest},
		{"white plays e4", "alice", "/move", `{"from":"e2","to":"e4"}`, http.StatusOK},
		{"black plays e5", "bob", "/move", `{"from":"e7","to":"e5"}`, http.StatusOK},
		{"white takes back", "alice", "/undo", "", http.StatusOK},
	}
	for _, step := range steps {
		status, data := do(t, app, "POST", "/api/game/"+gameID+step.path, step.player, step.body)
		if status != step.wantStatus {
			t.Fatalf("%s: status %d, want %d: %s", step.name, status, step.wantStatus, data)
		}
	}

	_, data = do(t, app, "GET", "/api/game/"+gameID, "alice", "")
	decode(t, data, &st)
	if st.ToMove != "black" {
		t.Errorf("toMove after undo = %s, want black", st.ToMove)
	}
	var history []string
	for _, ply := range st.MoveHistory {
		history = append(history, ply.Notation)
	}
	if diff := cmp.Diff([]string{"e2e4"}, history); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1"; st.FEN != want {
		t.Errorf("fen = %q, want %q", st.FEN, want)
	}
}

func TestCreateFromFEN(t *testing.T) {
	app := newTestServer(t, config.Default())
	gameID := createGame(t, app, `{"fen":"R5k1/5ppp/8/8/8/8/8/6K1 b"}`)

	_, data := do(t, app, "GET", "/api/game/"+gameID, "alice", "")
	var st stateResponse
	decode(t, data, &st)
	if !st.IsCheck || !st.NoLegalMoves {
		t.Errorf("isCheck=%v noLegalMoves=%v, want both true", st.IsCheck, st.NoLegalMoves)
	}

	for name, fen := range map[string]string{
		"no kings":        "8/8/8/8/8/8/8/8 w",
		"king capturable": "4k3/8/8/8/8/8/8/K3R3 w - - 0 1",
	} {
		status, data := do(t, app, "POST", "/api/game/create", "alice", `{"fen":"`+fen+`"}`)
		if status != http.StatusBadRequest {
			t.Errorf("create with %s: status %d, want 400: %s", name, status, data)
		}
	}
}

func TestPromotionRejected(t *testing.T) {
	app := newTestServer(t, config.Default())
	gameID := createGame(t, app, `{"fen":"4k3/P7/8/8/8/8/8/4K3 w"}`)
	seat(t, app, gameID, "alice", "bob")

	status, data := do(t, app, "POST", "/api/game/"+gameID+"/move", "alice", `{"from":"a7","to":"a8"}`)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("promotion: status %d, want 422: %s", status, data)
	}
	var st stateResponse
	decode(t, data, &st)
	if !strings.Contains(st.Error, "promotion") {
		t.Errorf("error = %q, want promotion message", st.Error)
	}
}

func TestGameErrors(t *testing.T) {
	app := newTestServer(t, config.Default())
	gameID := createGame(t, app, "")
	seat(t, app, gameID, "alice", "bob")

	tests := []struct {
		name       string
		method     string
		target     string
		player     string
		wantStatus int
	}{
		{"unknown game", "GET", "/api/game/nope", "alice", http.StatusNotFound},
		{"join unknown game", "POST", "/api/game/join/nope", "alice", http.StatusNotFound},
		{"full game", "POST", "/api/game/join/" + gameID, "carol", http.StatusConflict},
		{"rejoin keeps seat", "POST", "/api/game/join/" + gameID, "bob", http.StatusOK},
		{"no player id", "GET", "/api/game/" + gameID, "", http.StatusUnauthorized},
		{"undo by spectator", "POST", "/api/game/" + gameID + "/undo", "carol", http.StatusForbidden},
		{"undo with no history", "POST", "/api/game/" + gameID + "/undo", "alice", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, data := do(t, app, tt.method, tt.target, tt.player, ""); status != tt.wantStatus {
				t.Errorf("status %d, want %d: %s", status, tt.wantStatus, data)
			}
		})
	}
}

func TestMatchmaking(t *testing.T) {
	cfg := config.Default()
	cfg.Matchmaking.Interval = 10 * time.Millisecond
	cfg.Matchmaking.Wait = 5 * time.Second
	app := newTestServer(t, cfg)

	type match struct {
		GameID string `json:"gameId"`
		Color  string `json:"color"`
	}
	results := make(map[string]match)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/api/game/matchmaking/join", nil)
			req.Header.Set("X-Player-ID", p)
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Errorf("%s: %v", p, err)
				return
			}
			defer resp.Body.Close()
			var m match
			if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
				t.Errorf("%s: decode: %v", p, err)
				return
			}
			mu.Lock()
			results[p] = m
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	a, b := results["alice"], results["bob"]
	if a.GameID == "" || a.GameID != b.GameID {
		t.Fatalf("players matched into different games: %+v %+v", a, b)
	}
	if a.Color == b.Color {
		t.Errorf("both players got %s", a.Color)
	}
	if status, _ := do(t, app, "GET", "/api/game/"+a.GameID, "alice", ""); status != http.StatusOK {
		t.Errorf("matched game state: status %d", status)
	}
}

func TestMatchmakingTimesOut(t *testing.T) {
	cfg := config.Default()
	cfg.Matchmaking.Interval = time.Hour
	cfg.Matchmaking.Wait = 20 * time.Millisecond
	app := newTestServer(t, cfg)

	status, data := do(t, app, "POST", "/api/game/matchmaking/join", "alice", "")
	if status != http.StatusOK || !strings.Contains(string(data), "queued") {
		t.Fatalf("join: status %d body %s", status, data)
	}
	status, data = do(t, app, "POST", "/api/game/matchmaking/leave", "alice", "")
	if status != http.StatusOK || !strings.Contains(string(data), "true") {
		t.Errorf("leave: status %d body %s", status, data)
	}
}
