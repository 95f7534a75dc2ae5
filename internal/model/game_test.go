package model

import (
	"errors"
	"testing"

	"github.com/benbeisheim/chessbot-backend/internal/engine"
	"github.com/google/go-cmp/cmp"
)

func sq(t *testing.T, s string) engine.Square {
	t.Helper()
	out, err := engine.ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func mv(t *testing.T, from, to string) WSMove {
	t.Helper()
	return WSMove{From: sq(t, from), To: sq(t, to)}
}

func seatedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1")
	for _, p := range []string{"alice", "bob"} {
		if _, err := g.AddPlayer(p); err != nil {
			t.Fatalf("AddPlayer(%s): %v", p, err)
		}
	}
	return g
}

func TestAddPlayer(t *testing.T) {
	g := NewGame("g1")

	steps := []struct {
		player    string
		wantColor PlayerColor
		wantErr   error
	}{
		{"alice", PlayerColorWhite, nil},
		{"bob", PlayerColorBlack, nil},
		{"alice", PlayerColorWhite, nil},
		{"carol", "", ErrGameFull},
	}
	for _, step := range steps {
		color, err := g.AddPlayer(step.player)
		if !errors.Is(err, step.wantErr) {
			t.Fatalf("AddPlayer(%s) error = %v, want %v", step.player, err, step.wantErr)
		}
		if color != step.wantColor {
			t.Errorf("AddPlayer(%s) = %s, want %s", step.player, color, step.wantColor)
		}
	}
	if g.CanSpectate() {
		t.Error("full game still open to spectators")
	}
	if !g.IsPlayerInGame("bob") || g.IsPlayerInGame("carol") {
		t.Error("IsPlayerInGame disagrees with seating")
	}
}

func TestMakeMoveErrors(t *testing.T) {
	tests := []struct {
		name    string
		player  string
		move    WSMove
		wantErr error
	}{
		{"spectator", "carol", mv(t, "e2", "e4"), ErrNotInGame},
		{"out of turn", "bob", mv(t, "e7", "e5"), ErrNotYourTurn},
		{"empty square", "alice", mv(t, "e4", "e5"), ErrNoPiece},
		{"not legal", "alice", mv(t, "e2", "e5"), ErrIllegalMove},
		{"opponent piece", "alice", mv(t, "e7", "e5"), ErrIllegalMove},
		{"off the board", "alice", WSMove{From: engine.Square{Rank: 8, File: 0}, To: sq(t, "a1")}, ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := seatedGame(t)
			before := g.GetState()
			if err := g.MakeMove(tt.player, tt.move); !errors.Is(err, tt.wantErr) {
				t.Fatalf("MakeMove error = %v, want %v", err, tt.wantErr)
			}
			after := g.GetState()
			if before.FEN != after.FEN || before.Version != after.Version {
				t.Error("rejected move changed the game")
			}
		})
	}
}

func TestMakeMoveAndUndo(t *testing.T) {
	g := seatedGame(t)

	for _, m := range []struct{ player, from, to string }{
		{"alice", "e2", "e4"},
		{"bob", "d7", "d5"},
		{"alice", "e4", "d5"},
	} {
		if err := g.MakeMove(m.player, mv(t, m.from, m.to)); err != nil {
			t.Fatalf("%s %s%s: %v", m.player, m.from, m.to, err)
		}
	}

	st := g.GetState()
	if st.Sound != "capture" {
		t.Errorf("sound = %q, want capture", st.Sound)
	}
	if st.ToMove != PlayerColorBlack {
		t.Errorf("toMove = %s, want black", st.ToMove)
	}
	want := []engine.Piece{{Color: engine.Black, Type: engine.Pawn}}
	if diff := cmp.Diff(want, st.CapturedPieces.White); diff != "" {
		t.Errorf("white captures mismatch (-want +got):\n%s", diff)
	}
	if len(st.CapturedPieces.Black) != 0 {
		t.Errorf("black captures = %v, want none", st.CapturedPieces.Black)
	}
	if got, want := st.MoveHistory[0].ID, 6444; got != want {
		t.Errorf("first ply id = %d, want %d", got, want)
	}
	if st.MoveHistory[2].CapturedPiece == nil || st.MoveHistory[0].CapturedPiece != nil {
		t.Error("captured piece not recorded on the right ply")
	}
	if diff := cmp.Diff(&SimpleMove{From: sq(t, "e4"), To: sq(t, "d5")}, st.LastMove); diff != "" {
		t.Errorf("last move mismatch (-want +got):\n%s", diff)
	}

	// Either seated player may take back, whoever is to move.
	if err := g.Undo("alice"); err != nil {
		t.Fatal(err)
	}
	st = g.GetState()
	if st.ToMove != PlayerColorWhite || len(st.MoveHistory) != 2 {
		t.Errorf("after undo: toMove=%s plies=%d", st.ToMove, len(st.MoveHistory))
	}
	if st.Board.Board[3][3] == nil || st.Board.Board[3][3].Color != engine.Black {
		t.Error("undo did not restore the captured pawn on d5")
	}
	if len(st.CapturedPieces.White) != 0 {
		t.Error("undo left the capture in the captured list")
	}

	if err := g.Undo("carol"); !errors.Is(err, ErrNotInGame) {
		t.Errorf("spectator undo error = %v, want %v", err, ErrNotInGame)
	}
}

func TestUndoEmptyHistory(t *testing.T) {
	g := seatedGame(t)
	before := g.GetState()
	if err := g.Undo("bob"); err != nil {
		t.Fatal(err)
	}
	after := g.GetState()
	if after.FEN != before.FEN || after.ToMove != PlayerColorWhite {
		t.Errorf("undo with no history changed the position: %s", after.FEN)
	}
	if len(after.LegalMoves) != 20 {
		t.Errorf("legal moves = %d, want 20", len(after.LegalMoves))
	}
}

func TestPromotionRefused(t *testing.T) {
	g, err := NewGameFromFEN("g1", "4k3/P7/8/8/8/8/8/4K3 w")
	if err != nil {
		t.Fatal(err)
	}
	g.AddPlayer("alice")
	g.AddPlayer("bob")

	if err := g.MakeMove("alice", mv(t, "a7", "a8")); !errors.Is(err, ErrPromotionUnsupported) {
		t.Fatalf("MakeMove error = %v, want %v", err, ErrPromotionUnsupported)
	}
	if st := g.GetState(); len(st.MoveHistory) != 0 {
		t.Error("promotion was applied")
	}
	// Other moves still go through.
	if err := g.MakeMove("alice", mv(t, "e1", "d1")); err != nil {
		t.Fatal(err)
	}
}

func TestPromotionOnlyPositionHasNoPlayableMoves(t *testing.T) {
	// The white king is boxed in, so the only legal move is e7e8.
	g, err := NewGameFromFEN("g1", "8/4P3/8/8/8/1p6/2k5/K7 w")
	if err != nil {
		t.Fatal(err)
	}
	st := g.GetState()
	if len(st.LegalMoves) != 0 || !st.NoLegalMoves {
		t.Errorf("legalMoves=%v noLegalMoves=%v, want none playable", st.LegalMoves, st.NoLegalMoves)
	}
	if st.IsCheck {
		t.Error("isCheck = true, want false")
	}
}

func TestPlayableMoves(t *testing.T) {
	state, err := engine.FromFEN("4k3/P7/8/8/8/8/8/4K3 w")
	if err != nil {
		t.Fatal(err)
	}
	legal := state.ValidMoves()
	playable := PlayableMoves(legal)
	if len(playable) != len(legal)-1 {
		t.Fatalf("playable = %d of %d legal, want one promotion dropped", len(playable), len(legal))
	}
	for _, m := range playable {
		if m.IsPromotion() {
			t.Errorf("%s kept", m)
		}
	}
}

func TestCheckAndNoLegalMoves(t *testing.T) {
	g, err := NewGameFromFEN("g1", "6k1/5ppp/8/8/8/8/8/R5K1 w")
	if err != nil {
		t.Fatal(err)
	}
	g.AddPlayer("alice")
	g.AddPlayer("bob")

	if err := g.MakeMove("alice", mv(t, "a1", "a8")); err != nil {
		t.Fatal(err)
	}
	st := g.GetState()
	if !st.IsCheck || !st.NoLegalMoves {
		t.Errorf("isCheck=%v noLegalMoves=%v, want both", st.IsCheck, st.NoLegalMoves)
	}
	if st.Sound != "check" {
		t.Errorf("sound = %q, want check", st.Sound)
	}
	if len(st.LegalMoves) != 0 {
		t.Errorf("legal moves = %v, want none", st.LegalMoves)
	}
}

func TestSelect(t *testing.T) {
	g := seatedGame(t)

	// Empty square then a pawn: the pawn becomes the selection.
	for _, s := range []string{"e4", "e2"} {
		if err := g.Select("alice", sq(t, s)); err != nil {
			t.Fatal(err)
		}
	}
	st := g.GetState()
	if st.SelectedSquare == nil || *st.SelectedSquare != sq(t, "e2") {
		t.Fatalf("selected = %v, want e2", st.SelectedSquare)
	}
	if diff := cmp.Diff([]engine.Square{sq(t, "e3"), sq(t, "e4")}, st.Highlights); diff != "" {
		t.Errorf("highlights mismatch (-want +got):\n%s", diff)
	}
	if len(st.MoveHistory) != 0 {
		t.Fatal("a rejected pair was played")
	}

	if err := g.Select("alice", sq(t, "e4")); err != nil {
		t.Fatal(err)
	}
	st = g.GetState()
	if len(st.MoveHistory) != 1 || st.MoveHistory[0].Notation != "e2e4" {
		t.Fatalf("history = %+v, want e2e4", st.MoveHistory)
	}
	if st.SelectedSquare != nil || len(st.Highlights) != 0 {
		t.Error("selection survived a played move")
	}

	if err := g.Select("alice", sq(t, "d2")); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("out of turn select error = %v", err)
	}

	// Clicking the same square twice deselects it.
	g.Select("bob", sq(t, "g8"))
	g.Select("bob", sq(t, "g8"))
	if st := g.GetState(); st.SelectedSquare != nil {
		t.Errorf("selected = %v after double click, want none", st.SelectedSquare)
	}
}

func TestSnapshotStartPosition(t *testing.T) {
	st := NewGame("g1").GetState()
	if st.FEN != engine.StartFEN {
		t.Errorf("fen = %q", st.FEN)
	}
	if st.Board.WhiteKingPosition != sq(t, "e1") || st.Board.BlackKingPosition != sq(t, "e8") {
		t.Errorf("king positions = %v %v", st.Board.WhiteKingPosition, st.Board.BlackKingPosition)
	}
	if st.Board.Board[4][4] != nil {
		t.Error("empty square is not nil")
	}
	if st.IsCheck || st.NoLegalMoves || st.LastMove != nil {
		t.Error("start position reports check, mate, or a last move")
	}
}
