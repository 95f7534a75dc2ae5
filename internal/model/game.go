package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/chessbot-backend/internal/engine"
	"github.com/benbeisheim/chessbot-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// The connections for a specific game
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	lastVersion int
	mu          sync.Mutex
}

// Game owns one rules engine and the players and observers around it. All
// engine access happens under mu, which gives the engine the single writer
// it needs.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       *engine.GameState
	players     Players
	connections *GameConnections
	legalMoves  []engine.Move
	playable    []engine.Move
	inCheck     bool
	selection   Selection
	sound       string
	version     int
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// GameState is the snapshot sent to clients.
type GameState struct {
	Version        int             `json:"version"`
	Sound          string          `json:"sound"`
	Board          BoardState      `json:"boardState"`
	FEN            string          `json:"fen"`
	ToMove         PlayerColor     `json:"toMove"`
	MoveHistory    []Ply           `json:"moveHistory"`
	CapturedPieces CapturedPieces  `json:"capturedPieces"`
	IsCheck        bool            `json:"isCheck"`
	NoLegalMoves   bool            `json:"noLegalMoves"`
	LegalMoves     []string        `json:"legalMoves"`
	SelectedSquare *engine.Square  `json:"selectedSquare"`
	Highlights     []engine.Square `json:"highlights"`
	Players        Players         `json:"players"`
	LastMove       *SimpleMove     `json:"lastMove"`
}

// CapturedPieces lists the pieces each side has taken.
type CapturedPieces struct {
	White []engine.Piece `json:"white"`
	Black []engine.Piece `json:"black"`
}

func NewGame(id string) *Game {
	return newGame(id, engine.NewGameState())
}

// NewGameFromFEN starts a game from an arbitrary position.
func NewGameFromFEN(id, fen string) (*Game, error) {
	state, err := engine.FromFEN(fen)
	if err != nil {
		return nil, err
	}
	return newGame(id, state), nil
}

func newGame(id string, state *engine.GameState) *Game {
	g := &Game{
		ID:          id,
		state:       state,
		connections: NewGameConnections(),
	}
	g.refresh()
	return g
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.seatOf(playerID); ok {
		return colorOf(color), nil
	}
	if g.players.White.ID == "" {
		g.players.White = ClientPlayer{ID: playerID, Color: PlayerColorWhite}
		log.Infof("game %s: %s seated as white", g.ID, playerID)
		return PlayerColorWhite, nil
	}
	if g.players.Black.ID == "" {
		g.players.Black = ClientPlayer{ID: playerID, Color: PlayerColorBlack}
		log.Infof("game %s: %s seated as black", g.ID, playerID)
		return PlayerColorBlack, nil
	}
	return "", ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.seatOf(playerID)
	return ok
}

func (g *Game) seatOf(playerID string) (engine.Color, bool) {
	if playerID == "" {
		return engine.White, false
	}
	switch playerID {
	case g.players.White.ID:
		return engine.White, true
	case g.players.Black.ID:
		return engine.Black, true
	}
	return engine.White, false
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.players.White.ID == "" || g.players.Black.ID == ""
}

// MakeMove plays from->to for playerID if it is in the current legal set.
func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkTurn(playerID); err != nil {
		return err
	}
	if err := g.play(move.From, move.To); err != nil {
		return err
	}
	g.selection.Clear()
	g.broadcast()
	return nil
}

// Select feeds a square click from playerID into the game's selection. A
// completed click pair that is legal is played; otherwise the second click
// becomes the new selection.
func (g *Game) Select(playerID string, sq engine.Square) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkTurn(playerID); err != nil {
		return err
	}
	if !sq.Valid() {
		return fmt.Errorf("%w: square out of bounds", ErrIllegalMove)
	}
	from, to, complete := g.selection.Click(sq)
	if complete {
		if err := g.play(from, to); err != nil {
			g.selection.Reject()
			g.broadcast()
			if errors.Is(err, ErrPromotionUnsupported) {
				return err
			}
			return nil
		}
		g.selection.Clear()
	}
	g.broadcast()
	return nil
}

// Undo takes back the last ply. With no history it does nothing.
func (g *Game) Undo(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seatOf(playerID); !ok {
		return ErrNotInGame
	}
	if last, ok := g.state.LastMove(); ok {
		log.Debugf("game %s: %s takes back %s", g.ID, playerID, last.Notation())
	}
	g.state.UndoMove()
	g.sound = ""
	g.selection.Clear()
	g.refresh()
	g.broadcast()
	return nil
}

func (g *Game) checkTurn(playerID string) error {
	color, ok := g.seatOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	if color != g.state.ToMove {
		return ErrNotYourTurn
	}
	return nil
}

func (g *Game) play(from, to engine.Square) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: out of bounds", ErrIllegalMove)
	}
	if g.state.Board.At(from).IsEmpty() {
		return ErrNoPiece
	}
	move := engine.NewMove(from, to, &g.state.Board)
	if !engine.ContainsMove(g.legalMoves, move) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, move)
	}
	if move.IsPromotion() {
		return ErrPromotionUnsupported
	}

	g.state.MakeMove(move)
	g.refresh()

	switch {
	case g.inCheck:
		g.sound = "check"
	case move.IsCapture():
		g.sound = "capture"
	default:
		g.sound = "move"
	}
	log.Debugf("game %s: %s played %s", g.ID, move.Moved.Color, move.Notation())
	return nil
}

// refresh recomputes the cached legal moves. It runs only after the
// position changes.
func (g *Game) refresh() {
	g.legalMoves = g.state.ValidMoves()
	g.playable = PlayableMoves(g.legalMoves)
	g.inCheck = g.state.InCheck()
}

// PlayableMoves drops the legal moves a game refuses to play, which are the
// promotions.
func PlayableMoves(legal []engine.Move) []engine.Move {
	out := make([]engine.Move, 0, len(legal))
	for _, m := range legal {
		if !m.IsPromotion() {
			out = append(out, m)
		}
	}
	return out
}

func (g *Game) snapshot() GameState {
	history := g.state.History()
	s := GameState{
		Version:        g.version,
		Sound:          g.sound,
		Board:          newBoardState(g.state),
		FEN:            g.state.FEN(),
		ToMove:         colorOf(g.state.ToMove),
		MoveHistory:    make([]Ply, 0, len(history)),
		CapturedPieces: CapturedPieces{White: []engine.Piece{}, Black: []engine.Piece{}},
		IsCheck:        g.inCheck,
		NoLegalMoves:   len(g.playable) == 0,
		LegalMoves:     make([]string, 0, len(g.playable)),
		Highlights:     g.selection.Targets(g.playable),
		Players:        g.players,
	}
	for _, m := range history {
		s.MoveHistory = append(s.MoveHistory, newPly(m))
		if !m.IsCapture() {
			continue
		}
		if m.Moved.Color == engine.White {
			s.CapturedPieces.White = append(s.CapturedPieces.White, m.Captured)
		} else {
			s.CapturedPieces.Black = append(s.CapturedPieces.Black, m.Captured)
		}
	}
	for _, m := range g.playable {
		s.LegalMoves = append(s.LegalMoves, m.Notation())
	}
	if sq, ok := g.selection.Selected(); ok {
		s.SelectedSquare = &sq
	}
	if last, ok := g.state.LastMove(); ok {
		s.LastMove = &SimpleMove{From: last.From, To: last.To}
	}
	return s
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	state := g.snapshot()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the healthy connection and turn the new one away.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Infof("game %s: registered connection %p for %s", g.ID, conn, playerID)

	go g.connections.send(g.ID, playerID, conn, state)
	return nil
}

func (g *Game) isPlayerInGame(playerID string) bool {
	_, ok := g.seatOf(playerID)
	return ok
}

func (g *Game) UnregisterConnection(playerID string, conn *websocket.Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	// Only drop the entry if it is still the connection being closed.
	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		log.Infof("game %s: unregistering connection %p for %s", g.ID, conn, playerID)
		delete(g.connections.connections, playerID)
	}
}

// broadcast pushes a fresh snapshot to every connection. Callers hold g.mu.
func (g *Game) broadcast() {
	g.version++
	go g.connections.broadcast(g.ID, g.snapshot())
}

// broadcast writes state to all connections unless a newer state has
// already gone out.
func (gc *GameConnections) broadcast(gameID string, state GameState) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if state.Version < gc.lastVersion {
		return
	}
	gc.lastVersion = state.Version
	for playerID, conn := range gc.connections {
		if err := writeState(conn, state); err != nil {
			log.Warnf("game %s: failed to send state to %s: %v", gameID, playerID, err)
			delete(gc.connections, playerID)
		}
	}
}

func (gc *GameConnections) send(gameID, playerID string, conn *websocket.Conn, state GameState) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if err := writeState(conn, state); err != nil {
		log.Warnf("game %s: failed to send state to %s: %v", gameID, playerID, err)
		if gc.connections[playerID] == conn {
			delete(gc.connections, playerID)
		}
	}
}

func writeState(conn *websocket.Conn, state GameState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return conn.WriteJSON(ws.Message{
		Type:    ws.MessageTypeGameState,
		Payload: json.RawMessage(payload),
	})
}

// SendError writes an error message to conn, serialised with broadcasts.
func (g *Game) SendError(conn *websocket.Conn, errorMsg string) error {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	return writeError(conn, errorMsg)
}

func writeError(conn *websocket.Conn, errorMsg string) error {
	payload, err := json.Marshal(ws.ErrorPayload{Error: errorMsg})
	if err != nil {
		return err
	}
	return conn.WriteJSON(ws.Message{
		Type:    ws.MessageTypeError,
		Payload: json.RawMessage(payload),
	})
}

// WriteError is for connections that never joined a game.
func WriteError(conn *websocket.Conn, errorMsg string) error {
	return writeError(conn, errorMsg)
}
