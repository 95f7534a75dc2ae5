// service/game_manager.go
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chessbot-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	pendingMatches   map[string]model.MatchFoundEvent
	mu               sync.RWMutex
	done             chan struct{}
	closeOnce        sync.Once
}

func NewGameManager(matchInterval time.Duration) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		pendingMatches:   make(map[string]model.MatchFoundEvent),
		done:             make(chan struct{}),
	}

	go gm.processMatchmaking(matchInterval)

	return gm
}

// Close stops the matchmaking loop.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.done) })
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// Replace any channel left over from an earlier request.
	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		log.Debugf("replacing matchmaking channel for %s", playerID)
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}

	// A match made while nobody was listening is delivered straight away.
	if event, ok := gm.pendingMatches[playerID]; ok {
		select {
		case ch <- mustJSON(event):
			delete(gm.pendingMatches, playerID)
			close(ch)
			return nil
		default:
		}
	}

	gm.matchingChannels[playerID] = ch
	return nil
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// The channel is closed by whoever sends on it, not here.
	delete(gm.matchingChannels, playerID)
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			gm.matchQueued()
		}
	}
}

// matchQueued pairs queued players into new games until fewer than two wait.
func (gm *GameManager) matchQueued() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for gm.queue.Size() >= 2 {
		queued1, queued2, err := gm.queue.GetNextPair()
		if err != nil {
			return
		}
		player1, player2 := queued1.Player, queued2.Player

		gameID := uuid.New().String()
		game := model.NewGame(gameID)

		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Errorf("matchmaking: adding %s to %s: %v", player1.ID, gameID, err)
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Errorf("matchmaking: adding %s to %s: %v", player2.ID, gameID, err)
			continue
		}
		gm.games[gameID] = game
		log.Infof("matchmaking: %s (%s, waited %s) vs %s (%s, waited %s) in %s",
			player1.ID, p1Color, time.Since(queued1.JoinedAt).Round(time.Millisecond),
			player2.ID, p2Color, time.Since(queued2.JoinedAt).Round(time.Millisecond), gameID)

		sent1 := gm.sendMatchFound(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
		sent2 := gm.sendMatchFound(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
		if !sent1 || !sent2 {
			log.Debugf("matchmaking: match %s held for a player who is not listening", gameID)
		}
	}
}

// sendMatchFound delivers the event and retires the player's channel. If
// the player is not listening the event is kept until they ask again.
func (gm *GameManager) sendMatchFound(playerID string, event model.MatchFoundEvent) bool {
	if ch, ok := gm.matchingChannels[playerID]; ok {
		select {
		case ch <- mustJSON(event):
			delete(gm.matchingChannels, playerID)
			close(ch)
			return true
		default:
		}
	}
	gm.pendingMatches[playerID] = event
	return false
}

// Helper function for JSON marshaling
func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string) error {
	return gm.addGame(model.NewGame(gameID))
}

// CreateGameFromFEN registers a game that starts from fen.
func (gm *GameManager) CreateGameFromFEN(gameID, fen string) error {
	game, err := model.NewGameFromFEN(gameID, fen)
	if err != nil {
		return err
	}
	return gm.addGame(game)
}

func (gm *GameManager) addGame(game *model.Game) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[game.ID]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, game.ID)
	}
	gm.games[game.ID] = game
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.PlayerColor, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

// JoinMatchmaking queues the player unless a match is already waiting
// for them.
func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.RLock()
	_, matched := gm.pendingMatches[playerID]
	gm.mu.RUnlock()
	if matched {
		return nil
	}
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) Undo(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Undo(playerID)
}

func (gm *GameManager) Select(gameID string, playerID string, sel model.WSSelect) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Select(playerID, sel.Square)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

func (gm *GameManager) SendError(gameID string, conn *websocket.Conn, errorMsg string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.WriteError(conn, errorMsg)
	}
	return game.SendError(conn, errorMsg)
}
