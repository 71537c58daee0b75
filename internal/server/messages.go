package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/magblast/magblast-server-go/internal/game"
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"go.uber.org/zap"
)

// Message types
const (
	MsgTypeLogin          = "login"
	MsgTypeListLobbies    = "list_lobbies"
	MsgTypeCreateLobby    = "create_lobby"
	MsgTypeJoinLobby      = "join_lobby"
	MsgTypeLeaveLobby     = "leave_lobby"
	MsgTypeConfigureLobby = "configure_lobby"
	MsgTypeStartLobby     = "start_lobby"
	MsgTypeWatchGame      = "watch_game"
	MsgTypeAction         = "action"

	MsgTypeWelcome     = "welcome"
	MsgTypeLobbies     = "lobbies"
	MsgTypeLobby       = "lobby"
	MsgTypeLobbyLeft   = "lobby_left"
	MsgTypeGameStarted = "game_started"
	MsgTypeGameState   = "game_state"
	MsgTypeActionError = "action_error"
	MsgTypeError       = "error"
)

const maxPlayerIDLength = 32

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type loginRequest struct {
	PlayerID string `json:"playerId"`
}

type createLobbyRequest struct {
	Name string `json:"name"`
}

type lobbyRequest struct {
	LobbyID string `json:"lobbyId"`
}

type configureLobbyRequest struct {
	LobbyID  string        `json:"lobbyId"`
	Settings game.Settings `json:"settings"`
}

type gameRequest struct {
	GameID string `json:"gameId"`
}

type actionRequest struct {
	GameID string          `json:"gameId"`
	Action json.RawMessage `json:"action"`
}

type gameStarted struct {
	LobbyID string `json:"lobbyId"`
	GameID  string `json:"gameId"`
}

type errorMessage struct {
	Message string `json:"message"`
}

func (s *WebSocketServer) handleMessage(c *Client, msg ClientMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic handling websocket message",
				zap.String("type", msg.Type),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
			s.replyError(c, "internal error")
		}
	}()

	var err error
	switch msg.Type {
	case MsgTypeLogin:
		err = s.handleLogin(c, msg.Data)
	case MsgTypeListLobbies:
		s.hub.send(c, ServerMessage{Type: MsgTypeLobbies, Data: s.lobbies.ListLobbies()})
	case MsgTypeCreateLobby:
		err = s.handleCreateLobby(c, msg.Data)
	case MsgTypeJoinLobby:
		err = s.handleJoinLobby(c, msg.Data)
	case MsgTypeLeaveLobby:
		err = s.handleLeaveLobby(c, msg.Data)
	case MsgTypeConfigureLobby:
		err = s.handleConfigureLobby(c, msg.Data)
	case MsgTypeStartLobby:
		err = s.handleStartLobby(c, msg.Data)
	case MsgTypeWatchGame:
		err = s.handleWatchGame(c, msg.Data)
	case MsgTypeAction:
		err = s.handleAction(c, msg.Data)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		var actionErr *game.ActionError
		if errors.As(err, &actionErr) {
			s.hub.send(c, ServerMessage{Type: MsgTypeActionError, Data: actionErr})
			return
		}
		c.logger.Debug("websocket request failed", zap.String("type", msg.Type), zap.Error(err))
		s.replyError(c, err.Error())
	}
}

func (s *WebSocketServer) replyError(c *Client, message string) {
	s.hub.send(c, ServerMessage{Type: MsgTypeError, Data: errorMessage{Message: message}})
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing message data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}
	return nil
}

// loggedIn returns the player the client logged in as.
func (s *WebSocketServer) loggedIn(c *Client) (string, error) {
	playerID, _, _ := s.hub.identity(c)
	if playerID == "" {
		return "", errors.New("login first")
	}
	return playerID, nil
}

func (s *WebSocketServer) handleLogin(c *Client, data json.RawMessage) error {
	var req loginRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	if current, _, _ := s.hub.identity(c); current != "" {
		return fmt.Errorf("already logged in as %s", current)
	}
	if req.PlayerID == "" || len(req.PlayerID) > maxPlayerIDLength {
		return fmt.Errorf("player id must be 1 to %d characters", maxPlayerIDLength)
	}

	s.hub.setPlayer(c, req.PlayerID)
	c.logger = c.logger.With(zap.String("player_id", req.PlayerID))
	c.logger.Info("player logged in")
	s.hub.send(c, ServerMessage{Type: MsgTypeWelcome, Data: req})
	return nil
}

func (s *WebSocketServer) handleCreateLobby(c *Client, data json.RawMessage) error {
	playerID, err := s.loggedIn(c)
	if err != nil {
		return err
	}
	var req createLobbyRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	if _, lobbyID, _ := s.hub.identity(c); lobbyID != "" {
		return errors.New("leave your current lobby first")
	}

	l := s.lobbies.CreateLobby(req.Name, playerID)
	s.hub.setLobby(c, l.ID)
	s.broadcastLobby(l.ID)
	return nil
}

func (s *WebSocketServer) handleJoinLobby(c *Client, data json.RawMessage) error {
	playerID, err := s.loggedIn(c)
	if err != nil {
		return err
	}
	var req lobbyRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	if _, lobbyID, _ := s.hub.identity(c); lobbyID != "" {
		return errors.New("leave your current lobby first")
	}

	if _, err := s.lobbies.Join(req.LobbyID, playerID); err != nil {
		return err
	}
	s.hub.setLobby(c, req.LobbyID)
	s.broadcastLobby(req.LobbyID)
	return nil
}

func (s *WebSocketServer) handleLeaveLobby(c *Client, data json.RawMessage) error {
	playerID, err := s.loggedIn(c)
	if err != nil {
		return err
	}
	var req lobbyRequest
	if err := decode(data, &req); err != nil {
		return err
	}

	if _, err := s.lobbies.Leave(req.LobbyID, playerID); err != nil {
		return err
	}
	s.hub.setLobby(c, "")
	s.hub.send(c, ServerMessage{Type: MsgTypeLobbyLeft, Data: req})
	s.broadcastLobby(req.LobbyID)
	return nil
}

func (s *WebSocketServer) handleConfigureLobby(c *Client, data json.RawMessage) error {
	playerID, err := s.loggedIn(c)
	if err != nil {
		return err
	}
	var req configureLobbyRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	if _, err := game.ParseAttackMode(string(req.Settings.AttackMode)); err != nil {
		return err
	}
	flavor, err := cards.ParseFlavor(string(req.Settings.Flavor))
	if err != nil {
		return err
	}
	req.Settings.Flavor = flavor
	if req.Settings.AttackMode == "" {
		req.Settings.AttackMode = game.AttackModeFreeForAll
	}
	req.Settings.Seed = 0

	if _, err := s.lobbies.Configure(req.LobbyID, playerID, req.Settings); err != nil {
		return err
	}
	s.broadcastLobby(req.LobbyID)
	return nil
}

func (s *WebSocketServer) handleStartLobby(c *Client, data json.RawMessage) error {
	playerID, err := s.loggedIn(c)
	if err != nil {
		return err
	}
	var req lobbyRequest
	if err := decode(data, &req); err != nil {
		return err
	}

	gameID, err := s.lobbies.Start(req.LobbyID, playerID)
	if err != nil {
		return err
	}

	for _, client := range s.hub.inLobby(req.LobbyID) {
		s.hub.send(client, ServerMessage{Type: MsgTypeGameStarted, Data: gameStarted{LobbyID: req.LobbyID, GameID: gameID}})
	}
	s.hub.moveLobbyToGame(req.LobbyID, gameID)
	s.lobbies.RemoveLobby(req.LobbyID)
	s.broadcastGameState(gameID)
	return nil
}

// handleWatchGame follows a game. Participants see their own hand; anybody
// else gets the spectator view.
func (s *WebSocketServer) handleWatchGame(c *Client, data json.RawMessage) error {
	var req gameRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	playerID, _, _ := s.hub.identity(c)
	view, err := s.games.View(req.GameID, playerID)
	if err != nil {
		return err
	}
	s.hub.setGame(c, req.GameID)
	s.hub.send(c, ServerMessage{Type: MsgTypeGameState, Data: view})
	return nil
}

func (s *WebSocketServer) handleAction(c *Client, data json.RawMessage) error {
	playerID, err := s.loggedIn(c)
	if err != nil {
		return err
	}
	var req actionRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	if req.GameID == "" {
		_, _, req.GameID = s.hub.identity(c)
	}
	players, err := s.games.Players(req.GameID)
	if err != nil {
		return err
	}
	if !slices.Contains(players, playerID) {
		return fmt.Errorf("%s is not playing in game %s", playerID, req.GameID)
	}

	action, err := game.DecodeAction(req.Action)
	if err != nil {
		return err
	}
	if err := s.games.Apply(s.ctx, req.GameID, playerID, action); err != nil {
		return err
	}
	s.broadcastGameState(req.GameID)
	return nil
}

// disconnect takes a departing client out of any waiting lobby.
func (s *WebSocketServer) disconnect(c *Client) {
	playerID, lobbyID, _ := s.hub.identity(c)
	if playerID == "" || lobbyID == "" {
		return
	}
	if _, err := s.lobbies.Leave(lobbyID, playerID); err != nil {
		c.logger.Debug("leaving lobby on disconnect", zap.Error(err))
		return
	}
	s.hub.setLobby(c, "")
	s.broadcastLobby(lobbyID)
}

func (s *WebSocketServer) broadcastLobby(lobbyID string) {
	l, ok := s.lobbies.GetLobby(lobbyID)
	if !ok {
		return
	}
	msg := ServerMessage{Type: MsgTypeLobby, Data: l.Snapshot()}
	for _, client := range s.hub.inLobby(lobbyID) {
		s.hub.send(client, msg)
	}
}

// broadcastGameState pushes each follower of gameID its own view.
func (s *WebSocketServer) broadcastGameState(gameID string) {
	for client, playerID := range s.hub.inGame(gameID) {
		view, err := s.games.View(gameID, playerID)
		if err != nil {
			s.logger.Warn("failed to build game view",
				zap.String("game_id", gameID),
				zap.String("player_id", playerID),
				zap.Error(err),
			)
			continue
		}
		s.hub.send(client, ServerMessage{Type: MsgTypeGameState, Data: view})
	}
}
