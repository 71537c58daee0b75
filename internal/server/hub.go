package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
	// maxConnections bounds memory: each connection holds two goroutines and
	// a send buffer.
	maxConnections = 1024
)

// Client is one websocket connection. A client logs in as a player, sits in
// at most one lobby and follows at most one game.
type Client struct {
	conn    *websocket.Conn
	send    chan ServerMessage
	limiter *rate.Limiter
	logger  *zap.Logger

	// guarded by Hub.mu
	playerID string
	lobbyID  string
	gameID   string
}

// Hub tracks connected clients and fans out lobby and game updates.
type Hub struct {
	clients map[*Client]bool
	stopped bool
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewHub creates a new client hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		logger:  logger,
	}
}

// Run waits for ctx to finish, then closes every client's send channel so
// the write pumps close their connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.clients[client] = true
	h.logger.Debug("client registered", zap.String("remote_addr", client.conn.RemoteAddr().String()))
	return true
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug("client unregistered", zap.String("player_id", client.playerID))
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// send queues msg for client. A client whose buffer is full misses the
// message; the next state push supersedes it.
func (h *Hub) send(client *Client, msg ServerMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- msg:
	default:
		h.logger.Warn("dropping message for slow client",
			zap.String("player_id", client.playerID),
			zap.String("type", msg.Type),
		)
	}
}

func (h *Hub) identity(client *Client) (playerID, lobbyID, gameID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.playerID, client.lobbyID, client.gameID
}

func (h *Hub) setPlayer(client *Client, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.playerID = playerID
}

func (h *Hub) setLobby(client *Client, lobbyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.lobbyID = lobbyID
}

func (h *Hub) setGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.gameID = gameID
}

// inLobby returns the clients sitting in lobbyID.
func (h *Hub) inLobby(lobbyID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*Client
	for client := range h.clients {
		if client.lobbyID == lobbyID {
			out = append(out, client)
		}
	}
	return out
}

// inGame returns the clients following gameID together with the player each
// one is logged in as.
func (h *Hub) inGame(gameID string) map[*Client]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[*Client]string)
	for client := range h.clients {
		if client.gameID == gameID {
			out[client] = client.playerID
		}
	}
	return out
}

// moveLobbyToGame points every client of lobbyID at gameID.
func (h *Hub) moveLobbyToGame(lobbyID, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.lobbyID == lobbyID {
			client.lobbyID = ""
			client.gameID = gameID
		}
	}
}
