package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/magblast/magblast-server-go/internal/config"
	"github.com/magblast/magblast-server-go/internal/game"
	"github.com/magblast/magblast-server-go/internal/lobby"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GameService is the part of the game manager the websocket server drives.
type GameService interface {
	Apply(ctx context.Context, gameID, playerID string, action game.Action) error
	View(gameID, playerID string) (game.UIGameState, error)
	Players(gameID string) ([]string, error)
}

// WebSocketServer serves lobbies and games to websocket clients
type WebSocketServer struct {
	cfg      config.WebSocketConfig
	games    GameService
	lobbies  *lobby.Manager
	hub      *Hub
	upgrader websocket.Upgrader
	ctx      context.Context
	logger   *zap.Logger
}

// NewWebSocketServer creates a new websocket server. ctx bounds the hub and
// every game action it runs.
func NewWebSocketServer(ctx context.Context, cfg config.WebSocketConfig, games GameService, lobbies *lobby.Manager, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WebSocketServer{
		cfg:     cfg,
		games:   games,
		lobbies: lobbies,
		hub:     NewHub(logger),
		ctx:     ctx,
		logger:  logger,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:       s.checkOrigin,
		EnableCompression: true,
	}
	go s.hub.Run(ctx)
	return s
}

// Handler returns the HTTP handler mounted at the configured path
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.HandleWebSocket)
	return mux
}

// StartWebSocketServer listens on cfg.Address and serves until ctx is done,
// then shuts down within shutdownTimeout.
func StartWebSocketServer(ctx context.Context, cfg config.WebSocketConfig, shutdownTimeout time.Duration, games GameService, lobbies *lobby.Manager, logger *zap.Logger) error {
	ws := NewWebSocketServer(ctx, cfg, games, lobbies, logger)
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting WebSocket server",
			zap.String("address", cfg.Address),
			zap.String("path", cfg.Path),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("websocket server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("websocket shutdown: %w", err)
	}
	logger.Info("WebSocket server stopped")
	return nil
}

// checkOrigin accepts configured origins. Without configuration it accepts
// same-host, localhost and non-browser clients.
func (s *WebSocketServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		if slices.Contains(s.cfg.AllowedOrigins, origin) {
			return true
		}
		s.logger.Warn("rejected websocket origin", zap.String("origin", origin))
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("invalid websocket origin", zap.String("origin", origin))
		return false
	}
	if r.Host == originURL.Host {
		return true
	}
	host := originURL.Hostname()
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}
	s.logger.Warn("rejected websocket origin", zap.String("origin", origin))
	return false
}

// HandleWebSocket upgrades a connection and starts its pumps
func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub.Count() >= maxConnections {
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan ServerMessage, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst),
		logger:  s.logger.With(zap.String("remote_addr", conn.RemoteAddr().String())),
	}
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go s.writePump(client)
	go s.readPump(client)
}

func (s *WebSocketServer) readTimeout() time.Duration {
	return s.cfg.PingInterval + writeWait
}

func (s *WebSocketServer) readPump(c *Client) {
	defer func() {
		s.disconnect(c)
		s.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(s.cfg.ReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(s.readTimeout()))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(s.readTimeout()))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("websocket closed", zap.Error(err))
			}
			return
		}

		if !c.limiter.Allow() {
			s.replyError(c, "rate limit exceeded")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.replyError(c, "malformed message")
			continue
		}
		s.handleMessage(c, msg)
	}
}

func (s *WebSocketServer) writePump(c *Client) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
