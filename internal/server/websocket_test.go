package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/magblast/magblast-server-go/internal/config"
	"github.com/magblast/magblast-server-go/internal/game"
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/lobby"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	url     string
	games   *game.Manager
	lobbies *lobby.Manager
}

func testWebSocketConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		Path:         "/ws",
		ReadLimit:    64 * 1024,
		PingInterval: time.Minute,
		RateLimit:    100,
		RateBurst:    100,
	}
}

func newTestServer(t *testing.T, cfg config.WebSocketConfig) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := zaptest.NewLogger(t)
	settings := game.DefaultSettings()
	settings.Seed = 11
	games := game.NewManager(cards.DefaultCatalog(), settings, logger)
	lobbies := lobby.NewManager(games, logger)

	ws := NewWebSocketServer(ctx, cfg, games, lobbies, logger)
	srv := httptest.NewServer(ws.Handler())
	t.Cleanup(srv.Close)

	return &testServer{
		url:     "ws" + strings.TrimPrefix(srv.URL, "http") + cfg.Path,
		games:   games,
		lobbies: lobbies,
	}
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (ts *testServer) dial(t *testing.T) *testClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(ts.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(typ string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(ClientMessage{Type: typ, Data: raw}))
}

// expect reads messages until one of type typ arrives and decodes its data
// into v.
func (c *testClient) expect(typ string, v any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg received
		require.NoError(c.t, c.conn.ReadJSON(&msg), "waiting for %s", typ)
		if msg.Type != typ {
			continue
		}
		if v != nil {
			require.NoError(c.t, json.Unmarshal(msg.Data, v))
		}
		return
	}
}

func (c *testClient) login(playerID string) {
	c.t.Helper()
	c.send(MsgTypeLogin, loginRequest{PlayerID: playerID})
	c.expect(MsgTypeWelcome, nil)
}

func TestWebSocketRequiresLogin(t *testing.T) {
	ts := newTestServer(t, testWebSocketConfig())
	c := ts.dial(t)

	c.send(MsgTypeCreateLobby, createLobbyRequest{Name: "table"})
	var e errorMessage
	c.expect(MsgTypeError, &e)
	assert.Equal(t, "login first", e.Message)

	c.send(MsgTypeLogin, loginRequest{})
	c.expect(MsgTypeError, &e)
	assert.Contains(t, e.Message, "player id")

	c.login("alice")
	c.send(MsgTypeLogin, loginRequest{PlayerID: "bob"})
	c.expect(MsgTypeError, &e)
	assert.Contains(t, e.Message, "already logged in")
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	ts := newTestServer(t, testWebSocketConfig())
	c := ts.dial(t)

	c.send("warp_drive", struct{}{})
	var e errorMessage
	c.expect(MsgTypeError, &e)
	assert.Contains(t, e.Message, "unknown message type")

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	c.expect(MsgTypeError, &e)
	assert.Equal(t, "malformed message", e.Message)
}

func TestWebSocketLobbyToGame(t *testing.T) {
	ts := newTestServer(t, testWebSocketConfig())
	alice := ts.dial(t)
	bob := ts.dial(t)
	alice.login("alice")
	bob.login("bob")

	alice.send(MsgTypeCreateLobby, createLobbyRequest{Name: "friday"})
	var snap lobby.Snapshot
	alice.expect(MsgTypeLobby, &snap)
	assert.Equal(t, []string{"alice"}, snap.Players)
	lobbyID := snap.ID

	bob.send(MsgTypeListLobbies, struct{}{})
	var list []lobby.Snapshot
	bob.expect(MsgTypeLobbies, &list)
	require.Len(t, list, 1)
	assert.Equal(t, lobbyID, list[0].ID)

	bob.send(MsgTypeJoinLobby, lobbyRequest{LobbyID: lobbyID})
	bob.expect(MsgTypeLobby, &snap)
	assert.Equal(t, []string{"alice", "bob"}, snap.Players)
	alice.expect(MsgTypeLobby, &snap)
	assert.True(t, snap.CanStart)

	bob.send(MsgTypeStartLobby, lobbyRequest{LobbyID: lobbyID})
	var e errorMessage
	bob.expect(MsgTypeError, &e)
	assert.Equal(t, lobby.ErrNotHost.Error(), e.Message)

	alice.send(MsgTypeStartLobby, lobbyRequest{LobbyID: lobbyID})
	var started gameStarted
	alice.expect(MsgTypeGameStarted, &started)
	bob.expect(MsgTypeGameStarted, nil)
	require.NotEmpty(t, started.GameID)

	var view game.UIGameState
	alice.expect(MsgTypeGameState, &view)
	assert.Equal(t, "alice", view.PlayerID)
	assert.Equal(t, game.StateChooseStartingShips, view.TurnState)
	assert.Len(t, view.Hand, game.DefaultHandSize)
	assert.NotEmpty(t, view.Checksum)
	bob.expect(MsgTypeGameState, &view)
	assert.Equal(t, "bob", view.PlayerID)

	bob.send(MsgTypeAction, actionRequest{Action: json.RawMessage(`{"type":"chooseCard","cardIndex":[0,1]}`)})
	var actionErr game.ActionError
	bob.expect(MsgTypeActionError, &actionErr)
	assert.Contains(t, actionErr.Message, "starting ships")

	alice.send(MsgTypeAction, actionRequest{GameID: started.GameID, Action: json.RawMessage(`{"type":"chooseCard","cardIndex":[0,1,2,3]}`)})
	alice.expect(MsgTypeGameState, &view)
	bob.expect(MsgTypeGameState, &view)
	assert.Equal(t, "bob", view.PlayerID)

	bob.send(MsgTypeAction, actionRequest{Action: json.RawMessage(`{"type":"warp"}`)})
	bob.expect(MsgTypeError, &e)
	assert.Contains(t, e.Message, "unknown type")
}

func TestWebSocketSpectator(t *testing.T) {
	ts := newTestServer(t, testWebSocketConfig())
	gameID, err := ts.games.CreateGame([]string{"p1", "p2"}, ts.games.DefaultSettings())
	require.NoError(t, err)

	c := ts.dial(t)
	c.send(MsgTypeWatchGame, gameRequest{GameID: gameID})
	var view game.UIGameState
	c.expect(MsgTypeGameState, &view)
	assert.Empty(t, view.Hand)
	assert.Len(t, view.Players, 2)

	c.login("eve")
	c.send(MsgTypeAction, actionRequest{GameID: gameID, Action: json.RawMessage(`{"type":"pass"}`)})
	var e errorMessage
	c.expect(MsgTypeError, &e)
	assert.Contains(t, e.Message, "not playing")

	c.send(MsgTypeWatchGame, gameRequest{GameID: "missing"})
	c.expect(MsgTypeError, &e)
	assert.Equal(t, game.ErrGameNotFound.Error(), e.Message)
}

func TestWebSocketDisconnectLeavesLobby(t *testing.T) {
	ts := newTestServer(t, testWebSocketConfig())
	alice := ts.dial(t)
	bob := ts.dial(t)
	alice.login("alice")
	bob.login("bob")

	alice.send(MsgTypeCreateLobby, createLobbyRequest{Name: "table"})
	var snap lobby.Snapshot
	alice.expect(MsgTypeLobby, &snap)
	bob.send(MsgTypeJoinLobby, lobbyRequest{LobbyID: snap.ID})
	alice.expect(MsgTypeLobby, &snap)
	bob.expect(MsgTypeLobby, &snap)
	require.Equal(t, []string{"alice", "bob"}, snap.Players)

	require.NoError(t, alice.conn.Close())

	bob.expect(MsgTypeLobby, &snap)
	assert.Equal(t, []string{"bob"}, snap.Players)
	assert.Equal(t, "bob", snap.Host)
}

func TestWebSocketRateLimit(t *testing.T) {
	cfg := testWebSocketConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 2
	ts := newTestServer(t, cfg)
	c := ts.dial(t)

	for i := 0; i < 3; i++ {
		c.send(MsgTypeListLobbies, struct{}{})
	}
	c.expect(MsgTypeLobbies, nil)
	c.expect(MsgTypeLobbies, nil)
	var e errorMessage
	c.expect(MsgTypeError, &e)
	assert.Equal(t, "rate limit exceeded", e.Message)
}

func TestWebSocketOrigin(t *testing.T) {
	cfg := testWebSocketConfig()
	cfg.AllowedOrigins = []string{"https://magblast.example"}
	ts := newTestServer(t, cfg)

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(ts.url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://magblast.example")
	conn, _, err := websocket.DefaultDialer.Dial(ts.url, header)
	require.NoError(t, err)
	conn.Close()
}
