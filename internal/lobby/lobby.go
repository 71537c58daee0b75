package lobby

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/magblast/magblast-server-go/internal/game"
	"go.uber.org/zap"
)

var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrLobbyStarted     = errors.New("lobby already started")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrAlreadyJoined    = errors.New("player already joined")
	ErrNotInLobby       = errors.New("player is not in the lobby")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players")
)

// State represents the state of a lobby
type State int

const (
	StateWaiting State = iota
	StateInProgress
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateInProgress:
		return "IN_PROGRESS"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "WAITING":
		*s = StateWaiting
	case "IN_PROGRESS":
		*s = StateInProgress
	default:
		return fmt.Errorf("unknown lobby state %q", text)
	}
	return nil
}

// Lobby gathers players before a game starts
type Lobby struct {
	ID         string
	Name       string
	Host       string
	Players    []string // join order, which becomes turn order
	Settings   game.Settings
	State      State
	GameID     string
	CreateTime time.Time
	StartTime  *time.Time
	mu         sync.RWMutex
}

// Snapshot captures a consistent view of a lobby.
type Snapshot struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Host       string        `json:"host"`
	Players    []string      `json:"players"`
	CanStart   bool          `json:"canStart"`
	Settings   game.Settings `json:"settings"`
	State      State         `json:"state"`
	GameID     string        `json:"gameId,omitempty"`
	CreateTime time.Time     `json:"createTime"`
	StartTime  *time.Time    `json:"startTime,omitempty"`
}

// NewLobby creates a new lobby with host as its first player
func NewLobby(name, host string, settings game.Settings) *Lobby {
	return &Lobby{
		ID:         uuid.New().String(),
		Name:       name,
		Host:       host,
		Players:    []string{host},
		Settings:   settings,
		State:      StateWaiting,
		CreateTime: time.Now(),
	}
}

// HasPlayer reports whether playerID is seated in the lobby
func (l *Lobby) HasPlayer(playerID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Contains(l.Players, playerID)
}

// Snapshot returns a consistent copy of the lobby state.
func (l *Lobby) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var start *time.Time
	if l.StartTime != nil {
		cp := *l.StartTime
		start = &cp
	}
	view := game.LobbyUIState(l.Players)
	return Snapshot{
		ID:         l.ID,
		Name:       l.Name,
		Host:       l.Host,
		Players:    view.Players,
		CanStart:   l.State == StateWaiting && view.CanStart,
		Settings:   l.Settings,
		State:      l.State,
		GameID:     l.GameID,
		CreateTime: l.CreateTime,
		StartTime:  start,
	}
}

// GameCreator starts games for lobbies that are ready.
type GameCreator interface {
	CreateGame(playerIDs []string, settings game.Settings) (string, error)
	DefaultSettings() game.Settings
}

// Manager manages lobbies
type Manager struct {
	lobbies map[string]*Lobby
	games   GameCreator
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewManager creates a new lobby manager
func NewManager(games GameCreator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		lobbies: make(map[string]*Lobby),
		games:   games,
		logger:  logger,
	}
}

// CreateLobby opens a new lobby hosted by host with the default game settings
func (m *Manager) CreateLobby(name, host string) *Lobby {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := NewLobby(name, host, m.games.DefaultSettings())
	m.lobbies[l.ID] = l

	m.logger.Info("lobby created",
		zap.String("lobby_id", l.ID),
		zap.String("name", name),
		zap.String("host", host),
	)
	return l
}

// GetLobby retrieves a lobby by ID
func (m *Manager) GetLobby(lobbyID string) (*Lobby, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.lobbies[lobbyID]
	return l, ok
}

func (m *Manager) lobby(lobbyID string) (*Lobby, error) {
	l, ok := m.GetLobby(lobbyID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLobbyNotFound, lobbyID)
	}
	return l, nil
}

// ListLobbies returns snapshots of every lobby, oldest first
func (m *Manager) ListLobbies() []Snapshot {
	m.mu.RLock()
	lobbies := make([]*Lobby, 0, len(m.lobbies))
	for _, l := range m.lobbies {
		lobbies = append(lobbies, l)
	}
	m.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(lobbies))
	for _, l := range lobbies {
		snapshots = append(snapshots, l.Snapshot())
	}
	slices.SortFunc(snapshots, func(a, b Snapshot) int {
		if c := a.CreateTime.Compare(b.CreateTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return snapshots
}

// Join seats playerID in a waiting lobby
func (m *Manager) Join(lobbyID, playerID string) (Snapshot, error) {
	l, err := m.lobby(lobbyID)
	if err != nil {
		return Snapshot{}, err
	}

	l.mu.Lock()
	switch {
	case l.State != StateWaiting:
		err = ErrLobbyStarted
	case slices.Contains(l.Players, playerID):
		err = ErrAlreadyJoined
	case len(l.Players) >= game.MaxPlayers:
		err = ErrLobbyFull
	default:
		l.Players = append(l.Players, playerID)
	}
	l.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}

	m.logger.Info("player joined lobby",
		zap.String("lobby_id", lobbyID),
		zap.String("player_id", playerID),
	)
	return l.Snapshot(), nil
}

// Leave removes playerID from a waiting lobby. The next player in join order
// becomes host when the host leaves, and an empty lobby is removed.
func (m *Manager) Leave(lobbyID, playerID string) (Snapshot, error) {
	l, err := m.lobby(lobbyID)
	if err != nil {
		return Snapshot{}, err
	}

	l.mu.Lock()
	i := slices.Index(l.Players, playerID)
	switch {
	case l.State != StateWaiting:
		err = ErrLobbyStarted
	case i < 0:
		err = ErrNotInLobby
	default:
		l.Players = slices.Delete(l.Players, i, i+1)
		if l.Host == playerID && len(l.Players) > 0 {
			l.Host = l.Players[0]
		}
	}
	empty := len(l.Players) == 0
	l.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}

	m.logger.Info("player left lobby",
		zap.String("lobby_id", lobbyID),
		zap.String("player_id", playerID),
	)
	if empty {
		m.RemoveLobby(lobbyID)
	}
	return l.Snapshot(), nil
}

// Configure replaces the settings of a waiting lobby. Only the host may do so.
func (m *Manager) Configure(lobbyID, playerID string, settings game.Settings) (Snapshot, error) {
	l, err := m.lobby(lobbyID)
	if err != nil {
		return Snapshot{}, err
	}

	l.mu.Lock()
	switch {
	case l.State != StateWaiting:
		err = ErrLobbyStarted
	case l.Host != playerID:
		err = ErrNotHost
	case settings.StartingHandSize <= 0:
		err = fmt.Errorf("starting hand size must be positive, got %d", settings.StartingHandSize)
	default:
		l.Settings = settings
	}
	l.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}
	return l.Snapshot(), nil
}

// Start creates the game for a lobby. Only the host may start it, and only
// once enough players have joined.
func (m *Manager) Start(lobbyID, playerID string) (string, error) {
	l, err := m.lobby(lobbyID)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.State != StateWaiting {
		return "", ErrLobbyStarted
	}
	if l.Host != playerID {
		return "", ErrNotHost
	}
	if !game.LobbyUIState(l.Players).CanStart {
		return "", fmt.Errorf("%w: %d of %d", ErrNotEnoughPlayers, len(l.Players), game.MinPlayers)
	}

	gameID, err := m.games.CreateGame(l.Players, l.Settings)
	if err != nil {
		return "", fmt.Errorf("failed to start lobby %s: %w", lobbyID, err)
	}

	now := time.Now()
	l.State = StateInProgress
	l.GameID = gameID
	l.StartTime = &now

	m.logger.Info("lobby started",
		zap.String("lobby_id", lobbyID),
		zap.String("game_id", gameID),
		zap.Strings("players", l.Players),
	)
	return gameID, nil
}

// RemoveLobby removes a lobby
func (m *Manager) RemoveLobby(lobbyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lobbies[lobbyID]; ok {
		delete(m.lobbies, lobbyID)
		m.logger.Info("lobby removed", zap.String("lobby_id", lobbyID))
	}
}

// GetActiveLobbyCount returns the count of lobbies still waiting for players
func (m *Manager) GetActiveLobbyCount() int {
	m.mu.RLock()
	lobbies := make([]*Lobby, 0, len(m.lobbies))
	for _, l := range m.lobbies {
		lobbies = append(lobbies, l)
	}
	m.mu.RUnlock()

	count := 0
	for _, l := range lobbies {
		l.mu.RLock()
		if l.State == StateWaiting {
			count++
		}
		l.mu.RUnlock()
	}
	return count
}
