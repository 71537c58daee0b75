package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/eventlog"
	"go.uber.org/zap"
)

// ErrTooManyGames is returned when the manager is at capacity.
var ErrTooManyGames = errors.New("too many running games")

// Status is the lifecycle state of a managed game.
type Status string

const (
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
	StatusHalted   Status = "HALTED"
)

// ArchiveRecord summarizes a finished game for long-term storage.
type ArchiveRecord struct {
	GameID     string
	Players    []string
	Winner     string
	Turns      int
	Flavor     cards.Flavor
	Log        []eventlog.Entry
	StartedAt  time.Time
	FinishedAt time.Time
}

// Archiver stores finished games.
type Archiver interface {
	ArchiveGame(ctx context.Context, record ArchiveRecord) error
}

// session is one managed game. All access to state goes through mu, so every
// action runs to completion before the next one starts.
type session struct {
	id        string
	mu        sync.Mutex
	state     *GameState
	status    Status
	createdAt time.Time
}

// DefaultRetention is how long a finished or halted game stays viewable.
const DefaultRetention = 10 * time.Minute

// Manager runs many games at once.
type Manager struct {
	catalog   *cards.Catalog
	defaults  Settings
	archiver  Archiver
	maxGames  int
	retention time.Duration
	games     map[string]*session

	// ended records when each game stopped running. It is guarded by mu so the
	// cap can be checked without taking session locks.
	ended  map[string]time.Time
	mu     sync.RWMutex
	logger *zap.Logger
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithArchiver stores every finished game with a.
func WithArchiver(a Archiver) ManagerOption {
	return func(m *Manager) {
		m.archiver = a
	}
}

// WithMaxGames caps the number of running games. Zero means no cap.
func WithMaxGames(n int) ManagerOption {
	return func(m *Manager) {
		m.maxGames = n
	}
}

// WithRetention sets how long finished and halted games are kept before they
// are dropped.
func WithRetention(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.retention = d
	}
}

// NewManager creates a new game manager
func NewManager(catalog *cards.Catalog, defaults Settings, logger *zap.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		catalog:   catalog,
		defaults:  defaults,
		retention: DefaultRetention,
		games:     make(map[string]*session),
		ended:     make(map[string]time.Time),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultSettings returns the settings new games start from.
func (m *Manager) DefaultSettings() Settings {
	return m.defaults
}

// CreateGame starts a new game for the given players and returns its id.
func (m *Manager) CreateGame(playerIDs []string, settings Settings) (string, error) {
	id := uuid.New().String()
	g, err := NewGameState(m.catalog, playerIDs, settings, m.logger.With(zap.String("game_id", id)))
	if err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked(time.Now())
	if m.maxGames > 0 && len(m.games)-len(m.ended) >= m.maxGames {
		return "", ErrTooManyGames
	}
	m.games[id] = &session{id: id, state: g, status: StatusRunning, createdAt: time.Now()}

	m.logger.Info("game started",
		zap.String("game_id", id),
		zap.Strings("players", playerIDs),
	)
	return id, nil
}

// evictLocked drops games that stopped running more than the retention period
// before now. The caller holds mu.
func (m *Manager) evictLocked(now time.Time) {
	for id, at := range m.ended {
		if now.Sub(at) < m.retention {
			continue
		}
		delete(m.games, id)
		delete(m.ended, id)
		m.logger.Debug("game evicted", zap.String("game_id", id))
	}
}

// markEnded records that a game left the running state. The caller holds the
// session lock.
func (m *Manager) markEnded(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; ok {
		m.ended[gameID] = time.Now()
	}
}

func (m *Manager) get(gameID string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

// Apply runs one player action against a game. A rule violation comes back as
// an *ActionError. When the engine detects a corrupt state the game is halted
// and every later call fails with ErrGameHalted.
func (m *Manager) Apply(ctx context.Context, gameID, playerID string, action Action) (err error) {
	s, err := m.get(gameID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusHalted:
		return ErrGameHalted
	case StatusFinished:
		return ErrGameFinished
	}

	defer func() {
		if r := recover(); r != nil {
			s.status = StatusHalted
			m.markEnded(gameID)
			m.logger.Error("game halted",
				zap.String("game_id", gameID),
				zap.String("player_id", playerID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = fmt.Errorf("%w: %v", ErrGameHalted, r)
		}
	}()

	if err := s.state.ApplyAction(playerID, action); err != nil {
		return err
	}

	if winner, over := s.state.Winner(); over {
		s.status = StatusFinished
		m.markEnded(gameID)
		m.logger.Info("game finished",
			zap.String("game_id", gameID),
			zap.String("winner", winner),
			zap.Int("turns", s.state.TurnNumber),
		)
		m.archive(ctx, s, winner)
	}
	return nil
}

func (m *Manager) archive(ctx context.Context, s *session, winner string) {
	if m.archiver == nil {
		return
	}
	record := ArchiveRecord{
		GameID:     s.id,
		Players:    append([]string(nil), s.state.PlayerTurnOrder...),
		Winner:     winner,
		Turns:      s.state.TurnNumber,
		Flavor:     s.state.GameSettings.Flavor,
		Log:        s.state.EventLog.Entries(),
		StartedAt:  s.createdAt,
		FinishedAt: time.Now(),
	}
	if err := m.archiver.ArchiveGame(ctx, record); err != nil {
		m.logger.Error("failed to archive game", zap.String("game_id", s.id), zap.Error(err))
	}
}

// View returns the player's view of a game.
func (m *Manager) View(gameID, playerID string) (UIGameState, error) {
	s, err := m.get(gameID)
	if err != nil {
		return UIGameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return GameUIState(playerID, s.state), nil
}

// Players returns the participants of a game in turn order.
func (m *Manager) Players(gameID string) ([]string, error) {
	s, err := m.get(gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.PlayerTurnOrder...), nil
}

// Status returns the lifecycle state of a game.
func (m *Manager) Status(gameID string) (Status, error) {
	s, err := m.get(gameID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

// RemoveGame forgets a game.
func (m *Manager) RemoveGame(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[gameID]; ok {
		delete(m.games, gameID)
		delete(m.ended, gameID)
		m.logger.Info("game removed", zap.String("game_id", gameID))
	}
}

// GetActiveGameCount returns the number of running games.
func (m *Manager) GetActiveGameCount() int {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.games))
	for _, s := range m.games {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	count := 0
	for _, s := range sessions {
		s.mu.Lock()
		if s.status == StatusRunning {
			count++
		}
		s.mu.Unlock()
	}
	return count
}

// HaltedGameCount returns the number of games stopped by engine failures.
func (m *Manager) HaltedGameCount() int {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.games))
	for _, s := range m.games {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	count := 0
	for _, s := range sessions {
		s.mu.Lock()
		if s.status == StatusHalted {
			count++
		}
		s.mu.Unlock()
	}
	return count
}
