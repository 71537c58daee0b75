package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingArchiver struct {
	mu      sync.Mutex
	records []ArchiveRecord
}

func (a *recordingArchiver) ArchiveGame(_ context.Context, record ArchiveRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
	return nil
}

func newTestManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	return NewManager(cards.DefaultCatalog(), testSettings(), zaptest.NewLogger(t), opts...)
}

// arena reaches into a managed game and lays it out like newArena.
func arena(t *testing.T, m *Manager, gameID string) *GameState {
	t.Helper()
	s, err := m.get(gameID)
	require.NoError(t, err)
	g := s.state
	for _, p := range g.PlayerState {
		p.Hand = nil
		p.Ships = nil
	}
	g.ActivePlayer = g.PlayerTurnOrder[0]
	g.TurnNumber = 1
	g.TurnState = newAttackTurnState()
	return g
}

func TestManagerCreateGame(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, m.GetActiveGameCount())

	players, err := m.Players(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, players)

	status, err := m.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)

	view, err := m.View(id, "p1")
	require.NoError(t, err)
	assert.Equal(t, StateChooseStartingShips, view.TurnState)

	_, err = m.CreateGame([]string{"p1"}, m.DefaultSettings())
	assert.Error(t, err)
}

func TestManagerUnknownGame(t *testing.T) {
	m := newTestManager(t)

	assert.ErrorIs(t, m.Apply(context.Background(), "missing", "p1", PassAction{}), ErrGameNotFound)
	_, err := m.View("missing", "p1")
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = m.Status("missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestManagerMaxGames(t *testing.T) {
	m := newTestManager(t, WithMaxGames(1))

	id, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)
	_, err = m.CreateGame([]string{"p3", "p4"}, m.DefaultSettings())
	assert.ErrorIs(t, err, ErrTooManyGames)

	m.RemoveGame(id)
	_, err = m.CreateGame([]string{"p3", "p4"}, m.DefaultSettings())
	assert.NoError(t, err)
}

func TestManagerApply(t *testing.T) {
	m := newTestManager(t)
	id, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)
	ctx := context.Background()

	err = m.Apply(ctx, id, "p1", chooseCards(0, 1))
	var actionErr *ActionError
	assert.ErrorAs(t, err, &actionErr)

	require.NoError(t, m.Apply(ctx, id, "p1", chooseCards(0, 1, 2, 3)))
	require.NoError(t, m.Apply(ctx, id, "p2", chooseCards(0, 1, 2, 3)))
	view, err := m.View(id, "p2")
	require.NoError(t, err)
	assert.Equal(t, StatePlaceStartingShips, view.TurnState)
}

// finishGame has p1 bomb p2's crippled command ship.
func finishGame(t *testing.T, m *Manager, gameID string) {
	t.Helper()
	g := arena(t, m, gameID)
	addShip(t, g, "p1", "Dreadnought", rules.ZoneNorth)
	cs := setCommandShip(t, g, "p2", cards.Freep)
	cs.Damage = cs.Card.HP - 1
	giveCards(t, g, "p1", cards.Bomber)

	ctx := context.Background()
	require.NoError(t, m.Apply(ctx, gameID, "p1", chooseCard(0)))
	require.NoError(t, m.Apply(ctx, gameID, "p1", choosePlayer("p2")))
}

func TestManagerCapCountsRunningGames(t *testing.T) {
	m := newTestManager(t, WithMaxGames(1), WithRetention(time.Hour))
	first, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)

	_, err = m.CreateGame([]string{"p3", "p4"}, m.DefaultSettings())
	require.ErrorIs(t, err, ErrTooManyGames)

	finishGame(t, m, first)
	assert.Zero(t, m.GetActiveGameCount())

	second, err := m.CreateGame([]string{"p3", "p4"}, m.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, m.GetActiveGameCount())

	_, err = m.CreateGame([]string{"p5", "p6"}, m.DefaultSettings())
	assert.ErrorIs(t, err, ErrTooManyGames)

	// Finished games stay viewable until the retention period passes.
	status, err := m.Status(first)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, status)
	_, err = m.View(second, "p3")
	assert.NoError(t, err)
}

func TestManagerEvictsEndedGames(t *testing.T) {
	m := newTestManager(t, WithRetention(time.Nanosecond))
	finished, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)
	finishGame(t, m, finished)

	running, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)

	_, err = m.Status(finished)
	assert.ErrorIs(t, err, ErrGameNotFound)
	status, err := m.Status(running)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
}

func TestManagerArchivesFinishedGames(t *testing.T) {
	archiver := &recordingArchiver{}
	m := newTestManager(t, WithArchiver(archiver))
	id, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)

	finishGame(t, m, id)

	status, err := m.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, status)
	assert.Zero(t, m.GetActiveGameCount())

	require.Len(t, archiver.records, 1)
	record := archiver.records[0]
	assert.Equal(t, id, record.GameID)
	assert.Equal(t, "p1", record.Winner)
	assert.Equal(t, []string{"p1", "p2"}, record.Players)
	assert.Equal(t, cards.FlavorOriginal, record.Flavor)
	assert.NotEmpty(t, record.Log)

	assert.ErrorIs(t, m.Apply(context.Background(), id, "p1", PassAction{}), ErrGameFinished)
}

func TestManagerHaltsCorruptGames(t *testing.T) {
	m := newTestManager(t)
	id, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)

	g := arena(t, m, id)
	addShip(t, g, "p2", "Scout", rules.ZoneNorth)
	g.TurnState = newPlayBlastChooseTargetShipState(PlayedCard{Card: actionCard(t, g, cards.LaserBlast)}, "ship-missing")

	ctx := context.Background()
	err = m.Apply(ctx, id, "p1", chooseShip("p2", 0))
	require.ErrorIs(t, err, ErrGameHalted)

	status, err := m.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusHalted, status)
	assert.Equal(t, 1, m.HaltedGameCount())
	assert.Zero(t, m.GetActiveGameCount())

	assert.ErrorIs(t, m.Apply(ctx, id, "p1", PassAction{}), ErrGameHalted)

	// Other games keep running.
	other, err := m.CreateGame([]string{"p1", "p2"}, m.DefaultSettings())
	require.NoError(t, err)
	assert.NoError(t, m.Apply(ctx, other, "p1", chooseCards(0, 1, 2, 3)))
}

func TestManagerConcurrentActions(t *testing.T) {
	m := newTestManager(t)
	id, err := m.CreateGame([]string{"p1", "p2", "p3", "p4"}, m.DefaultSettings())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, p := range []string{"p1", "p2", "p3", "p4"} {
		wg.Add(1)
		go func(playerID string) {
			defer wg.Done()
			assert.NoError(t, m.Apply(context.Background(), id, playerID, chooseCards(0, 1, 2, 3)))
			_, err := m.View(id, playerID)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	view, err := m.View(id, "p1")
	require.NoError(t, err)
	assert.Equal(t, StatePlaceStartingShips, view.TurnState)
}
