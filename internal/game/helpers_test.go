package game

import (
	"testing"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testSettings() Settings {
	return Settings{
		StartingHandSize: DefaultHandSize,
		AttackMode:       AttackModeFreeForAll,
		Flavor:           cards.FlavorOriginal,
		Seed:             7,
	}
}

// newTestGame creates a freshly dealt game with a fixed seed.
func newTestGame(t *testing.T, players ...string) *GameState {
	t.Helper()
	if len(players) == 0 {
		players = []string{"p1", "p2"}
	}
	g, err := NewGameState(cards.DefaultCatalog(), players, testSettings(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return g
}

// newArena returns a game in the first player's attack phase with empty hands
// and no ships, ready for a scenario to be laid out.
func newArena(t *testing.T, players ...string) *GameState {
	t.Helper()
	g := newTestGame(t, players...)
	for _, p := range g.PlayerState {
		p.Hand = nil
		p.Ships = nil
	}
	g.ActivePlayer = g.PlayerTurnOrder[0]
	g.TurnNumber = 1
	g.TurnState = newAttackTurnState()
	return g
}

func actionCard(t *testing.T, g *GameState, name string) cards.ActionCard {
	t.Helper()
	c, ok := g.catalog.ActionCard(g.GameSettings.Flavor, name)
	require.True(t, ok, "unknown action card %s", name)
	return c
}

func giveCards(t *testing.T, g *GameState, playerID string, names ...string) {
	t.Helper()
	p := g.mustPlayer(playerID)
	for _, n := range names {
		p.Hand = append(p.Hand, actionCard(t, g, n))
	}
}

func addShip(t *testing.T, g *GameState, playerID, name string, zone rules.Zone) *Ship {
	t.Helper()
	c, ok := g.catalog.ShipCard(g.GameSettings.Flavor, name)
	require.True(t, ok, "unknown ship card %s", name)
	s := g.newShip(c, zone)
	p := g.mustPlayer(playerID)
	p.Ships = append(p.Ships, s)
	return s
}

func setCommandShip(t *testing.T, g *GameState, playerID string, typ cards.CommandShipType) *CommandShip {
	t.Helper()
	c, ok := g.catalog.CommandShipCard(g.GameSettings.Flavor, typ)
	require.True(t, ok)
	cs := &CommandShip{Card: c}
	if c.AbilityActivations != nil {
		n := *c.AbilityActivations
		cs.RemainingAbilityActivations = &n
	}
	g.mustPlayer(playerID).CommandShip = cs
	return cs
}

// apply runs an action that must be accepted.
func apply(t *testing.T, g *GameState, playerID string, a Action) {
	t.Helper()
	require.NoError(t, g.ApplyAction(playerID, a))
}

func chooseCard(i int) ChooseCardAction { return ChooseCardAction{Indices: []int{i}} }

func chooseCards(is ...int) ChooseCardAction { return ChooseCardAction{Indices: is, List: true} }

func chooseShip(playerID string, i int) ChooseShipAction {
	return ChooseShipAction{PlayerID: playerID, ShipIndex: i, HasShip: true}
}

func choosePlayer(playerID string) ChooseShipAction { return ChooseShipAction{PlayerID: playerID} }

func chooseZone(z rules.Zone) ChooseZoneAction { return ChooseZoneAction{Location: z} }

// requireActionError asserts a rule violation that left the game untouched.
func requireActionError(t *testing.T, g *GameState, playerID string, a Action) {
	t.Helper()
	before := g.ComputeChecksum()
	err := g.ApplyAction(playerID, a)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	require.NotEmpty(t, actionErr.Message)
	require.Equal(t, before, g.ComputeChecksum(), "state changed after a rejected action")
}

// requireIgnored asserts a protocol violation that left the game untouched.
func requireIgnored(t *testing.T, g *GameState, playerID string, a Action) {
	t.Helper()
	before := g.ComputeChecksum()
	require.NoError(t, g.ApplyAction(playerID, a))
	require.Equal(t, before, g.ComputeChecksum(), "state changed after an ignored action")
}

func logLines(g *GameState) []string {
	return g.EventLog.Lines()
}

func hasLine(g *GameState, line string) bool {
	for _, l := range logLines(g) {
		if l == line {
			return true
		}
	}
	return false
}

func countActionCards(g *GameState) int {
	n := len(g.ActionDeck) + len(g.ActionDiscardDeck)
	for _, p := range g.PlayerState {
		n += len(p.Hand) + len(p.UsedSquadronCards)
	}
	return n
}

func countShipCards(g *GameState) int {
	n := len(g.ShipDeck) + len(g.ShipDiscardDeck)
	for _, p := range g.PlayerState {
		n += len(p.Ships)
	}
	switch s := g.TurnState.(type) {
	case *ChooseStartingShipsState:
		for _, o := range s.Options {
			n += len(o)
		}
	case *PlaceStartingShipsState:
		for _, r := range s.Remaining {
			n += len(r)
		}
	case *ReinforcePlaceShipState:
		n++
	}
	return n
}

// completeSetup keeps the first four dealt ships for everybody and places
// them one per zone.
func completeSetup(t *testing.T, g *GameState) {
	t.Helper()
	for _, id := range g.PlayerTurnOrder {
		apply(t, g, id, chooseCards(0, 1, 2, 3))
	}
	for _, id := range g.PlayerTurnOrder {
		for _, z := range rules.Zones {
			apply(t, g, id, chooseZone(z))
		}
	}
}
