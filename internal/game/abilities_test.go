package game

import (
	"testing"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCraniumConsortium(t *testing.T) {
	g := newArena(t)
	cs := setCommandShip(t, g, "p1", cards.CraniumConsortium)
	giveCards(t, g, "p1", cards.LaserBlast, cards.BeamBlast, cards.MagBlast, cards.Fighter)

	t.Run("dry run leaves the game untouched", func(t *testing.T) {
		before := g.ComputeChecksum()
		assert.True(t, g.CanActivateAbility("p1"))
		assert.False(t, g.CanActivateAbility("p2"))
		assert.Equal(t, before, g.ComputeChecksum())
	})

	t.Run("cancel keeps the activation", func(t *testing.T) {
		apply(t, g, "p1", ActivateCommandShipAbilityAction{})
		require.IsType(t, &CraniumConsortiumChooseResourcesToDiscardState{}, g.TurnState)
		apply(t, g, "p1", CancelAction{})
		assert.IsType(t, &AttackTurnState{}, g.TurnState)
		assert.Equal(t, 2, *cs.RemainingAbilityActivations)
		assert.False(t, cs.AbilityUsedThisTurn)
	})

	t.Run("discards a resource set to draw two", func(t *testing.T) {
		apply(t, g, "p1", ActivateCommandShipAbilityAction{})
		requireIgnored(t, g, "p2", chooseCards(0))
		requireIgnored(t, g, "p1", PassAction{})
		requireIgnored(t, g, "p1", chooseCards(0, 8))
		requireActionError(t, g, "p1", chooseCards(0, 3))
		apply(t, g, "p1", chooseCards(0, 1, 2))

		assert.IsType(t, &AttackTurnState{}, g.TurnState)
		hand := g.mustPlayer("p1").Hand
		require.Len(t, hand, 3)
		assert.Equal(t, cards.Fighter, hand[0].Name)
		assert.Equal(t, 1, *cs.RemainingAbilityActivations)
		assert.True(t, cs.AbilityUsedThisTurn)
	})

	t.Run("once per turn", func(t *testing.T) {
		giveCards(t, g, "p1", cards.LaserBlast, cards.LaserBlast, cards.LaserBlast)
		assert.False(t, g.CanActivateAbility("p1"))
		requireActionError(t, g, "p1", ActivateCommandShipAbilityAction{})
	})

	t.Run("limited activations", func(t *testing.T) {
		*cs.RemainingAbilityActivations = 0
		cs.AbilityUsedThisTurn = false
		assert.False(t, g.CanActivateAbility("p1"))
		requireActionError(t, g, "p1", ActivateCommandShipAbilityAction{})
	})
}

func TestCraniumConsortiumNeedsResources(t *testing.T) {
	g := newArena(t)
	setCommandShip(t, g, "p1", cards.CraniumConsortium)
	giveCards(t, g, "p1", cards.LaserBlast, cards.LaserBlast)

	assert.False(t, g.CanActivateAbility("p1"))
	requireActionError(t, g, "p1", ActivateCommandShipAbilityAction{})
}

func TestBrotherhood(t *testing.T) {
	g := newArena(t)
	cs := setCommandShip(t, g, "p1", cards.Brotherhood)
	carrier := addShip(t, g, "p1", "Carrier", rules.ZoneNorth)
	addShip(t, g, "p1", "Scout", rules.ZoneSouth)

	assert.False(t, g.CanActivateAbility("p1"), "nothing is damaged")

	carrier.Damage = 2
	carrier.BlastDamageHistory = []int{2}
	require.True(t, g.CanActivateAbility("p1"))

	apply(t, g, "p1", ActivateCommandShipAbilityAction{})
	require.IsType(t, &BrotherhoodChooseShipToTransferFromState{}, g.TurnState)
	requireActionError(t, g, "p1", chooseShip("p1", 1))
	requireIgnored(t, g, "p1", chooseShip("p2", 0))
	requireIgnored(t, g, "p1", chooseShip("p1", 5))
	apply(t, g, "p1", chooseShip("p1", 0))

	require.IsType(t, &BrotherhoodChooseShipToTransferToState{}, g.TurnState)
	requireActionError(t, g, "p1", chooseShip("p1", 0))
	// A one hit point scout cannot take the damage.
	requireActionError(t, g, "p1", chooseShip("p1", 1))
	apply(t, g, "p1", choosePlayer("p1"))

	assert.IsType(t, &AttackTurnState{}, g.TurnState)
	assert.Equal(t, 1, carrier.Damage)
	assert.Equal(t, []int{1}, carrier.BlastDamageHistory)
	assert.Equal(t, 1, cs.Damage)
	assert.Equal(t, []int{1}, cs.BlastDamageHistory)
	assert.True(t, cs.AbilityUsedThisTurn)
	assert.Nil(t, cs.RemainingAbilityActivations)
}

func TestFreep(t *testing.T) {
	g := newArena(t, "p1", "p2", "p3")
	setCommandShip(t, g, "p1", cards.Freep)

	assert.False(t, g.CanActivateAbility("p1"), "nobody holds cards")

	giveCards(t, g, "p2", cards.LaserBlast, cards.BeamBlast, cards.MagBlast)
	apply(t, g, "p1", ActivateCommandShipAbilityAction{})
	require.IsType(t, &FreepChoosePlayerToStealCardsState{}, g.TurnState)

	requireActionError(t, g, "p1", choosePlayer("p1"))
	requireActionError(t, g, "p1", choosePlayer("p3"))
	requireIgnored(t, g, "p1", chooseShip("p2", 0))
	requireIgnored(t, g, "p1", choosePlayer("nobody"))
	apply(t, g, "p1", choosePlayer("p2"))

	assert.IsType(t, &AttackTurnState{}, g.TurnState)
	assert.Len(t, g.mustPlayer("p1").Hand, 2)
	assert.Len(t, g.mustPlayer("p2").Hand, 1)
	assert.True(t, hasLine(g, "p1 activates Freep: steals cards."))
}

func TestFreepStealsWhatIsThere(t *testing.T) {
	g := newArena(t)
	setCommandShip(t, g, "p1", cards.Freep)
	giveCards(t, g, "p2", cards.Minefield)

	apply(t, g, "p1", ActivateCommandShipAbilityAction{})
	apply(t, g, "p1", choosePlayer("p2"))

	require.Len(t, g.mustPlayer("p1").Hand, 1)
	assert.Equal(t, cards.Minefield, g.mustPlayer("p1").Hand[0].Name)
	assert.Empty(t, g.mustPlayer("p2").Hand)
}

func TestOverseers(t *testing.T) {
	g := newArena(t)
	setCommandShip(t, g, "p1", cards.Overseers)
	giveCards(t, g, "p1", cards.EvasiveAction)

	assert.False(t, g.CanActivateAbility("p1"), "no blasts in hand")

	giveCards(t, g, "p1", cards.LaserBlast, cards.RammingSpeed)
	apply(t, g, "p1", ActivateCommandShipAbilityAction{})
	require.IsType(t, &OverseersChooseBlastsState{}, g.TurnState)

	requireActionError(t, g, "p1", chooseCards(0, 1))
	requireActionError(t, g, "p1", chooseCards())
	requireIgnored(t, g, "p1", chooseCards(1, 7))
	discard := len(g.ActionDiscardDeck)
	apply(t, g, "p1", chooseCards(1, 2))

	hand := g.mustPlayer("p1").Hand
	require.Len(t, hand, 3)
	assert.Equal(t, cards.EvasiveAction, hand[0].Name)
	assert.Len(t, g.ActionDiscardDeck, discard+2)
}

func TestCommandShipWithoutAbility(t *testing.T) {
	g := newArena(t)
	setCommandShip(t, g, "p1", cards.MuddLords)

	assert.False(t, g.CanActivateAbility("p1"))
	requireIgnored(t, g, "p1", ActivateCommandShipAbilityAction{})
}

// instantAbility completes as soon as it is activated.
type instantAbility struct{}

func (instantAbility) Activate(g *GameState, playerID string, dryRun bool) bool {
	if !dryRun {
		g.completeAbility(playerID, "does nothing at all.")
	}
	return true
}

func TestCustomAbilityRegistry(t *testing.T) {
	registry := NewAbilityRegistry()
	registry.Register(cards.ZetaTriumvirate, instantAbility{})

	g, err := NewGameState(cards.DefaultCatalog(), []string{"p1", "p2"}, testSettings(), zaptest.NewLogger(t),
		WithAbilities(registry))
	require.NoError(t, err)
	g.TurnState = newAttackTurnState()
	g.ActivePlayer = "p1"

	t.Run("unregistered types have no ability", func(t *testing.T) {
		setCommandShip(t, g, "p1", cards.CraniumConsortium)
		giveCards(t, g, "p1", cards.LaserBlast, cards.BeamBlast, cards.MagBlast)
		assert.False(t, g.CanActivateAbility("p1"))
		requireIgnored(t, g, "p1", ActivateCommandShipAbilityAction{})
	})

	t.Run("registered ability runs", func(t *testing.T) {
		cs := setCommandShip(t, g, "p1", cards.ZetaTriumvirate)
		assert.True(t, g.CanActivateAbility("p1"))
		apply(t, g, "p1", ActivateCommandShipAbilityAction{})
		assert.True(t, cs.AbilityUsedThisTurn)
		assert.True(t, hasLine(g, "p1 activates Zeta Triumvirate: does nothing at all."))
	})
}

func TestAbilityOnlyDuringOwnAttackPhase(t *testing.T) {
	g := newArena(t)
	setCommandShip(t, g, "p1", cards.Overseers)
	setCommandShip(t, g, "p2", cards.Overseers)
	giveCards(t, g, "p1", cards.LaserBlast)
	giveCards(t, g, "p2", cards.LaserBlast)

	requireIgnored(t, g, "p2", ActivateCommandShipAbilityAction{})
	g.TurnState = newDiscardTurnState()
	requireIgnored(t, g, "p1", ActivateCommandShipAbilityAction{})
}
