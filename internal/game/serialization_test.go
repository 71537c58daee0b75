package game

import (
	"strings"
	"testing"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeChecksum verifies that checksums are computed correctly
func TestComputeChecksum(t *testing.T) {
	g := newTestGame(t)

	checksum := g.ComputeChecksum()
	assert.Len(t, checksum.Hash, 64)
	assert.Equal(t, checksumVersion, checksum.Version)
	assert.True(t, g.VerifyChecksum(checksum))
}

// TestDeterministicChecksum verifies that the checksum does not depend on map
// iteration order
func TestDeterministicChecksum(t *testing.T) {
	g := newTestGame(t, "p1", "p2", "p3", "p4")
	expected := g.ComputeChecksum().Hash
	for i := 0; i < 10; i++ {
		assert.Equal(t, expected, g.ComputeChecksum().Hash, "checksum %d differs", i)
	}
}

func TestChecksumDetectsChanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *GameState)
	}{
		{"turn number", func(g *GameState) { g.TurnNumber = 5 }},
		{"active player", func(g *GameState) { g.ActivePlayer = "p2" }},
		{"hand", func(g *GameState) {
			p := g.mustPlayer("p1")
			p.Hand = p.Hand[1:]
		}},
		{"ship damage", func(g *GameState) { g.mustPlayer("p2").Ships[0].Damage++ }},
		{"ship location", func(g *GameState) { g.mustPlayer("p2").Ships[0].Location = rules.ZoneWest }},
		{"command ship damage", func(g *GameState) { g.mustPlayer("p1").CommandShip.TemporaryDamage = 1 }},
		{"asteroids", func(g *GameState) { g.mustPlayer("p1").AsteroidsUntilBeginningOfPlayerTurn = "p2" }},
		{"discard pile", func(g *GameState) { g.ActionDiscardDeck = append(g.ActionDiscardDeck, g.ActionDeck[0]) }},
		{"turn state", func(g *GameState) { g.TurnState = newDiscardTurnState() }},
		{"direct hit", func(g *GameState) {
			g.DirectHitStateMachine = &DirectHitStateMachine{Phase: DirectHitBlastResolved, Target: ShipRef{PlayerID: "p2"}}
		}},
		{"event log", func(g *GameState) { g.logTurnStart("p1") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t)
			completeSetup(t, g)
			before := g.ComputeChecksum()
			tt.mutate(g)
			after := g.ComputeChecksum()
			assert.NotEqual(t, before.Hash, after.Hash)
			assert.False(t, g.VerifyChecksum(before))
		})
	}
}

func TestChecksumIgnoresRandomSource(t *testing.T) {
	g := newTestGame(t)
	before := g.ComputeChecksum()
	g.rng.Int63()
	assert.Equal(t, before, g.ComputeChecksum())
}

func TestVerifyChecksumRejectsOtherVersions(t *testing.T) {
	g := newTestGame(t)
	checksum := g.ComputeChecksum()
	checksum.Version++
	assert.False(t, g.VerifyChecksum(checksum))
}

func TestDeterministicRepresentationSortsPlayers(t *testing.T) {
	g := newArena(t, "p3", "p1", "p2")
	giveCards(t, g, "p1", cards.LaserBlast, cards.Fighter)

	repr := g.buildDeterministicRepresentation()
	require.Contains(t, repr, "GAME:p3|1|Original|FreeForAll|5|p3,p1,p2\n")
	assert.Contains(t, repr, "  HAND:Laser Blast,Fighter\n")
	assert.Less(t, strings.Index(repr, "PLAYER:p1|"), strings.Index(repr, "PLAYER:p2|"))
	assert.Less(t, strings.Index(repr, "PLAYER:p2|"), strings.Index(repr, "PLAYER:p3|"))
	assert.Contains(t, repr, "TURN_STATE:AttackTurnState|")
}
