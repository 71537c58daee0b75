package game

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"lukechampine.com/blake3"
)

// checksumVersion changes whenever the canonical representation does.
const checksumVersion = 1

// StateChecksum is a digest of everything that defines a game position.
// Clients compare it with their own view to detect divergence, and tests use
// it to prove an action left the state untouched.
type StateChecksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

// ComputeChecksum hashes the canonical representation of the game with BLAKE3.
func (g *GameState) ComputeChecksum() StateChecksum {
	sum := blake3.Sum256([]byte(g.buildDeterministicRepresentation()))
	return StateChecksum{Hash: hex.EncodeToString(sum[:]), Version: checksumVersion}
}

// VerifyChecksum reports whether the game still matches a checksum.
func (g *GameState) VerifyChecksum(expected StateChecksum) bool {
	return expected.Version == checksumVersion && g.ComputeChecksum().Hash == expected.Hash
}

// buildDeterministicRepresentation renders the game independent of map
// iteration order. The random source is not part of it.
func (g *GameState) buildDeterministicRepresentation() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%d|%s|%s|%d|%s\n",
		g.ActivePlayer,
		g.TurnNumber,
		g.GameSettings.Flavor,
		g.GameSettings.AttackMode,
		g.GameSettings.StartingHandSize,
		strings.Join(g.PlayerTurnOrder, ","),
	)

	ids := make([]string, 0, len(g.PlayerState))
	for id := range g.PlayerState {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := g.PlayerState[id]
		cs := p.CommandShip
		fmt.Fprintf(&buf, "PLAYER:%s|%t|%s|%s\n", id, p.IsAlive,
			p.AsteroidsUntilBeginningOfPlayerTurn, p.MinefieldUntilBeginningOfPlayerTurn)
		remaining := -1
		if cs.RemainingAbilityActivations != nil {
			remaining = *cs.RemainingAbilityActivations
		}
		fmt.Fprintf(&buf, "  COMMAND:%s|%d|%d|%v|%d|%t\n", cs.Card.Type, cs.Damage, cs.TemporaryDamage,
			cs.BlastDamageHistory, remaining, cs.AbilityUsedThisTurn)
		buf.WriteString("  HAND:" + actionNames(p.Hand) + "\n")
		buf.WriteString("  SQUADRONS:" + actionNames(p.UsedSquadronCards) + "\n")
		for _, s := range p.Ships {
			fmt.Fprintf(&buf, "  SHIP:%s|%s|%s|%d|%d|%v|%t|%t\n", s.ID, s.Card.Name, s.Location,
				s.Damage, s.TemporaryDamage, s.BlastDamageHistory, s.HasFiredThisTurn, s.HasSweptThisTurn)
		}
	}

	buf.WriteString("ACTION_DECK:" + actionNames(g.ActionDeck) + "\n")
	buf.WriteString("ACTION_DISCARD:" + actionNames(g.ActionDiscardDeck) + "\n")
	buf.WriteString("SHIP_DECK:" + shipNames(g.ShipDeck) + "\n")
	buf.WriteString("SHIP_DISCARD:" + shipNames(g.ShipDiscardDeck) + "\n")

	if dh := g.DirectHitStateMachine; dh != nil {
		fmt.Fprintf(&buf, "DIRECT_HIT:%s|%s|%s|%s\n", dh.Phase, dh.FiringShipID, dh.Target.PlayerID, dh.Target.ShipID)
	}

	// encoding/json sorts map keys, which keeps nested state deterministic.
	if g.TurnState != nil {
		state, err := json.Marshal(g.TurnState)
		if err != nil {
			state = []byte(err.Error())
		}
		fmt.Fprintf(&buf, "TURN_STATE:%s|%s\n", g.TurnState.Type(), state)
	}
	fmt.Fprintf(&buf, "LOG:%d\n", g.EventLog.Len())

	return buf.String()
}

func actionNames(cs []cards.ActionCard) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return strings.Join(names, ",")
}

func shipNames(cs []cards.ShipCard) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return strings.Join(names, ",")
}
