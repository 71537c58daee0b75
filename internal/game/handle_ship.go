package game

import (
	"slices"

	"github.com/magblast/magblast-server-go/internal/game/cards"
)

// shipRef converts a wire ship choice to a reference. Choices without a ship
// index name the player's command ship. It fails for an unknown player or a
// ship index out of range.
func (g *GameState) shipRef(a ChooseShipAction) (ShipRef, bool) {
	p, ok := g.PlayerState[a.PlayerID]
	if !ok {
		return ShipRef{}, false
	}
	if !a.HasShip {
		return ShipRef{PlayerID: a.PlayerID}, true
	}
	if a.ShipIndex < 0 || a.ShipIndex >= len(p.Ships) {
		return ShipRef{}, false
	}
	return ShipRef{PlayerID: a.PlayerID, ShipID: p.Ships[a.ShipIndex].ID}, true
}

// ownShip resolves a choice that must name one of the player's own ships.
func (g *GameState) ownShip(playerID string, ref ShipRef) (*Ship, error) {
	if ref.PlayerID != playerID || ref.IsCommandShip() {
		return nil, newActionError("Choose one of your own ships.")
	}
	_, _, s := g.findShip(ref.ShipID)
	return s, nil
}

func (g *GameState) handleChooseShip(playerID string, a ChooseShipAction) error {
	if !g.activeOnly(playerID, a.Type()) {
		return nil
	}
	ref, ok := g.shipRef(a)
	if !ok {
		return g.ignore(playerID, a.Type(), "ship choice out of range")
	}
	switch s := g.TurnState.(type) {
	case *ManeuverTurnState:
		ship, err := g.ownShip(playerID, ref)
		if err != nil {
			return err
		}
		if ship.Card.Movement <= 0 {
			return newActionError("%s cannot move.", ship.Card.Name)
		}
		g.TurnState = newManeuverChooseTargetZoneState(ship.ID, s.OriginalLocations)
		return nil

	case *PlayBlastChooseFiringShipState:
		ship, err := g.ownShip(playerID, ref)
		if err != nil {
			return err
		}
		if !canFire(ship, s.Card) {
			return newActionError("%s cannot fire %s.", ship.Card.Name, s.Card.Name)
		}
		g.TurnState = newPlayBlastChooseTargetShipState(s.PlayedCard, ship.ID)
		return nil

	case *PlayBlastChooseTargetShipState:
		if !g.canBlastTarget(playerID, ref) {
			return newActionError("That ship cannot be blasted.")
		}
		_, _, ship := g.findShip(s.FiringShipID)
		if ship == nil {
			panic(&InvariantError{Message: "firing ship " + s.FiringShipID + " left play during target selection"})
		}
		g.fireBlast(playerID, s.Card, ship, ref)
		return nil

	case *PlaySquadronChooseTargetShipState:
		if !g.canSquadronTarget(playerID, ref) {
			return newActionError("Squadrons cannot attack that ship.")
		}
		g.launchSquadron(playerID, s.Card, ref)
		return nil

	case *PlayActionChooseTargetShipState:
		if !g.canBoardTarget(playerID, ref) {
			return newActionError("That ship cannot be boarded.")
		}
		g.logPlaysAt(playerID, s.Card, ref)
		g.openResponse(PendingEffect{Kind: EffectBoardingParty, Actor: playerID, Card: s.Card, Target: ref}, nil)
		return nil

	case *AttackChooseSpacedockShipState:
		ship, err := g.ownShip(playerID, ref)
		if err != nil {
			return err
		}
		if len(ship.BlastDamageHistory) == 0 {
			return newActionError("%s has no damage to repair.", ship.Card.Name)
		}
		g.logPlaysAt(playerID, s.Card, ref)
		g.openResponse(PendingEffect{Kind: EffectSpacedock, Actor: playerID, Card: s.Card, Target: ref}, nil)
		return nil

	case *AttackChooseAsteroidsPlayerTurnState:
		return g.playField(playerID, a, s.Card, EffectAsteroids)

	case *AttackChooseMinefieldPlayerTurnState:
		return g.playField(playerID, a, s.Card, EffectMinefield)

	case *AttackChooseMinesweeperState:
		ship, err := g.ownShip(playerID, ref)
		if err != nil {
			return err
		}
		if !ship.Card.Minesweeper || ship.HasSweptThisTurn {
			return newActionError("%s cannot sweep this turn.", ship.Card.Name)
		}
		g.TurnState = newAttackChoosePlayerToMinesweepState(ship.ID)
		return nil

	case *AttackChoosePlayerToMinesweepState:
		if a.HasShip {
			return g.ignore(playerID, a.Type(), "expected a player")
		}
		target := g.mustPlayer(a.PlayerID)
		if !slices.Contains(g.minesweepTargets(playerID), a.PlayerID) {
			return newActionError("That player has nothing to sweep.")
		}
		switch {
		case target.AsteroidsUntilBeginningOfPlayerTurn != "" && target.MinefieldUntilBeginningOfPlayerTurn != "":
			g.TurnState = newAttackChooseAsteroidOrMinefieldToSweepState(s.MinesweeperID, a.PlayerID)
		case target.AsteroidsUntilBeginningOfPlayerTurn != "":
			g.sweep(playerID, s.MinesweeperID, a.PlayerID, fieldAsteroids)
		default:
			g.sweep(playerID, s.MinesweeperID, a.PlayerID, fieldMinefield)
		}
		return nil

	default:
		return g.ignore(playerID, a.Type(), "no ship choice expected")
	}
}

// playField commits an asteroid field or minefield lasting until the chosen
// player's next turn.
func (g *GameState) playField(playerID string, a ChooseShipAction, card cards.ActionCard, kind EffectKind) error {
	if a.HasShip {
		return g.ignore(playerID, a.Type(), "expected a player")
	}
	if !g.mustPlayer(a.PlayerID).IsAlive {
		return newActionError("Choose a player who is still in the game.")
	}
	g.logPlaysUntil(playerID, card, a.PlayerID)
	g.openResponse(PendingEffect{Kind: kind, Actor: playerID, Card: card, Player: a.PlayerID}, nil)
	return nil
}
