package game

import (
	"github.com/magblast/magblast-server-go/internal/game/rules"
)

func (g *GameState) handlePass(playerID string) error {
	if s, ok := g.TurnState.(RespondState); ok {
		return g.declineResponse(playerID, s)
	}
	if !g.activeOnly(playerID, ActionPass) {
		return nil
	}
	p := g.mustPlayer(playerID)

	switch g.TurnState.(type) {
	case *DiscardTurnState:
		g.finishDiscard(p)
		return nil
	case *ReinforceTurnState:
		g.enterManeuver(p)
		return nil
	case *ManeuverTurnState:
		for _, z := range rules.Zones {
			if p.ShipsInZone(z) > rules.MaxShipsPerZone {
				return newActionError("The %s zone has more than %d ships.", z, rules.MaxShipsPerZone)
			}
		}
		g.TurnState = newAttackTurnState()
		return nil
	case *AttackTurnState:
		g.endTurn()
		return nil
	default:
		return g.ignore(playerID, ActionPass, "cannot pass now")
	}
}
