package game

import (
	"go.uber.org/zap"
)

// Choice labels offered when a player is under both kinds of field.
const (
	fieldAsteroids = "Asteroids"
	fieldMinefield = "Minefield"
)

func (g *GameState) handleActivateMinesweeper(playerID string) error {
	if !g.activeOnly(playerID, ActionActivateMinesweeperAbility) {
		return nil
	}
	if _, ok := g.TurnState.(*AttackTurnState); !ok {
		return g.ignore(playerID, ActionActivateMinesweeperAbility, "minesweepers sweep during the attack phase")
	}
	if !g.canMinesweep(playerID) {
		return newActionError("None of your minesweepers has anything to sweep.")
	}
	g.TurnState = newAttackChooseMinesweeperState()
	return nil
}

func (g *GameState) canMinesweep(playerID string) bool {
	return len(g.minesweepers(playerID)) > 0 && len(g.minesweepTargets(playerID)) > 0
}

// sweep clears one field from the target player and uses up the minesweeper
// for this turn.
func (g *GameState) sweep(actor, minesweeperID, target, field string) {
	owner, _, ship := g.findShip(minesweeperID)
	if ship == nil || owner.ID != actor {
		panic(&InvariantError{Message: "minesweeper " + minesweeperID + " not owned by " + actor})
	}
	ship.HasSweptThisTurn = true
	p := g.mustPlayer(target)
	switch field {
	case fieldAsteroids:
		p.AsteroidsUntilBeginningOfPlayerTurn = ""
		g.logSwept(actor, target, "asteroid")
	case fieldMinefield:
		p.MinefieldUntilBeginningOfPlayerTurn = ""
		g.logSwept(actor, target, "mine")
	}
	g.logger.Debug("field swept",
		zap.String("player_id", actor),
		zap.String("target_player_id", target),
		zap.String("field", field),
	)
	g.TurnState = newAttackTurnState()
}
