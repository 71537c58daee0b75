package game

import (
	"go.uber.org/zap"
)

// startFirstTurn hands the game to the first player once setup is done. The
// first turn skips the discard phase.
func (g *GameState) startFirstTurn() {
	g.ActivePlayer = g.PlayerTurnOrder[0]
	g.TurnNumber = 1
	g.beginTurn(g.ActivePlayer)
	g.TurnState = newReinforceTurnState()
}

// endTurn cleans up after the active player's attack phase and passes play
// to the next living player.
func (g *GameState) endTurn() {
	active := g.mustPlayer(g.ActivePlayer)
	for _, s := range active.Ships {
		s.HasFiredThisTurn = false
		s.HasSweptThisTurn = false
	}
	active.CommandShip.AbilityUsedThisTurn = false

	for _, id := range g.PlayerTurnOrder {
		p := g.mustPlayer(id)
		for _, s := range p.Ships {
			s.TemporaryDamage = 0
		}
		p.CommandShip.TemporaryDamage = 0
		p.Hand = append(p.Hand, p.UsedSquadronCards...)
		p.UsedSquadronCards = nil
	}
	g.DirectHitStateMachine = nil

	next, wrapped := g.nextPlayer(g.ActivePlayer)
	if wrapped {
		g.TurnNumber++
	}
	g.logger.Debug("turn ended",
		zap.String("player_id", g.ActivePlayer),
		zap.String("next_player_id", next),
		zap.Int("turn", g.TurnNumber),
	)
	g.ActivePlayer = next
	g.beginTurn(next)
	g.TurnState = newDiscardTurnState()
}

// nextPlayer finds the living player after id. wrapped is set when the search
// passes the end of the turn order.
func (g *GameState) nextPlayer(id string) (string, bool) {
	n := len(g.PlayerTurnOrder)
	start := 0
	for i, p := range g.PlayerTurnOrder {
		if p == id {
			start = i
			break
		}
	}
	wrapped := false
	for k := 1; k <= n; k++ {
		i := (start + k) % n
		if start+k >= n {
			wrapped = true
		}
		if g.mustPlayer(g.PlayerTurnOrder[i]).IsAlive {
			return g.PlayerTurnOrder[i], wrapped
		}
	}
	return id, wrapped
}

func (g *GameState) beginTurn(playerID string) {
	g.logTurnStart(playerID)
	g.expireFields(playerID)
}

// expireFields removes asteroid fields and minefields that last until the
// beginning of playerID's turn.
func (g *GameState) expireFields(playerID string) {
	for _, id := range g.PlayerTurnOrder {
		p := g.mustPlayer(id)
		if p.AsteroidsUntilBeginningOfPlayerTurn == playerID {
			p.AsteroidsUntilBeginningOfPlayerTurn = ""
			g.logFieldExpired(id, "asteroid")
		}
		if p.MinefieldUntilBeginningOfPlayerTurn == playerID {
			p.MinefieldUntilBeginningOfPlayerTurn = ""
			g.logFieldExpired(id, "mine")
		}
	}
}
