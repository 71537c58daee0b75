package game

// handleCancel backs out of a card selection. The card goes back to the slot
// in its owner's hand it was played from and play returns to the attack phase.
// Played cards that are already waiting on responses cannot be taken back.
func (g *GameState) handleCancel(playerID string) error {
	if !g.activeOnly(playerID, ActionCancel) {
		return nil
	}
	p := g.mustPlayer(playerID)

	switch s := g.TurnState.(type) {
	case *ManeuverChooseTargetZoneState:
		g.TurnState = newManeuverTurnState(s.OriginalLocations)
	case *AttackChooseMinesweeperState, *AttackChoosePlayerToMinesweepState, *AttackChooseAsteroidOrMinefieldToSweepState:
		g.TurnState = newAttackTurnState()
	case cardSelection:
		g.unspendCard(p, s.played())
		g.TurnState = newAttackTurnState()
	default:
		return g.ignore(playerID, ActionCancel, "nothing to cancel")
	}
	return nil
}
