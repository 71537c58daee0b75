package game

func (g *GameState) handleChoose(playerID string, a ChooseAction) error {
	if !g.activeOnly(playerID, a.Type()) {
		return nil
	}
	s, ok := g.TurnState.(*AttackChooseAsteroidOrMinefieldToSweepState)
	if !ok {
		return g.ignore(playerID, a.Type(), "no choice expected")
	}
	switch a.Choice {
	case fieldAsteroids, fieldMinefield:
		g.sweep(playerID, s.MinesweeperID, s.PlayerID, a.Choice)
		return nil
	default:
		return newActionError("Choose %s or %s.", fieldAsteroids, fieldMinefield)
	}
}
