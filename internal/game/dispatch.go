package game

import (
	"go.uber.org/zap"
)

// ApplyAction applies one player action to the game. It returns an
// *ActionError when the action breaks a rule; the state is then unchanged.
// Actions that do not fit the current state, or come from a player who is not
// being asked, are logged and ignored.
func (g *GameState) ApplyAction(playerID string, action Action) error {
	p, ok := g.PlayerState[playerID]
	if !ok {
		return g.ignore(playerID, actionType(action), "unknown player")
	}
	if !p.IsAlive {
		return g.ignore(playerID, actionType(action), "player is out of the game")
	}
	if _, over := g.Winner(); over {
		return g.ignore(playerID, actionType(action), "game is over")
	}

	if s, ok := g.TurnState.(abilityTurnState); ok {
		if playerID != g.ActivePlayer {
			return g.ignore(playerID, action.Type(), "not the active player")
		}
		return s.handle(g, playerID, action)
	}

	switch a := action.(type) {
	case ChooseCardAction:
		return g.handleChooseCard(playerID, a)
	case ChooseShipAction:
		return g.handleChooseShip(playerID, a)
	case ChooseZoneAction:
		return g.handleChooseZone(playerID, a)
	case ChooseAction:
		return g.handleChoose(playerID, a)
	case PassAction:
		return g.handlePass(playerID)
	case CancelAction:
		return g.handleCancel(playerID)
	case ActivateCommandShipAbilityAction:
		return g.handleActivateAbility(playerID)
	case ActivateMinesweeperAbilityAction:
		return g.handleActivateMinesweeper(playerID)
	default:
		return g.ignore(playerID, actionType(action), "unsupported action")
	}
}

// ignore records a protocol violation. Such actions never change the game.
func (g *GameState) ignore(playerID string, action ActionType, reason string) error {
	var state TurnStateType
	if g.TurnState != nil {
		state = g.TurnState.Type()
	}
	g.logger.Warn("ignoring action",
		zap.String("player_id", playerID),
		zap.String("action", string(action)),
		zap.String("turn_state", string(state)),
		zap.String("reason", reason),
	)
	return nil
}

func actionType(a Action) ActionType {
	if a == nil {
		return ""
	}
	return a.Type()
}

// activeOnly filters actions that only the active player may take. Actions
// from anybody else are logged and ignored.
func (g *GameState) activeOnly(playerID string, action ActionType) bool {
	if playerID != g.ActivePlayer {
		g.ignore(playerID, action, "not the active player")
		return false
	}
	return true
}
