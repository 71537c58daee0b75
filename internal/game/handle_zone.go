package game

import (
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"go.uber.org/zap"
)

func (g *GameState) handleChooseZone(playerID string, a ChooseZoneAction) error {
	if s, ok := g.TurnState.(*PlaceStartingShipsState); ok {
		return g.placeStartingShip(playerID, s, a.Location)
	}
	if !g.activeOnly(playerID, a.Type()) {
		return nil
	}
	p := g.mustPlayer(playerID)

	switch s := g.TurnState.(type) {
	case *ReinforcePlaceShipState:
		if p.ShipsInZone(a.Location) >= rules.MaxShipsPerZone {
			return newActionError("The %s zone is full.", a.Location)
		}
		p.Ships = append(p.Ships, g.newShip(s.Ship, a.Location))
		g.enterManeuver(p)
		return nil

	case *ManeuverChooseTargetZoneState:
		ship := p.Ships[g.ownShipIndex(p, s.ShipID)]
		from := s.OriginalLocations[ship.ID]
		if !rules.CanMove(ship.Card.Movement, from, a.Location) {
			return newActionError("%s cannot reach the %s zone this turn.", ship.Card.Name, a.Location)
		}
		if ship.Location != a.Location {
			g.logMoves(playerID, ship, string(ship.Location), string(a.Location))
			ship.Location = a.Location
		}
		g.TurnState = newManeuverTurnState(s.OriginalLocations)
		return nil

	case *AttackPlaceConcussiveBlastedShipsState:
		owner := g.mustPlayer(s.OwnerID)
		i := owner.shipIndex(s.ShipIDs[0])
		if i < 0 {
			panic(&InvariantError{Message: "concussed ship " + s.ShipIDs[0] + " left play"})
		}
		ship := owner.Ships[i]
		if a.Location == ship.Location || owner.ShipsInZone(a.Location) >= rules.MaxShipsPerZone {
			return newActionError("%s cannot be moved to the %s zone.", ship.Card.Name, a.Location)
		}
		g.logMoves(s.OwnerID, ship, string(ship.Location), string(a.Location))
		ship.Location = a.Location
		g.TurnState = g.nextConcussivePlacement(owner, s.ShipIDs[1:])
		return nil

	case *AttackPlaceStolenShipState:
		ship := p.Ships[g.ownShipIndex(p, s.ShipID)]
		n := p.ShipsInZone(a.Location)
		if ship.Location == a.Location {
			n--
		}
		if n >= rules.MaxShipsPerZone {
			return newActionError("The %s zone is full.", a.Location)
		}
		ship.Location = a.Location
		g.TurnState = newAttackTurnState()
		return nil

	default:
		return g.ignore(playerID, a.Type(), "no zone choice expected")
	}
}

func (g *GameState) ownShipIndex(p *PlayerState, shipID string) int {
	i := p.shipIndex(shipID)
	if i < 0 {
		panic(&InvariantError{Message: "ship " + shipID + " not owned by " + p.ID})
	}
	return i
}

// placeStartingShip places the next of the player's kept ships. Players place
// at their own pace; the first turn starts once every fleet is deployed.
func (g *GameState) placeStartingShip(playerID string, s *PlaceStartingShipsState, zone rules.Zone) error {
	remaining := s.Remaining[playerID]
	if len(remaining) == 0 {
		return g.ignore(playerID, ActionChooseZone, "no ships left to place")
	}
	p := g.mustPlayer(playerID)
	if p.ShipsInZone(zone) >= rules.MaxShipsPerZone {
		return newActionError("The %s zone is full.", zone)
	}
	p.Ships = append(p.Ships, g.newShip(remaining[0], zone))
	s.Remaining[playerID] = remaining[1:]
	if len(s.Remaining[playerID]) > 0 {
		return nil
	}
	g.logFleetReady(playerID)
	for _, id := range g.PlayerTurnOrder {
		if len(s.Remaining[id]) > 0 {
			return nil
		}
	}
	g.logger.Info("setup complete", zap.Strings("players", g.PlayerTurnOrder))
	g.startFirstTurn()
	return nil
}

// enterManeuver snapshots where every ship starts the maneuver phase.
func (g *GameState) enterManeuver(p *PlayerState) {
	original := make(map[string]rules.Zone, len(p.Ships))
	for _, s := range p.Ships {
		original[s.ID] = s.Location
	}
	g.TurnState = newManeuverTurnState(original)
}
