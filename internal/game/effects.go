package game

import (
	"fmt"

	"github.com/magblast/magblast-server-go/internal/game/cards"
)

// fireBlast commits a blast: the ship is marked as fired, damage is frozen and
// the target's owner gets a chance to respond.
func (g *GameState) fireBlast(actor string, card cards.ActionCard, ship *Ship, target ShipRef) {
	damage := card.Damage
	if card.Ramming {
		damage = ship.Card.Movement
	}
	ship.HasFiredThisTurn = true
	g.DirectHitStateMachine = nil
	g.logFires(actor, card, ship, target)
	g.openResponse(PendingEffect{
		Kind:         EffectFireBlast,
		Actor:        actor,
		Card:         card,
		FiringShipID: ship.ID,
		Target:       target,
		Damage:       damage,
	}, nil)
}

func (g *GameState) launchSquadron(actor string, card cards.ActionCard, target ShipRef) {
	damage := card.ShipDamage
	if target.IsCommandShip() {
		damage = card.CommandShipDamage
	}
	g.logLaunches(actor, card, target)
	g.openResponse(PendingEffect{
		Kind:   EffectLaunchSquadron,
		Actor:  actor,
		Card:   card,
		Target: target,
		Damage: damage,
	}, nil)
}

// resolveEffect applies an effect nobody canceled and returns the state play
// continues in.
func (g *GameState) resolveEffect(eff PendingEffect) TurnState {
	switch eff.Kind {
	case EffectFireBlast:
		return g.resolveBlast(eff)
	case EffectLaunchSquadron:
		if !g.targetExists(eff.Target) {
			g.logFizzles(eff)
			return newAttackTurnState()
		}
		g.applyDamage(eff.Target, eff.Damage, eff.Card.TemporaryDamage)
		return newAttackTurnState()
	case EffectDirectHit:
		if g.canPlayDirectHit(eff.Actor) {
			g.DirectHitStateMachine.Phase = DirectHitPlayed
			g.logDirectHit(eff.Actor)
		} else {
			g.DirectHitStateMachine = nil
			g.logFizzles(eff)
		}
		return newAttackTurnState()
	case EffectAsteroids:
		g.mustPlayer(eff.Actor).AsteroidsUntilBeginningOfPlayerTurn = eff.Player
		return newAttackTurnState()
	case EffectMinefield:
		g.mustPlayer(eff.Actor).MinefieldUntilBeginningOfPlayerTurn = eff.Player
		return newAttackTurnState()
	case EffectSpacedock:
		return g.resolveSpacedock(eff)
	case EffectBoardingParty:
		return g.resolveBoardingParty(eff)
	default:
		panic(&InvariantError{Message: fmt.Sprintf("cannot resolve effect %q", eff.Kind)})
	}
}

func (g *GameState) resolveBlast(eff PendingEffect) TurnState {
	if !g.targetExists(eff.Target) {
		g.logFizzles(eff)
		return newAttackTurnState()
	}
	owner := g.mustPlayer(eff.Target.PlayerID)
	var blastZone string
	if !eff.Target.IsCommandShip() {
		blastZone = string(owner.Ships[owner.shipIndex(eff.Target.ShipID)].Location)
	}

	destroyed := g.applyDamage(eff.Target, eff.Damage, false)

	g.DirectHitStateMachine = nil
	if !destroyed && !eff.Card.Ramming {
		if _, _, ship := g.findShip(eff.FiringShipID); ship != nil {
			g.DirectHitStateMachine = &DirectHitStateMachine{
				Phase:        DirectHitBlastResolved,
				FiringShipID: eff.FiringShipID,
				Target:       eff.Target,
			}
		}
	}

	if !eff.Card.Concussive || blastZone == "" || !owner.IsAlive {
		return newAttackTurnState()
	}
	var shaken []string
	for _, s := range owner.Ships {
		if string(s.Location) == blastZone && s.ID != eff.Target.ShipID {
			shaken = append(shaken, s.ID)
		}
	}
	return g.nextConcussivePlacement(owner, shaken)
}

// nextConcussivePlacement skips ships that have nowhere to go and returns the
// placement state for the rest, or the attack state when none are left.
func (g *GameState) nextConcussivePlacement(owner *PlayerState, shipIDs []string) TurnState {
	for len(shipIDs) > 0 {
		i := owner.shipIndex(shipIDs[0])
		if i >= 0 && len(relocationZones(owner, owner.Ships[i].Location)) > 0 {
			return newAttackPlaceConcussiveBlastedShipsState(owner.ID, owner.Ships[i].Location, shipIDs)
		}
		shipIDs = shipIDs[1:]
	}
	return newAttackTurnState()
}

func (g *GameState) resolveSpacedock(eff PendingEffect) TurnState {
	p := g.mustPlayer(eff.Actor)
	i := p.shipIndex(eff.Target.ShipID)
	if i < 0 {
		g.logFizzles(eff)
		return newAttackTurnState()
	}
	if amount, ok := repairLargestHit(p.Ships[i]); ok {
		g.logRepair(eff.Actor, p.Ships[i], amount)
	}
	return newAttackTurnState()
}

func (g *GameState) resolveBoardingParty(eff PendingEffect) TurnState {
	if !g.targetExists(eff.Target) || eff.Target.IsCommandShip() {
		g.logFizzles(eff)
		return newAttackTurnState()
	}
	from := g.mustPlayer(eff.Target.PlayerID)
	to := g.mustPlayer(eff.Actor)
	i := from.shipIndex(eff.Target.ShipID)
	s := from.Ships[i]
	from.Ships = append(from.Ships[:i], from.Ships[i+1:]...)
	if dh := g.DirectHitStateMachine; dh != nil && (dh.FiringShipID == s.ID || dh.Target.ShipID == s.ID) {
		g.DirectHitStateMachine = nil
	}
	s.HasFiredThisTurn = true
	s.HasSweptThisTurn = true
	g.logBoarded(eff.Actor, from.ID, s)

	zones := placementZones(to)
	to.Ships = append(to.Ships, s)
	if len(zones) == 0 {
		return newAttackTurnState()
	}
	s.Location = zones[0]
	return newAttackPlaceStolenShipState(s.ID)
}
