package game

import (
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// attackablePlayers lists the living opponents the attacker may target under
// the game's attack mode, in turn order.
func (g *GameState) attackablePlayers(attacker string) []string {
	others := g.playersAfter(attacker)
	if g.GameSettings.AttackMode != AttackModeNeighbors || len(others) <= 2 {
		return others
	}
	return []string{others[0], others[len(others)-1]}
}

func (g *GameState) canAttackPlayer(attacker, target string) bool {
	for _, id := range g.attackablePlayers(attacker) {
		if id == target {
			return true
		}
	}
	return false
}

// canBlastTarget checks whether a blast from attacker may be aimed at ref.
// Asteroids shield the whole fleet; a command ship is exposed only while its
// owner has an empty zone.
func (g *GameState) canBlastTarget(attacker string, ref ShipRef) bool {
	if !g.canAttackPlayer(attacker, ref.PlayerID) || !g.targetExists(ref) {
		return false
	}
	p := g.mustPlayer(ref.PlayerID)
	if p.AsteroidsUntilBeginningOfPlayerTurn != "" {
		return false
	}
	if ref.IsCommandShip() {
		return p.HasEmptyZone()
	}
	return true
}

// canSquadronTarget checks whether a squadron from attacker may attack ref.
// Squadrons fly past screening ships but not through a minefield.
func (g *GameState) canSquadronTarget(attacker string, ref ShipRef) bool {
	if !g.canAttackPlayer(attacker, ref.PlayerID) || !g.targetExists(ref) {
		return false
	}
	return g.mustPlayer(ref.PlayerID).MinefieldUntilBeginningOfPlayerTurn == ""
}

func (g *GameState) canBoardTarget(attacker string, ref ShipRef) bool {
	return !ref.IsCommandShip() && g.canAttackPlayer(attacker, ref.PlayerID) && g.targetExists(ref)
}

// targets lists every ship and command ship of the attackable players that
// pass the predicate.
func (g *GameState) targets(attacker string, ok func(string, ShipRef) bool) []ShipRef {
	var out []ShipRef
	for _, id := range g.attackablePlayers(attacker) {
		p := g.mustPlayer(id)
		for _, s := range p.Ships {
			ref := ShipRef{PlayerID: id, ShipID: s.ID}
			if ok(attacker, ref) {
				out = append(out, ref)
			}
		}
		if ref := (ShipRef{PlayerID: id}); ok(attacker, ref) {
			out = append(out, ref)
		}
	}
	return out
}

func (g *GameState) blastTargets(attacker string) []ShipRef {
	return g.targets(attacker, g.canBlastTarget)
}

func (g *GameState) squadronTargets(attacker string) []ShipRef {
	return g.targets(attacker, g.canSquadronTarget)
}

func (g *GameState) boardingTargets(attacker string) []ShipRef {
	return g.targets(attacker, g.canBoardTarget)
}

// canFire reports whether a ship may fire the given blast this turn.
func canFire(s *Ship, card cards.ActionCard) bool {
	return !s.HasFiredThisTurn && rules.FireControlMatches(s.Card, card)
}

// firingShips lists the player's ships able to fire the blast at something.
func (g *GameState) firingShips(playerID string, card cards.ActionCard) []*Ship {
	if len(g.blastTargets(playerID)) == 0 {
		return nil
	}
	var out []*Ship
	for _, s := range g.mustPlayer(playerID).Ships {
		if canFire(s, card) {
			out = append(out, s)
		}
	}
	return out
}

// directHitFollowUp returns the firing ship when the blast should fire again
// at the direct hit target without any selection.
func (g *GameState) directHitFollowUp(playerID string, card cards.ActionCard) (*Ship, bool) {
	dh := g.DirectHitStateMachine
	if dh == nil || dh.Phase != DirectHitPlayed || !card.IsBlast || card.Ramming {
		return nil, false
	}
	owner, _, ship := g.findShip(dh.FiringShipID)
	if ship == nil || owner.ID != playerID {
		return nil, false
	}
	if !ship.Card.HasFireControl(card.RequiredFireControl) || !g.canBlastTarget(playerID, dh.Target) {
		return nil, false
	}
	return ship, true
}

func (g *GameState) canPlayDirectHit(playerID string) bool {
	dh := g.DirectHitStateMachine
	if dh == nil || dh.Phase != DirectHitBlastResolved || !g.targetExists(dh.Target) {
		return false
	}
	owner, _, _ := g.findShip(dh.FiringShipID)
	return owner != nil && owner.ID == playerID
}

// spacedockTargets lists the player's ships that have taken permanent damage.
func (g *GameState) spacedockTargets(playerID string) []*Ship {
	var out []*Ship
	for _, s := range g.mustPlayer(playerID).Ships {
		if _, _, ok := rules.LargestHit(s.BlastDamageHistory); ok {
			out = append(out, s)
		}
	}
	return out
}

// canPlayCard reports whether a card in hand may be played from the attack state.
func (g *GameState) canPlayCard(playerID string, card cards.ActionCard) bool {
	switch card.Effect {
	case cards.EffectBlast:
		if _, ok := g.directHitFollowUp(playerID, card); ok {
			return true
		}
		return len(g.firingShips(playerID, card)) > 0
	case cards.EffectSquadron:
		return len(g.squadronTargets(playerID)) > 0
	case cards.EffectDirectHit:
		return g.canPlayDirectHit(playerID)
	case cards.EffectAsteroids, cards.EffectMinefield:
		return true
	case cards.EffectSpacedock:
		return len(g.spacedockTargets(playerID)) > 0
	case cards.EffectBoardingParty:
		return len(g.boardingTargets(playerID)) > 0
	default:
		return false
	}
}

// minesweepers lists the player's minesweepers that have not swept this turn.
func (g *GameState) minesweepers(playerID string) []*Ship {
	var out []*Ship
	for _, s := range g.mustPlayer(playerID).Ships {
		if s.Card.Minesweeper && !s.HasSweptThisTurn {
			out = append(out, s)
		}
	}
	return out
}

// minesweepTargets lists the other living players under an asteroid field or minefield.
func (g *GameState) minesweepTargets(playerID string) []string {
	var out []string
	for _, id := range g.playersAfter(playerID) {
		p := g.mustPlayer(id)
		if p.AsteroidsUntilBeginningOfPlayerTurn != "" || p.MinefieldUntilBeginningOfPlayerTurn != "" {
			out = append(out, id)
		}
	}
	return out
}

// relocationZones lists the owner's zones, other than from, with room for one more ship.
func relocationZones(p *PlayerState, from rules.Zone) []rules.Zone {
	var out []rules.Zone
	for _, z := range rules.Zones {
		if z != from && p.ShipsInZone(z) < rules.MaxShipsPerZone {
			out = append(out, z)
		}
	}
	return out
}

// placementZones lists zones with room for one more ship.
func placementZones(p *PlayerState) []rules.Zone {
	var out []rules.Zone
	for _, z := range rules.Zones {
		if p.ShipsInZone(z) < rules.MaxShipsPerZone {
			out = append(out, z)
		}
	}
	return out
}

// applyDamage deals damage to a ship or command ship and removes it when its
// effective hit points reach zero. It reports whether the target was destroyed.
// Damage to something no longer in play has no effect.
func (g *GameState) applyDamage(ref ShipRef, amount int, temporary bool) bool {
	if !g.targetExists(ref) {
		return false
	}
	owner := g.mustPlayer(ref.PlayerID)
	g.logDamage(ref, amount, temporary)

	if ref.IsCommandShip() {
		cs := owner.CommandShip
		if temporary {
			cs.TemporaryDamage += amount
		} else {
			cs.Damage += amount
			cs.BlastDamageHistory = append(cs.BlastDamageHistory, amount)
		}
		if cs.RemainingHP() > 0 {
			return false
		}
		g.eliminate(owner)
		return true
	}

	idx := owner.shipIndex(ref.ShipID)
	s := owner.Ships[idx]
	if temporary {
		s.TemporaryDamage += amount
	} else {
		s.Damage += amount
		s.BlastDamageHistory = append(s.BlastDamageHistory, amount)
	}
	if s.RemainingHP() > 0 {
		return false
	}
	g.destroyShip(owner, idx)
	return true
}

// destroyShip removes a ship from play and discards its card.
func (g *GameState) destroyShip(owner *PlayerState, idx int) {
	s := owner.Ships[idx]
	owner.Ships = append(owner.Ships[:idx], owner.Ships[idx+1:]...)
	g.ShipDiscardDeck = append(g.ShipDiscardDeck, s.Card)
	if dh := g.DirectHitStateMachine; dh != nil && (dh.FiringShipID == s.ID || dh.Target.ShipID == s.ID) {
		g.DirectHitStateMachine = nil
	}
	g.logDestroyed(owner.ID, s.Card)
	g.logger.Debug("ship destroyed", zap.String("player_id", owner.ID), zap.String("ship_id", s.ID))
}

// eliminate takes a player out after their command ship falls. Their fleet
// leaves play with them.
func (g *GameState) eliminate(p *PlayerState) {
	if !p.IsAlive {
		return
	}
	p.IsAlive = false
	for _, s := range p.Ships {
		g.ShipDiscardDeck = append(g.ShipDiscardDeck, s.Card)
	}
	p.Ships = nil
	if dh := g.DirectHitStateMachine; dh != nil && dh.Target.PlayerID == p.ID {
		g.DirectHitStateMachine = nil
	}
	g.logEliminated(p)
	// A field that lasts until a dead player's turn would never expire.
	g.expireFields(p.ID)
	g.logger.Info("player eliminated", zap.String("player_id", p.ID))
	if winner, ok := g.Winner(); ok {
		g.logWinner(winner)
		g.logger.Info("game won", zap.String("player_id", winner), zap.Int("turn", g.TurnNumber))
	}
}

// repairLargestHit heals the biggest single hit a ship has taken.
func repairLargestHit(s *Ship) (int, bool) {
	i, amount, ok := rules.LargestHit(s.BlastDamageHistory)
	if !ok {
		return 0, false
	}
	s.BlastDamageHistory = append(s.BlastDamageHistory[:i], s.BlastDamageHistory[i+1:]...)
	s.Damage -= amount
	if s.Damage < 0 {
		s.Damage = 0
	}
	return amount, true
}
