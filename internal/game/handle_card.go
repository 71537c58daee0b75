package game

import (
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"go.uber.org/zap"
)

func (g *GameState) handleChooseCard(playerID string, a ChooseCardAction) error {
	switch s := g.TurnState.(type) {
	case *ChooseStartingShipsState:
		return g.chooseStartingShips(playerID, s, a.Indices)
	case *DiscardTurnState:
		if !g.activeOnly(playerID, a.Type()) {
			return nil
		}
		return g.discard(playerID, a.Indices)
	case *ReinforceTurnState:
		if !g.activeOnly(playerID, a.Type()) {
			return nil
		}
		return g.reinforce(playerID, a.Indices)
	case *AttackTurnState:
		if !g.activeOnly(playerID, a.Type()) {
			return nil
		}
		idx, single := a.single()
		if !single {
			return g.ignore(playerID, a.Type(), "expected a single card")
		}
		return g.playCard(playerID, idx)
	case RespondState:
		idx, single := a.single()
		if !single {
			return g.ignore(playerID, a.Type(), "expected a single card")
		}
		return g.respond(playerID, s, idx)
	default:
		return g.ignore(playerID, a.Type(), "no card choice expected")
	}
}

func (g *GameState) chooseStartingShips(playerID string, s *ChooseStartingShipsState, indices []int) error {
	if _, done := s.Chosen[playerID]; done {
		return g.ignore(playerID, ActionChooseCard, "starting ships already chosen")
	}
	options := s.Options[playerID]
	if len(indices) != StartingShips {
		return newActionError("Choose exactly %d starting ships.", StartingShips)
	}
	if !validIndices(indices, len(options)) {
		return g.ignore(playerID, ActionChooseCard, "ship choice out of range")
	}
	chosen := make([]cards.ShipCard, len(indices))
	for i, idx := range indices {
		chosen[i] = options[idx]
	}
	s.Chosen[playerID] = chosen
	g.logger.Debug("starting ships chosen", zap.String("player_id", playerID))

	if len(s.Chosen) < len(g.PlayerTurnOrder) {
		return nil
	}
	for _, id := range g.PlayerTurnOrder {
		kept := make(map[int]bool)
		for _, c := range s.Chosen[id] {
			for i, o := range s.Options[id] {
				if o == c && !kept[i] {
					kept[i] = true
					break
				}
			}
		}
		for i, o := range s.Options[id] {
			if !kept[i] {
				g.ShipDiscardDeck = append(g.ShipDiscardDeck, o)
			}
		}
	}
	g.TurnState = newPlaceStartingShipsState(s.Chosen)
	return nil
}

func (g *GameState) discard(playerID string, indices []int) error {
	p := g.mustPlayer(playerID)
	if !validIndices(indices, len(p.Hand)) {
		return g.ignore(playerID, ActionChooseCard, "card choice out of range")
	}
	g.ActionDiscardDeck = append(g.ActionDiscardDeck, pickCards(p.Hand, indices)...)
	p.Hand = removeCards(p.Hand, indices)
	if len(indices) > 0 {
		g.logDiscards(playerID, len(indices))
	}
	g.finishDiscard(p)
	return nil
}

func (g *GameState) finishDiscard(p *PlayerState) {
	if n := g.drawUpTo(p); n > 0 {
		g.logDraws(p.ID, n)
	}
	g.TurnState = newReinforceTurnState()
}

func (g *GameState) reinforce(playerID string, indices []int) error {
	p := g.mustPlayer(playerID)
	if !validIndices(indices, len(p.Hand)) {
		return g.ignore(playerID, ActionChooseCard, "card choice out of range")
	}
	if !rules.SufficientResources(pickCards(p.Hand, indices)) {
		return newActionError("Those cards do not provide enough resources to reinforce.")
	}
	if !g.shipsAvailable() {
		return newActionError("There are no ships left to reinforce with.")
	}
	if len(placementZones(p)) == 0 {
		return newActionError("Your zones have no room for another ship.")
	}
	g.ActionDiscardDeck = append(g.ActionDiscardDeck, pickCards(p.Hand, indices)...)
	p.Hand = removeCards(p.Hand, indices)
	ship, _ := g.drawShipCard()
	g.logReinforces(playerID, ship)
	g.TurnState = newReinforcePlaceShipState(ship)
	return nil
}

// playCard plays a card from hand during the attack phase. The card leaves the
// hand at once; cancelling the following selection puts it back.
func (g *GameState) playCard(playerID string, idx int) error {
	p := g.mustPlayer(playerID)
	if idx < 0 || idx >= len(p.Hand) {
		return g.ignore(playerID, ActionChooseCard, "card choice out of range")
	}
	card := p.Hand[idx]
	if !g.canPlayCard(playerID, card) {
		return newActionError("%s cannot be played right now.", card.Name)
	}

	if ship, ok := g.directHitFollowUp(playerID, card); ok {
		target := g.DirectHitStateMachine.Target
		g.spendCard(p, idx)
		g.fireBlast(playerID, card, ship, target)
		return nil
	}
	if card.Effect != cards.EffectDirectHit {
		g.DirectHitStateMachine = nil
	}

	g.spendCard(p, idx)
	played := PlayedCard{Card: card, HandIndex: idx}
	switch card.Effect {
	case cards.EffectBlast:
		g.TurnState = newPlayBlastChooseFiringShipState(played)
	case cards.EffectSquadron:
		g.TurnState = newPlaySquadronChooseTargetShipState(played)
	case cards.EffectDirectHit:
		dh := g.DirectHitStateMachine
		g.logPlaysAt(playerID, card, dh.Target)
		g.openResponse(PendingEffect{
			Kind:         EffectDirectHit,
			Actor:        playerID,
			Card:         card,
			FiringShipID: dh.FiringShipID,
			Target:       dh.Target,
		}, nil)
	case cards.EffectAsteroids:
		g.TurnState = newAttackChooseAsteroidsPlayerTurnState(played)
	case cards.EffectMinefield:
		g.TurnState = newAttackChooseMinefieldPlayerTurnState(played)
	case cards.EffectSpacedock:
		g.TurnState = newAttackChooseSpacedockShipState(played)
	case cards.EffectBoardingParty:
		g.TurnState = newPlayActionChooseTargetShipState(played)
	}
	return nil
}
