package game

import (
	"slices"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"go.uber.org/zap"
)

// EffectKind tags a pending effect.
type EffectKind string

const (
	EffectFireBlast      EffectKind = "FireBlast"
	EffectLaunchSquadron EffectKind = "LaunchSquadron"
	EffectDirectHit      EffectKind = "DirectHit"
	EffectAsteroids      EffectKind = "Asteroids"
	EffectMinefield      EffectKind = "Minefield"
	EffectSpacedock      EffectKind = "Spacedock"
	EffectBoardingParty  EffectKind = "BoardingParty"
	// EffectCancel is a response that cancels the effect beneath it.
	EffectCancel EffectKind = "Cancel"
)

// PendingEffect describes what happens when a played card lands. It carries
// every value frozen at commit time, so resolution never consults the card
// again for numbers.
type PendingEffect struct {
	Kind         EffectKind
	Actor        string
	Card         cards.ActionCard
	FiringShipID string
	Target       ShipRef
	Damage       int
	// Player is the player chosen for asteroids and minefields.
	Player string
}

// targeted reports whether the effect is aimed at another player's ship.
func (e PendingEffect) targeted() bool {
	switch e.Kind {
	case EffectFireBlast, EffectLaunchSquadron, EffectDirectHit, EffectBoardingParty:
		return true
	}
	return false
}

// Response is one frame of the response chain: an effect that has been
// played and the players who may still answer it, first in line first.
type Response struct {
	Effect     PendingEffect
	Responders []string
	// Previous is the frame this one answers; nil for the card that opened the chain.
	Previous RespondState
}

func (r *Response) response() *Response { return r }

// CurrentResponder is the player being asked to respond.
func (r *Response) CurrentResponder() string {
	if len(r.Responders) == 0 {
		return ""
	}
	return r.Responders[0]
}

// RespondState is implemented by the three respond turn states.
type RespondState interface {
	TurnState
	response() *Response
	CurrentResponder() string
}

// canAnswer reports whether card may be played in response to eff.
func canAnswer(card cards.ActionCard, eff PendingEffect) bool {
	if card.CanRespondToAnything {
		return true
	}
	switch eff.Kind {
	case EffectFireBlast:
		return card.CanRespondToBlast
	case EffectLaunchSquadron:
		return card.CanRespondToSquadron
	case EffectCancel:
		return eff.Card.IsSquadron && card.CanRespondToSquadron
	}
	return false
}

func (g *GameState) holdsAnswer(p *PlayerState, eff PendingEffect) bool {
	for _, c := range p.Hand {
		if canAnswer(c, eff) {
			return true
		}
	}
	return false
}

// eligibleResponders keeps the candidates who are alive, are not the effect's
// actor and hold a card that answers it.
func (g *GameState) eligibleResponders(candidates []string, eff PendingEffect) []string {
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == eff.Actor {
			continue
		}
		p := g.mustPlayer(id)
		if p.IsAlive && g.holdsAnswer(p, eff) {
			out = append(out, id)
		}
	}
	return out
}

// respondersFor lists who may answer a freshly played effect: the previous
// actor for a counter, the target's owner for a targeted effect, and everybody
// else in turn order otherwise.
func (g *GameState) respondersFor(eff PendingEffect, previous RespondState) []string {
	var candidates []string
	switch {
	case eff.Kind == EffectCancel:
		candidates = []string{previous.response().Effect.Actor}
	case eff.targeted():
		candidates = []string{eff.Target.PlayerID}
	default:
		candidates = g.playersAfter(eff.Actor)
	}
	return g.eligibleResponders(candidates, eff)
}

// openResponse puts a freshly played effect on top of the chain. With nobody
// able to answer it resolves at once.
func (g *GameState) openResponse(eff PendingEffect, previous RespondState) {
	r := Response{Effect: eff, Previous: previous}
	r.Responders = g.respondersFor(eff, previous)
	if len(r.Responders) == 0 {
		g.settle(r)
		return
	}
	g.TurnState = newRespondState(r)
	g.logger.Debug("awaiting response",
		zap.String("effect", string(eff.Kind)),
		zap.String("card", eff.Card.Name),
		zap.Strings("responders", r.Responders),
	)
}

// respond plays a counter card from the current responder's hand.
func (g *GameState) respond(playerID string, s RespondState, index int) error {
	r := s.response()
	if r.CurrentResponder() != playerID {
		return g.ignore(playerID, ActionChooseCard, "not the current responder")
	}
	p := g.mustPlayer(playerID)
	if index < 0 || index >= len(p.Hand) {
		return g.ignore(playerID, ActionChooseCard, "card choice out of range")
	}
	card := p.Hand[index]
	if !canAnswer(card, r.Effect) {
		return newActionError("%s cannot be played in response to %s.", card.Name, r.Effect.Card.Name)
	}
	g.spendCard(p, index)
	g.logResponds(playerID, card)

	beneath := newRespondState(Response{
		Effect:     r.Effect,
		Responders: append([]string(nil), r.Responders[1:]...),
		Previous:   r.Previous,
	})
	g.openResponse(PendingEffect{Kind: EffectCancel, Actor: playerID, Card: card}, beneath)
	return nil
}

// declineResponse moves past the current responder.
func (g *GameState) declineResponse(playerID string, s RespondState) error {
	r := *s.response()
	if r.CurrentResponder() != playerID {
		return g.ignore(playerID, ActionPass, "not the current responder")
	}
	r.Responders = g.eligibleResponders(r.Responders[1:], r.Effect)
	if len(r.Responders) > 0 {
		g.TurnState = newRespondState(r)
		return nil
	}
	g.settle(r)
	return nil
}

// settle resolves the top frame once nobody is left to answer it. A counter
// cancels the frame beneath; the frame under that one then resumes with its
// remaining responders, or settles in turn.
func (g *GameState) settle(r Response) {
	for r.Effect.Kind == EffectCancel {
		if r.Previous == nil {
			panic(&InvariantError{Message: "counter frame without a frame beneath"})
		}
		canceled := r.Previous.response()
		g.logCanceled(canceled.Effect)
		g.afterCanceled(canceled.Effect)
		if canceled.Previous == nil {
			g.TurnState = newAttackTurnState()
			return
		}
		next := *canceled.Previous.response()
		next.Responders = g.eligibleResponders(next.Responders, next.Effect)
		if len(next.Responders) > 0 {
			g.TurnState = newRespondState(next)
			return
		}
		r = next
	}
	g.TurnState = g.resolveEffect(r.Effect)
}

func (g *GameState) afterCanceled(eff PendingEffect) {
	switch eff.Kind {
	case EffectFireBlast, EffectDirectHit:
		g.DirectHitStateMachine = nil
	}
}

// spendCard moves a played card out of a hand: squadrons wait in the used
// pile until end of turn, everything else is discarded.
func (g *GameState) spendCard(p *PlayerState, index int) cards.ActionCard {
	card := p.Hand[index]
	p.Hand = append(p.Hand[:index:index], p.Hand[index+1:]...)
	if card.IsSquadron {
		p.UsedSquadronCards = append(p.UsedSquadronCards, card)
	} else {
		g.ActionDiscardDeck = append(g.ActionDiscardDeck, card)
	}
	return card
}

// unspendCard returns a card spent by a selection that was then canceled to
// the hand position it was played from.
func (g *GameState) unspendCard(p *PlayerState, played PlayedCard) {
	card := played.Card
	var ok bool
	if card.IsSquadron {
		p.UsedSquadronCards, ok = removeLast(p.UsedSquadronCards, card.Name)
	} else {
		g.ActionDiscardDeck, ok = removeLast(g.ActionDiscardDeck, card.Name)
	}
	if !ok {
		panic(&InvariantError{Message: "canceled card " + card.Name + " missing from its pile"})
	}
	p.Hand = slices.Insert(p.Hand, min(played.HandIndex, len(p.Hand)), card)
}
