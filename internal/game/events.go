package game

import (
	"fmt"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/eventlog"
)

// Log templates. Every entry a player sees is built here.

func (g *GameState) logWelcome() {
	tokens := []eventlog.Token{eventlog.Bold("Welcome to Mag Blast! "), eventlog.Text("Players: ")}
	for i, id := range g.PlayerTurnOrder {
		if i > 0 {
			tokens = append(tokens, eventlog.Text(", "))
		}
		tokens = append(tokens,
			eventlog.Player(id),
			eventlog.Text(" ("),
			eventlog.CommandShipCard(g.mustPlayer(id).CommandShip.Card.Name),
			eventlog.Text(")"),
		)
	}
	tokens = append(tokens, eventlog.Text("."))
	g.EventLog.Append(tokens...)
}

func (g *GameState) logTurnStart(playerID string) {
	g.EventLog.Append(
		eventlog.Bold(fmt.Sprintf("Turn %d: ", g.TurnNumber)),
		eventlog.Player(playerID),
		eventlog.Text("'s turn begins."),
	)
}

// shipTokens names a ship reference as "<player>'s <ship>".
func (g *GameState) shipTokens(ref ShipRef) []eventlog.Token {
	p := g.mustPlayer(ref.PlayerID)
	name := eventlog.CommandShipCard(p.CommandShip.Card.Name)
	if !ref.IsCommandShip() {
		if i := p.shipIndex(ref.ShipID); i >= 0 {
			name = eventlog.ShipCard(p.Ships[i].Card.Name)
		} else {
			name = eventlog.Text("ship")
		}
	}
	return []eventlog.Token{eventlog.Player(ref.PlayerID), eventlog.Text("'s "), name}
}

func (g *GameState) logFires(actor string, card cards.ActionCard, ship *Ship, target ShipRef) {
	tokens := []eventlog.Token{
		eventlog.Player(actor), eventlog.Text(" fires "), eventlog.ActionCard(card.Name),
		eventlog.Text(" from "), eventlog.ShipCard(ship.Card.Name), eventlog.Text(" at "),
	}
	tokens = append(tokens, g.shipTokens(target)...)
	g.EventLog.Append(append(tokens, eventlog.Text("."))...)
}

func (g *GameState) logLaunches(actor string, card cards.ActionCard, target ShipRef) {
	tokens := []eventlog.Token{
		eventlog.Player(actor), eventlog.Text(" launches "), eventlog.ActionCard(card.Name), eventlog.Text(" at "),
	}
	tokens = append(tokens, g.shipTokens(target)...)
	g.EventLog.Append(append(tokens, eventlog.Text("."))...)
}

func (g *GameState) logPlaysAt(actor string, card cards.ActionCard, target ShipRef) {
	tokens := []eventlog.Token{
		eventlog.Player(actor), eventlog.Text(" plays "), eventlog.ActionCard(card.Name), eventlog.Text(" on "),
	}
	tokens = append(tokens, g.shipTokens(target)...)
	g.EventLog.Append(append(tokens, eventlog.Text("."))...)
}

func (g *GameState) logPlaysUntil(actor string, card cards.ActionCard, until string) {
	g.EventLog.Append(
		eventlog.Player(actor), eventlog.Text(" plays "), eventlog.ActionCard(card.Name),
		eventlog.Text(" until the beginning of "), eventlog.Player(until), eventlog.Text("'s turn."),
	)
}

func (g *GameState) logResponds(responder string, card cards.ActionCard) {
	g.EventLog.Append(
		eventlog.Text("...but "), eventlog.Player(responder),
		eventlog.Text(" responds with "), eventlog.ActionCard(card.Name), eventlog.Text("."),
	)
}

func (g *GameState) logCanceled(eff PendingEffect) {
	g.EventLog.Append(
		eventlog.Player(eff.Actor), eventlog.Text("'s "), eventlog.ActionCard(eff.Card.Name),
		eventlog.Text(" was canceled."),
	)
}

func (g *GameState) logFizzles(eff PendingEffect) {
	g.EventLog.Append(
		eventlog.Player(eff.Actor), eventlog.Text("'s "), eventlog.ActionCard(eff.Card.Name),
		eventlog.Text(" has no target left."),
	)
}

func (g *GameState) logDamage(ref ShipRef, amount int, temporary bool) {
	tokens := g.shipTokens(ref)
	what := "damage"
	if temporary {
		what = "temporary damage"
	}
	tokens = append(tokens, eventlog.Text(fmt.Sprintf(" takes %d %s.", amount, what)))
	g.EventLog.Append(tokens...)
}

func (g *GameState) logDestroyed(owner string, ship cards.ShipCard) {
	g.EventLog.Append(
		eventlog.Player(owner), eventlog.Text("'s "), eventlog.ShipCard(ship.Name),
		eventlog.Bold(" was destroyed!"),
	)
}

func (g *GameState) logEliminated(p *PlayerState) {
	g.EventLog.Append(
		eventlog.Player(p.ID), eventlog.Text("'s "), eventlog.CommandShipCard(p.CommandShip.Card.Name),
		eventlog.Bold(" was destroyed! "), eventlog.Player(p.ID), eventlog.Text(" is out of the game."),
	)
}

func (g *GameState) logWinner(playerID string) {
	g.EventLog.Append(eventlog.Player(playerID), eventlog.Bold(" wins the game!"))
}

func (g *GameState) logDirectHit(actor string) {
	g.EventLog.Append(
		eventlog.Player(actor), eventlog.Text(" scores a "), eventlog.ActionCard(cards.DirectHit),
		eventlog.Text(". The next blast fires again at the same target."),
	)
}

func (g *GameState) logRepair(playerID string, s *Ship, amount int) {
	g.EventLog.Append(
		eventlog.Player(playerID), eventlog.Text(" repairs "), eventlog.ShipCard(s.Card.Name),
		eventlog.Text(fmt.Sprintf(" for %d.", amount)),
	)
}

func (g *GameState) logBoarded(actor string, from string, s *Ship) {
	g.EventLog.Append(
		eventlog.Player(actor), eventlog.Text(" captures "), eventlog.Player(from),
		eventlog.Text("'s "), eventlog.ShipCard(s.Card.Name), eventlog.Text("."),
	)
}

func (g *GameState) logFieldExpired(owner, field string) {
	g.EventLog.Append(eventlog.Player(owner), eventlog.Text(fmt.Sprintf("'s %s field dissipates.", field)))
}

func (g *GameState) logSwept(actor, target, field string) {
	g.EventLog.Append(
		eventlog.Player(actor), eventlog.Text(" sweeps away "), eventlog.Player(target),
		eventlog.Text(fmt.Sprintf("'s %s field.", field)),
	)
}

func (g *GameState) logDiscards(playerID string, n int) {
	g.EventLog.Append(eventlog.Player(playerID), eventlog.Text(fmt.Sprintf(" discards %d card(s).", n)))
}

func (g *GameState) logDraws(playerID string, n int) {
	g.EventLog.Append(eventlog.Player(playerID), eventlog.Text(fmt.Sprintf(" draws %d card(s).", n)))
}

func (g *GameState) logReinforces(playerID string, ship cards.ShipCard) {
	g.EventLog.Append(
		eventlog.Player(playerID), eventlog.Text(" reinforces with a "), eventlog.ShipCard(ship.Name), eventlog.Text("."),
	)
}

func (g *GameState) logMoves(playerID string, s *Ship, from, to string) {
	g.EventLog.Append(
		eventlog.Player(playerID), eventlog.Text(" moves "), eventlog.ShipCard(s.Card.Name),
		eventlog.Text(fmt.Sprintf(" from %s to %s.", from, to)),
	)
}

func (g *GameState) logAbility(playerID string, text string) {
	p := g.mustPlayer(playerID)
	g.EventLog.Append(
		eventlog.Player(playerID), eventlog.Text(" activates "), eventlog.CommandShipCard(p.CommandShip.Card.Name),
		eventlog.Text(": "+text),
	)
}

func (g *GameState) logFleetReady(playerID string) {
	g.EventLog.Append(eventlog.Player(playerID), eventlog.Text(" has deployed their fleet."))
}
