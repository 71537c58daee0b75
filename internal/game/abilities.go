package game

import (
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// CommandShipAbility is a command ship's special power. With dryRun set,
// Activate only reports whether the ability could be used right now and
// leaves the game untouched; otherwise it starts the ability and reports
// whether it did.
type CommandShipAbility interface {
	Activate(g *GameState, playerID string, dryRun bool) bool
}

// AbilityRegistry maps command ship types to their abilities.
type AbilityRegistry struct {
	abilities map[cards.CommandShipType]CommandShipAbility
}

// NewAbilityRegistry creates an empty registry.
func NewAbilityRegistry() *AbilityRegistry {
	return &AbilityRegistry{abilities: make(map[cards.CommandShipType]CommandShipAbility)}
}

// Register adds or replaces the ability of a command ship type.
func (r *AbilityRegistry) Register(t cards.CommandShipType, a CommandShipAbility) {
	r.abilities[t] = a
}

// Lookup returns the ability registered for a command ship type.
func (r *AbilityRegistry) Lookup(t cards.CommandShipType) (CommandShipAbility, bool) {
	a, ok := r.abilities[t]
	return a, ok
}

// DefaultAbilities returns the built-in ability table.
func DefaultAbilities() *AbilityRegistry {
	r := NewAbilityRegistry()
	r.Register(cards.CraniumConsortium, craniumConsortiumAbility{})
	r.Register(cards.Brotherhood, brotherhoodAbility{})
	r.Register(cards.Freep, freepAbility{})
	r.Register(cards.Overseers, overseersAbility{})
	return r
}

// abilityTurnState is a turn state owned by an ability. The dispatcher hands
// every action of the active player straight to it.
type abilityTurnState interface {
	TurnState
	handle(g *GameState, playerID string, action Action) error
}

// abilityReady checks the limits shared by every ability: once per turn,
// during the owner's attack phase, while activations remain.
func (g *GameState) abilityReady(playerID string) bool {
	if playerID != g.ActivePlayer {
		return false
	}
	if _, ok := g.TurnState.(*AttackTurnState); !ok {
		return false
	}
	cs := g.mustPlayer(playerID).CommandShip
	if cs.AbilityUsedThisTurn {
		return false
	}
	return cs.RemainingAbilityActivations == nil || *cs.RemainingAbilityActivations > 0
}

// CanActivateAbility reports whether the player may use their command ship
// ability now.
func (g *GameState) CanActivateAbility(playerID string) bool {
	p, ok := g.PlayerState[playerID]
	if !ok || !p.IsAlive || !g.abilityReady(playerID) {
		return false
	}
	a, ok := g.abilities.Lookup(p.CommandShip.Card.Type)
	return ok && a.Activate(g, playerID, true)
}

func (g *GameState) handleActivateAbility(playerID string) error {
	if !g.activeOnly(playerID, ActionActivateCommandShipAbility) {
		return nil
	}
	if _, ok := g.TurnState.(*AttackTurnState); !ok {
		return g.ignore(playerID, ActionActivateCommandShipAbility, "abilities are used during the attack phase")
	}
	cs := g.mustPlayer(playerID).CommandShip
	a, ok := g.abilities.Lookup(cs.Card.Type)
	if !ok {
		g.logger.Warn("command ship has no ability",
			zap.String("player_id", playerID),
			zap.String("command_ship", string(cs.Card.Type)),
		)
		return nil
	}
	if !g.abilityReady(playerID) {
		return newActionError("%s's ability is not available this turn.", cs.Card.Name)
	}
	if !a.Activate(g, playerID, true) {
		return newActionError("%s's ability cannot be used right now.", cs.Card.Name)
	}
	a.Activate(g, playerID, false)
	return nil
}

// completeAbility books the ability use and returns to the attack phase.
func (g *GameState) completeAbility(playerID, summary string) {
	cs := g.mustPlayer(playerID).CommandShip
	cs.AbilityUsedThisTurn = true
	if cs.RemainingAbilityActivations != nil {
		*cs.RemainingAbilityActivations--
	}
	g.logAbility(playerID, summary)
	g.logger.Debug("ability used", zap.String("player_id", playerID), zap.String("command_ship", string(cs.Card.Type)))
	g.TurnState = newAttackTurnState()
}

// cancelAbility returns to the attack phase without using the ability.
func cancelAbility(g *GameState, action Action) (bool, error) {
	if _, ok := action.(CancelAction); ok {
		g.TurnState = newAttackTurnState()
		return true, nil
	}
	return false, nil
}

// Cranium Consortium: discard a full set of resources to draw two cards.

type craniumConsortiumAbility struct{}

const craniumConsortiumDraw = 2

func (craniumConsortiumAbility) Activate(g *GameState, playerID string, dryRun bool) bool {
	p := g.mustPlayer(playerID)
	if !rules.SufficientResources(p.Hand) {
		return false
	}
	if !dryRun {
		g.TurnState = &CraniumConsortiumChooseResourcesToDiscardState{}
	}
	return true
}

type CraniumConsortiumChooseResourcesToDiscardState struct{}

func (*CraniumConsortiumChooseResourcesToDiscardState) Type() TurnStateType {
	return StateCraniumConsortiumChooseResources
}

func (s *CraniumConsortiumChooseResourcesToDiscardState) handle(g *GameState, playerID string, action Action) error {
	if done, err := cancelAbility(g, action); done {
		return err
	}
	a, ok := action.(ChooseCardAction)
	if !ok {
		return g.ignore(playerID, actionType(action), "choose cards to discard")
	}
	p := g.mustPlayer(playerID)
	if !validIndices(a.Indices, len(p.Hand)) {
		return g.ignore(playerID, a.Type(), "card choice out of range")
	}
	if !rules.SufficientResources(pickCards(p.Hand, a.Indices)) {
		return newActionError("Those cards do not provide enough resources.")
	}
	g.ActionDiscardDeck = append(g.ActionDiscardDeck, pickCards(p.Hand, a.Indices)...)
	p.Hand = removeCards(p.Hand, a.Indices)
	drawn := 0
	for ; drawn < craniumConsortiumDraw; drawn++ {
		c, ok := g.drawActionCard()
		if !ok {
			break
		}
		p.Hand = append(p.Hand, c)
	}
	g.completeAbility(playerID, "discards resources to draw cards.")
	g.logDraws(playerID, drawn)
	return nil
}

// Brotherhood: move one point of damage between the player's own ships.

type brotherhoodAbility struct{}

func (brotherhoodAbility) Activate(g *GameState, playerID string, dryRun bool) bool {
	refs := ownHulls(g, playerID)
	for _, from := range refs {
		if g.mustHull(from).damage() == 0 {
			continue
		}
		for _, to := range refs {
			if to != from && g.mustHull(to).remaining() > 1 {
				if !dryRun {
					g.TurnState = &BrotherhoodChooseShipToTransferFromState{}
				}
				return true
			}
		}
	}
	return false
}

type BrotherhoodChooseShipToTransferFromState struct{}

func (*BrotherhoodChooseShipToTransferFromState) Type() TurnStateType {
	return StateBrotherhoodChooseShipToTransferFrom
}

func (s *BrotherhoodChooseShipToTransferFromState) handle(g *GameState, playerID string, action Action) error {
	if done, err := cancelAbility(g, action); done {
		return err
	}
	a, ok := action.(ChooseShipAction)
	if !ok {
		return g.ignore(playerID, actionType(action), "choose a ship to move damage from")
	}
	ref, ok := g.shipRef(a)
	if !ok {
		return g.ignore(playerID, a.Type(), "ship choice out of range")
	}
	if ref.PlayerID != playerID {
		return newActionError("Choose one of your own ships.")
	}
	if g.mustHull(ref).damage() == 0 {
		return newActionError("That ship has no damage to move.")
	}
	g.TurnState = &BrotherhoodChooseShipToTransferToState{From: ref}
	return nil
}

type BrotherhoodChooseShipToTransferToState struct {
	From ShipRef
}

func (*BrotherhoodChooseShipToTransferToState) Type() TurnStateType {
	return StateBrotherhoodChooseShipToTransferTo
}

func (s *BrotherhoodChooseShipToTransferToState) handle(g *GameState, playerID string, action Action) error {
	if done, err := cancelAbility(g, action); done {
		return err
	}
	a, ok := action.(ChooseShipAction)
	if !ok {
		return g.ignore(playerID, actionType(action), "choose a ship to move damage to")
	}
	ref, ok := g.shipRef(a)
	if !ok {
		return g.ignore(playerID, a.Type(), "ship choice out of range")
	}
	if ref.PlayerID != playerID || ref == s.From {
		return newActionError("Choose another of your own ships.")
	}
	to := g.mustHull(ref)
	if to.remaining() <= 1 {
		return newActionError("That ship would not survive the damage.")
	}
	from := g.mustHull(s.From)
	from.shed()
	to.take(1)
	g.completeAbility(playerID, "moves one damage between ships.")
	return nil
}

// Freep: steal up to two random cards from another player.

type freepAbility struct{}

const freepSteal = 2

func (freepAbility) Activate(g *GameState, playerID string, dryRun bool) bool {
	for _, id := range g.playersAfter(playerID) {
		if len(g.mustPlayer(id).Hand) > 0 {
			if !dryRun {
				g.TurnState = &FreepChoosePlayerToStealCardsState{}
			}
			return true
		}
	}
	return false
}

type FreepChoosePlayerToStealCardsState struct{}

func (*FreepChoosePlayerToStealCardsState) Type() TurnStateType {
	return StateFreepChoosePlayerToStealCards
}

func (s *FreepChoosePlayerToStealCardsState) handle(g *GameState, playerID string, action Action) error {
	if done, err := cancelAbility(g, action); done {
		return err
	}
	a, ok := action.(ChooseShipAction)
	if !ok {
		return g.ignore(playerID, actionType(action), "choose a player to steal from")
	}
	victim, ok := g.PlayerState[a.PlayerID]
	if !ok || a.HasShip {
		return g.ignore(playerID, a.Type(), "expected a player")
	}
	if a.PlayerID == playerID || !victim.IsAlive || len(victim.Hand) == 0 {
		return newActionError("Choose another player who holds cards.")
	}
	p := g.mustPlayer(playerID)
	stolen := 0
	for ; stolen < freepSteal && len(victim.Hand) > 0; stolen++ {
		i := g.rng.Intn(len(victim.Hand))
		p.Hand = append(p.Hand, victim.Hand[i])
		victim.Hand = append(victim.Hand[:i], victim.Hand[i+1:]...)
	}
	g.completeAbility(playerID, "steals cards.")
	g.logger.Debug("cards stolen", zap.String("player_id", playerID), zap.String("victim_id", victim.ID), zap.Int("count", stolen))
	return nil
}

// Overseers: discard blasts to draw as many cards.

type overseersAbility struct{}

func (overseersAbility) Activate(g *GameState, playerID string, dryRun bool) bool {
	for _, c := range g.mustPlayer(playerID).Hand {
		if c.IsBlast {
			if !dryRun {
				g.TurnState = &OverseersChooseBlastsState{}
			}
			return true
		}
	}
	return false
}

type OverseersChooseBlastsState struct{}

func (*OverseersChooseBlastsState) Type() TurnStateType { return StateOverseersChooseBlasts }

func (s *OverseersChooseBlastsState) handle(g *GameState, playerID string, action Action) error {
	if done, err := cancelAbility(g, action); done {
		return err
	}
	a, ok := action.(ChooseCardAction)
	if !ok {
		return g.ignore(playerID, actionType(action), "choose blasts to discard")
	}
	p := g.mustPlayer(playerID)
	if !validIndices(a.Indices, len(p.Hand)) {
		return g.ignore(playerID, a.Type(), "card choice out of range")
	}
	if len(a.Indices) == 0 {
		return newActionError("Choose at least one blast.")
	}
	chosen := pickCards(p.Hand, a.Indices)
	for _, c := range chosen {
		if !c.IsBlast {
			return newActionError("%s is not a blast.", c.Name)
		}
	}
	g.ActionDiscardDeck = append(g.ActionDiscardDeck, chosen...)
	p.Hand = removeCards(p.Hand, a.Indices)
	drawn := 0
	for ; drawn < len(chosen); drawn++ {
		c, ok := g.drawActionCard()
		if !ok {
			break
		}
		p.Hand = append(p.Hand, c)
	}
	g.completeAbility(playerID, "trades blasts for new cards.")
	g.logDraws(playerID, drawn)
	return nil
}

// hull gives uniform access to the damage track of a ship or command ship.
type hull struct {
	hp        int
	dmg       *int
	temporary *int
	history   *[]int
}

func (h hull) damage() int    { return *h.dmg }
func (h hull) remaining() int { return clampHP(h.hp - *h.dmg - *h.temporary) }

// take adds permanent damage without any destruction check.
func (h hull) take(n int) {
	*h.dmg += n
	*h.history = append(*h.history, n)
}

// shed removes one point of permanent damage from the most recent hit.
func (h hull) shed() {
	*h.dmg--
	hist := *h.history
	if n := len(hist); n > 0 {
		hist[n-1]--
		if hist[n-1] <= 0 {
			hist = hist[:n-1]
		}
		*h.history = hist
	}
}

func (g *GameState) mustHull(ref ShipRef) hull {
	p := g.mustPlayer(ref.PlayerID)
	if ref.IsCommandShip() {
		cs := p.CommandShip
		return hull{hp: cs.Card.HP, dmg: &cs.Damage, temporary: &cs.TemporaryDamage, history: &cs.BlastDamageHistory}
	}
	s := p.Ships[g.ownShipIndex(p, ref.ShipID)]
	return hull{hp: s.Card.HP, dmg: &s.Damage, temporary: &s.TemporaryDamage, history: &s.BlastDamageHistory}
}

// ownHulls lists the player's ships followed by their command ship.
func ownHulls(g *GameState, playerID string) []ShipRef {
	p := g.mustPlayer(playerID)
	refs := make([]ShipRef, 0, len(p.Ships)+1)
	for _, s := range p.Ships {
		refs = append(refs, ShipRef{PlayerID: playerID, ShipID: s.ID})
	}
	return append(refs, ShipRef{PlayerID: playerID})
}
