package game

import (
	"fmt"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/eventlog"
	"github.com/magblast/magblast-server-go/internal/game/rules"
)

// UIShipChoice is a selectable ship. CommandShip choices carry no index; the
// same shape names a player where a player is asked for.
type UIShipChoice struct {
	PlayerID    string `json:"playerId"`
	ShipIndex   int    `json:"shipIndex"`
	CommandShip bool   `json:"commandShip"`
}

// UIShip is a ship as every player sees it.
type UIShip struct {
	ID                 string         `json:"id"`
	Card               cards.ShipCard `json:"card"`
	Location           rules.Zone     `json:"location"`
	Damage             int            `json:"damage"`
	TemporaryDamage    int            `json:"temporaryDamage"`
	BlastDamageHistory []int          `json:"blastDamageHistory"`
	HasFiredThisTurn   bool           `json:"hasFiredThisTurn"`
	HasSweptThisTurn   bool           `json:"hasSweptThisTurn"`
}

// UIPlayer is the public part of a player's state.
type UIPlayer struct {
	ID                          string                `json:"id"`
	IsAlive                     bool                  `json:"isAlive"`
	CommandShip                 cards.CommandShipCard `json:"commandShip"`
	CommandShipDamage           int                   `json:"commandShipDamage"`
	CommandShipTemporaryDamage  int                   `json:"commandShipTemporaryDamage"`
	RemainingAbilityActivations *int                  `json:"remainingAbilityActivations,omitempty"`
	Ships                       []UIShip              `json:"ships"`
	HandSize                    int                   `json:"handSize"`
	UsedSquadronCards           []cards.ActionCard    `json:"usedSquadronCards"`
	AsteroidsUntil              string                `json:"asteroidsUntilBeginningOfPlayerTurn,omitempty"`
	MinefieldUntil              string                `json:"minefieldUntilBeginningOfPlayerTurn,omitempty"`
}

// UIGameState is everything one player's client needs to render the game and
// offer the legal inputs.
type UIGameState struct {
	PlayerID     string        `json:"playerId"`
	ActivePlayer string        `json:"activePlayer"`
	TurnNumber   int           `json:"turnNumber"`
	TurnState    TurnStateType `json:"turnState"`
	Prompt       string        `json:"prompt"`
	Winner       string        `json:"winner,omitempty"`

	SelectableCardIndices  []int          `json:"selectableCardIndices"`
	SelectableShips        []UIShipChoice `json:"selectableShips"`
	SelectablePlayers      []string       `json:"selectablePlayers"`
	SelectableZones        []rules.Zone   `json:"selectableZones"`
	Choices                []string       `json:"choices"`
	CanPass                bool           `json:"canPass"`
	CanCancel              bool           `json:"canCancel"`
	CanActivateAbility     bool           `json:"canActivateAbility"`
	CanActivateMinesweeper bool           `json:"canActivateMinesweeper"`

	Hand                []cards.ActionCard `json:"hand"`
	StartingShipOptions []cards.ShipCard   `json:"startingShipOptions,omitempty"`
	ShipToPlace         *cards.ShipCard    `json:"shipToPlace,omitempty"`
	Players             []UIPlayer         `json:"players"`
	ActionDeckSize      int                `json:"actionDeckSize"`
	ShipDeckSize        int                `json:"shipDeckSize"`
	Log                 []eventlog.Entry   `json:"log"`
	Checksum            string             `json:"checksum"`
}

// UILobbyState is shown before a game starts.
type UILobbyState struct {
	Players  []string `json:"players"`
	CanStart bool     `json:"canStart"`
}

// LobbyUIState derives the lobby view for the players waiting to start.
func LobbyUIState(playerIDs []string) UILobbyState {
	return UILobbyState{
		Players:  append([]string(nil), playerIDs...),
		CanStart: len(playerIDs) >= MinPlayers && len(playerIDs) <= MaxPlayers,
	}
}

// GameUIState derives what playerID sees and may do in the current state.
func GameUIState(playerID string, g *GameState) UIGameState {
	ui := UIGameState{
		PlayerID:       playerID,
		ActivePlayer:   g.ActivePlayer,
		TurnNumber:     g.TurnNumber,
		ActionDeckSize: len(g.ActionDeck),
		ShipDeckSize:   len(g.ShipDeck),
		Log:            g.EventLog.Entries(),
		Checksum:       g.ComputeChecksum().Hash,
	}
	if g.TurnState != nil {
		ui.TurnState = g.TurnState.Type()
	}
	for _, id := range g.PlayerTurnOrder {
		ui.Players = append(ui.Players, publicPlayer(g.mustPlayer(id)))
	}
	p, ok := g.PlayerState[playerID]
	if !ok {
		ui.Prompt = "You are watching this game."
		return ui
	}
	ui.Hand = append([]cards.ActionCard(nil), p.Hand...)

	if winner, over := g.Winner(); over {
		ui.Winner = winner
		ui.Prompt = fmt.Sprintf("%s has won the game.", winner)
		return ui
	}
	if !p.IsAlive {
		ui.Prompt = "Your command ship was destroyed."
		return ui
	}
	g.fillPrompt(&ui, p)
	return ui
}

func publicPlayer(p *PlayerState) UIPlayer {
	u := UIPlayer{
		ID:                         p.ID,
		IsAlive:                    p.IsAlive,
		CommandShip:                p.CommandShip.Card,
		CommandShipDamage:          p.CommandShip.Damage,
		CommandShipTemporaryDamage: p.CommandShip.TemporaryDamage,
		HandSize:                   len(p.Hand),
		UsedSquadronCards:          append([]cards.ActionCard(nil), p.UsedSquadronCards...),
		AsteroidsUntil:             p.AsteroidsUntilBeginningOfPlayerTurn,
		MinefieldUntil:             p.MinefieldUntilBeginningOfPlayerTurn,
	}
	if r := p.CommandShip.RemainingAbilityActivations; r != nil {
		n := *r
		u.RemainingAbilityActivations = &n
	}
	for _, s := range p.Ships {
		u.Ships = append(u.Ships, UIShip{
			ID:                 s.ID,
			Card:               s.Card,
			Location:           s.Location,
			Damage:             s.Damage,
			TemporaryDamage:    s.TemporaryDamage,
			BlastDamageHistory: append([]int(nil), s.BlastDamageHistory...),
			HasFiredThisTurn:   s.HasFiredThisTurn,
			HasSweptThisTurn:   s.HasSweptThisTurn,
		})
	}
	return u
}

// fillPrompt sets the prompt and the selectable inputs for a living player.
func (g *GameState) fillPrompt(ui *UIGameState, p *PlayerState) {
	switch s := g.TurnState.(type) {
	case *ChooseStartingShipsState:
		if _, done := s.Chosen[p.ID]; done {
			ui.Prompt = "Waiting for the other players to choose their ships."
			return
		}
		ui.StartingShipOptions = append([]cards.ShipCard(nil), s.Options[p.ID]...)
		ui.SelectableCardIndices = indexRange(len(s.Options[p.ID]))
		ui.Prompt = fmt.Sprintf("Choose %d starting ships.", StartingShips)
		return
	case *PlaceStartingShipsState:
		remaining := s.Remaining[p.ID]
		if len(remaining) == 0 {
			ui.Prompt = "Waiting for the other players to place their ships."
			return
		}
		ship := remaining[0]
		ui.ShipToPlace = &ship
		ui.SelectableZones = placementZones(p)
		ui.Prompt = fmt.Sprintf("Choose a zone for your %s.", ship.Name)
		return
	}

	if rs, ok := g.TurnState.(RespondState); ok {
		r := rs.response()
		if r.CurrentResponder() != p.ID {
			ui.Prompt = fmt.Sprintf("Waiting for %s to respond to %s.", r.CurrentResponder(), r.Effect.Card.Name)
			return
		}
		for i, c := range p.Hand {
			if canAnswer(c, r.Effect) {
				ui.SelectableCardIndices = append(ui.SelectableCardIndices, i)
			}
		}
		ui.CanPass = true
		ui.Prompt = fmt.Sprintf("%s played %s. Respond, or pass.", r.Effect.Actor, r.Effect.Card.Name)
		return
	}

	if p.ID != g.ActivePlayer {
		ui.Prompt = fmt.Sprintf("Waiting for %s.", g.ActivePlayer)
		return
	}

	switch s := g.TurnState.(type) {
	case *DiscardTurnState:
		ui.SelectableCardIndices = indexRange(len(p.Hand))
		ui.CanPass = true
		ui.Prompt = "Choose cards to discard, or pass."
	case *ReinforceTurnState:
		ui.SelectableCardIndices = indexRange(len(p.Hand))
		ui.CanPass = true
		ui.Prompt = "Discard resources to reinforce, or pass."
	case *ReinforcePlaceShipState:
		ship := s.Ship
		ui.ShipToPlace = &ship
		ui.SelectableZones = placementZones(p)
		ui.Prompt = fmt.Sprintf("Choose a zone for your new %s.", ship.Name)
	case *ManeuverTurnState:
		for i, sh := range p.Ships {
			if sh.Card.Movement > 0 {
				ui.SelectableShips = append(ui.SelectableShips, UIShipChoice{PlayerID: p.ID, ShipIndex: i})
			}
		}
		ui.CanPass = true
		ui.Prompt = "Move your ships, or pass to attack."
	case *ManeuverChooseTargetZoneState:
		ship := p.Ships[g.ownShipIndex(p, s.ShipID)]
		for _, z := range rules.Zones {
			if rules.CanMove(ship.Card.Movement, s.OriginalLocations[ship.ID], z) {
				ui.SelectableZones = append(ui.SelectableZones, z)
			}
		}
		ui.CanCancel = true
		ui.Prompt = fmt.Sprintf("Choose where to move %s.", ship.Card.Name)
	case *AttackTurnState:
		for i, c := range p.Hand {
			if g.canPlayCard(p.ID, c) {
				ui.SelectableCardIndices = append(ui.SelectableCardIndices, i)
			}
		}
		ui.CanPass = true
		ui.CanActivateAbility = g.CanActivateAbility(p.ID)
		ui.CanActivateMinesweeper = g.canMinesweep(p.ID)
		ui.Prompt = "Play a card, or pass to end your turn."
	case *PlayBlastChooseFiringShipState:
		for i, sh := range p.Ships {
			if canFire(sh, s.Card) {
				ui.SelectableShips = append(ui.SelectableShips, UIShipChoice{PlayerID: p.ID, ShipIndex: i})
			}
		}
		ui.CanCancel = true
		ui.Prompt = fmt.Sprintf("Choose a ship to fire %s.", s.Card.Name)
	case *PlayBlastChooseTargetShipState:
		ui.SelectableShips = g.shipChoices(g.blastTargets(p.ID))
		ui.CanCancel = true
		ui.Prompt = fmt.Sprintf("Choose a target for %s.", s.Card.Name)
	case *PlaySquadronChooseTargetShipState:
		ui.SelectableShips = g.shipChoices(g.squadronTargets(p.ID))
		ui.CanCancel = true
		ui.Prompt = fmt.Sprintf("Choose a target for %s.", s.Card.Name)
	case *PlayActionChooseTargetShipState:
		ui.SelectableShips = g.shipChoices(g.boardingTargets(p.ID))
		ui.CanCancel = true
		ui.Prompt = fmt.Sprintf("Choose a ship to capture with %s.", s.Card.Name)
	case *AttackChooseSpacedockShipState:
		for _, sh := range g.spacedockTargets(p.ID) {
			ui.SelectableShips = append(ui.SelectableShips, UIShipChoice{PlayerID: p.ID, ShipIndex: p.shipIndex(sh.ID)})
		}
		ui.CanCancel = true
		ui.Prompt = "Choose a ship to repair."
	case *AttackChooseAsteroidsPlayerTurnState, *AttackChooseMinefieldPlayerTurnState:
		ui.SelectablePlayers = g.AlivePlayers()
		ui.CanCancel = true
		ui.Prompt = "Choose the player whose turn ends the effect."
	case *AttackChooseMinesweeperState:
		for _, sh := range g.minesweepers(p.ID) {
			ui.SelectableShips = append(ui.SelectableShips, UIShipChoice{PlayerID: p.ID, ShipIndex: p.shipIndex(sh.ID)})
		}
		ui.CanCancel = true
		ui.Prompt = "Choose a minesweeper."
	case *AttackChoosePlayerToMinesweepState:
		ui.SelectablePlayers = g.minesweepTargets(p.ID)
		ui.CanCancel = true
		ui.Prompt = "Choose a player to sweep."
	case *AttackChooseAsteroidOrMinefieldToSweepState:
		ui.Choices = []string{fieldAsteroids, fieldMinefield}
		ui.CanCancel = true
		ui.Prompt = "Choose which field to sweep."
	case *AttackPlaceConcussiveBlastedShipsState:
		owner := g.mustPlayer(s.OwnerID)
		ship := owner.Ships[g.ownShipIndex(owner, s.ShipIDs[0])]
		ui.SelectableZones = relocationZones(owner, ship.Location)
		ui.Prompt = fmt.Sprintf("Choose where %s's %s is knocked to.", owner.ID, ship.Card.Name)
	case *AttackPlaceStolenShipState:
		ship := p.Ships[g.ownShipIndex(p, s.ShipID)]
		for _, z := range rules.Zones {
			n := p.ShipsInZone(z)
			if ship.Location == z {
				n--
			}
			if n < rules.MaxShipsPerZone {
				ui.SelectableZones = append(ui.SelectableZones, z)
			}
		}
		ui.Prompt = fmt.Sprintf("Choose a zone for the captured %s.", ship.Card.Name)
	case *CraniumConsortiumChooseResourcesToDiscardState:
		ui.SelectableCardIndices = indexRange(len(p.Hand))
		ui.CanCancel = true
		ui.Prompt = "Choose a full set of resources to discard."
	case *BrotherhoodChooseShipToTransferFromState:
		for _, ref := range ownHulls(g, p.ID) {
			if g.mustHull(ref).damage() > 0 {
				ui.SelectableShips = append(ui.SelectableShips, g.shipChoice(ref))
			}
		}
		ui.CanCancel = true
		ui.Prompt = "Choose a ship to move damage from."
	case *BrotherhoodChooseShipToTransferToState:
		for _, ref := range ownHulls(g, p.ID) {
			if ref != s.From && g.mustHull(ref).remaining() > 1 {
				ui.SelectableShips = append(ui.SelectableShips, g.shipChoice(ref))
			}
		}
		ui.CanCancel = true
		ui.Prompt = "Choose a ship to move the damage to."
	case *FreepChoosePlayerToStealCardsState:
		for _, id := range g.playersAfter(p.ID) {
			if len(g.mustPlayer(id).Hand) > 0 {
				ui.SelectablePlayers = append(ui.SelectablePlayers, id)
			}
		}
		ui.CanCancel = true
		ui.Prompt = "Choose a player to steal from."
	case *OverseersChooseBlastsState:
		for i, c := range p.Hand {
			if c.IsBlast {
				ui.SelectableCardIndices = append(ui.SelectableCardIndices, i)
			}
		}
		ui.CanCancel = true
		ui.Prompt = "Choose blasts to trade in."
	}
}

func (g *GameState) shipChoice(ref ShipRef) UIShipChoice {
	if ref.IsCommandShip() {
		return UIShipChoice{PlayerID: ref.PlayerID, CommandShip: true}
	}
	return UIShipChoice{PlayerID: ref.PlayerID, ShipIndex: g.mustPlayer(ref.PlayerID).shipIndex(ref.ShipID)}
}

func (g *GameState) shipChoices(refs []ShipRef) []UIShipChoice {
	out := make([]UIShipChoice, 0, len(refs))
	for _, ref := range refs {
		out = append(out, g.shipChoice(ref))
	}
	return out
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
