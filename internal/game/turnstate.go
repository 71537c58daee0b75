package game

import (
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/rules"
)

// TurnStateType names a turn state on the wire and in logs.
type TurnStateType string

const (
	StateChooseStartingShips                 TurnStateType = "ChooseStartingShipsState"
	StatePlaceStartingShips                  TurnStateType = "PlaceStartingShipsState"
	StateDiscard                             TurnStateType = "DiscardTurnState"
	StateReinforce                           TurnStateType = "ReinforceTurnState"
	StateReinforcePlaceShip                  TurnStateType = "ReinforcePlaceShipState"
	StateManeuver                            TurnStateType = "ManeuverTurnState"
	StateManeuverChooseTargetZone            TurnStateType = "ManeuverChooseTargetZoneState"
	StateAttack                              TurnStateType = "AttackTurnState"
	StatePlayBlastChooseFiringShip           TurnStateType = "PlayBlastChooseFiringShipState"
	StatePlayBlastChooseTargetShip           TurnStateType = "PlayBlastChooseTargetShipState"
	StatePlayBlastRespond                    TurnStateType = "PlayBlastRespondState"
	StatePlaySquadronChooseTargetShip        TurnStateType = "PlaySquadronChooseTargetShipState"
	StatePlaySquadronRespond                 TurnStateType = "PlaySquadronRespondState"
	StatePlayActionChooseTargetShip          TurnStateType = "PlayActionChooseTargetShipState"
	StatePlayActionRespond                   TurnStateType = "PlayActionRespondState"
	StateCraniumConsortiumChooseResources    TurnStateType = "CraniumConsortiumChooseResourcesToDiscardState"
	StateBrotherhoodChooseShipToTransferFrom TurnStateType = "BrotherhoodChooseShipToTransferFromState"
	StateBrotherhoodChooseShipToTransferTo   TurnStateType = "BrotherhoodChooseShipToTransferToState"
	StateFreepChoosePlayerToStealCards       TurnStateType = "FreepChoosePlayerToStealCardsState"
	StateOverseersChooseBlasts               TurnStateType = "OverseersChooseBlastsState"
	StateAttackChooseMinesweeper             TurnStateType = "AttackChooseMinesweeperState"
	StateAttackChoosePlayerToMinesweep       TurnStateType = "AttackChoosePlayerToMinesweepState"
	StateAttackChooseAsteroidOrMinefield     TurnStateType = "AttackChooseAsteroidOrMinefieldToSweepState"
	StateAttackChooseAsteroidsPlayerTurn     TurnStateType = "AttackChooseAsteroidsPlayerTurnState"
	StateAttackChooseMinefieldPlayerTurn     TurnStateType = "AttackChooseMinefieldPlayerTurnState"
	StateAttackChooseSpacedockShip           TurnStateType = "AttackChooseSpacedockShipState"
	StateAttackPlaceConcussiveBlastedShips   TurnStateType = "AttackPlaceConcussiveBlastedShipsState"
	StateAttackPlaceStolenShip               TurnStateType = "AttackPlaceStolenShipState"
)

// TurnState is the current sub-phase of the game. Every concrete state is a
// pointer to one of the structs below and is built by its constructor.
type TurnState interface {
	Type() TurnStateType
}

// ChooseStartingShipsState waits for every player to keep StartingShips of
// their dealt options.
type ChooseStartingShipsState struct {
	Options map[string][]cards.ShipCard
	Chosen  map[string][]cards.ShipCard
}

func newChooseStartingShipsState(options map[string][]cards.ShipCard) *ChooseStartingShipsState {
	return &ChooseStartingShipsState{Options: options, Chosen: make(map[string][]cards.ShipCard, len(options))}
}

func (*ChooseStartingShipsState) Type() TurnStateType { return StateChooseStartingShips }

// PlaceStartingShipsState waits for every player to place their kept ships,
// one zone choice at a time.
type PlaceStartingShipsState struct {
	Remaining map[string][]cards.ShipCard
}

func newPlaceStartingShipsState(remaining map[string][]cards.ShipCard) *PlaceStartingShipsState {
	return &PlaceStartingShipsState{Remaining: remaining}
}

func (*PlaceStartingShipsState) Type() TurnStateType { return StatePlaceStartingShips }

type DiscardTurnState struct{}

func newDiscardTurnState() *DiscardTurnState { return &DiscardTurnState{} }

func (*DiscardTurnState) Type() TurnStateType { return StateDiscard }

type ReinforceTurnState struct{}

func newReinforceTurnState() *ReinforceTurnState { return &ReinforceTurnState{} }

func (*ReinforceTurnState) Type() TurnStateType { return StateReinforce }

// ReinforcePlaceShipState holds a freshly drawn ship until it is placed.
type ReinforcePlaceShipState struct {
	Ship cards.ShipCard
}

func newReinforcePlaceShipState(ship cards.ShipCard) *ReinforcePlaceShipState {
	return &ReinforcePlaceShipState{Ship: ship}
}

func (*ReinforcePlaceShipState) Type() TurnStateType { return StateReinforcePlaceShip }

// ManeuverTurnState remembers where each ship started the phase; movement is
// always measured from there.
type ManeuverTurnState struct {
	OriginalLocations map[string]rules.Zone
}

func newManeuverTurnState(original map[string]rules.Zone) *ManeuverTurnState {
	return &ManeuverTurnState{OriginalLocations: original}
}

func (*ManeuverTurnState) Type() TurnStateType { return StateManeuver }

type ManeuverChooseTargetZoneState struct {
	ShipID            string
	OriginalLocations map[string]rules.Zone
}

func newManeuverChooseTargetZoneState(shipID string, original map[string]rules.Zone) *ManeuverChooseTargetZoneState {
	return &ManeuverChooseTargetZoneState{ShipID: shipID, OriginalLocations: original}
}

func (*ManeuverChooseTargetZoneState) Type() TurnStateType { return StateManeuverChooseTargetZone }

type AttackTurnState struct{}

func newAttackTurnState() *AttackTurnState { return &AttackTurnState{} }

func (*AttackTurnState) Type() TurnStateType { return StateAttack }

// PlayedCard is a card that left the hand for a selection still in progress.
// HandIndex is where it sat, so a cancel can put it back in place.
type PlayedCard struct {
	Card      cards.ActionCard
	HandIndex int
}

func (c PlayedCard) played() PlayedCard { return c }

// cardSelection is implemented by the selection states that hold a played card.
type cardSelection interface {
	TurnState
	played() PlayedCard
}

type PlayBlastChooseFiringShipState struct {
	PlayedCard
}

func newPlayBlastChooseFiringShipState(card PlayedCard) *PlayBlastChooseFiringShipState {
	return &PlayBlastChooseFiringShipState{PlayedCard: card}
}

func (*PlayBlastChooseFiringShipState) Type() TurnStateType { return StatePlayBlastChooseFiringShip }

type PlayBlastChooseTargetShipState struct {
	PlayedCard
	FiringShipID string
}

func newPlayBlastChooseTargetShipState(card PlayedCard, firingShipID string) *PlayBlastChooseTargetShipState {
	return &PlayBlastChooseTargetShipState{PlayedCard: card, FiringShipID: firingShipID}
}

func (*PlayBlastChooseTargetShipState) Type() TurnStateType { return StatePlayBlastChooseTargetShip }

type PlaySquadronChooseTargetShipState struct {
	PlayedCard
}

func newPlaySquadronChooseTargetShipState(card PlayedCard) *PlaySquadronChooseTargetShipState {
	return &PlaySquadronChooseTargetShipState{PlayedCard: card}
}

func (*PlaySquadronChooseTargetShipState) Type() TurnStateType {
	return StatePlaySquadronChooseTargetShip
}

// PlayActionChooseTargetShipState selects the enemy ship for a boarding party.
type PlayActionChooseTargetShipState struct {
	PlayedCard
}

func newPlayActionChooseTargetShipState(card PlayedCard) *PlayActionChooseTargetShipState {
	return &PlayActionChooseTargetShipState{PlayedCard: card}
}

func (*PlayActionChooseTargetShipState) Type() TurnStateType { return StatePlayActionChooseTargetShip }

// PlayBlastRespondState waits on responders to a blast or to a counter of one.
type PlayBlastRespondState struct {
	Response
}

func (*PlayBlastRespondState) Type() TurnStateType { return StatePlayBlastRespond }

// PlaySquadronRespondState waits on responders to a squadron or to a fighter
// intercepting one.
type PlaySquadronRespondState struct {
	Response
}

func (*PlaySquadronRespondState) Type() TurnStateType { return StatePlaySquadronRespond }

// PlayActionRespondState waits on responders to any other card.
type PlayActionRespondState struct {
	Response
}

func (*PlayActionRespondState) Type() TurnStateType { return StatePlayActionRespond }

// newRespondState wraps a frame in the variant that matches what it answers.
func newRespondState(r Response) RespondState {
	switch {
	case r.Effect.Kind == EffectFireBlast:
		return &PlayBlastRespondState{Response: r}
	case r.Effect.Kind == EffectLaunchSquadron:
		return &PlaySquadronRespondState{Response: r}
	case r.Effect.Kind == EffectCancel && r.Effect.Card.IsSquadron:
		return &PlaySquadronRespondState{Response: r}
	case r.Effect.Kind == EffectCancel && r.Previous != nil && r.Previous.Type() == StatePlayBlastRespond:
		return &PlayBlastRespondState{Response: r}
	default:
		return &PlayActionRespondState{Response: r}
	}
}

type AttackChooseMinesweeperState struct{}

func newAttackChooseMinesweeperState() *AttackChooseMinesweeperState {
	return &AttackChooseMinesweeperState{}
}

func (*AttackChooseMinesweeperState) Type() TurnStateType { return StateAttackChooseMinesweeper }

type AttackChoosePlayerToMinesweepState struct {
	MinesweeperID string
}

func newAttackChoosePlayerToMinesweepState(minesweeperID string) *AttackChoosePlayerToMinesweepState {
	return &AttackChoosePlayerToMinesweepState{MinesweeperID: minesweeperID}
}

func (*AttackChoosePlayerToMinesweepState) Type() TurnStateType {
	return StateAttackChoosePlayerToMinesweep
}

type AttackChooseAsteroidOrMinefieldToSweepState struct {
	MinesweeperID string
	PlayerID      string
}

func newAttackChooseAsteroidOrMinefieldToSweepState(minesweeperID, playerID string) *AttackChooseAsteroidOrMinefieldToSweepState {
	return &AttackChooseAsteroidOrMinefieldToSweepState{MinesweeperID: minesweeperID, PlayerID: playerID}
}

func (*AttackChooseAsteroidOrMinefieldToSweepState) Type() TurnStateType {
	return StateAttackChooseAsteroidOrMinefield
}

type AttackChooseAsteroidsPlayerTurnState struct {
	PlayedCard
}

func newAttackChooseAsteroidsPlayerTurnState(card PlayedCard) *AttackChooseAsteroidsPlayerTurnState {
	return &AttackChooseAsteroidsPlayerTurnState{PlayedCard: card}
}

func (*AttackChooseAsteroidsPlayerTurnState) Type() TurnStateType {
	return StateAttackChooseAsteroidsPlayerTurn
}

type AttackChooseMinefieldPlayerTurnState struct {
	PlayedCard
}

func newAttackChooseMinefieldPlayerTurnState(card PlayedCard) *AttackChooseMinefieldPlayerTurnState {
	return &AttackChooseMinefieldPlayerTurnState{PlayedCard: card}
}

func (*AttackChooseMinefieldPlayerTurnState) Type() TurnStateType {
	return StateAttackChooseMinefieldPlayerTurn
}

type AttackChooseSpacedockShipState struct {
	PlayedCard
}

func newAttackChooseSpacedockShipState(card PlayedCard) *AttackChooseSpacedockShipState {
	return &AttackChooseSpacedockShipState{PlayedCard: card}
}

func (*AttackChooseSpacedockShipState) Type() TurnStateType { return StateAttackChooseSpacedockShip }

// AttackPlaceConcussiveBlastedShipsState lets the attacker relocate the ships
// that shared a zone with a concussive blast target, first id first.
type AttackPlaceConcussiveBlastedShipsState struct {
	OwnerID      string
	OriginalZone rules.Zone
	ShipIDs      []string
}

func newAttackPlaceConcussiveBlastedShipsState(ownerID string, zone rules.Zone, shipIDs []string) *AttackPlaceConcussiveBlastedShipsState {
	return &AttackPlaceConcussiveBlastedShipsState{OwnerID: ownerID, OriginalZone: zone, ShipIDs: shipIDs}
}

func (*AttackPlaceConcussiveBlastedShipsState) Type() TurnStateType {
	return StateAttackPlaceConcussiveBlastedShips
}

type AttackPlaceStolenShipState struct {
	ShipID string
}

func newAttackPlaceStolenShipState(shipID string) *AttackPlaceStolenShipState {
	return &AttackPlaceStolenShipState{ShipID: shipID}
}

func (*AttackPlaceStolenShipState) Type() TurnStateType { return StateAttackPlaceStolenShip }
