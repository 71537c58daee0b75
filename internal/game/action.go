package game

import (
	"encoding/json"
	"fmt"

	"github.com/magblast/magblast-server-go/internal/game/rules"
)

// ActionType is the wire tag of an action.
type ActionType string

const (
	ActionChooseCard                 ActionType = "chooseCard"
	ActionChooseShip                 ActionType = "chooseShip"
	ActionChooseZone                 ActionType = "chooseZone"
	ActionChoose                     ActionType = "choose"
	ActionPass                       ActionType = "pass"
	ActionCancel                     ActionType = "cancel"
	ActionActivateCommandShipAbility ActionType = "activateCommandShipAbility"
	ActionActivateMinesweeperAbility ActionType = "activateMinesweeperAbility"
)

// Action is a player intent submitted to ApplyAction.
type Action interface {
	Type() ActionType
}

// ChooseCardAction selects one card (List false) or a set of cards from the
// player's hand by index.
type ChooseCardAction struct {
	Indices []int
	List    bool
}

func (ChooseCardAction) Type() ActionType { return ActionChooseCard }

// single returns the chosen index when exactly one card was sent as a number.
func (a ChooseCardAction) single() (int, bool) {
	if a.List || len(a.Indices) != 1 {
		return 0, false
	}
	return a.Indices[0], true
}

// ChooseShipAction selects a ship. Without HasShip it selects the player's
// command ship, or the player itself where a player is asked for.
type ChooseShipAction struct {
	PlayerID  string
	ShipIndex int
	HasShip   bool
}

func (ChooseShipAction) Type() ActionType { return ActionChooseShip }

// ChooseZoneAction selects one of the acting player's zones.
type ChooseZoneAction struct {
	Location rules.Zone
}

func (ChooseZoneAction) Type() ActionType { return ActionChooseZone }

// ChooseAction selects one of the offered text choices.
type ChooseAction struct {
	Choice string
}

func (ChooseAction) Type() ActionType { return ActionChoose }

// PassAction declines the current prompt.
type PassAction struct{}

func (PassAction) Type() ActionType { return ActionPass }

// CancelAction backs out of a selection.
type CancelAction struct{}

func (CancelAction) Type() ActionType { return ActionCancel }

// ActivateCommandShipAbilityAction starts the player's command ship ability.
type ActivateCommandShipAbilityAction struct{}

func (ActivateCommandShipAbilityAction) Type() ActionType { return ActionActivateCommandShipAbility }

// ActivateMinesweeperAbilityAction starts a minesweeper sweep.
type ActivateMinesweeperAbilityAction struct{}

func (ActivateMinesweeperAbilityAction) Type() ActionType { return ActionActivateMinesweeperAbility }

type wireAction struct {
	Type      ActionType      `json:"type"`
	CardIndex json.RawMessage `json:"cardIndex,omitempty"`
	Choice    json.RawMessage `json:"choice,omitempty"`
	Location  string          `json:"location,omitempty"`
}

// DecodeAction parses a JSON action message.
func DecodeAction(data []byte) (Action, error) {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	switch w.Type {
	case ActionChooseCard:
		return decodeCardIndex(w.CardIndex)
	case ActionChooseShip:
		return decodeShipChoice(w.Choice)
	case ActionChooseZone:
		z, err := rules.ParseZone(w.Location)
		if err != nil {
			return nil, fmt.Errorf("decode action: %w", err)
		}
		return ChooseZoneAction{Location: z}, nil
	case ActionChoose:
		var s string
		if err := json.Unmarshal(w.Choice, &s); err != nil {
			return nil, fmt.Errorf("decode action: choice must be a string: %w", err)
		}
		return ChooseAction{Choice: s}, nil
	case ActionPass:
		return PassAction{}, nil
	case ActionCancel:
		return CancelAction{}, nil
	case ActionActivateCommandShipAbility:
		return ActivateCommandShipAbilityAction{}, nil
	case ActionActivateMinesweeperAbility:
		return ActivateMinesweeperAbilityAction{}, nil
	default:
		return nil, fmt.Errorf("decode action: unknown type %q", w.Type)
	}
}

func decodeCardIndex(raw json.RawMessage) (Action, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("decode action: cardIndex is required")
	}
	var one int
	if err := json.Unmarshal(raw, &one); err == nil {
		return ChooseCardAction{Indices: []int{one}}, nil
	}
	var many []int
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("decode action: cardIndex must be a number or a list: %w", err)
	}
	return ChooseCardAction{Indices: many, List: true}, nil
}

func decodeShipChoice(raw json.RawMessage) (Action, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("decode action: choice is required")
	}
	var player string
	if err := json.Unmarshal(raw, &player); err == nil {
		return ChooseShipAction{PlayerID: player}, nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return nil, fmt.Errorf("decode action: choice must be a player id or [playerId, shipIndex]")
	}
	a := ChooseShipAction{HasShip: true}
	if err := json.Unmarshal(pair[0], &a.PlayerID); err != nil {
		return nil, fmt.Errorf("decode action: player id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &a.ShipIndex); err != nil {
		return nil, fmt.Errorf("decode action: ship index: %w", err)
	}
	return a, nil
}
