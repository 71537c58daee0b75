package game

import (
	"testing"

	"github.com/magblast/magblast-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Action
	}{
		{"single card", `{"type":"chooseCard","cardIndex":2}`, ChooseCardAction{Indices: []int{2}}},
		{"card list", `{"type":"chooseCard","cardIndex":[0,3]}`, ChooseCardAction{Indices: []int{0, 3}, List: true}},
		{"empty card list", `{"type":"chooseCard","cardIndex":[]}`, ChooseCardAction{Indices: []int{}, List: true}},
		{"ship", `{"type":"chooseShip","choice":["p2",1]}`, ChooseShipAction{PlayerID: "p2", ShipIndex: 1, HasShip: true}},
		{"command ship", `{"type":"chooseShip","choice":"p2"}`, ChooseShipAction{PlayerID: "p2"}},
		{"zone", `{"type":"chooseZone","location":"west"}`, ChooseZoneAction{Location: rules.ZoneWest}},
		{"choice", `{"type":"choose","choice":"Minefield"}`, ChooseAction{Choice: "Minefield"}},
		{"pass", `{"type":"pass"}`, PassAction{}},
		{"cancel", `{"type":"cancel"}`, CancelAction{}},
		{"ability", `{"type":"activateCommandShipAbility"}`, ActivateCommandShipAbilityAction{}},
		{"minesweeper", `{"type":"activateMinesweeperAbility"}`, ActivateMinesweeperAbilityAction{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAction([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeActionErrors(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"type":"launch"}`,
		`{"type":"chooseCard"}`,
		`{"type":"chooseCard","cardIndex":"one"}`,
		`{"type":"chooseShip"}`,
		`{"type":"chooseShip","choice":["p2"]}`,
		`{"type":"chooseShip","choice":["p2","one"]}`,
		`{"type":"chooseZone","location":"up"}`,
		`{"type":"choose","choice":3}`,
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := DecodeAction([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestSingleCardChoice(t *testing.T) {
	idx, ok := ChooseCardAction{Indices: []int{4}}.single()
	assert.True(t, ok)
	assert.Equal(t, 4, idx)

	_, ok = ChooseCardAction{Indices: []int{4}, List: true}.single()
	assert.False(t, ok)
}
