package rules

import (
	"testing"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanMove(t *testing.T) {
	tests := []struct {
		name     string
		movement int
		from, to Zone
		want     bool
	}{
		{"stationary stays", 0, ZoneNorth, ZoneNorth, true},
		{"stationary cannot move", 0, ZoneNorth, ZoneEast, false},
		{"one step adjacent", 1, ZoneNorth, ZoneEast, true},
		{"one step adjacent west", 1, ZoneSouth, ZoneWest, true},
		{"one step opposite", 1, ZoneNorth, ZoneSouth, false},
		{"one step east west", 1, ZoneEast, ZoneWest, false},
		{"two steps opposite", 2, ZoneNorth, ZoneSouth, true},
		{"fast anywhere", 3, ZoneWest, ZoneEast, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMove(tt.movement, tt.from, tt.to))
		})
	}
}

func TestParseZone(t *testing.T) {
	z, err := ParseZone("east")
	require.NoError(t, err)
	assert.Equal(t, ZoneEast, z)

	_, err = ParseZone("up")
	assert.Error(t, err)
}

func TestSufficientResources(t *testing.T) {
	star := cards.ActionCard{Resources: cards.Resources{Stars: 1}}
	circle := cards.ActionCard{Resources: cards.Resources{Circles: 1}}
	diamond := cards.ActionCard{Resources: cards.Resources{Diamonds: 1}}

	assert.False(t, SufficientResources(nil))
	assert.False(t, SufficientResources([]cards.ActionCard{circle, circle, star}))
	assert.True(t, SufficientResources([]cards.ActionCard{star, star, star}))
	assert.True(t, SufficientResources([]cards.ActionCard{star, circle, diamond}))
	assert.True(t, SufficientResources([]cards.ActionCard{
		{Resources: cards.Resources{Stars: 1, Circles: 1}}, diamond,
	}))
}

func TestFireControlMatches(t *testing.T) {
	gunship := cards.ShipCard{Name: "Gunship", Movement: 1, Laser: true, Beam: true}
	dread := cards.ShipCard{Name: "Dreadnought", Movement: 0, Laser: true, Beam: true, Mag: true}

	laser := cards.ActionCard{IsBlast: true, RequiredFireControl: cards.FireControlLaser}
	mag := cards.ActionCard{IsBlast: true, RequiredFireControl: cards.FireControlMag}
	ram := cards.ActionCard{IsBlast: true, Ramming: true}

	assert.True(t, FireControlMatches(gunship, laser))
	assert.False(t, FireControlMatches(gunship, mag))
	assert.True(t, FireControlMatches(gunship, ram))
	assert.False(t, FireControlMatches(dread, ram))
	assert.False(t, FireControlMatches(gunship, cards.ActionCard{Name: "Fighter", IsSquadron: true}))
}

func TestLargestHit(t *testing.T) {
	idx, amount, ok := LargestHit([]int{1, 3, 2, 3})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 3, amount)

	_, _, ok = LargestHit(nil)
	assert.False(t, ok)
}
