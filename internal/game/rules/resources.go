package rules

import (
	"github.com/magblast/magblast-server-go/internal/game/cards"
)

// ResourcesPerType is how many symbols of one type pay for a reinforcement.
const ResourcesPerType = 3

// SumResources totals the resource symbols on the given cards.
func SumResources(hand []cards.ActionCard) cards.Resources {
	var total cards.Resources
	for _, c := range hand {
		total = total.Add(c.Resources)
	}
	return total
}

// SufficientResources reports whether a discarded set pays for a reinforcement:
// three symbols of a single type, or one of each type.
func SufficientResources(discarded []cards.ActionCard) bool {
	r := SumResources(discarded)
	if r.Stars >= ResourcesPerType || r.Circles >= ResourcesPerType || r.Diamonds >= ResourcesPerType {
		return true
	}
	return r.Stars >= 1 && r.Circles >= 1 && r.Diamonds >= 1
}

// FireControlMatches reports whether a ship may fire the given blast.
// Ramming ignores fire control but needs a ship that can move.
func FireControlMatches(ship cards.ShipCard, blast cards.ActionCard) bool {
	if !blast.IsBlast {
		return false
	}
	if blast.Ramming {
		return ship.Movement > 0
	}
	return ship.HasFireControl(blast.RequiredFireControl)
}

// LargestHit picks the single largest entry of a damage history. Ties go to
// the earliest entry.
func LargestHit(history []int) (index, amount int, ok bool) {
	index = -1
	for i, d := range history {
		if d > amount {
			index, amount = i, d
		}
	}
	return index, amount, index >= 0
}
