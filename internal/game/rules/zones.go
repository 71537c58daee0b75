package rules

import "fmt"

// Zone is one of the four areas around a command ship.
type Zone string

const (
	ZoneNorth Zone = "north"
	ZoneSouth Zone = "south"
	ZoneEast  Zone = "east"
	ZoneWest  Zone = "west"
)

// MaxShipsPerZone caps how many ships a player may keep in one zone.
const MaxShipsPerZone = 3

// Zones lists every zone in display order.
var Zones = []Zone{ZoneNorth, ZoneEast, ZoneSouth, ZoneWest}

// ParseZone validates a zone name.
func ParseZone(s string) (Zone, error) {
	switch z := Zone(s); z {
	case ZoneNorth, ZoneSouth, ZoneEast, ZoneWest:
		return z, nil
	default:
		return "", fmt.Errorf("unknown zone %q", s)
	}
}

// Opposite returns the zone that is not adjacent to z.
func (z Zone) Opposite() Zone {
	switch z {
	case ZoneNorth:
		return ZoneSouth
	case ZoneSouth:
		return ZoneNorth
	case ZoneEast:
		return ZoneWest
	case ZoneWest:
		return ZoneEast
	default:
		return ""
	}
}

// Adjacent reports whether a ship can move between two different zones with a
// single point of movement.
func Adjacent(a, b Zone) bool {
	return a != b && b != a.Opposite()
}

// CanMove reports whether a ship with the given movement value may end the
// maneuver phase in to after starting it in from.
func CanMove(movement int, from, to Zone) bool {
	if from == to {
		return true
	}
	switch {
	case movement <= 0:
		return false
	case movement == 1:
		return Adjacent(from, to)
	default:
		return true
	}
}
