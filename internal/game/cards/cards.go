// Package cards holds the immutable card definitions shared by every game.
package cards

import "fmt"

// Flavor selects a rule variant. It changes card text, deck composition and
// command ship hit points.
type Flavor string

const (
	FlavorOriginal   Flavor = "Original"
	FlavorRebalanced Flavor = "Rebalanced"
)

// ParseFlavor converts a configuration string to a Flavor.
func ParseFlavor(s string) (Flavor, error) {
	switch Flavor(s) {
	case FlavorOriginal, FlavorRebalanced:
		return Flavor(s), nil
	case "":
		return FlavorOriginal, nil
	default:
		return "", fmt.Errorf("unknown game flavor %q", s)
	}
}

// ResourceType is one of the three resource symbols printed on action cards.
type ResourceType string

const (
	ResourceStar    ResourceType = "Star"
	ResourceCircle  ResourceType = "Circle"
	ResourceDiamond ResourceType = "Diamond"
)

// Resources counts resource symbols.
type Resources struct {
	Stars    int `json:"stars"`
	Circles  int `json:"circles"`
	Diamonds int `json:"diamonds"`
}

// Add returns the component-wise sum of r and o.
func (r Resources) Add(o Resources) Resources {
	return Resources{
		Stars:    r.Stars + o.Stars,
		Circles:  r.Circles + o.Circles,
		Diamonds: r.Diamonds + o.Diamonds,
	}
}

// FireControl is a weapon system a ship can carry and a blast can require.
type FireControl string

const (
	FireControlNone  FireControl = ""
	FireControlLaser FireControl = "Laser"
	FireControlBeam  FireControl = "Beam"
	FireControlMag   FireControl = "Mag"
)

// ShipCard describes a ship class.
type ShipCard struct {
	Name        string `json:"name"`
	HP          int    `json:"hp"`
	Movement    int    `json:"movement"`
	Laser       bool   `json:"laser"`
	Beam        bool   `json:"beam"`
	Mag         bool   `json:"mag"`
	Minesweeper bool   `json:"minesweeper"`
}

// HasFireControl reports whether the ship carries the given weapon system.
func (s ShipCard) HasFireControl(fc FireControl) bool {
	switch fc {
	case FireControlLaser:
		return s.Laser
	case FireControlBeam:
		return s.Beam
	case FireControlMag:
		return s.Mag
	default:
		return false
	}
}

// Effect tags what an action card does when played.
type Effect string

const (
	EffectBlast         Effect = "Blast"
	EffectSquadron      Effect = "Squadron"
	EffectDirectHit     Effect = "DirectHit"
	EffectCounter       Effect = "Counter"
	EffectAsteroids     Effect = "Asteroids"
	EffectMinefield     Effect = "Minefield"
	EffectSpacedock     Effect = "Spacedock"
	EffectBoardingParty Effect = "BoardingParty"
)

// ActionCard describes an action card. Copies in decks are plain values.
type ActionCard struct {
	Name      string    `json:"name"`
	Effect    Effect    `json:"effect"`
	Text      string    `json:"text"`
	Resources Resources `json:"resources"`

	// Blast attributes.
	Damage              int         `json:"damage,omitempty"`
	RequiredFireControl FireControl `json:"requiredFireControl,omitempty"`
	Ramming             bool        `json:"ramming,omitempty"`
	Concussive          bool        `json:"concussive,omitempty"`

	// Squadron attributes.
	ShipDamage        int  `json:"shipDamage,omitempty"`
	CommandShipDamage int  `json:"commandShipDamage,omitempty"`
	TemporaryDamage   bool `json:"temporaryDamage,omitempty"`

	IsBlast              bool `json:"isBlast"`
	IsSquadron           bool `json:"isSquadron"`
	IsDirectHit          bool `json:"isDirectHit"`
	CanRespondToBlast    bool `json:"canRespondToBlast"`
	CanRespondToSquadron bool `json:"canRespondToSquadron"`
	CanRespondToAnything bool `json:"canRespondToAnything"`
}

// IsResponse reports whether the card can ever be played as a response.
func (a ActionCard) IsResponse() bool {
	return a.CanRespondToBlast || a.CanRespondToSquadron || a.CanRespondToAnything
}

// CommandShipType identifies a command ship variant and keys its ability.
type CommandShipType string

const (
	CraniumConsortium CommandShipType = "CraniumConsortium"
	Brotherhood       CommandShipType = "Brotherhood"
	Freep             CommandShipType = "Freep"
	Overseers         CommandShipType = "Overseers"
	MuddLords         CommandShipType = "MuddLords"
	ZetaTriumvirate   CommandShipType = "ZetaTriumvirate"
)

// CommandShipCard describes a player's command ship.
type CommandShipCard struct {
	Type        CommandShipType `json:"type"`
	Name        string          `json:"name"`
	HP          int             `json:"hp"`
	AbilityText string          `json:"abilityText,omitempty"`
	// AbilityActivations limits uses per game; nil means unlimited.
	AbilityActivations *int `json:"abilityActivations,omitempty"`
}
