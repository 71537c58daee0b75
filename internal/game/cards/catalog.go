package cards

// Catalog serves the card lists for each flavor. It is built once and shared
// read-only by every game.
type Catalog struct {
	ships        map[Flavor][]deckEntry[ShipCard]
	actions      map[Flavor][]deckEntry[ActionCard]
	commandShips map[Flavor][]CommandShipCard
}

type deckEntry[T any] struct {
	card   T
	copies int
}

// ShipCards returns the full ship deck for the flavor, one entry per physical card.
func (c *Catalog) ShipCards(flavor Flavor) []ShipCard {
	return expand(c.ships[flavor])
}

// ActionCards returns the full action deck for the flavor, one entry per physical card.
func (c *Catalog) ActionCards(flavor Flavor) []ActionCard {
	return expand(c.actions[flavor])
}

// CommandShipCards returns every command ship available in the flavor.
func (c *Catalog) CommandShipCards(flavor Flavor) []CommandShipCard {
	src := c.commandShips[flavor]
	out := make([]CommandShipCard, len(src))
	copy(out, src)
	return out
}

// ActionCard looks up an action card definition by name.
func (c *Catalog) ActionCard(flavor Flavor, name string) (ActionCard, bool) {
	for _, e := range c.actions[flavor] {
		if e.card.Name == name {
			return e.card, true
		}
	}
	return ActionCard{}, false
}

// ShipCard looks up a ship card definition by name.
func (c *Catalog) ShipCard(flavor Flavor, name string) (ShipCard, bool) {
	for _, e := range c.ships[flavor] {
		if e.card.Name == name {
			return e.card, true
		}
	}
	return ShipCard{}, false
}

// CommandShipCard looks up a command ship by type.
func (c *Catalog) CommandShipCard(flavor Flavor, t CommandShipType) (CommandShipCard, bool) {
	for _, cs := range c.commandShips[flavor] {
		if cs.Type == t {
			return cs, true
		}
	}
	return CommandShipCard{}, false
}

func expand[T any](entries []deckEntry[T]) []T {
	total := 0
	for _, e := range entries {
		total += e.copies
	}
	out := make([]T, 0, total)
	for _, e := range entries {
		for i := 0; i < e.copies; i++ {
			out = append(out, e.card)
		}
	}
	return out
}

// DefaultCatalog returns the built-in card tables for every flavor.
func DefaultCatalog() *Catalog {
	return &Catalog{
		ships: map[Flavor][]deckEntry[ShipCard]{
			FlavorOriginal:   shipDeck(FlavorOriginal),
			FlavorRebalanced: shipDeck(FlavorRebalanced),
		},
		actions: map[Flavor][]deckEntry[ActionCard]{
			FlavorOriginal:   actionDeck(FlavorOriginal),
			FlavorRebalanced: actionDeck(FlavorRebalanced),
		},
		commandShips: map[Flavor][]CommandShipCard{
			FlavorOriginal:   commandShips(FlavorOriginal),
			FlavorRebalanced: commandShips(FlavorRebalanced),
		},
	}
}

func shipDeck(flavor Flavor) []deckEntry[ShipCard] {
	dreadnoughtHP, scoutHP := 5, 1
	if flavor == FlavorRebalanced {
		dreadnoughtHP, scoutHP = 6, 2
	}
	return []deckEntry[ShipCard]{
		{ShipCard{Name: "Gunship", HP: 2, Movement: 1, Laser: true, Beam: true}, 6},
		{ShipCard{Name: "Destroyer", HP: 3, Movement: 1, Beam: true, Mag: true}, 5},
		{ShipCard{Name: "Dreadnought", HP: dreadnoughtHP, Movement: 0, Laser: true, Beam: true, Mag: true}, 3},
		{ShipCard{Name: "Cruiser", HP: 3, Movement: 2, Laser: true, Mag: true}, 4},
		{ShipCard{Name: "Scout", HP: scoutHP, Movement: 3, Laser: true}, 5},
		{ShipCard{Name: "Carrier", HP: 4, Movement: 1, Beam: true}, 3},
		{ShipCard{Name: "Minesweeper", HP: 2, Movement: 2, Laser: true, Minesweeper: true}, 3},
	}
}

// Card names referenced by rules code and tests.
const (
	LaserBlast      = "Laser Blast"
	BeamBlast       = "Beam Blast"
	MagBlast        = "Mag Blast"
	RammingSpeed    = "Ramming Speed"
	ConcussiveBlast = "Concussive Blast"
	Fighter         = "Fighter"
	Bomber          = "Bomber"
	TemporalFlux    = "Temporal Flux"
	EvasiveAction   = "Evasive Action"
	DirectHit       = "Direct Hit"
	Asteroids       = "Asteroids"
	Minefield       = "Minefield"
	Spacedock       = "Spacedock"
	BoardingParty   = "Boarding Party"
)

func actionDeck(flavor Flavor) []deckEntry[ActionCard] {
	bomberCommandDamage, fluxCopies := 4, 4
	if flavor == FlavorRebalanced {
		bomberCommandDamage, fluxCopies = 3, 3
	}
	return []deckEntry[ActionCard]{
		{blast(LaserBlast, 1, FireControlLaser, Resources{Stars: 1}), 10},
		{blast(BeamBlast, 2, FireControlBeam, Resources{Circles: 1}), 8},
		{blast(MagBlast, 3, FireControlMag, Resources{Diamonds: 1}), 6},
		{ActionCard{
			Name:      RammingSpeed,
			Effect:    EffectBlast,
			Text:      "Any ship that has not fired rams its target for damage equal to its movement.",
			Resources: Resources{Stars: 1, Circles: 1},
			Ramming:   true,
			IsBlast:   true,
		}, 2},
		{ActionCard{
			Name:                ConcussiveBlast,
			Effect:              EffectBlast,
			Text:                "Deals 1 damage. The attacker relocates the target's other ships in that zone.",
			Resources:           Resources{Diamonds: 1},
			Damage:              1,
			RequiredFireControl: FireControlMag,
			Concussive:          true,
			IsBlast:             true,
		}, 2},
		{ActionCard{
			Name:                 Fighter,
			Effect:               EffectSquadron,
			Text:                 "Deals 1 temporary damage. May intercept an incoming squadron.",
			Resources:            Resources{Circles: 1},
			ShipDamage:           1,
			CommandShipDamage:    1,
			TemporaryDamage:      true,
			IsSquadron:           true,
			CanRespondToSquadron: true,
		}, 6},
		{ActionCard{
			Name:              Bomber,
			Effect:            EffectSquadron,
			Text:              "Deals 2 damage to a ship or heavier damage to a command ship.",
			Resources:         Resources{Stars: 1},
			ShipDamage:        2,
			CommandShipDamage: bomberCommandDamage,
			IsSquadron:        true,
		}, 5},
		{ActionCard{
			Name:                 TemporalFlux,
			Effect:               EffectCounter,
			Text:                 "Cancel any action as it is played.",
			Resources:            Resources{Diamonds: 1},
			CanRespondToAnything: true,
		}, fluxCopies},
		{ActionCard{
			Name:              EvasiveAction,
			Effect:            EffectCounter,
			Text:              "Cancel a blast aimed at one of your ships.",
			Resources:         Resources{Circles: 1},
			CanRespondToBlast: true,
		}, 5},
		{ActionCard{
			Name:        DirectHit,
			Effect:      EffectDirectHit,
			Text:        "After a blast hits, the same ship may blast the same target again.",
			Resources:   Resources{Stars: 1},
			IsDirectHit: true,
		}, 3},
		{ActionCard{
			Name:      Asteroids,
			Effect:    EffectAsteroids,
			Text:      "Your fleet cannot be blasted until the beginning of the chosen player's turn.",
			Resources: Resources{Circles: 1},
		}, 2},
		{ActionCard{
			Name:      Minefield,
			Effect:    EffectMinefield,
			Text:      "Squadrons cannot attack your fleet until the beginning of the chosen player's turn.",
			Resources: Resources{Diamonds: 1},
		}, 2},
		{ActionCard{
			Name:      Spacedock,
			Effect:    EffectSpacedock,
			Text:      "Repair the largest hit one of your ships has taken.",
			Resources: Resources{Stars: 1, Circles: 1},
		}, 2},
		{ActionCard{
			Name:      BoardingParty,
			Effect:    EffectBoardingParty,
			Text:      "Take control of an enemy ship and place it in one of your zones.",
			Resources: Resources{Stars: 1},
		}, 2},
	}
}

func blast(name string, damage int, fc FireControl, res Resources) ActionCard {
	return ActionCard{
		Name:                name,
		Effect:              EffectBlast,
		Text:                "Fire from a ship with " + string(fc) + " fire control.",
		Resources:           res,
		Damage:              damage,
		RequiredFireControl: fc,
		IsBlast:             true,
	}
}

func commandShips(flavor Flavor) []CommandShipCard {
	hp := map[CommandShipType]int{
		CraniumConsortium: 10,
		Brotherhood:       12,
		Freep:             10,
		Overseers:         11,
		MuddLords:         14,
		ZetaTriumvirate:   12,
	}
	if flavor == FlavorRebalanced {
		hp[CraniumConsortium] = 9
		hp[Freep] = 11
		hp[Overseers] = 10
		hp[MuddLords] = 13
	}
	two := 2
	return []CommandShipCard{
		{Type: CraniumConsortium, Name: "Cranium Consortium", HP: hp[CraniumConsortium],
			AbilityText: "Discard a full set of resources to draw two action cards.", AbilityActivations: &two},
		{Type: Brotherhood, Name: "Brotherhood", HP: hp[Brotherhood],
			AbilityText: "Move one damage between your own ships."},
		{Type: Freep, Name: "Freep", HP: hp[Freep],
			AbilityText: "Steal two random cards from another player."},
		{Type: Overseers, Name: "Overseers", HP: hp[Overseers],
			AbilityText: "Discard blasts to draw as many action cards."},
		{Type: MuddLords, Name: "Mudd Lords", HP: hp[MuddLords]},
		{Type: ZetaTriumvirate, Name: "Zeta Triumvirate", HP: hp[ZetaTriumvirate]},
	}
}
