package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/game/eventlog"
	"github.com/magblast/magblast-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const (
	// MinPlayers and MaxPlayers bound the number of participants.
	MinPlayers = 2
	MaxPlayers = 4
	// StartingShipOptions is how many ship cards each player is dealt at setup.
	StartingShipOptions = 6
	// StartingShips is how many of the dealt ships each player keeps.
	StartingShips = 4
	// DefaultHandSize is the hand size used when settings leave it unset.
	DefaultHandSize = 5
)

// AttackMode restricts which opponents a player may attack.
type AttackMode string

const (
	// AttackModeFreeForAll lets a player attack every living opponent.
	AttackModeFreeForAll AttackMode = "FreeForAll"
	// AttackModeNeighbors limits attacks to the living players seated
	// immediately before and after the attacker.
	AttackModeNeighbors AttackMode = "Neighbors"
)

// ParseAttackMode converts a configuration string to an AttackMode.
func ParseAttackMode(s string) (AttackMode, error) {
	switch AttackMode(s) {
	case AttackModeFreeForAll, AttackModeNeighbors:
		return AttackMode(s), nil
	case "":
		return AttackModeFreeForAll, nil
	default:
		return "", fmt.Errorf("unknown attack mode %q", s)
	}
}

// Settings are chosen at game creation and never change.
type Settings struct {
	StartingHandSize int          `json:"startingHandSize"`
	AttackMode       AttackMode   `json:"attackMode"`
	Flavor           cards.Flavor `json:"gameFlavor"`
	// Seed drives every shuffle. Zero picks a time based seed.
	Seed int64 `json:"-"`
}

// DefaultSettings returns the settings used when a lobby does not override them.
func DefaultSettings() Settings {
	return Settings{
		StartingHandSize: DefaultHandSize,
		AttackMode:       AttackModeFreeForAll,
		Flavor:           cards.FlavorOriginal,
	}
}

// Ship is a ship in play.
type Ship struct {
	ID                 string
	Card               cards.ShipCard
	Location           rules.Zone
	Damage             int
	TemporaryDamage    int
	BlastDamageHistory []int
	HasFiredThisTurn   bool
	HasSweptThisTurn   bool
}

// RemainingHP is the ship's effective hit points, clamped at zero.
func (s *Ship) RemainingHP() int {
	return clampHP(s.Card.HP - s.Damage - s.TemporaryDamage)
}

// CommandShip is a player's capital ship.
type CommandShip struct {
	Card               cards.CommandShipCard
	Damage             int
	TemporaryDamage    int
	BlastDamageHistory []int
	// RemainingAbilityActivations is nil when the ability is unlimited.
	RemainingAbilityActivations *int
	AbilityUsedThisTurn         bool
}

// RemainingHP is the command ship's effective hit points, clamped at zero.
func (c *CommandShip) RemainingHP() int {
	return clampHP(c.Card.HP - c.Damage - c.TemporaryDamage)
}

func clampHP(hp int) int {
	if hp < 0 {
		return 0
	}
	return hp
}

// PlayerState is everything a single participant owns.
type PlayerState struct {
	ID                string
	Hand              []cards.ActionCard
	Ships             []*Ship
	CommandShip       *CommandShip
	UsedSquadronCards []cards.ActionCard
	IsAlive           bool
	// AsteroidsUntilBeginningOfPlayerTurn names the player whose next turn
	// ends this player's asteroid field. Empty means no field.
	AsteroidsUntilBeginningOfPlayerTurn string
	MinefieldUntilBeginningOfPlayerTurn string
}

// ShipsInZone counts the player's ships in a zone.
func (p *PlayerState) ShipsInZone(z rules.Zone) int {
	n := 0
	for _, s := range p.Ships {
		if s.Location == z {
			n++
		}
	}
	return n
}

// HasEmptyZone reports whether any of the player's zones is empty.
func (p *PlayerState) HasEmptyZone() bool {
	for _, z := range rules.Zones {
		if p.ShipsInZone(z) == 0 {
			return true
		}
	}
	return false
}

func (p *PlayerState) shipIndex(id string) int {
	for i, s := range p.Ships {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// ShipRef identifies a ship or, with an empty ShipID, a command ship.
type ShipRef struct {
	PlayerID string `json:"playerId"`
	ShipID   string `json:"shipId,omitempty"`
}

// IsCommandShip reports whether the reference points at a command ship.
func (r ShipRef) IsCommandShip() bool {
	return r.ShipID == ""
}

// DirectHitPhase tracks progress of a direct hit sequence.
type DirectHitPhase string

const (
	// DirectHitBlastResolved means a blast just landed and a Direct Hit may follow.
	DirectHitBlastResolved DirectHitPhase = "BlastResolved"
	// DirectHitPlayed means the next blast fires again from the same ship at the same target.
	DirectHitPlayed DirectHitPhase = "DirectHitPlayed"
)

// DirectHitStateMachine follows a chain of blasts and direct hits within one
// attack phase. It is cleared whenever the active player's turn ends.
type DirectHitStateMachine struct {
	Phase        DirectHitPhase
	FiringShipID string
	Target       ShipRef
}

// GameState is the root aggregate of a running game. It is not safe for
// concurrent use; callers serialize ApplyAction per game.
type GameState struct {
	ActivePlayer          string
	PlayerTurnOrder       []string
	PlayerState           map[string]*PlayerState
	TurnState             TurnState
	DirectHitStateMachine *DirectHitStateMachine
	ActionDeck            []cards.ActionCard
	ActionDiscardDeck     []cards.ActionCard
	ShipDeck              []cards.ShipCard
	ShipDiscardDeck       []cards.ShipCard
	TurnNumber            int
	EventLog              *eventlog.Log
	GameSettings          Settings

	catalog    *cards.Catalog
	abilities  *AbilityRegistry
	logger     *zap.Logger
	rng        *rand.Rand
	nextShipID int
}

// Option customizes a new game.
type Option func(*GameState)

// WithAbilities replaces the default command ship ability table.
func WithAbilities(r *AbilityRegistry) Option {
	return func(g *GameState) {
		g.abilities = r
	}
}

// NewGameState creates a game for the given participants: it shuffles the
// decks, assigns command ships, deals starting hands and starting ship options,
// and seeds the event log.
func NewGameState(catalog *cards.Catalog, playerIDs []string, settings Settings, logger *zap.Logger, opts ...Option) (*GameState, error) {
	if catalog == nil {
		return nil, fmt.Errorf("card catalog is required")
	}
	if len(playerIDs) < MinPlayers || len(playerIDs) > MaxPlayers {
		return nil, fmt.Errorf("game needs %d to %d players, got %d", MinPlayers, MaxPlayers, len(playerIDs))
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if id == "" {
			return nil, fmt.Errorf("player id is required")
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate player %q", id)
		}
		seen[id] = true
	}
	if settings.StartingHandSize <= 0 {
		settings.StartingHandSize = DefaultHandSize
	}
	if settings.AttackMode == "" {
		settings.AttackMode = AttackModeFreeForAll
	}
	if settings.Flavor == "" {
		settings.Flavor = cards.FlavorOriginal
	}
	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &GameState{
		PlayerTurnOrder: append([]string(nil), playerIDs...),
		PlayerState:     make(map[string]*PlayerState, len(playerIDs)),
		ActionDeck:      catalog.ActionCards(settings.Flavor),
		ShipDeck:        catalog.ShipCards(settings.Flavor),
		EventLog:        eventlog.New(),
		GameSettings:    settings,
		catalog:         catalog,
		abilities:       DefaultAbilities(),
		logger:          logger,
		rng:             rand.New(rand.NewSource(seed)),
	}
	for _, opt := range opts {
		opt(g)
	}

	commandShips := catalog.CommandShipCards(settings.Flavor)
	if len(commandShips) < len(playerIDs) {
		return nil, fmt.Errorf("flavor %s has %d command ships for %d players", settings.Flavor, len(commandShips), len(playerIDs))
	}
	g.rng.Shuffle(len(commandShips), func(i, j int) { commandShips[i], commandShips[j] = commandShips[j], commandShips[i] })
	g.shuffleActionDeck()
	g.shuffleShipDeck()

	options := make(map[string][]cards.ShipCard, len(playerIDs))
	for i, id := range playerIDs {
		cs := &CommandShip{Card: commandShips[i]}
		if commandShips[i].AbilityActivations != nil {
			n := *commandShips[i].AbilityActivations
			cs.RemainingAbilityActivations = &n
		}
		p := &PlayerState{
			ID:          id,
			Hand:        make([]cards.ActionCard, 0, settings.StartingHandSize),
			CommandShip: cs,
			IsAlive:     true,
		}
		g.PlayerState[id] = p
		for n := 0; n < settings.StartingHandSize; n++ {
			if c, ok := g.drawActionCard(); ok {
				p.Hand = append(p.Hand, c)
			}
		}
		for n := 0; n < StartingShipOptions; n++ {
			if s, ok := g.drawShipCard(); ok {
				options[id] = append(options[id], s)
			}
		}
	}
	g.TurnState = newChooseStartingShipsState(options)
	g.ActivePlayer = playerIDs[0]

	g.logWelcome()
	g.logger.Info("game created",
		zap.Strings("players", playerIDs),
		zap.String("flavor", string(settings.Flavor)),
		zap.String("attack_mode", string(settings.AttackMode)),
		zap.Int64("seed", seed),
	)
	return g, nil
}

// Catalog returns the card catalog the game was created with.
func (g *GameState) Catalog() *cards.Catalog {
	return g.catalog
}

// Player returns the state of a participant.
func (g *GameState) Player(id string) (*PlayerState, bool) {
	p, ok := g.PlayerState[id]
	return p, ok
}

// mustPlayer returns a participant that the engine itself referenced.
// A miss means the game state is corrupt.
func (g *GameState) mustPlayer(id string) *PlayerState {
	p, ok := g.PlayerState[id]
	if !ok {
		panic(&InvariantError{Message: fmt.Sprintf("player %q missing from game state", id)})
	}
	return p
}

// AlivePlayers returns living players in turn order.
func (g *GameState) AlivePlayers() []string {
	out := make([]string, 0, len(g.PlayerTurnOrder))
	for _, id := range g.PlayerTurnOrder {
		if g.mustPlayer(id).IsAlive {
			out = append(out, id)
		}
	}
	return out
}

// Winner returns the last player alive once the game is decided.
func (g *GameState) Winner() (string, bool) {
	alive := g.AlivePlayers()
	if len(alive) == 1 {
		return alive[0], true
	}
	return "", false
}

// playersAfter lists the other living players in turn order, starting after id.
func (g *GameState) playersAfter(id string) []string {
	start := 0
	for i, p := range g.PlayerTurnOrder {
		if p == id {
			start = i
			break
		}
	}
	n := len(g.PlayerTurnOrder)
	out := make([]string, 0, n-1)
	for k := 1; k < n; k++ {
		p := g.PlayerTurnOrder[(start+k)%n]
		if g.mustPlayer(p).IsAlive {
			out = append(out, p)
		}
	}
	return out
}

// findShip resolves a ship id to its owner and index.
func (g *GameState) findShip(id string) (*PlayerState, int, *Ship) {
	for _, pid := range g.PlayerTurnOrder {
		p := g.mustPlayer(pid)
		if i := p.shipIndex(id); i >= 0 {
			return p, i, p.Ships[i]
		}
	}
	return nil, -1, nil
}

// targetExists reports whether a ship reference still points at something in play.
func (g *GameState) targetExists(ref ShipRef) bool {
	p, ok := g.PlayerState[ref.PlayerID]
	if !ok || !p.IsAlive {
		return false
	}
	if ref.IsCommandShip() {
		return true
	}
	return p.shipIndex(ref.ShipID) >= 0
}

func (g *GameState) newShip(card cards.ShipCard, zone rules.Zone) *Ship {
	g.nextShipID++
	return &Ship{
		ID:       fmt.Sprintf("ship-%d", g.nextShipID),
		Card:     card,
		Location: zone,
	}
}

func (g *GameState) shuffleActionDeck() {
	g.rng.Shuffle(len(g.ActionDeck), func(i, j int) { g.ActionDeck[i], g.ActionDeck[j] = g.ActionDeck[j], g.ActionDeck[i] })
}

func (g *GameState) shuffleShipDeck() {
	g.rng.Shuffle(len(g.ShipDeck), func(i, j int) { g.ShipDeck[i], g.ShipDeck[j] = g.ShipDeck[j], g.ShipDeck[i] })
}

// drawActionCard takes the top action card, reshuffling the discard pile into
// the deck when the deck runs out.
func (g *GameState) drawActionCard() (cards.ActionCard, bool) {
	if len(g.ActionDeck) == 0 && len(g.ActionDiscardDeck) > 0 {
		g.ActionDeck, g.ActionDiscardDeck = g.ActionDiscardDeck, nil
		g.shuffleActionDeck()
		g.logger.Debug("reshuffled action discard pile", zap.Int("cards", len(g.ActionDeck)))
	}
	if len(g.ActionDeck) == 0 {
		return cards.ActionCard{}, false
	}
	c := g.ActionDeck[len(g.ActionDeck)-1]
	g.ActionDeck = g.ActionDeck[:len(g.ActionDeck)-1]
	return c, true
}

// drawShipCard is drawActionCard for the ship deck.
func (g *GameState) drawShipCard() (cards.ShipCard, bool) {
	if len(g.ShipDeck) == 0 && len(g.ShipDiscardDeck) > 0 {
		g.ShipDeck, g.ShipDiscardDeck = g.ShipDiscardDeck, nil
		g.shuffleShipDeck()
		g.logger.Debug("reshuffled ship discard pile", zap.Int("cards", len(g.ShipDeck)))
	}
	if len(g.ShipDeck) == 0 {
		return cards.ShipCard{}, false
	}
	c := g.ShipDeck[len(g.ShipDeck)-1]
	g.ShipDeck = g.ShipDeck[:len(g.ShipDeck)-1]
	return c, true
}

func (g *GameState) shipsAvailable() bool {
	return len(g.ShipDeck)+len(g.ShipDiscardDeck) > 0
}

// drawUpTo fills a hand to the game's hand size.
func (g *GameState) drawUpTo(p *PlayerState) int {
	drawn := 0
	for len(p.Hand) < g.GameSettings.StartingHandSize {
		c, ok := g.drawActionCard()
		if !ok {
			break
		}
		p.Hand = append(p.Hand, c)
		drawn++
	}
	return drawn
}

// validIndices checks that indices are distinct and address the slice.
func validIndices(indices []int, length int) bool {
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= length || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

// pickCards returns the cards at the given hand indices without removing them.
func pickCards(hand []cards.ActionCard, indices []int) []cards.ActionCard {
	out := make([]cards.ActionCard, len(indices))
	for i, idx := range indices {
		out[i] = hand[idx]
	}
	return out
}

// removeCards removes the cards at the given indices from a hand. Indices must
// already be validated.
func removeCards(hand []cards.ActionCard, indices []int) []cards.ActionCard {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}
	out := make([]cards.ActionCard, 0, len(hand)-len(indices))
	for i, c := range hand {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}

// removeLast deletes the last copy of a card from a pile.
func removeLast(pile []cards.ActionCard, name string) ([]cards.ActionCard, bool) {
	for i := len(pile) - 1; i >= 0; i-- {
		if pile[i].Name == name {
			return append(pile[:i], pile[i+1:]...), true
		}
	}
	return pile, false
}
