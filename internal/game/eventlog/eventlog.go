// Package eventlog records the human-readable history of a game as structured
// tokens, so a client can render player and card references as rich links.
package eventlog

import "strings"

// TokenKind tags a log token.
type TokenKind string

const (
	KindText            TokenKind = "text"
	KindPlayer          TokenKind = "player"
	KindShipCard        TokenKind = "shipCard"
	KindCommandShipCard TokenKind = "commandShipCard"
	KindActionCard      TokenKind = "actionCard"
)

// Token is one segment of a log entry.
type Token struct {
	Kind TokenKind `json:"kind"`
	// Text holds literal text for KindText and the card name for card references.
	Text     string `json:"text,omitempty"`
	Bold     bool   `json:"bold,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
}

// Text returns a plain text token.
func Text(s string) Token { return Token{Kind: KindText, Text: s} }

// Bold returns an emphasized text token.
func Bold(s string) Token { return Token{Kind: KindText, Text: s, Bold: true} }

// Player returns a player reference.
func Player(id string) Token { return Token{Kind: KindPlayer, PlayerID: id} }

// ShipCard returns a ship card reference.
func ShipCard(name string) Token { return Token{Kind: KindShipCard, Text: name} }

// CommandShipCard returns a command ship card reference.
func CommandShipCard(name string) Token { return Token{Kind: KindCommandShipCard, Text: name} }

// ActionCard returns an action card reference.
func ActionCard(name string) Token { return Token{Kind: KindActionCard, Text: name} }

// String renders the token as plain text.
func (t Token) String() string {
	if t.Kind == KindPlayer {
		return t.PlayerID
	}
	return t.Text
}

// Entry is one line of game history.
type Entry struct {
	Tokens []Token `json:"tokens"`
}

// String renders the entry as plain text.
func (e Entry) String() string {
	var b strings.Builder
	for _, t := range e.Tokens {
		b.WriteString(t.String())
	}
	return b.String()
}

// Mentions reports whether the entry references the given player.
func (e Entry) Mentions(playerID string) bool {
	for _, t := range e.Tokens {
		if t.Kind == KindPlayer && t.PlayerID == playerID {
			return true
		}
	}
	return false
}

// Log is an append-only sequence of entries. It is owned by a single game and
// is not safe for concurrent use.
type Log struct {
	entries []Entry
}

// New creates an empty log.
func New() *Log {
	return &Log{entries: make([]Entry, 0, 64)}
}

// Append adds an entry built from tokens.
func (l *Log) Append(tokens ...Token) {
	l.entries = append(l.entries, Entry{Tokens: append([]Token(nil), tokens...)})
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns the entries appended after the first n.
func (l *Log) Since(n int) []Entry {
	if n < 0 {
		n = 0
	}
	if n >= len(l.entries) {
		return nil
	}
	out := make([]Entry, len(l.entries)-n)
	copy(out, l.entries[n:])
	return out
}

// Lines renders every entry as plain text.
func (l *Log) Lines() []string {
	lines := make([]string, len(l.entries))
	for i, e := range l.entries {
		lines[i] = e.String()
	}
	return lines
}
