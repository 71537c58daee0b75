package eventlog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppendAndRender(t *testing.T) {
	l := New()
	l.Append(Player("alice"), Text(" fires "), ActionCard("Laser Blast"), Text(" at "), Player("bob"), Text("'s "), ShipCard("Gunship"), Text("."))
	l.Append(Bold("Welcome!"))

	require.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"alice fires Laser Blast at bob's Gunship.", "Welcome!"}, l.Lines())
	assert.True(t, l.Entries()[0].Mentions("bob"))
	assert.False(t, l.Entries()[1].Mentions("bob"))
}

func TestLogSince(t *testing.T) {
	l := New()
	l.Append(Text("one"))
	l.Append(Text("two"))
	l.Append(Text("three"))

	since := l.Since(1)
	require.Len(t, since, 2)
	assert.Equal(t, "two", since[0].String())
	assert.Nil(t, l.Since(3))
	assert.Len(t, l.Since(-5), 3)
}

func TestEntriesAreCopies(t *testing.T) {
	l := New()
	l.Append(Text("original"))

	entries := l.Entries()
	entries[0] = Entry{Tokens: []Token{Text("changed")}}

	assert.Equal(t, "original", l.Lines()[0])
}

func TestTokenJSON(t *testing.T) {
	data, err := json.Marshal(Entry{Tokens: []Token{Player("p1"), CommandShipCard("Freep")}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tokens":[{"kind":"player","playerId":"p1"},{"kind":"commandShipCard","text":"Freep"}]}`, string(data))
}
