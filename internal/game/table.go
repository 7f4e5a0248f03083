package game

import (
	"github.com/lox/headsup/internal/deck"
)

// Table holds the shared side of the game: five community card slots, the
// pot, and how many of the slots are currently revealed. There is no hidden
// information beyond ActiveCards; unrevealed slots simply don't exist yet
// from the clients' point of view.
type Table struct {
	Cards       []deck.Card `json:"cards"`
	Pot         int         `json:"pot"`
	ActiveCards int         `json:"activeCards"`
}

// NewTable creates an empty table with face-down slots.
func NewTable() *Table {
	cards := make([]deck.Card, deck.BoardSize)
	for i := range cards {
		cards[i] = deck.FaceDownCard
	}
	return &Table{Cards: cards}
}

// Revealed returns the community cards currently visible.
func (t *Table) Revealed() []deck.Card {
	return t.Cards[:t.ActiveCards]
}

// Clone returns a deep value copy of the table.
func (t *Table) Clone() *Table {
	c := *t
	c.Cards = append([]deck.Card(nil), t.Cards...)
	return &c
}

// Redacted returns a copy with every slot beyond ActiveCards replaced by the
// face-down sentinel. Applied for all recipients equally.
func (t *Table) Redacted() *Table {
	c := t.Clone()
	for i := t.ActiveCards; i < len(c.Cards); i++ {
		c.Cards[i] = deck.FaceDownCard
	}
	return c
}
