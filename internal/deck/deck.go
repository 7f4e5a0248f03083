package deck

import (
	rand "math/rand/v2"
)

const (
	// Size is the number of playable cards in the deck.
	Size = 52

	// HoleCardsPerSeat is the number of private cards dealt to each seat.
	HoleCardsPerSeat = 2

	// BoardSize is the number of community card slots on the table.
	BoardSize = 5

	// Seats is the number of seats dealt before the board.
	Seats = 2

	boardOffset = Seats * HoleCardsPerSeat
)

// Deck is an ordered 52-card deck. Slot positions are meaningful: the first
// four cards belong to the two seats' hole cards and the next five to the
// board, so a single shuffle produces a complete deal.
type Deck struct {
	cards [Size]Card
	rng   *rand.Rand
}

// New creates a shuffled deck drawing from the provided random source.
func New(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}

	i := 0
	for suit := Clubs; suit <= Diamonds; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(suit, rank)
			i++
		}
	}

	d.Shuffle()
	return d
}

// Shuffle permutes the deck in place using Fisher-Yates.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// HoleCards returns a copy of the two cards dealt to the given seat (0 or 1).
func (d *Deck) HoleCards(seat int) []Card {
	start := seat * HoleCardsPerSeat
	cards := make([]Card, HoleCardsPerSeat)
	copy(cards, d.cards[start:start+HoleCardsPerSeat])
	return cards
}

// Board returns a copy of the five community cards for the current deal.
func (d *Deck) Board() []Card {
	cards := make([]Card, BoardSize)
	copy(cards, d.cards[boardOffset:boardOffset+BoardSize])
	return cards
}

// Cards returns a copy of the full deck in its current order.
func (d *Deck) Cards() []Card {
	cards := make([]Card, Size)
	copy(cards, d.cards[:])
	return cards
}
