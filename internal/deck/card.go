package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit. FaceDown and Joker are sentinel suits used for
// hidden or unused card slots; they never take part in hand evaluation.
type Suit int

const (
	Clubs Suit = iota
	Spades
	Hearts
	Diamonds
	FaceDown
	Joker
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case FaceDown:
		return "▒"
	case Joker:
		return "☆"
	default:
		return "?"
	}
}

// IsSentinel reports whether the suit is a placeholder rather than a playable suit.
func (s Suit) IsSentinel() bool {
	return s == FaceDown || s == Joker
}

// Rank represents a card rank. None is the rank carried by sentinel cards.
// Aces are high (14).
type Rank int

const (
	None Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card. Cards are immutable values; identity is the
// (suit, rank) pair.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// FaceDownCard is sent in place of any card the recipient must not see.
var FaceDownCard = Card{Suit: FaceDown, Rank: None}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsFaceDown reports whether the card is the hidden-slot sentinel.
func (c Card) IsFaceDown() bool {
	return c.Suit == FaceDown
}

// Parse parses a two-character card like "As" or "Tc". Suit letters are
// c/s/h/d; rank letters follow Rank.String.
func Parse(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	var rank Rank
	switch strings.ToUpper(s[:1]) {
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid rank %q", s[:1])
	}

	var suit Suit
	switch strings.ToLower(s[1:]) {
	case "c":
		suit = Clubs
	case "s":
		suit = Spades
	case "h":
		suit = Hearts
	case "d":
		suit = Diamonds
	default:
		return Card{}, fmt.Errorf("invalid suit %q", s[1:])
	}

	return Card{Suit: suit, Rank: rank}, nil
}
