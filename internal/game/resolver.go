package game

import (
	"sort"

	"github.com/lox/headsup/internal/deck"
)

// HandCategory ranks the strength of a poker hand. The numeric order is a
// documented invariant: a higher value always beats a lower one.
type HandCategory int

const (
	NoHand HandCategory = iota
	HighCard
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable hand description
func (h HandCategory) String() string {
	switch h {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// Resolver determines the best five-card hand available in a player's hole
// cards combined with the board, keeping the constituent cards and the
// ordered kickers needed for tie-breaking.
type Resolver struct {
	Category  HandCategory
	BestCards []deck.Card // cards forming the hand, descending by rank
	Kickers   []deck.Card // remaining cards, descending, tie-breaks only

	cards      []deck.Card // all candidates, descending by rank
	rankCounts map[deck.Rank]int
	suitCounts map[deck.Suit]int
}

// NewResolver combines hole and community cards. Callers must supply at
// least five playable cards; sentinel cards are a caller bug.
func NewResolver(holeCards, communityCards []deck.Card) *Resolver {
	cards := make([]deck.Card, 0, len(holeCards)+len(communityCards))
	cards = append(cards, holeCards...)
	cards = append(cards, communityCards...)
	sort.Slice(cards, func(i, j int) bool { return cards[i].Rank > cards[j].Rank })

	r := &Resolver{
		cards:      cards,
		rankCounts: make(map[deck.Rank]int),
		suitCounts: make(map[deck.Suit]int),
	}
	for _, c := range cards {
		r.rankCounts[c.Rank]++
		r.suitCounts[c.Suit]++
	}
	return r
}

// Resolve walks every category from weakest to strongest so that Category,
// BestCards and Kickers always describe the strongest hand present.
func (r *Resolver) Resolve() {
	r.checkHighCard()
	r.checkPair()
	r.checkTwoPair()
	r.checkThreeOfAKind()
	r.checkStraight()
	r.checkFlush()
	r.checkFullHouse()
	r.checkFourOfAKind()
	r.checkStraightFlush()
	r.checkRoyalFlush()

	sortDescending(r.BestCards)
	sortDescending(r.Kickers)
}

func (r *Resolver) checkHighCard() {
	r.Category = HighCard
	r.BestCards = append([]deck.Card(nil), r.cards[:1]...)
	r.Kickers = r.kickersExcluding(r.BestCards, 4)
}

func (r *Resolver) checkPair() {
	rank, ok := r.highestRankWithCount(2)
	if !ok {
		return
	}

	r.Category = Pair
	r.BestCards = r.cardsOfRank(rank, 2)
	r.Kickers = r.kickersExcluding(r.BestCards, 3)
}

func (r *Resolver) checkTwoPair() {
	high, ok := r.highestRankWithCount(2)
	if !ok {
		return
	}
	low, ok := r.highestRankWithCount(2, high)
	if !ok {
		return
	}

	r.Category = TwoPair
	r.BestCards = append(r.cardsOfRank(high, 2), r.cardsOfRank(low, 2)...)
	r.Kickers = r.kickersExcluding(r.BestCards, 1)
}

func (r *Resolver) checkThreeOfAKind() {
	rank, ok := r.highestRankWithCount(3)
	if !ok {
		return
	}

	r.Category = ThreeOfAKind
	r.BestCards = r.cardsOfRank(rank, 3)
	r.Kickers = r.kickersExcluding(r.BestCards, 2)
}

func (r *Resolver) checkStraight() {
	run, ok := r.straight(deck.FaceDown)
	if !ok {
		return
	}

	r.Category = Straight
	r.BestCards = run
	r.Kickers = nil
}

func (r *Resolver) checkFlush() {
	suit, ok := r.flushSuit()
	if !ok {
		return
	}

	r.Category = Flush
	r.BestCards = r.cardsOfSuit(suit, 5)
	r.Kickers = nil
}

func (r *Resolver) checkFullHouse() {
	trips, ok := r.highestRankWithCount(3)
	if !ok {
		return
	}
	// The pair may itself be a second triplet reduced to two cards.
	pair, ok := r.highestRankWithCount(2, trips)
	if !ok {
		return
	}

	r.Category = FullHouse
	r.BestCards = append(r.cardsOfRank(trips, 3), r.cardsOfRank(pair, 2)...)
	r.Kickers = nil
}

func (r *Resolver) checkFourOfAKind() {
	rank, ok := r.highestRankWithCount(4)
	if !ok {
		return
	}

	r.Category = FourOfAKind
	r.BestCards = r.cardsOfRank(rank, 4)
	r.Kickers = r.kickersExcluding(r.BestCards, 1)
}

func (r *Resolver) checkStraightFlush() {
	suit, ok := r.flushSuit()
	if !ok {
		return
	}
	run, ok := r.straight(suit)
	if !ok {
		return
	}

	r.Category = StraightFlush
	r.BestCards = run
	r.Kickers = nil
}

func (r *Resolver) checkRoyalFlush() {
	if r.Category != StraightFlush {
		return
	}

	var hasAce, hasTen bool
	for _, c := range r.BestCards {
		switch c.Rank {
		case deck.Ace:
			hasAce = true
		case deck.Ten:
			hasTen = true
		}
	}
	if hasAce && hasTen {
		r.Category = RoyalFlush
	}
}

// highestRankWithCount returns the highest rank held at least n times,
// skipping excluded ranks.
func (r *Resolver) highestRankWithCount(n int, exclude ...deck.Rank) (deck.Rank, bool) {
	for rank := deck.Ace; rank >= deck.Two; rank-- {
		if r.rankCounts[rank] < n {
			continue
		}
		excluded := false
		for _, ex := range exclude {
			if rank == ex {
				excluded = true
				break
			}
		}
		if !excluded {
			return rank, true
		}
	}
	return deck.None, false
}

// cardsOfRank returns up to n cards of the given rank.
func (r *Resolver) cardsOfRank(rank deck.Rank, n int) []deck.Card {
	var cards []deck.Card
	for _, c := range r.cards {
		if c.Rank != rank {
			continue
		}
		cards = append(cards, c)
		if len(cards) == n {
			break
		}
	}
	return cards
}

// cardsOfSuit returns the top n cards of the given suit by rank.
func (r *Resolver) cardsOfSuit(suit deck.Suit, n int) []deck.Card {
	var cards []deck.Card
	for _, c := range r.cards {
		if c.Suit != suit {
			continue
		}
		cards = append(cards, c)
		if len(cards) == n {
			break
		}
	}
	return cards
}

// kickersExcluding returns the top n cards not already used in the hand.
func (r *Resolver) kickersExcluding(used []deck.Card, n int) []deck.Card {
	isUsed := make(map[deck.Card]bool, len(used))
	for _, c := range used {
		isUsed[c] = true
	}

	var kickers []deck.Card
	for _, c := range r.cards {
		if isUsed[c] {
			continue
		}
		kickers = append(kickers, c)
		if len(kickers) == n {
			break
		}
	}
	return kickers
}

func (r *Resolver) flushSuit() (deck.Suit, bool) {
	for suit := deck.Clubs; suit <= deck.Diamonds; suit++ {
		if r.suitCounts[suit] >= 5 {
			return suit, true
		}
	}
	return deck.FaceDown, false
}

// straight scans ranks Two..Ace tracking runs of consecutive present ranks.
// A FaceDown suit filter means any suit; a real suit restricts the scan to
// that suit (the straight-flush case). The Ace additionally plays low to
// complete the five-high straight. The run ending at the highest rank wins.
func (r *Resolver) straight(suitFilter deck.Suit) ([]deck.Card, bool) {
	runs := [][]deck.Card{nil}
	for rank := deck.Two; rank <= deck.Ace; rank++ {
		if card, ok := r.cardAt(rank, suitFilter); ok {
			runs[len(runs)-1] = append(runs[len(runs)-1], card)
		} else {
			runs = append(runs, nil)
		}

		// Ace plays low: with 2-3-4-5 present, prepend it as rank one.
		if rank == deck.Five && len(runs[len(runs)-1]) == 4 {
			if ace, ok := r.cardAt(deck.Ace, suitFilter); ok {
				runs[len(runs)-1] = append([]deck.Card{ace}, runs[len(runs)-1]...)
			}
		}
	}

	best := -1
	for i, run := range runs {
		if len(run) < 5 {
			continue
		}
		if best == -1 || run[len(run)-1].Rank > runs[best][len(runs[best])-1].Rank {
			best = i
		}
	}
	if best == -1 {
		return nil, false
	}

	run := runs[best]
	return append([]deck.Card(nil), run[len(run)-5:]...), true
}

func (r *Resolver) cardAt(rank deck.Rank, suitFilter deck.Suit) (deck.Card, bool) {
	for _, c := range r.cards {
		if c.Rank != rank {
			continue
		}
		if suitFilter != deck.FaceDown && c.Suit != suitFilter {
			continue
		}
		return c, true
	}
	return deck.Card{}, false
}

func sortDescending(cards []deck.Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i].Rank > cards[j].Rank })
}

// Compare reports which resolved hand wins: 1 if a beats b, -1 if b beats a,
// 0 for a split. Equal categories fall through to the hand's top card (Two
// Pair compares the high pair then the low pair; a Royal Flush is always a
// push) and finally to the kickers, element by element.
func Compare(a, b *Resolver) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}

	switch a.Category {
	case RoyalFlush:
		return 0
	case TwoPair:
		if c := compareRanks(a.BestCards[0].Rank, b.BestCards[0].Rank); c != 0 {
			return c
		}
		if c := compareRanks(a.BestCards[2].Rank, b.BestCards[2].Rank); c != 0 {
			return c
		}
	default:
		if c := compareRanks(a.BestCards[0].Rank, b.BestCards[0].Rank); c != 0 {
			return c
		}
	}

	for i := 0; i < len(a.Kickers) && i < len(b.Kickers); i++ {
		if c := compareRanks(a.Kickers[i].Rank, b.Kickers[i].Rank); c != 0 {
			return c
		}
	}
	return 0
}

func compareRanks(a, b deck.Rank) int {
	if a > b {
		return 1
	}
	if a < b {
		return -1
	}
	return 0
}
