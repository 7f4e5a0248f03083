package game

import (
	"testing"

	"github.com/lox/headsup/internal/deck"
	"github.com/lox/headsup/internal/randutil"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	return NewState(deck.New(randutil.New(42)), 1000)
}

func TestRegisterDealsHoleCards(t *testing.T) {
	s := newTestState(t)

	a, err := s.Register("key-a", "alice")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Register("key-b", "bob")
	if err != nil {
		t.Fatal(err)
	}

	if len(a.HoleCards) != deck.HoleCardsPerSeat || len(b.HoleCards) != deck.HoleCardsPerSeat {
		t.Fatalf("hole cards = %d/%d, want %d each", len(a.HoleCards), len(b.HoleCards), deck.HoleCardsPerSeat)
	}
	for _, c := range a.HoleCards {
		for _, d := range b.HoleCards {
			if c == d {
				t.Fatalf("card %s dealt to both seats", c)
			}
		}
	}
	if a.Name != "ALICE" {
		t.Errorf("name = %q, want upper-cased", a.Name)
	}
}

func TestRegisterRejectsThirdSeat(t *testing.T) {
	s := newTestState(t)

	if _, err := s.Register("key-a", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register("key-b", "bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register("key-c", "carol"); err != ErrTableFull {
		t.Fatalf("err = %v, want ErrTableFull", err)
	}
}

func TestMergeKeepsAuthoritativeFields(t *testing.T) {
	s := newTestState(t)
	u, err := s.Register("key-a", "alice")
	if err != nil {
		t.Fatal(err)
	}

	delta := u.Clone()
	delta.Cash = 999999
	delta.HoleCards = cards(t, "As", "Ah")
	delta.HasLostRound = false
	delta.HasLostGame = false
	delta.Bets = []int{50}
	delta.BetProcessed = []bool{false}
	delta.HasBetted = true

	u.HasLostRound = true
	origCards := append([]deck.Card(nil), u.HoleCards...)

	merged, ok := s.Merge(delta)
	if !ok {
		t.Fatal("merge failed for a registered key")
	}

	if merged.Cash != 1000 {
		t.Errorf("cash = %d, want the canonical 1000", merged.Cash)
	}
	for i := range origCards {
		if merged.HoleCards[i] != origCards[i] {
			t.Fatal("hole cards overwritten by the delta")
		}
	}
	if !merged.HasLostRound {
		t.Error("HasLostRound overwritten by the delta")
	}
	if !merged.HasBetted || len(merged.Bets) != 1 || merged.Bets[0] != 50 {
		t.Error("client-owned betting fields not taken from the delta")
	}
}

func TestMergeKeepsCanonicalNameCasing(t *testing.T) {
	s := newTestState(t)
	u, err := s.Register("key-a", "alice")
	if err != nil {
		t.Fatal(err)
	}

	// Client deltas carry the raw name the player typed; the canonical
	// record keeps the casing Register applied.
	delta := u.Clone()
	delta.Name = "alice"

	merged, ok := s.Merge(delta)
	if !ok {
		t.Fatal("merge failed for a registered key")
	}
	if merged.Name != "ALICE" {
		t.Errorf("name = %q, want the registered casing", merged.Name)
	}
}

func TestMergeUnknownKey(t *testing.T) {
	s := newTestState(t)

	if _, ok := s.Merge(NewUser("ghost", "ghost", 0)); ok {
		t.Fatal("merge accepted an unregistered key")
	}
}

func TestResetRoundRedeals(t *testing.T) {
	s := newTestState(t)
	a, _ := s.Register("key-a", "alice")
	b, _ := s.Register("key-b", "bob")

	before := append([]deck.Card(nil), s.Table.Cards...)
	a.HasFolded = true
	a.HasLostRound = true
	b.Bets = []int{10}
	b.BetProcessed = []bool{true}
	b.HasBetted = true
	s.Table.ActiveCards = deck.BoardSize
	s.Table.Pot = 7

	s.ResetRound()

	if s.Table.ActiveCards != 0 {
		t.Errorf("ActiveCards = %d, want 0", s.Table.ActiveCards)
	}
	if s.Table.Pot != 7 {
		t.Errorf("pot = %d, want carried across the round reset", s.Table.Pot)
	}
	if a.HasFolded || a.HasLostRound || b.HasBetted || len(b.Bets) != 0 {
		t.Error("round flags survived the reset")
	}

	same := true
	for i := range before {
		if s.Table.Cards[i] != before[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("board identical after reshuffle")
	}
}

func TestResetGameRestoresStacks(t *testing.T) {
	s := newTestState(t)
	a, _ := s.Register("key-a", "alice")
	a.Cash = 0
	a.HasLostGame = true
	s.Table.Pot = 123

	s.ResetGame()

	if a.Cash != 1000 {
		t.Errorf("cash = %d, want the default stack", a.Cash)
	}
	if s.Table.Pot != 0 {
		t.Errorf("pot = %d, want 0", s.Table.Pot)
	}
	if a.HasLostGame {
		t.Error("HasLostGame survived the game reset")
	}
}

func TestUserRedaction(t *testing.T) {
	u := NewUser("k", "alice", 1000)
	u.HoleCards = []deck.Card{
		{Suit: deck.Spades, Rank: deck.Ace},
		{Suit: deck.Hearts, Rank: deck.King},
	}

	r := u.Redacted()

	for _, c := range r.HoleCards {
		if !c.IsFaceDown() {
			t.Fatalf("redacted hole card %s still visible", c)
		}
	}
	if u.HoleCards[0].IsFaceDown() {
		t.Fatal("original mutated by redaction")
	}
	if r.Cash != u.Cash || r.Name != u.Name {
		t.Error("redaction should only touch hole cards")
	}
}

func TestTableRedaction(t *testing.T) {
	s := newTestState(t)
	s.Table.ActiveCards = 3

	r := s.Table.Redacted()

	for i := 0; i < 3; i++ {
		if r.Cards[i].IsFaceDown() {
			t.Errorf("revealed slot %d redacted", i)
		}
	}
	for i := 3; i < deck.BoardSize; i++ {
		if !r.Cards[i].IsFaceDown() {
			t.Errorf("unrevealed slot %d leaked %s", i, r.Cards[i])
		}
	}
}

func TestTableRedactionBoundaries(t *testing.T) {
	s := newTestState(t)

	s.Table.ActiveCards = 0
	for i, c := range s.Table.Redacted().Cards {
		if !c.IsFaceDown() {
			t.Errorf("slot %d visible with nothing revealed", i)
		}
	}

	s.Table.ActiveCards = deck.BoardSize
	for i, c := range s.Table.Redacted().Cards {
		if c.IsFaceDown() {
			t.Errorf("slot %d hidden with the full board out", i)
		}
	}
}
