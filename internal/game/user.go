package game

import (
	"strings"

	"github.com/lox/headsup/internal/deck"
)

// User is the canonical per-player record. The authoritative process owns
// it; clients only ever hold snapshots. Bets and BetProcessed are parallel
// lists: one entry per bet placed this stage, with the flag marking whether
// the bet has been applied to the pot.
type User struct {
	Key          string      `json:"key"`
	Name         string      `json:"name"`
	Cash         int         `json:"cash"`
	Bets         []int       `json:"bets"`
	BetProcessed []bool      `json:"betProcessed"`
	HasAddedBet  bool        `json:"hasAddedBet"`
	HasBetted    bool        `json:"hasBetted"`
	HasFolded    bool        `json:"hasFolded"`
	HasLostRound bool        `json:"hasLostRound"`
	HasLostGame  bool        `json:"hasLostGame"`
	HoleCards    []deck.Card `json:"holeCards"`
}

// NewUser creates a user with the given stable key. Names are upper-cased
// for display parity between both clients.
func NewUser(key, name string, cash int) *User {
	if name == "" {
		name = "User"
	}
	return &User{
		Key:  key,
		Name: strings.ToUpper(name),
		Cash: cash,
	}
}

// TotalBet sums every bet placed this stage, processed or not.
func (u *User) TotalBet() int {
	total := 0
	for _, b := range u.Bets {
		total += b
	}
	return total
}

// LastBetProcessed reports whether the most recent bet has been applied to
// the pot. An empty bet list counts as processed.
func (u *User) LastBetProcessed() bool {
	return len(u.BetProcessed) == 0 || u.BetProcessed[len(u.BetProcessed)-1]
}

// AllBetsProcessed reports whether every bet this stage has been applied.
func (u *User) AllBetsProcessed() bool {
	for _, processed := range u.BetProcessed {
		if !processed {
			return false
		}
	}
	return true
}

// Clone returns a deep value copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.Bets = append([]int(nil), u.Bets...)
	c.BetProcessed = append([]bool(nil), u.BetProcessed...)
	c.HoleCards = append([]deck.Card(nil), u.HoleCards...)
	return &c
}

// Redacted returns a copy safe to show the opponent: every hole card is
// replaced by the face-down sentinel.
func (u *User) Redacted() *User {
	c := u.Clone()
	for i := range c.HoleCards {
		c.HoleCards[i] = deck.FaceDownCard
	}
	return c
}

// resetStage clears the per-stage betting state after a board reveal.
func (u *User) resetStage() {
	u.Bets = nil
	u.BetProcessed = nil
	u.HasBetted = false
}
