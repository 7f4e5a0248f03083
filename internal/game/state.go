package game

import (
	"errors"

	"github.com/lox/headsup/internal/deck"
)

// MaxUsers is fixed at two seats; the round engine's stage-advance rules
// assume heads-up play.
const MaxUsers = 2

// ErrTableFull is returned when a third key tries to register.
var ErrTableFull = errors.New("table is full")

// State is the single owner of all canonical game state: both users, the
// table and the deck. All mutation happens through its methods, on the
// authoritative process's run loop.
type State struct {
	Users       []*User
	Table       *Table
	Deck        *deck.Deck
	DefaultCash int
}

// NewState creates canonical state around a freshly shuffled deck.
func NewState(d *deck.Deck, defaultCash int) *State {
	s := &State{
		Table:       NewTable(),
		Deck:        d,
		DefaultCash: defaultCash,
	}
	s.dealBoard()
	return s
}

func (s *State) dealBoard() {
	copy(s.Table.Cards, s.Deck.Board())
}

// UserByKey returns the canonical user for a key, or nil.
func (s *State) UserByKey(key string) *User {
	for _, u := range s.Users {
		if u.Key == key {
			return u
		}
	}
	return nil
}

// Register creates a canonical user for a previously unseen key and deals
// its hole cards from the seat's fixed deck slots.
func (s *State) Register(key, name string) (*User, error) {
	if len(s.Users) >= MaxUsers {
		return nil, ErrTableFull
	}

	u := NewUser(key, name, s.DefaultCash)
	u.HoleCards = s.Deck.HoleCards(len(s.Users))
	s.Users = append(s.Users, u)
	return u, nil
}

// Merge folds a client-submitted delta into the canonical user with the
// same key. Cash, hole cards and the round/game outcome flags stay
// server-authoritative so a client can never smuggle chips or cards. The
// name keeps the casing Register gave it.
// Reports false when no user with that key exists.
func (s *State) Merge(delta *User) (*User, bool) {
	u := s.UserByKey(delta.Key)
	if u == nil {
		return nil, false
	}

	next := delta.Clone()
	next.Name = u.Name
	next.Cash = u.Cash
	next.HoleCards = u.HoleCards
	next.HasLostRound = u.HasLostRound
	next.HasLostGame = u.HasLostGame
	*u = *next
	return u, true
}

// ResetRound reshuffles, re-deals both seats and the board, and clears all
// per-round flags. The pot is left alone: an odd split leaves its remainder
// for the next round.
func (s *State) ResetRound() {
	s.Deck.Shuffle()

	for i, u := range s.Users {
		u.Bets = nil
		u.BetProcessed = nil
		u.HasAddedBet = false
		u.HasBetted = false
		u.HasFolded = false
		u.HasLostRound = false
		u.HasLostGame = false
		u.HoleCards = s.Deck.HoleCards(i)
	}

	s.Table.ActiveCards = 0
	s.dealBoard()
}

// ResetGame starts the game over: fresh round, every stack back to the
// default, pot cleared.
func (s *State) ResetGame() {
	s.ResetRound()
	s.Table.Pot = 0
	for _, u := range s.Users {
		u.Cash = s.DefaultCash
	}
}
