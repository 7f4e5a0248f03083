package game

import (
	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/deck"
)

// Engine advances the round once per tick. It mutates canonical state
// through the State it was given and records what changed in its flags;
// broadcasting is the caller's concern, the engine never sends messages.
type Engine struct {
	state  *State
	logger *log.Logger

	// RoundEnded is true from settlement until the next tick resets the round.
	RoundEnded bool

	// TableChanged and UsersChanged are rewritten on every Tick and consumed
	// by the synchronization layer to decide what to rebroadcast.
	TableChanged bool
	UsersChanged bool
}

// NewEngine creates a round engine over the given canonical state.
func NewEngine(state *State, logger *log.Logger) *Engine {
	return &Engine{
		state:  state,
		logger: logger.WithPrefix("engine"),
	}
}

// Tick runs one pass of the round state machine. Safe to call every tick:
// bet ingestion is idempotent per bet entry and every other step no-ops
// until its inputs change.
func (e *Engine) Tick() {
	e.TableChanged = false
	e.UsersChanged = false

	if e.RoundEnded {
		// The settled round was broadcast on the previous tick; start the
		// next one.
		e.nextRound()
		return
	}

	e.ingestBets()

	if e.anyUserFolded() {
		e.RoundEnded = true
		e.state.Table.ActiveCards = deck.BoardSize
	} else if !e.stageComplete() {
		return
	}

	e.advanceBoard()

	if e.RoundEnded {
		e.settle()
	}
}

// ingestBets moves each user's unprocessed latest bet from cash into the
// pot. The processed flag prevents double application.
func (e *Engine) ingestBets() {
	for _, u := range e.state.Users {
		if !u.HasBetted || u.LastBetProcessed() {
			continue
		}

		amount := u.Bets[len(u.Bets)-1]
		if amount > u.Cash {
			// Honest clients clamp already; never let cash go negative.
			amount = u.Cash
			u.Bets[len(u.Bets)-1] = amount
		}

		u.Cash -= amount
		u.BetProcessed[len(u.BetProcessed)-1] = true
		u.HasAddedBet = false
		e.state.Table.Pot += amount

		e.logger.Debug("bet processed", "user", u.Name, "amount", amount, "pot", e.state.Table.Pot)
		e.UsersChanged = true
		e.TableChanged = true
	}
}

// anyUserFolded marks the first folder as the round loser.
func (e *Engine) anyUserFolded() bool {
	for _, u := range e.state.Users {
		if u.HasFolded {
			u.HasLostRound = true
			return true
		}
	}
	return false
}

// stageComplete reports whether the betting stage has converged: both seats
// occupied, both confirmed, every bet applied, and matching totals.
func (e *Engine) stageComplete() bool {
	users := e.state.Users
	if len(users) != MaxUsers {
		return false
	}

	for _, u := range users {
		if !u.HasBetted || !u.AllBetsProcessed() {
			return false
		}
	}

	return users[0].TotalBet() == users[1].TotalBet()
}

// advanceBoard reveals the next stage (0→3→4→5) or ends the round once all
// five cards are out, then clears both users' per-stage betting state.
func (e *Engine) advanceBoard() {
	t := e.state.Table
	switch {
	case t.ActiveCards == 0:
		t.ActiveCards = 3
	case t.ActiveCards < deck.BoardSize:
		t.ActiveCards++
	default:
		e.RoundEnded = true
	}
	e.TableChanged = true

	for _, u := range e.state.Users {
		u.resetStage()
	}
	e.UsersChanged = true
}

// settle awards the pot: by showdown when nobody folded, otherwise to the
// non-folder, and flags any busted loser as having lost the game.
func (e *Engine) settle() {
	users := e.state.Users
	t := e.state.Table
	e.TableChanged = true
	e.UsersChanged = true

	if len(users) != MaxUsers {
		return
	}

	if !users[0].HasLostRound && !users[1].HasLostRound {
		e.showdown()
	} else {
		winner, loser := users[0], users[1]
		if winner.HasLostRound {
			winner, loser = loser, winner
		}
		e.logger.Info("round won by fold", "winner", winner.Name, "loser", loser.Name, "pot", t.Pot)
		winner.Cash += t.Pot
		t.Pot = 0
	}

	for _, u := range users {
		if u.HasLostRound && u.Cash == 0 {
			u.HasLostGame = true
			e.logger.Info("player busted", "user", u.Name)
		}
	}
}

// showdown resolves both hands against the revealed board and applies the
// tie-break policy.
func (e *Engine) showdown() {
	users := e.state.Users
	t := e.state.Table

	a := NewResolver(users[0].HoleCards, t.Revealed())
	b := NewResolver(users[1].HoleCards, t.Revealed())
	a.Resolve()
	b.Resolve()

	switch Compare(a, b) {
	case 1:
		users[1].HasLostRound = true
		e.logger.Info("round won at showdown",
			"winner", users[0].Name, "hand", a.Category.String(),
			"loser", users[1].Name, "against", b.Category.String(),
			"pot", t.Pot)
		users[0].Cash += t.Pot
		t.Pot = 0

	case -1:
		users[0].HasLostRound = true
		e.logger.Info("round won at showdown",
			"winner", users[1].Name, "hand", b.Category.String(),
			"loser", users[0].Name, "against", a.Category.String(),
			"pot", t.Pot)
		users[1].Cash += t.Pot
		t.Pot = 0

	default:
		// Split pot. Integer division truncates; an odd chip stays in the
		// pot and carries into the next round.
		half := t.Pot / 2
		e.logger.Info("round tied, splitting the pot", "each", half, "remainder", t.Pot-half*2)
		users[0].Cash += half
		users[1].Cash += half
		t.Pot -= half * 2
	}
}

// nextRound starts the following round, resetting the whole game when a
// player has busted.
func (e *Engine) nextRound() {
	if e.anyUserLostGame() {
		e.logger.Info("game over, resetting stacks", "defaultCash", e.state.DefaultCash)
		e.state.ResetGame()
	} else {
		e.state.ResetRound()
	}

	e.RoundEnded = false
	e.TableChanged = true
	e.UsersChanged = true
}

func (e *Engine) anyUserLostGame() bool {
	for _, u := range e.state.Users {
		if u.HasLostGame {
			return true
		}
	}
	return false
}
