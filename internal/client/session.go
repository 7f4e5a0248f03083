package client

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/server"
)

// SendFunc delivers an outbound message to the server
type SendFunc func(*server.Message) error

// Session holds the client's local mirror of the game: its own user, the
// latest opponent snapshot and the latest table snapshot. Server updates
// replace these objects wholesale; intents mutate the local user and push
// the whole record back. The server re-derives anything authoritative, so a
// stale push can never corrupt the game.
type Session struct {
	logger *log.Logger
	send   SendFunc

	mu       sync.RWMutex
	user     *game.User
	opponent *game.User
	table    *game.Table
	name     string
}

// NewSession creates a session for the named player. Messages go out through
// send; the transport is whoever owns that function.
func NewSession(name string, logger *log.Logger, send SendFunc) *Session {
	return &Session{
		logger:   logger.WithPrefix("session"),
		send:     send,
		name:     name,
		opponent: &game.User{},
		table:    game.NewTable(),
	}
}

// User returns a copy of the local user, or nil before the connection ack
func (s *Session) User() *game.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	return s.user.Clone()
}

// Opponent returns a copy of the latest opponent snapshot
func (s *Session) Opponent() *game.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opponent.Clone()
}

// Table returns a copy of the latest table snapshot
func (s *Session) Table() *game.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone()
}

// HandleMessage applies a server message to the local mirror
func (s *Session) HandleMessage(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeConnectionSuccessful:
		var data server.ConnectionSuccessfulData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			s.logger.Error("Bad connection ack", "error", err)
			return
		}
		s.mu.Lock()
		s.user = &game.User{Key: data.Key, Name: s.name}
		s.mu.Unlock()
		s.logger.Info("Seat assigned", "key", data.Key)

		// Announce ourselves so the server deals us in.
		s.pushUpdate()

	case server.MessageTypeServerClientUpdate:
		var u game.User
		if err := json.Unmarshal(msg.Data, &u); err != nil {
			s.logger.Error("Bad client update", "error", err)
			return
		}
		s.mu.Lock()
		s.user = &u
		s.mu.Unlock()

	case server.MessageTypeServerOpponentUpdate:
		var u game.User
		if err := json.Unmarshal(msg.Data, &u); err != nil {
			s.logger.Error("Bad opponent update", "error", err)
			return
		}
		s.mu.Lock()
		s.opponent = &u
		raised := s.user != nil && s.user.HasBetted &&
			s.opponent.TotalBet() > s.user.TotalBet()
		if raised {
			// The opponent raised over our confirmed bet; we owe a response.
			s.user.HasBetted = false
		}
		s.mu.Unlock()
		if raised {
			s.pushUpdate()
		}

	case server.MessageTypeServerTableUpdate:
		var t game.Table
		if err := json.Unmarshal(msg.Data, &t); err != nil {
			s.logger.Error("Bad table update", "error", err)
			return
		}
		s.mu.Lock()
		s.table = &t
		s.mu.Unlock()

	case server.MessageTypeError:
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			s.logger.Error("Bad error payload", "error", err)
			return
		}
		s.logger.Warn("Server rejected message", "code", data.Code, "message", data.Message)

	default:
		s.logger.Debug("Ignoring message", "type", msg.Type)
	}
}

// AddChip stacks a chip onto the open bet, opening one if needed. The open
// bet entry is clamped so it never exceeds the player's cash.
func (s *Session) AddChip(worth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user
	if u == nil || u.HasBetted || u.Cash <= 0 {
		return
	}

	if u.HasAddedBet {
		last := len(u.Bets) - 1
		if u.Cash-u.Bets[last] >= worth {
			u.Bets[last] += worth
		} else {
			u.Bets[last] = u.Cash
		}
	} else {
		u.Bets = append(u.Bets, min(worth, u.Cash))
		u.BetProcessed = append(u.BetProcessed, false)
		u.HasAddedBet = true
	}

	s.pushUpdateLocked()
}

// ClearBet withdraws the open, unconfirmed bet
func (s *Session) ClearBet() {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user
	if u == nil || !u.HasAddedBet {
		return
	}

	u.Bets = u.Bets[:len(u.Bets)-1]
	u.BetProcessed = u.BetProcessed[:len(u.BetProcessed)-1]
	u.HasAddedBet = false

	s.pushUpdateLocked()
}

// ConfirmBet locks in the open bet. Refused while the confirmed opponent
// total is still higher: the player must call, raise further or fold.
func (s *Session) ConfirmBet() {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user
	if u == nil || !u.HasAddedBet {
		return
	}
	if s.opponent.HasBetted && u.TotalBet() < s.opponent.TotalBet() {
		s.logger.Debug("Cannot confirm below the opponent's bet",
			"own", u.TotalBet(), "opponent", s.opponent.TotalBet())
		return
	}

	u.HasBetted = true
	u.HasAddedBet = false

	s.pushUpdateLocked()
}

// Call matches the opponent's confirmed total, going all-in when short
func (s *Session) Call() {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user
	if u == nil || u.HasBetted || !s.opponent.HasBetted {
		return
	}

	owed := s.opponent.TotalBet() - u.TotalBet()
	if u.HasAddedBet {
		last := len(u.Bets) - 1
		u.Bets[last] = min(owed+u.Bets[last], u.Cash)
	} else {
		u.Bets = append(u.Bets, min(owed, u.Cash))
		u.BetProcessed = append(u.BetProcessed, false)
	}

	u.HasAddedBet = false
	u.HasBetted = true

	s.pushUpdateLocked()
}

// Fold concedes the round
func (s *Session) Fold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user
	if u == nil {
		return
	}

	u.HasFolded = true

	s.pushUpdateLocked()
}

func (s *Session) pushUpdate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushUpdateLocked()
}

func (s *Session) pushUpdateLocked() {
	if s.user == nil {
		return
	}

	msg, err := server.NewMessage(server.MessageTypeClientUpdate, s.user.Clone())
	if err != nil {
		s.logger.Error("Failed to create update", "error", err)
		return
	}
	if err := s.send(msg); err != nil {
		s.logger.Error("Failed to send update", "error", err)
	}
}
