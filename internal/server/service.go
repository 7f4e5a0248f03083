package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/headsup/internal/game"
)

// GameService owns the canonical game state and runs the tick loop. All
// state access happens on the Run goroutine; connections hand messages in
// through Submit and never touch state directly.
type GameService struct {
	state       *game.State
	engine      *game.Engine
	broadcaster Broadcaster
	clock       quartz.Clock
	interval    time.Duration
	inbound     chan *Message
	logger      *log.Logger

	// usersDirty and tableDirty accumulate between ticks so a merge that
	// lands mid-interval is still broadcast on the next tick.
	usersDirty bool
	tableDirty bool
}

// NewGameService creates the authoritative game service
func NewGameService(state *game.State, broadcaster Broadcaster, interval time.Duration, clock quartz.Clock, logger *log.Logger) *GameService {
	return &GameService{
		state:       state,
		engine:      game.NewEngine(state, logger),
		broadcaster: broadcaster,
		clock:       clock,
		interval:    interval,
		inbound:     make(chan *Message, 64),
		logger:      logger.WithPrefix("service"),
	}
}

// Submit queues an inbound message for the run loop
func (s *GameService) Submit(msg *Message) error {
	select {
	case s.inbound <- msg:
		return nil
	default:
		return errors.New("inbound queue full")
	}
}

// Run processes inbound messages and ticks the engine until the context is
// cancelled.
func (s *GameService) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Game service running", "tickInterval", s.interval)

	for {
		select {
		case msg := <-s.inbound:
			s.handleMessage(msg)

		case <-ticker.C:
			s.tickOnce()

		case <-ctx.Done():
			s.logger.Info("Game service stopping")
			return ctx.Err()
		}
	}
}

// handleMessage applies a client message to canonical state
func (s *GameService) handleMessage(msg *Message) {
	if msg.Type != MessageTypeClientUpdate {
		s.sendError(msg.SenderKey, "unknown_message_type", "Unknown message type: "+msg.Type.String())
		return
	}

	var delta game.User
	if err := json.Unmarshal(msg.Data, &delta); err != nil {
		s.sendError(msg.SenderKey, "invalid_update", "Failed to parse user update")
		return
	}

	// The connection's key is the identity; whatever the payload claims is
	// overwritten.
	delta.Key = msg.SenderKey

	if len(delta.Bets) != len(delta.BetProcessed) {
		s.sendError(msg.SenderKey, "invalid_update",
			fmt.Sprintf("bets and processed flags out of step: %d vs %d", len(delta.Bets), len(delta.BetProcessed)))
		return
	}

	if s.state.UserByKey(delta.Key) == nil {
		if _, err := s.state.Register(delta.Key, delta.Name); err != nil {
			s.sendError(msg.SenderKey, "registration_failed", err.Error())
			return
		}
		s.logger.Info("User registered", "key", delta.Key, "name", delta.Name, "seats", len(s.state.Users))
		s.tableDirty = true
	}

	if _, ok := s.state.Merge(&delta); !ok {
		s.sendError(msg.SenderKey, "invalid_update", "No seat for key")
		return
	}
	s.usersDirty = true
}

// tickOnce advances the engine one step and rebroadcasts whatever changed
func (s *GameService) tickOnce() {
	s.engine.Tick()

	if s.engine.TableChanged || s.tableDirty {
		s.broadcastTable()
		s.tableDirty = false
	}
	if s.engine.UsersChanged || s.usersDirty {
		s.broadcastUsers()
		s.usersDirty = false
	}
}

func (s *GameService) broadcastTable() {
	msg, err := NewMessage(MessageTypeServerTableUpdate, s.state.Table.Redacted())
	if err != nil {
		s.logger.Error("Failed to create table update", "error", err)
		return
	}
	s.broadcaster.Broadcast(msg)
}

// broadcastUsers sends each user its own canonical record and a snapshot of
// the opponent. Opponent hole cards stay redacted until the round has ended,
// when the showdown reveals them.
func (s *GameService) broadcastUsers() {
	for _, u := range s.state.Users {
		own, err := NewMessage(MessageTypeServerClientUpdate, u.Clone())
		if err != nil {
			s.logger.Error("Failed to create client update", "error", err)
			continue
		}
		if err := s.broadcaster.SendToKey(u.Key, own); err != nil {
			s.logger.Debug("Failed to send client update", "error", err, "key", u.Key)
		}

		var snapshot *game.User
		if s.engine.RoundEnded {
			snapshot = u.Clone()
		} else {
			snapshot = u.Redacted()
		}
		opp, err := NewMessage(MessageTypeServerOpponentUpdate, snapshot)
		if err != nil {
			s.logger.Error("Failed to create opponent update", "error", err)
			continue
		}

		for _, other := range s.state.Users {
			if other.Key == u.Key {
				continue
			}
			if err := s.broadcaster.SendToKey(other.Key, opp); err != nil {
				s.logger.Debug("Failed to send opponent update", "error", err, "key", other.Key)
			}
		}
	}
}

func (s *GameService) sendError(key, code, message string) {
	s.logger.Warn("Rejecting message", "key", key, "code", code, "message", message)

	msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		s.logger.Error("Failed to create error message", "error", err)
		return
	}
	if err := s.broadcaster.SendToKey(key, msg); err != nil {
		s.logger.Debug("Failed to send error message", "error", err, "key", key)
	}
}
