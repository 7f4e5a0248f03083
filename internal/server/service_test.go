package server

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/deck"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/randutil"
)

type fakeBroadcaster struct {
	broadcasts []*Message
	sent       map[string][]*Message
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{sent: make(map[string][]*Message)}
}

func (f *fakeBroadcaster) Broadcast(msg *Message) {
	f.broadcasts = append(f.broadcasts, msg)
}

func (f *fakeBroadcaster) SendToKey(key string, msg *Message) error {
	f.sent[key] = append(f.sent[key], msg)
	return nil
}

func (f *fakeBroadcaster) reset() {
	f.broadcasts = nil
	f.sent = make(map[string][]*Message)
}

func (f *fakeBroadcaster) lastOfType(t *testing.T, key string, typ MessageType) *Message {
	t.Helper()
	var found *Message
	for _, m := range f.sent[key] {
		if m.Type == typ {
			found = m
		}
	}
	return found
}

func newTestService(t *testing.T) (*GameService, *fakeBroadcaster) {
	t.Helper()

	state := game.NewState(deck.New(randutil.New(7)), 1000)
	b := newFakeBroadcaster()
	clock := quartz.NewMock(t)
	logger := log.New(io.Discard)

	return NewGameService(state, b, 15*time.Millisecond, clock, logger), b
}

func clientUpdate(t *testing.T, key string, u *game.User) *Message {
	t.Helper()
	msg, err := NewMessage(MessageTypeClientUpdate, u)
	require.NoError(t, err)
	msg.SenderKey = key
	return msg
}

func TestHandleMessageRegistersNewKey(t *testing.T) {
	s, b := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))

	u := s.state.UserByKey("key-a")
	require.NotNil(t, u, "first update should register the key")
	assert.Equal(t, "ALICE", u.Name)
	assert.Len(t, u.HoleCards, deck.HoleCardsPerSeat)
	assert.Empty(t, b.sent["key-a"], "no error expected for a valid update")
}

func TestHandleMessageRejectsThirdSeat(t *testing.T) {
	s, b := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))
	s.handleMessage(clientUpdate(t, "key-b", &game.User{Name: "bob"}))
	s.handleMessage(clientUpdate(t, "key-c", &game.User{Name: "carol"}))

	assert.Nil(t, s.state.UserByKey("key-c"))
	errMsg := b.lastOfType(t, "key-c", MessageTypeError)
	require.NotNil(t, errMsg, "third seat should get an error message")

	var data ErrorData
	require.NoError(t, json.Unmarshal(errMsg.Data, &data))
	assert.Equal(t, "registration_failed", data.Code)
}

func TestHandleMessageStampsSenderKey(t *testing.T) {
	s, _ := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))
	s.handleMessage(clientUpdate(t, "key-b", &game.User{Name: "bob"}))

	// A delta claiming the opponent's key must land on the sender's seat.
	bob := s.state.UserByKey("key-b")
	imposter := bob.Clone()
	imposter.Key = "key-b"
	imposter.HasFolded = true
	s.handleMessage(clientUpdate(t, "key-a", imposter))

	assert.False(t, s.state.UserByKey("key-b").HasFolded, "opponent seat must be untouched")
	assert.True(t, s.state.UserByKey("key-a").HasFolded, "delta applies to the sender's own seat")
}

func TestHandleMessageRejectsMismatchedBetLists(t *testing.T) {
	s, b := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))
	b.reset()

	bad := &game.User{Name: "alice", Bets: []int{10, 20}, BetProcessed: []bool{false}}
	s.handleMessage(clientUpdate(t, "key-a", bad))

	errMsg := b.lastOfType(t, "key-a", MessageTypeError)
	require.NotNil(t, errMsg)

	var data ErrorData
	require.NoError(t, json.Unmarshal(errMsg.Data, &data))
	assert.Equal(t, "invalid_update", data.Code)
	assert.Empty(t, s.state.UserByKey("key-a").Bets, "rejected delta must not merge")
}

func TestHandleMessageCannotSmuggleCash(t *testing.T) {
	s, _ := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))

	rich := s.state.UserByKey("key-a").Clone()
	rich.Cash = 999999
	s.handleMessage(clientUpdate(t, "key-a", rich))

	assert.Equal(t, 1000, s.state.UserByKey("key-a").Cash)
}

func TestTickBroadcastsRedactedTable(t *testing.T) {
	s, b := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))
	s.tickOnce()

	require.NotEmpty(t, b.broadcasts, "registration should trigger a table broadcast")
	last := b.broadcasts[len(b.broadcasts)-1]
	assert.Equal(t, MessageTypeServerTableUpdate, last.Type)

	var table game.Table
	require.NoError(t, json.Unmarshal(last.Data, &table))
	for i, c := range table.Cards {
		assert.True(t, c.IsFaceDown(), "slot %d leaked before reveal", i)
	}
}

func TestTickSendsOwnCardsAndRedactsOpponent(t *testing.T) {
	s, b := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))
	s.handleMessage(clientUpdate(t, "key-b", &game.User{Name: "bob"}))
	s.tickOnce()

	own := b.lastOfType(t, "key-a", MessageTypeServerClientUpdate)
	require.NotNil(t, own)
	var self game.User
	require.NoError(t, json.Unmarshal(own.Data, &self))
	assert.Equal(t, "key-a", self.Key)
	for _, c := range self.HoleCards {
		assert.False(t, c.IsFaceDown(), "own hole cards must be visible")
	}

	opp := b.lastOfType(t, "key-a", MessageTypeServerOpponentUpdate)
	require.NotNil(t, opp)
	var other game.User
	require.NoError(t, json.Unmarshal(opp.Data, &other))
	assert.Equal(t, "key-b", other.Key)
	for _, c := range other.HoleCards {
		assert.True(t, c.IsFaceDown(), "opponent hole cards must be redacted mid-round")
	}
}

func TestShowdownRevealsOpponentCards(t *testing.T) {
	s, b := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))
	s.handleMessage(clientUpdate(t, "key-b", &game.User{Name: "bob"}))

	// Bob folds; the next tick settles the round.
	folder := s.state.UserByKey("key-b").Clone()
	folder.HasFolded = true
	s.handleMessage(clientUpdate(t, "key-b", folder))
	b.reset()
	s.tickOnce()

	require.True(t, s.engine.RoundEnded)

	opp := b.lastOfType(t, "key-a", MessageTypeServerOpponentUpdate)
	require.NotNil(t, opp)
	var other game.User
	require.NoError(t, json.Unmarshal(opp.Data, &other))
	for _, c := range other.HoleCards {
		assert.False(t, c.IsFaceDown(), "settled round reveals the opponent's cards")
	}
}

func TestTickQuietWhenNothingChanged(t *testing.T) {
	s, b := newTestService(t)

	s.handleMessage(clientUpdate(t, "key-a", &game.User{Name: "alice"}))
	s.tickOnce()
	b.reset()

	s.tickOnce()

	assert.Empty(t, b.broadcasts, "idle tick must not rebroadcast the table")
	assert.Empty(t, b.sent, "idle tick must not rebroadcast users")
}

func TestSubmitQueueFull(t *testing.T) {
	s, _ := newTestService(t)

	msg := clientUpdate(t, "key-a", &game.User{Name: "alice"})
	for i := 0; i < cap(s.inbound); i++ {
		require.NoError(t, s.Submit(msg))
	}
	assert.Error(t, s.Submit(msg))
}
