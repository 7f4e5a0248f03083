package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies the payload carried by a Message
type MessageType string

const (
	// Client → Server
	MessageTypeClientUpdate MessageType = "client_update"

	// Server → Client
	MessageTypeServerClientUpdate   MessageType = "server_client_update"
	MessageTypeServerOpponentUpdate MessageType = "server_opponent_update"
	MessageTypeServerTableUpdate    MessageType = "server_table_update"
	MessageTypeConnectionSuccessful MessageType = "connection_successful"
	MessageTypeError                MessageType = "error"
)

func (t MessageType) String() string {
	return string(t)
}

// Message represents the base WebSocket message structure. SenderKey is
// stamped by the receiving connection, never trusted from the wire.
type Message struct {
	Type      MessageType     `json:"type"`
	SenderKey string          `json:"senderKey,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// ConnectionSuccessfulData carries the server-assigned key the client must
// use on every subsequent update.
type ConnectionSuccessfulData struct {
	Key string `json:"key"`
}

// ErrorData describes a rejected message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
