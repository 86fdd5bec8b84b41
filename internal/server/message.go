package server

import (
	"encoding/json"
	"time"

	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/session"
)

// MessageType represents a WebSocket message type
type MessageType string

const (
	// Client to server messages
	MessageTypeRecord  MessageType = "record"
	MessageTypeUndo    MessageType = "undo"
	MessageTypeReset   MessageType = "reset"
	MessageTypeStart   MessageType = "start"
	MessageTypeRefresh MessageType = "refresh"

	// Server to client messages
	MessageTypeWelcome  MessageType = "welcome"
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeResetOK  MessageType = "reset_ok"
	MessageTypeError    MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes sent in ErrorData
const (
	ErrCodeInvalidMessage  = "invalid_message"
	ErrCodeUnknownType     = "unknown_message_type"
	ErrCodeNotInitialized  = "not_initialized"
	ErrCodeRefreshFailed   = "refresh_failed"
	ErrCodeInvalidArgument = "invalid_argument"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message stamped with now
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: now,
	}, nil
}

// Client → Server Messages

type RecordData struct {
	Outcome baccarat.Outcome `json:"outcome"`
}

// Server → Client Messages

type WelcomeData struct {
	SessionID string           `json:"sessionId"`
	Snapshot  session.Snapshot `json:"snapshot"`
}

type SnapshotData struct {
	// Cause is the request that produced this snapshot.
	Cause MessageType `json:"cause"`
	// Changed is false when the request left the state untouched, such as
	// an undo with no history.
	Changed  bool                 `json:"changed"`
	Round    *session.Round       `json:"round,omitempty"`
	Columns  [][]baccarat.Outcome `json:"columns"`
	Snapshot session.Snapshot     `json:"snapshot"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
