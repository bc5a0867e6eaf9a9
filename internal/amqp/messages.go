package amqp

import (
	"encoding/json"
	"time"

	"github.com/Bobboe/hspriveko/internal/core"
)

// messageSchemaVersion is bumped when the message layout changes incompatibly.
const messageSchemaVersion = 1

// ExpenseEventMessage is the wire form of a committed expense change.
type ExpenseEventMessage struct {
	core.ExpenseEvent
	SchemaVersion int       `json:"schemaVersion"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewExpenseEventMessage wraps ev for publishing.
func NewExpenseEventMessage(ev core.ExpenseEvent) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ExpenseEvent:  ev,
		SchemaVersion: messageSchemaVersion,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
