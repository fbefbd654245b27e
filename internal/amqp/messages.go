package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cashflow/internal/core"
)

// RunCompletedType identifies run summary messages on the exchange.
const RunCompletedType = "projection.run.completed"

// RunCompletedMessage announces a finished projection. It carries only the
// run summary, never the transactions.
type RunCompletedMessage struct {
	Type      string          `json:"type"`
	Run       core.RunSummary `json:"run"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRunCompletedMessage stamps the message with the run's creation time.
func NewRunCompletedMessage(run core.RunSummary) *RunCompletedMessage {
	return &RunCompletedMessage{
		Type:      RunCompletedType,
		Run:       run,
		Timestamp: run.CreatedAt.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RunCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RunCompletedMessageFromJSON decodes and validates a message body.
func RunCompletedMessageFromJSON(data []byte) (*RunCompletedMessage, error) {
	var msg RunCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != RunCompletedType {
		return nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	if msg.Run.ID == "" {
		return nil, errors.New("message has no run id")
	}
	return &msg, nil
}
