package amqp

import (
	"encoding/json"
	"time"

	"contas/internal/core"
)

// TransactionEventMessage is the lightweight event published whenever a
// transaction is created, updated or deleted. The worker only needs the
// affected month to refresh its summary, so the payload carries no
// transaction fields beyond the ID.
type TransactionEventMessage struct {
	Action    string        `json:"action"`
	ID        string        `json:"id"`
	RefMonth  core.MonthKey `json:"ref_month"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewTransactionEventMessage(action, id string, refMonth core.MonthKey) *TransactionEventMessage {
	return &TransactionEventMessage{
		Action:    action,
		ID:        id,
		RefMonth:  refMonth,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
