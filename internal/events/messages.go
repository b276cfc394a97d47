package events

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEvent is the lightweight message published on transaction
// mutations. It carries only what a consumer needs to decide which budgets
// to re-evaluate; consumers fetch fresh state from the database.
type TransactionEvent struct {
	TransactionID string    `json:"transactionId"`
	CategoryID    string    `json:"categoryId"`
	Month         string    `json:"month"` // "YYYY-MM" token of the transaction date
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(transactionID, categoryID, month, action string) *TransactionEvent {
	return &TransactionEvent{
		TransactionID: transactionID,
		CategoryID:    categoryID,
		Month:         month,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
