package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
)

var ErrInvalidEvent = errors.New("invalid transaction event")

// TransactionEvent tells consumers which transactions of a household were
// written. It carries ids only; consumers read the rows themselves.
type TransactionEvent struct {
	Type           EventType `json:"type"`
	HouseholdID    string    `json:"household_id"`
	TransactionIDs []string  `json:"transaction_ids"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewTransactionEvent(typ EventType, householdID string, ids []string) TransactionEvent {
	return TransactionEvent{
		Type:           typ,
		HouseholdID:    householdID,
		TransactionIDs: ids,
		Timestamp:      time.Now().UTC(),
	}
}

func (e TransactionEvent) Validate() error {
	switch e.Type {
	case EventCreated, EventDeleted:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if e.HouseholdID == "" {
		return fmt.Errorf("%w: missing household", ErrInvalidEvent)
	}
	if len(e.TransactionIDs) == 0 {
		return fmt.Errorf("%w: no transaction ids", ErrInvalidEvent)
	}
	return nil
}

// ToJSON converts the event to JSON bytes
func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and validates an event.
func TransactionEventFromJSON(data []byte) (TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return TransactionEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return TransactionEvent{}, err
	}
	return e, nil
}
