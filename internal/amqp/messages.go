package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds emitted by the ledger. The snapshot worker treats every kind
// the same way: it recomputes the stats for the event's period.
const (
	EventExpenseSubmitted EventKind = "expense.submitted"
	EventExpenseDecided   EventKind = "expense.decided"
	EventPaymentVerified  EventKind = "payment.verified"
)

type EventKind string

// LedgerEvent is a lightweight message pointing at a ledger mutation.
// It carries only the entity ID and the affected period; consumers fetch
// whatever detail they need from the store.
type LedgerEvent struct {
	Kind      EventKind `json:"kind"`
	EntityID  string    `json:"entity_id"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event for the given entity and period.
func NewLedgerEvent(kind EventKind, entityID string, month, year int) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		EntityID:  entityID,
		Month:     month,
		Year:      year,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var evt LedgerEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
