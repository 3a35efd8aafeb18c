package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of floor change being broadcast
type EventType string

const (
	EventReservationChanged EventType = "RESERVATION_CHANGED"
	EventTableFreed         EventType = "TABLE_FREED"
	EventWaitlistPromoted   EventType = "WAITLIST_PROMOTED"
)

// Event is the outbound record of a floor state change. Delivery is
// at-least-once; consumers de-duplicate by (entity id, new status).
type Event struct {
	ID            uuid.UUID  `json:"id"`
	Type          EventType  `json:"type"`
	OrgID         uuid.UUID  `json:"org_id"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	TableID       *uuid.UUID `json:"table_id,omitempty"`
	GroupID       *uuid.UUID `json:"group_id,omitempty"`
	WaitlistID    *uuid.UUID `json:"waitlist_id,omitempty"`
	NewStatus     string     `json:"new_status,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// ToJSON serializes the event for the wire
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one org to the same partition so a
// consumer sees that floor's changes in order
func (e *Event) PartitionKey() string {
	return e.OrgID.String()
}

// NewEvent builds an event with id and timestamp filled in
func NewEvent(eventType EventType, orgID uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OrgID:      orgID,
		OccurredAt: time.Now(),
	}
}

// Publisher is the outbound broadcast channel. The concrete transport
// (Kafka, websocket fan-out, polling endpoint) is a collaborator's concern;
// the engine only guarantees it publishes zero or one event per command.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
