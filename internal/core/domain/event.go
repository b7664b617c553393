package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a commit notification. Values double as the message
// subject on the wire.
type EventType string

const (
	EventNGORegistered    EventType = "ngo.registered"
	EventNGOVerified      EventType = "ngo.verified"
	EventNGOSuspended     EventType = "ngo.suspended"
	EventDonationReceived EventType = "donation.received"
	EventVerifierAdded    EventType = "verifier.added"
	EventVerifierRemoved  EventType = "verifier.removed"
)

// Event is a structured notification emitted after a successful commit.
// Consumers are external observers; the core never consumes its own events.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Actor      Identity  `json:"actor,omitempty"`
	NGO        Identity  `json:"ngo,omitempty"`
	Donor      Identity  `json:"donor,omitempty"`
	Verifier   Identity  `json:"verifier,omitempty"`
	DonationID *int64    `json:"donation_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
}

// NewEvent builds an event of the given type stamped with a fresh ID and
// the current UTC time.
func NewEvent(typ EventType) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Timestamp: time.Now().UTC(),
	}
}
