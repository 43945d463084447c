// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistryQueueName is the durable queue registry events are published to.
const RegistryQueueName = "registry.events"

// Event types carried in RegistryEvent.Type.
const (
	GuestRegistered = "guest.registered"
	GuestUpdated    = "guest.updated"
	StayOpened      = "stay.opened"
	StayAmended     = "stay.amended"
	StayCancelled   = "stay.cancelled"
)

// RegistryEvent is published after a registry write commits.  It carries
// enough context for downstream consumers to keep an audit trail without
// querying the primary database.  The guest's name is the only personal
// field included.
type RegistryEvent struct {
	Type       string   `json:"type"`
	GuestID    string   `json:"guest_id"`
	GuestName  string   `json:"guest_name,omitempty"`
	StayID     string   `json:"stay_id,omitempty"`
	StayStatus string   `json:"stay_status,omitempty"`
	CheckIn    string   `json:"check_in,omitempty"`
	CheckOut   string   `json:"check_out,omitempty"`
	Superseded []string `json:"superseded,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}
