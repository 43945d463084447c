package model

import "time"

// StayStatus is the lifecycle state of a stay.
type StayStatus string

const (
	// StayActive is the initial state.  A guest has at most one active stay.
	StayActive StayStatus = "active"
	// StayCompleted is set automatically when a newer stay is opened for the
	// same guest.
	StayCompleted StayStatus = "completed"
	// StayCancelled is set by an explicit cancel.  Stays are never deleted.
	StayCancelled StayStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s StayStatus) Valid() bool {
	switch s {
	case StayActive, StayCompleted, StayCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may lead out of s back to active.
func (s StayStatus) Terminal() bool {
	return s == StayCompleted || s == StayCancelled
}

// Stay is one lodging period, as stored in the `stays` table.  GuestID is a
// lookup key only; stays do not own their guest.
//
// Fields:
//  ID        – UUID assigned at creation.
//  GuestID   – guest the stay belongs to.
//  CheckIn   – arrival date.
//  CheckOut  – departure date, strictly after CheckIn.
//  Status    – active, completed or cancelled.
//  Notes     – optional free text.
//  CreatedAt – creation timestamp; orders a guest's stays.
type Stay struct {
	ID        string     `json:"id"`         // stays.id
	GuestID   string     `json:"guest_id"`   // stays.guest_id
	CheckIn   Date       `json:"check_in"`   // stays.check_in
	CheckOut  Date       `json:"check_out"`  // stays.check_out
	Status    StayStatus `json:"status"`     // stays.status
	Notes     string     `json:"notes"`      // stays.notes
	CreatedAt time.Time  `json:"created_at"` // stays.created_at
}
