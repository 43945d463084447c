package model

import "time"

// Guest represents a person registered at the inn, as stored in the
// `guests` table.  The CPF is kept in canonical digits-only form and is
// unique across all rows; formatting it for display is left to the
// presentation layer.  Guests are never deleted.
//
// Fields:
//  ID           – UUID assigned at creation, immutable.
//  FullName     – guest's full name, never empty.
//  CPF          – 11-digit national identity number (checksum-valid).
//  Email        – contact e-mail, trimmed and lower-cased.
//  Phone        – contact phone, digits only.
//  BirthDate    – calendar date of birth.
//  RegisteredAt – timestamp of registration, immutable.
type Guest struct {
	ID           string    `json:"id"`            // guests.id
	FullName     string    `json:"full_name"`     // guests.full_name
	CPF          string    `json:"cpf"`           // guests.cpf (unique)
	Email        string    `json:"email"`         // guests.email
	Phone        string    `json:"phone"`         // guests.phone
	BirthDate    Date      `json:"birth_date"`    // guests.birth_date
	RegisteredAt time.Time `json:"registered_at"` // guests.registered_at
}

// GuestSummary is the read model used by listings: the guest plus the
// projections derived from its stays.  LastStay and TotalStays are computed
// on every read and never persisted.
type GuestSummary struct {
	Guest
	LastStay   *Stay `json:"last_stay"`
	TotalStays int   `json:"total_stays"`
}

// GuestDetail extends GuestSummary with the full stay history, newest first.
type GuestDetail struct {
	GuestSummary
	Stays []Stay `json:"stays"`
}

// Summarize builds the summary projection from a guest and its stays, which
// must already be ordered by CreatedAt descending.
func Summarize(g Guest, stays []Stay) GuestSummary {
	s := GuestSummary{Guest: g, TotalStays: len(stays)}
	if len(stays) > 0 {
		last := stays[0]
		s.LastStay = &last
	}
	return s
}
