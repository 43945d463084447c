// Package registry implements the guest and stay registry: guest identity
// rules, the stay lifecycle and the compound operations staff use at the
// front desk.  Persistence is delegated to a Store whose transactions back
// every invariant that must survive concurrent requests.
package registry

import (
	"context"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// GuestFilter selects guests for FindGuests.  An empty Term matches every
// guest.  Term is matched case-insensitively as a substring of the full name
// or e-mail; Digits, when non-empty, is matched as a substring of the CPF.
type GuestFilter struct {
	Term   string
	Digits string
}

// Store is the persistence contract of the registry.  Implementations must
// enforce CPF uniqueness and the single-active-stay rule themselves (unique
// indexes in MySQL, checks under the lock in the memory store) and report
// violations as model.ErrConflict.  Lookups of unknown ids report
// model.ErrNotFound.
//
// Guests are returned ordered by RegisteredAt descending, stays by CreatedAt
// descending.
type Store interface {
	// Atomic runs fn inside a single transaction.  fn receives a Store bound
	// to that transaction; if fn returns an error nothing it wrote is kept.
	// Calling Atomic on a transaction-bound Store runs fn in the same
	// transaction.
	Atomic(ctx context.Context, fn func(tx Store) error) error

	InsertGuest(ctx context.Context, g model.Guest) error
	UpdateGuest(ctx context.Context, g model.Guest) error
	GuestByID(ctx context.Context, id string) (model.Guest, error)
	// LockGuest loads a guest and holds a write lock on it until the
	// surrounding transaction ends.
	LockGuest(ctx context.Context, id string) (model.Guest, error)
	FindGuests(ctx context.Context, f GuestFilter) ([]model.Guest, error)

	InsertStay(ctx context.Context, s model.Stay) error
	UpdateStay(ctx context.Context, s model.Stay) error
	StayByID(ctx context.Context, id string) (model.Stay, error)
	// LockStay loads a stay and holds a write lock on it until the
	// surrounding transaction ends.
	LockStay(ctx context.Context, id string) (model.Stay, error)
	// CompleteActiveStays moves every active stay of the guest to completed
	// and returns their ids.
	CompleteActiveStays(ctx context.Context, guestID string) ([]string, error)
	StaysByGuests(ctx context.Context, guestIDs []string) ([]model.Stay, error)
}
