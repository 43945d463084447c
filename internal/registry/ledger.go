package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// StayInput describes a stay to open.
type StayInput struct {
	CheckIn  model.Date
	CheckOut model.Date
	Notes    string
}

// AmendInput replaces a stay's dates and optionally its status and notes.
// A nil Status or Notes keeps the current value.
type AmendInput struct {
	CheckIn  model.Date
	CheckOut model.Date
	Status   *model.StayStatus
	Notes    *string
}

func validateDates(checkIn, checkOut model.Date) error {
	switch {
	case checkIn.IsZero() && checkOut.IsZero():
		return model.Errorf(model.ErrInvalidInput, "check_in and check_out are required")
	case checkIn.IsZero():
		return model.Errorf(model.ErrInvalidInput, "check_in is required")
	case checkOut.IsZero():
		return model.Errorf(model.ErrInvalidInput, "check_out is required")
	case !checkOut.After(checkIn):
		return model.Errorf(model.ErrInvalidInput, "check_out must be after check_in")
	}
	return nil
}

// StayLedger owns stay records.  Opening a stay supersedes the guest's
// current active stay in the same transaction, so a guest never has zero
// stays mid-switch nor two active ones.
type StayLedger struct {
	store Store
	now   func() time.Time
}

// NewStayLedger returns a ledger over store.
func NewStayLedger(store Store, now func() time.Time) *StayLedger {
	return &StayLedger{store: store, now: now}
}

// Open creates a new active stay for guestID and completes any stay that was
// active before it.
func (l *StayLedger) Open(ctx context.Context, guestID string, in StayInput) (model.Stay, error) {
	if err := validateDates(in.CheckIn, in.CheckOut); err != nil {
		return model.Stay{}, err
	}
	var stay model.Stay
	err := l.store.Atomic(ctx, func(tx Store) error {
		var err error
		stay, _, err = l.open(ctx, tx, guestID, in)
		return err
	})
	return stay, err
}

// open runs the supersession inside tx.  The guest row lock serializes
// concurrent opens for the same guest; the lookup doubles as the NotFound
// check.  It returns the new stay and the ids of the stays it completed.
func (l *StayLedger) open(ctx context.Context, tx Store, guestID string, in StayInput) (model.Stay, []string, error) {
	if _, err := tx.LockGuest(ctx, guestID); err != nil {
		return model.Stay{}, nil, guestLookupErr(guestID, err)
	}
	superseded, err := tx.CompleteActiveStays(ctx, guestID)
	if err != nil {
		return model.Stay{}, nil, fmt.Errorf("complete active stays: %w", err)
	}
	stay, err := l.first(ctx, tx, guestID, in)
	if err != nil {
		return model.Stay{}, nil, err
	}
	return stay, superseded, nil
}

// first inserts an active stay without looking for one to supersede.  It is
// only correct for a guest with no active stay, such as one created earlier
// in the same transaction.  Skipping the locking read keeps concurrent
// registrations from taking gap locks on the stays index.
func (l *StayLedger) first(ctx context.Context, tx Store, guestID string, in StayInput) (model.Stay, error) {
	stay := model.Stay{
		ID:        uuid.NewString(),
		GuestID:   guestID,
		CheckIn:   in.CheckIn,
		CheckOut:  in.CheckOut,
		Status:    model.StayActive,
		Notes:     in.Notes,
		CreatedAt: stamp(l.now),
	}
	if err := tx.InsertStay(ctx, stay); err != nil {
		return model.Stay{}, fmt.Errorf("insert stay: %w", err)
	}
	return stay, nil
}

// Amend edits a stay in place.  It never supersedes other stays, and it
// refuses to bring a completed or cancelled stay back to active.
func (l *StayLedger) Amend(ctx context.Context, stayID string, in AmendInput) (model.Stay, error) {
	if err := validateDates(in.CheckIn, in.CheckOut); err != nil {
		return model.Stay{}, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return model.Stay{}, model.Errorf(model.ErrInvalidInput, "invalid status %q", *in.Status)
	}
	var amended model.Stay
	err := l.store.Atomic(ctx, func(tx Store) error {
		cur, err := tx.LockStay(ctx, stayID)
		if err != nil {
			return stayLookupErr(stayID, err)
		}
		next := cur
		next.CheckIn = in.CheckIn
		next.CheckOut = in.CheckOut
		if in.Status != nil {
			if cur.Status.Terminal() && *in.Status == model.StayActive {
				return model.Errorf(model.ErrInvalidInput, "a %s stay cannot be reopened", cur.Status)
			}
			next.Status = *in.Status
		}
		if in.Notes != nil {
			next.Notes = *in.Notes
		}
		if err := tx.UpdateStay(ctx, next); err != nil {
			return fmt.Errorf("update stay: %w", err)
		}
		amended = next
		return nil
	})
	return amended, err
}

// Cancel marks a stay cancelled.  Completed stays may be cancelled too, and
// cancelling a cancelled stay is a no-op.
func (l *StayLedger) Cancel(ctx context.Context, stayID string) (model.Stay, error) {
	var cancelled model.Stay
	err := l.store.Atomic(ctx, func(tx Store) error {
		cur, err := tx.LockStay(ctx, stayID)
		if err != nil {
			return stayLookupErr(stayID, err)
		}
		if cur.Status == model.StayCancelled {
			cancelled = cur
			return nil
		}
		cur.Status = model.StayCancelled
		if err := tx.UpdateStay(ctx, cur); err != nil {
			return fmt.Errorf("cancel stay: %w", err)
		}
		cancelled = cur
		return nil
	})
	return cancelled, err
}

// Get returns stay id or ErrNotFound.
func (l *StayLedger) Get(ctx context.Context, id string) (model.Stay, error) {
	st, err := l.store.StayByID(ctx, id)
	if err != nil {
		return model.Stay{}, stayLookupErr(id, err)
	}
	return st, nil
}

// ListForGuest returns the guest's stays, newest first.  The head of the
// slice is the guest's last stay.
func (l *StayLedger) ListForGuest(ctx context.Context, guestID string) ([]model.Stay, error) {
	stays, err := l.store.StaysByGuests(ctx, []string{guestID})
	if err != nil {
		return nil, fmt.Errorf("list stays: %w", err)
	}
	if stays == nil {
		stays = []model.Stay{}
	}
	return stays, nil
}

func stayLookupErr(id string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return model.Errorf(model.ErrNotFound, "stay %s not found", id)
	}
	return fmt.Errorf("load stay %s: %w", id, err)
}
