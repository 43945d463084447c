package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/inn-guest-registry/internal/cpf"
	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// GuestInput carries the personal fields staff fill in when registering or
// editing a guest.  Values are normalized before validation: CPF and phone
// are reduced to digits, name and e-mail are trimmed and e-mail lower-cased.
type GuestInput struct {
	FullName  string
	CPF       string
	Email     string
	Phone     string
	BirthDate model.Date
}

// normalize returns the cleaned input or an ErrInvalidInput describing every
// missing field, or the CPF checksum failure.
func (in GuestInput) normalize() (GuestInput, error) {
	out := GuestInput{
		FullName:  strings.Join(strings.Fields(in.FullName), " "),
		CPF:       cpf.Normalize(in.CPF),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     digitsOnly(in.Phone),
		BirthDate: in.BirthDate,
	}
	var missing []string
	if out.FullName == "" {
		missing = append(missing, "full_name")
	}
	if out.CPF == "" {
		missing = append(missing, "cpf")
	}
	if out.Email == "" {
		missing = append(missing, "email")
	}
	if out.Phone == "" {
		missing = append(missing, "phone")
	}
	if out.BirthDate.IsZero() {
		missing = append(missing, "birth_date")
	}
	if len(missing) > 0 {
		return out, model.Errorf(model.ErrInvalidInput, "missing required fields: %s", strings.Join(missing, ", "))
	}
	if !cpf.Valid(out.CPF) {
		return out, model.Errorf(model.ErrInvalidInput, "invalid CPF")
	}
	return out, nil
}

func digitsOnly(s string) string { return cpf.Normalize(s) }

// GuestRepository owns guest records.  It validates and normalizes input and
// leaves uniqueness to the store's constraint, so two concurrent writers of
// the same CPF cannot both succeed.
type GuestRepository struct {
	store Store
	now   func() time.Time
}

// NewGuestRepository returns a repository over store.  now supplies
// registration timestamps.
func NewGuestRepository(store Store, now func() time.Time) *GuestRepository {
	return &GuestRepository{store: store, now: now}
}

// Create validates in and inserts a new guest.
func (r *GuestRepository) Create(ctx context.Context, in GuestInput) (model.Guest, error) {
	clean, err := in.normalize()
	if err != nil {
		return model.Guest{}, err
	}
	return r.create(ctx, r.store, clean)
}

// create inserts an already normalized guest through st, which may be bound
// to a transaction.
func (r *GuestRepository) create(ctx context.Context, st Store, in GuestInput) (model.Guest, error) {
	g := model.Guest{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		CPF:          in.CPF,
		Email:        in.Email,
		Phone:        in.Phone,
		BirthDate:    in.BirthDate,
		RegisteredAt: stamp(r.now),
	}
	if err := st.InsertGuest(ctx, g); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.Guest{}, model.Errorf(model.ErrConflict, "CPF %s is already registered", cpf.Format(g.CPF))
		}
		return model.Guest{}, fmt.Errorf("insert guest: %w", err)
	}
	return g, nil
}

// Update replaces the personal fields of guest id.  The CPF may only collide
// with the guest's own current value.
func (r *GuestRepository) Update(ctx context.Context, id string, in GuestInput) (model.Guest, error) {
	clean, err := in.normalize()
	if err != nil {
		return model.Guest{}, err
	}
	var updated model.Guest
	err = r.store.Atomic(ctx, func(tx Store) error {
		cur, err := tx.LockGuest(ctx, id)
		if err != nil {
			return guestLookupErr(id, err)
		}
		cur.FullName = clean.FullName
		cur.CPF = clean.CPF
		cur.Email = clean.Email
		cur.Phone = clean.Phone
		cur.BirthDate = clean.BirthDate
		if err := tx.UpdateGuest(ctx, cur); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.Errorf(model.ErrConflict, "CPF %s is already registered for another guest", cpf.Format(cur.CPF))
			}
			return fmt.Errorf("update guest: %w", err)
		}
		updated = cur
		return nil
	})
	return updated, err
}

// GetByID returns guest id or ErrNotFound.
func (r *GuestRepository) GetByID(ctx context.Context, id string) (model.Guest, error) {
	g, err := r.store.GuestByID(ctx, id)
	if err != nil {
		return model.Guest{}, guestLookupErr(id, err)
	}
	return g, nil
}

// Search matches term against name, e-mail and CPF digits.  A blank term
// lists every guest.
func (r *GuestRepository) Search(ctx context.Context, term string) ([]model.Guest, error) {
	term = strings.TrimSpace(term)
	f := GuestFilter{Term: strings.ToLower(term), Digits: digitsOnly(term)}
	guests, err := r.store.FindGuests(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find guests: %w", err)
	}
	return guests, nil
}

// ListAll returns every guest, most recently registered first.
func (r *GuestRepository) ListAll(ctx context.Context) ([]model.Guest, error) {
	return r.Search(ctx, "")
}

func guestLookupErr(id string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return model.Errorf(model.ErrNotFound, "guest %s not found", id)
	}
	return fmt.Errorf("load guest %s: %w", id, err)
}

// stamp reads the clock in UTC at the precision MySQL DATETIME(6) keeps, so a
// value read back compares equal to the one written.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}
