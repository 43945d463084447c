package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/inn-guest-registry/internal/model"
	"github.com/iliyamo/inn-guest-registry/internal/queue"
)

// Default notes recorded when staff leave the notes field empty.
const (
	FirstStayNote = "First stay"
	NewStayNote   = "New stay"
)

// EventPublisher receives registry events after their transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.RegistryEvent) error
}

// Recorder counts registry activity.
type Recorder interface {
	GuestRegistered()
	StayOpened(superseded int)
	StayCancelled()
}

// RegisterInput is a new guest together with their first stay.
type RegisterInput struct {
	Guest GuestInput
	Stay  StayInput
}

// Registration is the result of RegisterGuest.
type Registration struct {
	Guest model.Guest `json:"guest"`
	Stay  model.Stay  `json:"stay"`
}

// Service orchestrates the guest repository and the stay ledger and builds
// the read models served to staff.
type Service struct {
	store   Store
	guests  *GuestRepository
	stays   *StayLedger
	events  EventPublisher
	metrics Recorder
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithEvents publishes registry events to p after every committed write.
func WithEvents(p EventPublisher) Option { return func(s *Service) { s.events = p } }

// WithMetrics records registry activity on r.
func WithMetrics(r Recorder) Option { return func(s *Service) { s.metrics = r } }

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService wires the registry over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.guests = NewGuestRepository(store, s.now)
	s.stays = NewStayLedger(store, s.now)
	return s
}

// Guests exposes the guest repository.
func (s *Service) Guests() *GuestRepository { return s.guests }

// Stays exposes the stay ledger.
func (s *Service) Stays() *StayLedger { return s.stays }

// RegisterGuest creates a guest and opens their first stay in one
// transaction.  A CPF that already belongs to a guest is a conflict; staff
// should check that guest in instead.
func (s *Service) RegisterGuest(ctx context.Context, in RegisterInput) (Registration, error) {
	guestIn, err := in.Guest.normalize()
	if err != nil {
		return Registration{}, err
	}
	if err := validateDates(in.Stay.CheckIn, in.Stay.CheckOut); err != nil {
		return Registration{}, err
	}
	stayIn := in.Stay
	if stayIn.Notes == "" {
		stayIn.Notes = FirstStayNote
	}

	var reg Registration
	err = s.store.Atomic(ctx, func(tx Store) error {
		g, err := s.guests.create(ctx, tx, guestIn)
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.Errorf(model.ErrConflict, "CPF already registered; use check-in for the existing guest instead")
			}
			return err
		}
		stay, err := s.stays.first(ctx, tx, g.ID, stayIn)
		if err != nil {
			return err
		}
		reg = Registration{Guest: g, Stay: stay}
		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	if s.metrics != nil {
		s.metrics.GuestRegistered()
		s.metrics.StayOpened(0)
	}
	s.publish(ctx, stayEvent(queue.GuestRegistered, reg.Guest, reg.Stay, nil, s.now()))
	return reg, nil
}

// CheckIn opens a new stay for an existing guest, completing the guest's
// previous active stay.
func (s *Service) CheckIn(ctx context.Context, guestID string, in StayInput) (model.Stay, error) {
	if err := validateDates(in.CheckIn, in.CheckOut); err != nil {
		return model.Stay{}, err
	}
	if in.Notes == "" {
		in.Notes = NewStayNote
	}
	var (
		stay       model.Stay
		guest      model.Guest
		superseded []string
	)
	err := s.store.Atomic(ctx, func(tx Store) error {
		var err error
		stay, superseded, err = s.stays.open(ctx, tx, guestID, in)
		if err != nil {
			return err
		}
		guest, err = tx.GuestByID(ctx, guestID)
		return err
	})
	if err != nil {
		return model.Stay{}, err
	}

	if s.metrics != nil {
		s.metrics.StayOpened(len(superseded))
	}
	s.publish(ctx, stayEvent(queue.StayOpened, guest, stay, superseded, s.now()))
	return stay, nil
}

// UpdateGuest replaces a guest's personal fields.
func (s *Service) UpdateGuest(ctx context.Context, id string, in GuestInput) (model.Guest, error) {
	g, err := s.guests.Update(ctx, id, in)
	if err != nil {
		return model.Guest{}, err
	}
	s.publish(ctx, queue.RegistryEvent{
		Type:       queue.GuestUpdated,
		GuestID:    g.ID,
		GuestName:  g.FullName,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	})
	return g, nil
}

// AmendStay edits a stay's dates, status or notes.
func (s *Service) AmendStay(ctx context.Context, id string, in AmendInput) (model.Stay, error) {
	stay, err := s.stays.Amend(ctx, id, in)
	if err != nil {
		return model.Stay{}, err
	}
	s.publish(ctx, stayEvent(queue.StayAmended, model.Guest{ID: stay.GuestID}, stay, nil, s.now()))
	return stay, nil
}

// CancelStay marks a stay cancelled.
func (s *Service) CancelStay(ctx context.Context, id string) (model.Stay, error) {
	stay, err := s.stays.Cancel(ctx, id)
	if err != nil {
		return model.Stay{}, err
	}
	if s.metrics != nil {
		s.metrics.StayCancelled()
	}
	s.publish(ctx, stayEvent(queue.StayCancelled, model.Guest{ID: stay.GuestID}, stay, nil, s.now()))
	return stay, nil
}

// GetStay returns a single stay.
func (s *Service) GetStay(ctx context.Context, id string) (model.Stay, error) {
	return s.stays.Get(ctx, id)
}

// GetGuestDetail returns a guest with the full stay history and the derived
// last-stay and total-stays fields.
func (s *Service) GetGuestDetail(ctx context.Context, id string) (model.GuestDetail, error) {
	g, err := s.guests.GetByID(ctx, id)
	if err != nil {
		return model.GuestDetail{}, err
	}
	stays, err := s.stays.ListForGuest(ctx, id)
	if err != nil {
		return model.GuestDetail{}, err
	}
	return model.GuestDetail{GuestSummary: model.Summarize(g, stays), Stays: stays}, nil
}

// ListGuestsWithSummary returns every guest with their stay summary, most
// recently registered first.
func (s *Service) ListGuestsWithSummary(ctx context.Context) ([]model.GuestSummary, error) {
	guests, err := s.guests.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, guests)
}

// SearchGuestsWithSummary is ListGuestsWithSummary filtered by term.
func (s *Service) SearchGuestsWithSummary(ctx context.Context, term string) ([]model.GuestSummary, error) {
	guests, err := s.guests.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, guests)
}

// summarize loads the stays of all guests with one query and projects them.
func (s *Service) summarize(ctx context.Context, guests []model.Guest) ([]model.GuestSummary, error) {
	out := make([]model.GuestSummary, 0, len(guests))
	if len(guests) == 0 {
		return out, nil
	}
	ids := make([]string, len(guests))
	for i, g := range guests {
		ids[i] = g.ID
	}
	stays, err := s.store.StaysByGuests(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load stays: %w", err)
	}
	byGuest := make(map[string][]model.Stay, len(guests))
	for _, st := range stays {
		byGuest[st.GuestID] = append(byGuest[st.GuestID], st)
	}
	for _, g := range guests {
		out = append(out, model.Summarize(g, byGuest[g.ID]))
	}
	return out, nil
}

// publish hands ev to the event publisher.  The write has already committed,
// so a broker failure is logged and otherwise ignored.
func (s *Service) publish(ctx context.Context, ev queue.RegistryEvent) {
	if s.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.WarnContext(ctx, "publish registry event failed", "type", ev.Type, "guest_id", ev.GuestID, "error", err)
	}
}

func stayEvent(typ string, g model.Guest, st model.Stay, superseded []string, at time.Time) queue.RegistryEvent {
	return queue.RegistryEvent{
		Type:       typ,
		GuestID:    g.ID,
		GuestName:  g.FullName,
		StayID:     st.ID,
		StayStatus: string(st.Status),
		CheckIn:    st.CheckIn.String(),
		CheckOut:   st.CheckOut.String(),
		Superseded: superseded,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}
