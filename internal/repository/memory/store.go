// Package memory is an in-process implementation of the registry and admin
// stores.  It backs APP_STORE=memory for local development and the registry
// tests.  Transactions are serialized by one mutex and rolled back by
// restoring a snapshot, which gives the same all-or-nothing behaviour as the
// MySQL store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/inn-guest-registry/internal/model"
	"github.com/iliyamo/inn-guest-registry/internal/registry"
)

type stayRow struct {
	model.Stay
	seq uint64
}

type state struct {
	guests map[string]model.Guest
	stays  map[string]stayRow
	admins map[string]model.Admin // keyed by login
	seq    uint64
}

func (s *state) clone() *state {
	c := &state{
		guests: make(map[string]model.Guest, len(s.guests)),
		stays:  make(map[string]stayRow, len(s.stays)),
		admins: make(map[string]model.Admin, len(s.admins)),
		seq:    s.seq,
	}
	for k, v := range s.guests {
		c.guests[k] = v
	}
	for k, v := range s.stays {
		c.stays[k] = v
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	return c
}

// Store keeps guests, stays and admins in maps.  The zero value is not
// usable; call New.
type Store struct {
	mu   *sync.Mutex
	data **state
	inTx bool
}

// New returns an empty store.
func New() *Store {
	data := &state{
		guests: map[string]model.Guest{},
		stays:  map[string]stayRow{},
		admins: map[string]model.Admin{},
	}
	return &Store{mu: &sync.Mutex{}, data: &data}
}

// lock acquires the store mutex unless s is bound to a transaction, which
// already holds it.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) st() *state { return *s.data }

// Atomic implements registry.Store.
func (s *Store) Atomic(ctx context.Context, fn func(tx registry.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st().clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) cpfTaken(cpf, exceptID string) bool {
	for _, g := range s.st().guests {
		if g.CPF == cpf && g.ID != exceptID {
			return true
		}
	}
	return false
}

// InsertGuest adds g, rejecting a CPF that is already taken.
func (s *Store) InsertGuest(_ context.Context, g model.Guest) error {
	defer s.lock()()
	if _, ok := s.st().guests[g.ID]; ok || s.cpfTaken(g.CPF, "") {
		return model.ErrConflict
	}
	s.st().guests[g.ID] = g
	return nil
}

// UpdateGuest replaces the stored guest with g.
func (s *Store) UpdateGuest(_ context.Context, g model.Guest) error {
	defer s.lock()()
	cur, ok := s.st().guests[g.ID]
	if !ok {
		return model.ErrNotFound
	}
	if s.cpfTaken(g.CPF, g.ID) {
		return model.ErrConflict
	}
	g.RegisteredAt = cur.RegisteredAt
	s.st().guests[g.ID] = g
	return nil
}

// GuestByID returns a copy of the stored guest.
func (s *Store) GuestByID(_ context.Context, id string) (model.Guest, error) {
	defer s.lock()()
	g, ok := s.st().guests[id]
	if !ok {
		return model.Guest{}, model.ErrNotFound
	}
	return g, nil
}

// LockGuest is GuestByID; the store mutex already serializes transactions.
func (s *Store) LockGuest(ctx context.Context, id string) (model.Guest, error) {
	return s.GuestByID(ctx, id)
}

// FindGuests returns the guests matching f, newest registration first.
func (s *Store) FindGuests(_ context.Context, f registry.GuestFilter) ([]model.Guest, error) {
	defer s.lock()()
	out := make([]model.Guest, 0, len(s.st().guests))
	for _, g := range s.st().guests {
		if matches(g, f) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out, nil
}

func matches(g model.Guest, f registry.GuestFilter) bool {
	if f.Term == "" {
		return true
	}
	term := strings.ToLower(f.Term)
	if strings.Contains(strings.ToLower(g.FullName), term) || strings.Contains(strings.ToLower(g.Email), term) {
		return true
	}
	return f.Digits != "" && strings.Contains(g.CPF, f.Digits)
}

// InsertStay adds st; the guest must exist and may hold only one active stay.
func (s *Store) InsertStay(_ context.Context, st model.Stay) error {
	defer s.lock()()
	data := s.st()
	if _, ok := data.stays[st.ID]; ok {
		return model.ErrConflict
	}
	if _, ok := data.guests[st.GuestID]; !ok {
		return model.ErrNotFound
	}
	if st.Status == model.StayActive && s.hasActive(st.GuestID, st.ID) {
		return model.ErrConflict
	}
	data.seq++
	data.stays[st.ID] = stayRow{Stay: st, seq: data.seq}
	return nil
}

func (s *Store) hasActive(guestID, exceptID string) bool {
	for _, row := range s.st().stays {
		if row.GuestID == guestID && row.Status == model.StayActive && row.ID != exceptID {
			return true
		}
	}
	return false
}

// UpdateStay replaces the stored stay with st.
func (s *Store) UpdateStay(_ context.Context, st model.Stay) error {
	defer s.lock()()
	row, ok := s.st().stays[st.ID]
	if !ok {
		return model.ErrNotFound
	}
	if st.Status == model.StayActive && s.hasActive(row.GuestID, st.ID) {
		return model.ErrConflict
	}
	st.GuestID = row.GuestID
	st.CreatedAt = row.CreatedAt
	row.Stay = st
	s.st().stays[st.ID] = row
	return nil
}

// StayByID returns a copy of the stored stay.
func (s *Store) StayByID(_ context.Context, id string) (model.Stay, error) {
	defer s.lock()()
	row, ok := s.st().stays[id]
	if !ok {
		return model.Stay{}, model.ErrNotFound
	}
	return row.Stay, nil
}

// LockStay is StayByID; the store mutex already serializes transactions.
func (s *Store) LockStay(ctx context.Context, id string) (model.Stay, error) {
	return s.StayByID(ctx, id)
}

// CompleteActiveStays marks the guest's active stays completed.
func (s *Store) CompleteActiveStays(_ context.Context, guestID string) ([]string, error) {
	defer s.lock()()
	var ids []string
	for id, row := range s.st().stays {
		if row.GuestID == guestID && row.Status == model.StayActive {
			row.Status = model.StayCompleted
			s.st().stays[id] = row
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// StaysByGuests returns the stays of the listed guests, newest first.
func (s *Store) StaysByGuests(_ context.Context, guestIDs []string) ([]model.Stay, error) {
	defer s.lock()()
	want := make(map[string]bool, len(guestIDs))
	for _, id := range guestIDs {
		want[id] = true
	}
	rows := make([]stayRow, 0)
	for _, row := range s.st().stays {
		if want[row.GuestID] {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].seq > rows[j].seq
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	out := make([]model.Stay, len(rows))
	for i, row := range rows {
		out[i] = row.Stay
	}
	return out, nil
}

// AdminByLogin implements auth.AdminStore.
func (s *Store) AdminByLogin(_ context.Context, login string) (model.Admin, error) {
	defer s.lock()()
	a, ok := s.st().admins[login]
	if !ok {
		return model.Admin{}, model.ErrNotFound
	}
	return a, nil
}

// UpsertAdmin creates the admin or replaces its password hash, keeping the
// original id.
func (s *Store) UpsertAdmin(_ context.Context, a model.Admin) (model.Admin, error) {
	defer s.lock()()
	if cur, ok := s.st().admins[a.Login]; ok {
		cur.PasswordHash = a.PasswordHash
		s.st().admins[a.Login] = cur
		return cur, nil
	}
	s.st().admins[a.Login] = a
	return a, nil
}

var _ registry.Store = (*Store)(nil)
