//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/inn-guest-registry/internal/auth"
	"github.com/iliyamo/inn-guest-registry/internal/model"
	"github.com/iliyamo/inn-guest-registry/internal/registry"
	"github.com/iliyamo/inn-guest-registry/internal/repository"
	"github.com/iliyamo/inn-guest-registry/internal/testutil/containers"
)

type StoreSuite struct {
	suite.Suite
	store *repository.Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.store = repository.NewStore(containers.NewMySQL(s.T()))
}

func (s *StoreSuite) SetupTest() {
	for _, table := range []string{"stays", "guests", "admins"} {
		_, err := s.store.DB().ExecContext(s.ctx, "DELETE FROM "+table)
		s.Require().NoError(err)
	}
}

func (s *StoreSuite) guest(cpf string) model.Guest {
	return model.Guest{
		ID:           uuid.NewString(),
		FullName:     "Ana Souza",
		CPF:          cpf,
		Email:        "ana@example.com",
		Phone:        "11987654321",
		BirthDate:    model.NewDate(1990, time.May, 4),
		RegisteredAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *StoreSuite) stay(guestID string, status model.StayStatus, created time.Time) model.Stay {
	return model.Stay{
		ID:        uuid.NewString(),
		GuestID:   guestID,
		CheckIn:   model.NewDate(2024, time.March, 1),
		CheckOut:  model.NewDate(2024, time.March, 4),
		Status:    status,
		CreatedAt: created.UTC().Truncate(time.Microsecond),
	}
}

func (s *StoreSuite) TestGuestRoundTrip() {
	g := s.guest("11144477735")
	s.Require().NoError(s.store.InsertGuest(s.ctx, g))

	got, err := s.store.GuestByID(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(g.CPF, got.CPF)
	s.True(g.BirthDate.Equal(got.BirthDate))
	s.True(g.RegisteredAt.Equal(got.RegisteredAt))

	g.FullName = "Ana Souza Lima"
	s.Require().NoError(s.store.UpdateGuest(s.ctx, g))
	// unchanged row reports zero affected rows but is not missing
	s.Require().NoError(s.store.UpdateGuest(s.ctx, g))

	missing := g
	missing.ID = uuid.NewString()
	s.ErrorIs(s.store.UpdateGuest(s.ctx, missing), model.ErrNotFound)

	_, err = s.store.GuestByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StoreSuite) TestDuplicateCPFIsConflict() {
	s.Require().NoError(s.store.InsertGuest(s.ctx, s.guest("11144477735")))
	s.ErrorIs(s.store.InsertGuest(s.ctx, s.guest("11144477735")), model.ErrConflict)
}

func (s *StoreSuite) TestSecondActiveStayIsConflict() {
	g := s.guest("52998224725")
	s.Require().NoError(s.store.InsertGuest(s.ctx, g))
	now := time.Now()

	s.Require().NoError(s.store.InsertStay(s.ctx, s.stay(g.ID, model.StayActive, now)))
	s.ErrorIs(s.store.InsertStay(s.ctx, s.stay(g.ID, model.StayActive, now)), model.ErrConflict)

	// any number of terminal stays may coexist with the active one
	s.NoError(s.store.InsertStay(s.ctx, s.stay(g.ID, model.StayCompleted, now)))
	s.NoError(s.store.InsertStay(s.ctx, s.stay(g.ID, model.StayCancelled, now)))
}

func (s *StoreSuite) TestStayForUnknownGuestIsNotFound() {
	err := s.store.InsertStay(s.ctx, s.stay(uuid.NewString(), model.StayActive, time.Now()))
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StoreSuite) TestCompleteActiveStays() {
	g := s.guest("39053344705")
	s.Require().NoError(s.store.InsertGuest(s.ctx, g))
	active := s.stay(g.ID, model.StayActive, time.Now())
	s.Require().NoError(s.store.InsertStay(s.ctx, active))

	ids, err := s.store.CompleteActiveStays(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal([]string{active.ID}, ids)

	got, err := s.store.StayByID(s.ctx, active.ID)
	s.Require().NoError(err)
	s.Equal(model.StayCompleted, got.Status)

	ids, err = s.store.CompleteActiveStays(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StoreSuite) TestStaysByGuestsNewestFirst() {
	g := s.guest("11144477735")
	s.Require().NoError(s.store.InsertGuest(s.ctx, g))
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	older := s.stay(g.ID, model.StayCompleted, base)
	newer := s.stay(g.ID, model.StayCompleted, base.Add(time.Hour))
	// same timestamp as newer but inserted later
	newest := s.stay(g.ID, model.StayActive, base.Add(time.Hour))
	for _, st := range []model.Stay{older, newer, newest} {
		s.Require().NoError(s.store.InsertStay(s.ctx, st))
	}

	got, err := s.store.StaysByGuests(s.ctx, []string{g.ID})
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal([]string{newest.ID, newer.ID, older.ID}, []string{got[0].ID, got[1].ID, got[2].ID})

	none, err := s.store.StaysByGuests(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestFindGuests() {
	a := s.guest("11144477735")
	a.FullName, a.Email = "Carla 50% Dias", "carla@example.com"
	b := s.guest("52998224725")
	b.FullName, b.Email = "Bruno Reis", "bruno@example.com"
	b.RegisteredAt = a.RegisteredAt.Add(time.Second)
	s.Require().NoError(s.store.InsertGuest(s.ctx, a))
	s.Require().NoError(s.store.InsertGuest(s.ctx, b))

	all, err := s.store.FindGuests(s.ctx, registry.GuestFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(b.ID, all[0].ID)

	got, err := s.store.FindGuests(s.ctx, registry.GuestFilter{Term: "50%"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(a.ID, got[0].ID)

	got, err = s.store.FindGuests(s.ctx, registry.GuestFilter{Term: "529.982", Digits: "529982"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(b.ID, got[0].ID)

	got, err = s.store.FindGuests(s.ctx, registry.GuestFilter{Term: "BRUNO@"})
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *StoreSuite) TestAtomicRollsBack() {
	g := s.guest("11144477735")
	boom := errors.New("boom")
	err := s.store.Atomic(s.ctx, func(tx registry.Store) error {
		if err := tx.InsertGuest(s.ctx, g); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	_, err = s.store.GuestByID(s.ctx, g.ID)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StoreSuite) TestConcurrentCheckInsLeaveOneActive() {
	svc := registry.NewService(s.store)
	reg, err := svc.RegisterGuest(s.ctx, registry.RegisterInput{
		Guest: registry.GuestInput{
			FullName: "Ana Souza", CPF: "111.444.777-35", Email: "ana@example.com",
			Phone: "(11) 98765-4321", BirthDate: model.NewDate(1990, time.May, 4),
		},
		Stay: registry.StayInput{CheckIn: model.NewDate(2024, time.March, 1), CheckOut: model.NewDate(2024, time.March, 3)},
	})
	s.Require().NoError(err)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := svc.CheckIn(s.ctx, reg.Guest.ID, registry.StayInput{
				CheckIn:  model.NewDate(2024, time.April, day),
				CheckOut: model.NewDate(2024, time.April, day+1),
			})
			errs <- err
		}(i + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	stays, err := s.store.StaysByGuests(s.ctx, []string{reg.Guest.ID})
	s.Require().NoError(err)
	s.Len(stays, n+1)
	active := 0
	for _, st := range stays {
		if st.Status == model.StayActive {
			active++
		}
	}
	s.Equal(1, active)
	s.Equal(model.StayActive, stays[0].Status)
}

func (s *StoreSuite) registerInput(cpf string, day int) registry.RegisterInput {
	return registry.RegisterInput{
		Guest: registry.GuestInput{
			FullName: "Guest " + cpf, CPF: cpf, Email: cpf + "@example.com",
			Phone: "11987654321", BirthDate: model.NewDate(1990, time.May, 4),
		},
		Stay: registry.StayInput{
			CheckIn:  model.NewDate(2024, time.March, day),
			CheckOut: model.NewDate(2024, time.March, day+1),
		},
	}
}

func (s *StoreSuite) TestConcurrentRegistrationsOfDistinctGuests() {
	svc := registry.NewService(s.store)
	cpfs := []string{
		"11144477735", "52998224725", "39053344705", "12345678909",
		"22345678909", "98765432100", "71428793860", "45317828791",
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(cpfs))
	for i, c := range cpfs {
		wg.Add(1)
		go func(cpf string, day int) {
			defer wg.Done()
			_, err := svc.RegisterGuest(s.ctx, s.registerInput(cpf, day))
			errs <- err
		}(c, i+1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	all, err := svc.ListGuestsWithSummary(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, len(cpfs))
	for _, g := range all {
		s.Equal(1, g.TotalStays)
		s.Require().NotNil(g.LastStay)
		s.Equal(model.StayActive, g.LastStay.Status)
	}
}

func (s *StoreSuite) TestConcurrentRegistrationsOfSameCPF() {
	svc := registry.NewService(s.store)
	const n = 6

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := svc.RegisterGuest(s.ctx, s.registerInput("11144477735", day))
			errs <- err
		}(i + 1)
	}
	wg.Wait()
	close(errs)

	ok, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrConflict):
			conflicts++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(n-1, conflicts)

	all, err := svc.ListGuestsWithSummary(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(1, all[0].TotalStays)
}

func (s *StoreSuite) TestAdminUpsert() {
	first, err := auth.Provision(s.ctx, s.store, "  reception ", "first-pass", 4)
	s.Require().NoError(err)
	s.Equal("reception", first.Login)

	second, err := auth.Provision(s.ctx, s.store, "reception", "second-pass", 4)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.True(auth.VerifyPassword(second.PasswordHash, "second-pass"))

	_, err = s.store.AdminByLogin(s.ctx, "nobody")
	require.ErrorIs(s.T(), err, model.ErrNotFound)
	assert.NotEmpty(s.T(), second.PasswordHash)
}
