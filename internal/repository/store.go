package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/inn-guest-registry/internal/registry"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so every repository can
// run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles the guest, stay and admin repositories and implements
// registry.Store.  A Store returned by Atomic is bound to one transaction.
type Store struct {
	db *sql.DB
	tx *sql.Tx
	*GuestRepo
	*StayRepo
	*AdminRepo
}

// NewStore returns a Store bound to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		GuestRepo: NewGuestRepo(db),
		StayRepo:  NewStayRepo(db),
		AdminRepo: NewAdminRepo(db),
	}
}

// DB exposes the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

// txAttempts bounds how often Atomic runs fn when InnoDB aborts it with a
// deadlock or lock wait timeout.
const txAttempts = 3

// Atomic implements registry.Store.  The transaction is committed when fn
// returns nil and rolled back otherwise; a nested call reuses the
// transaction already in progress.  A transaction aborted by a deadlock or a
// lock wait timeout is retried from the start, so fn must not keep state
// across calls other than through its return.
func (s *Store) Atomic(ctx context.Context, fn func(tx registry.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = s.atomicOnce(ctx, fn)
		if err == nil || !retryable(err) || attempt == txAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt*attempt) * 10 * time.Millisecond):
		}
	}
	return err
}

func (s *Store) atomicOnce(ctx context.Context, fn func(tx registry.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	txStore := &Store{
		db:        s.db,
		tx:        tx,
		GuestRepo: &GuestRepo{q: tx},
		StayRepo:  &StayRepo{q: tx},
		AdminRepo: &AdminRepo{q: tx},
	}
	if err := fn(txStore); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

var _ registry.Store = (*Store)(nil)
