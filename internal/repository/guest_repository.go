package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/inn-guest-registry/internal/model"
	"github.com/iliyamo/inn-guest-registry/internal/registry"
)

const guestColumns = `id, full_name, cpf, email, phone, birth_date, registered_at`

// GuestRepo persists guests in the `guests` table.  The unique index on cpf
// is what enforces CPF uniqueness; a violation surfaces as
// model.ErrConflict.
type GuestRepo struct{ q querier }

// NewGuestRepo returns a GuestRepo bound to db.
func NewGuestRepo(db *sql.DB) *GuestRepo { return &GuestRepo{q: db} }

// InsertGuest inserts g as given; the caller assigns id and timestamps.
func (r *GuestRepo) InsertGuest(ctx context.Context, g model.Guest) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO guests ("+guestColumns+") VALUES (?,?,?,?,?,?,?)",
		g.ID, g.FullName, g.CPF, g.Email, g.Phone, g.BirthDate, g.RegisteredAt)
	return translate(err)
}

// UpdateGuest rewrites the personal fields of g.ID.  registered_at is never
// touched.
func (r *GuestRepo) UpdateGuest(ctx context.Context, g model.Guest) error {
	res, err := r.q.ExecContext(ctx,
		"UPDATE guests SET full_name=?, cpf=?, email=?, phone=?, birth_date=? WHERE id=?",
		g.FullName, g.CPF, g.Email, g.Phone, g.BirthDate, g.ID)
	if err != nil {
		return translate(err)
	}
	// MySQL reports 0 affected rows when nothing changed, so a zero count
	// only means "missing" if the row cannot be read back.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GuestByID(ctx, g.ID); err != nil {
			return err
		}
	}
	return nil
}

// GuestByID fetches one guest.
func (r *GuestRepo) GuestByID(ctx context.Context, id string) (model.Guest, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+guestColumns+" FROM guests WHERE id=? LIMIT 1", id)
	return scanGuest(row)
}

// LockGuest fetches one guest with SELECT ... FOR UPDATE.  Outside a
// transaction the lock is released immediately.
func (r *GuestRepo) LockGuest(ctx context.Context, id string) (model.Guest, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+guestColumns+" FROM guests WHERE id=? LIMIT 1 FOR UPDATE", id)
	return scanGuest(row)
}

// FindGuests returns the guests matching f, newest registration first.
func (r *GuestRepo) FindGuests(ctx context.Context, f registry.GuestFilter) ([]model.Guest, error) {
	var (
		where []string
		args  []any
	)
	if f.Term != "" {
		pat := likePattern(strings.ToLower(f.Term))
		where = append(where, "LOWER(full_name) LIKE ?", "LOWER(email) LIKE ?")
		args = append(args, pat, pat)
		if f.Digits != "" {
			where = append(where, "cpf LIKE ?")
			args = append(args, likePattern(f.Digits))
		}
	}
	q := "SELECT " + guestColumns + " FROM guests"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " OR ")
	}
	q += " ORDER BY registered_at DESC, id DESC"

	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(s rowScanner) (model.Guest, error) {
	var g model.Guest
	err := s.Scan(&g.ID, &g.FullName, &g.CPF, &g.Email, &g.Phone, &g.BirthDate, &g.RegisteredAt)
	if err != nil {
		return model.Guest{}, translate(err)
	}
	g.RegisteredAt = g.RegisteredAt.UTC()
	return g, nil
}
