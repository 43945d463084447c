package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

const stayColumns = `id, guest_id, check_in, check_out, status, notes, created_at`

// StayRepo persists stays in the `stays` table.  The table carries a stored
// generated column, active_guest_id, that equals guest_id only while the
// stay is active; its unique index makes a second active stay for the same
// guest a duplicate-key error.
type StayRepo struct{ q querier }

// NewStayRepo returns a StayRepo bound to db.
func NewStayRepo(db *sql.DB) *StayRepo { return &StayRepo{q: db} }

// InsertStay inserts s as given.  A missing guest surfaces as
// model.ErrNotFound through the foreign key, a second active stay as
// model.ErrConflict.
func (r *StayRepo) InsertStay(ctx context.Context, s model.Stay) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO stays ("+stayColumns+") VALUES (?,?,?,?,?,?,?)",
		s.ID, s.GuestID, s.CheckIn, s.CheckOut, string(s.Status), s.Notes, s.CreatedAt)
	return translate(err)
}

// UpdateStay rewrites dates, status and notes of s.ID.
func (r *StayRepo) UpdateStay(ctx context.Context, s model.Stay) error {
	_, err := r.q.ExecContext(ctx,
		"UPDATE stays SET check_in=?, check_out=?, status=?, notes=? WHERE id=?",
		s.CheckIn, s.CheckOut, string(s.Status), s.Notes, s.ID)
	return translate(err)
}

// StayByID fetches one stay.
func (r *StayRepo) StayByID(ctx context.Context, id string) (model.Stay, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+stayColumns+" FROM stays WHERE id=? LIMIT 1", id)
	return scanStay(row)
}

// LockStay fetches one stay with SELECT ... FOR UPDATE.
func (r *StayRepo) LockStay(ctx context.Context, id string) (model.Stay, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+stayColumns+" FROM stays WHERE id=? LIMIT 1 FOR UPDATE", id)
	return scanStay(row)
}

// CompleteActiveStays locks the guest's active stays, marks them completed
// and returns their ids.
func (r *StayRepo) CompleteActiveStays(ctx context.Context, guestID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT id FROM stays WHERE guest_id=? AND status=? ORDER BY id FOR UPDATE",
		guestID, string(model.StayActive))
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	_, err = r.q.ExecContext(ctx,
		"UPDATE stays SET status=? WHERE guest_id=? AND status=?",
		string(model.StayCompleted), guestID, string(model.StayActive))
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

// StaysByGuests returns the stays of all listed guests, newest first.
func (r *StayRepo) StaysByGuests(ctx context.Context, guestIDs []string) ([]model.Stay, error) {
	out := make([]model.Stay, 0)
	if len(guestIDs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(guestIDs)), ",")
	args := make([]any, len(guestIDs))
	for i, id := range guestIDs {
		args[i] = id
	}
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+stayColumns+" FROM stays WHERE guest_id IN ("+placeholders+") ORDER BY created_at DESC, seq DESC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanStay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanStay(s rowScanner) (model.Stay, error) {
	var (
		st     model.Stay
		status string
	)
	err := s.Scan(&st.ID, &st.GuestID, &st.CheckIn, &st.CheckOut, &status, &st.Notes, &st.CreatedAt)
	if err != nil {
		return model.Stay{}, translate(err)
	}
	st.Status = model.StayStatus(status)
	st.CreatedAt = st.CreatedAt.UTC()
	return st, nil
}
