package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// AdminRepo reads and provisions staff accounts in the `admins` table.
type AdminRepo struct{ q querier }

// NewAdminRepo returns an AdminRepo bound to db.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{q: db} }

// AdminByLogin fetches an admin by login.  Logins are stored trimmed.
func (r *AdminRepo) AdminByLogin(ctx context.Context, login string) (model.Admin, error) {
	var a model.Admin
	err := r.q.QueryRowContext(ctx,
		"SELECT id, login, password_hash, created_at FROM admins WHERE login=? LIMIT 1",
		strings.TrimSpace(login)).Scan(&a.ID, &a.Login, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return model.Admin{}, translate(err)
	}
	return a, nil
}

// UpsertAdmin inserts a, or replaces the password hash of the admin that
// already owns a.Login.  It returns the stored row.
func (r *AdminRepo) UpsertAdmin(ctx context.Context, a model.Admin) (model.Admin, error) {
	a.Login = strings.TrimSpace(a.Login)
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO admins (id, login, password_hash, created_at) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE password_hash=VALUES(password_hash)`,
		a.ID, a.Login, a.PasswordHash, a.CreatedAt)
	if err != nil {
		return model.Admin{}, translate(err)
	}
	return r.AdminByLogin(ctx, a.Login)
}
