package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// AdminProvisioner creates or re-keys admin accounts.
type AdminProvisioner interface {
	UpsertAdmin(ctx context.Context, a model.Admin) (model.Admin, error)
}

// Provision creates the admin login with password, or resets the password
// when the login already exists.
func Provision(ctx context.Context, store AdminProvisioner, login, password string, cost int) (model.Admin, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return model.Admin{}, errors.New("admin login and password are required")
	}
	hash, err := HashPassword(password, cost)
	if err != nil {
		return model.Admin{}, err
	}
	return store.UpsertAdmin(ctx, model.Admin{
		ID:           uuid.NewString(),
		Login:        login,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	})
}
