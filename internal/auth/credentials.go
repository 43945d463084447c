package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// AdminStore looks up admin accounts by login.  Both the MySQL repository
// and the in-memory store implement it.
type AdminStore interface {
	AdminByLogin(ctx context.Context, login string) (model.Admin, error)
}

// Credentials checks login/password pairs against an AdminStore.
type Credentials struct {
	store AdminStore
}

// NewCredentials returns Credentials backed by store.
func NewCredentials(store AdminStore) *Credentials { return &Credentials{store: store} }

// VerifyPassword returns the admin when plain matches the stored hash.  An
// unknown login and a wrong password both yield model.ErrUnauthorized; store
// failures other than not-found are returned as is.
func (c *Credentials) VerifyPassword(ctx context.Context, login, plain string) (model.Admin, error) {
	login = strings.TrimSpace(login)
	if login == "" || plain == "" {
		return model.Admin{}, model.ErrUnauthorized
	}
	a, err := c.store.AdminByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			VerifyPassword(string(dummyHash), plain)
			return model.Admin{}, model.ErrUnauthorized
		}
		return model.Admin{}, err
	}
	if !VerifyPassword(a.PasswordHash, plain) {
		return model.Admin{}, model.ErrUnauthorized
	}
	return a, nil
}

// Gate combines credential checks and session issuing.  It is what the HTTP
// layer talks to.
type Gate struct {
	creds    *Credentials
	sessions *Sessions
}

// NewGate returns a Gate.
func NewGate(creds *Credentials, sessions *Sessions) *Gate {
	return &Gate{creds: creds, sessions: sessions}
}

// Login verifies the credentials and issues a session for the admin.
func (g *Gate) Login(ctx context.Context, login, password string) (Session, model.Admin, error) {
	a, err := g.creds.VerifyPassword(ctx, login, password)
	if err != nil {
		return Session{}, model.Admin{}, err
	}
	s, err := g.sessions.Issue(a.ID, a.Login)
	if err != nil {
		return Session{}, model.Admin{}, err
	}
	return s, a, nil
}

// Verify checks a session token.
func (g *Gate) Verify(token string) (Identity, error) {
	return g.sessions.Verify(token)
}
