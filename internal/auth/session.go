package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// SessionTTL is the absolute lifetime of a session token.  Tokens are not
// refreshed.
const SessionTTL = 24 * time.Hour

// Claims is the JWT payload of a session.
type Claims struct {
	AdminID string `json:"admin_id"`
	Login   string `json:"login"`
	jwt.RegisteredClaims
}

// Session is a freshly issued token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity is what a valid token proves.
type Identity struct {
	AdminID string `json:"admin_id"`
	Login   string `json:"login"`
}

// Sessions signs and verifies HS256 session tokens with one process-wide
// secret.  Nothing is stored server side; logout is the client dropping the
// token.
type Sessions struct {
	secret []byte
	now    func() time.Time
}

// NewSessions returns a Sessions bound to secret.
func NewSessions(secret string) *Sessions {
	return &Sessions{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the time source, for tests.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	return &Sessions{secret: s.secret, now: now}
}

// Issue signs a token for the admin that expires SessionTTL from now.
func (s *Sessions) Issue(adminID, login string) (Session, error) {
	if len(s.secret) == 0 {
		return Session{}, errors.New("session secret is empty")
	}
	now := s.now().UTC()
	exp := now.Add(SessionTTL)
	claims := Claims{
		AdminID: adminID,
		Login:   login,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, ExpiresAt: exp.Truncate(time.Second)}, nil
}

// Verify checks signature, algorithm and expiry of raw.  Every failure is
// reported as model.ErrUnauthorized without saying which check failed.
func (s *Sessions) Verify(raw string) (Identity, error) {
	if raw == "" || len(s.secret) == 0 {
		return Identity{}, model.ErrUnauthorized
	}
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid || claims.AdminID == "" || claims.Login == "" {
		return Identity{}, model.ErrUnauthorized
	}
	return Identity{AdminID: claims.AdminID, Login: claims.Login}, nil
}
