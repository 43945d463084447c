package auth_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/inn-guest-registry/internal/auth"
	"github.com/iliyamo/inn-guest-registry/internal/model"
	"github.com/iliyamo/inn-guest-registry/internal/repository/memory"
)

const testSecret = "test-secret"

func seededGate(t *testing.T) (*auth.Gate, model.Admin) {
	t.Helper()
	store := memory.New()
	hash, err := auth.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	a, err := store.UpsertAdmin(context.Background(), model.Admin{
		ID:           "admin-1",
		Login:        "reception",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return auth.NewGate(auth.NewCredentials(store), auth.NewSessions(testSecret)), a
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, auth.VerifyPassword(hash, "s3cret"))
	assert.False(t, auth.VerifyPassword(hash, "S3cret"))
	assert.False(t, auth.VerifyPassword("not-a-hash", "s3cret"))
}

func TestGate_Login(t *testing.T) {
	gate, admin := seededGate(t)
	ctx := context.Background()

	t.Run("valid credentials issue a session", func(t *testing.T) {
		s, a, err := gate.Login(ctx, "  reception ", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, a.ID)
		assert.NotEmpty(t, s.Token)
		assert.WithinDuration(t, time.Now().Add(auth.SessionTTL), s.ExpiresAt, 5*time.Second)

		id, err := gate.Verify(s.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.Identity{AdminID: admin.ID, Login: "reception"}, id)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, _, err := gate.Login(ctx, "reception", "wrong")
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("unknown login is unauthorized", func(t *testing.T) {
		_, _, err := gate.Login(ctx, "nobody", "correct horse")
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("empty fields are unauthorized", func(t *testing.T) {
		_, _, err := gate.Login(ctx, "", "")
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})
}

func TestSessions_Verify(t *testing.T) {
	issuedAt := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	sessions := auth.NewSessions(testSecret).WithClock(func() time.Time { return issuedAt })
	s, err := sessions.Issue("admin-1", "reception")
	require.NoError(t, err)

	at := func(d time.Duration) *auth.Sessions {
		return sessions.WithClock(func() time.Time { return issuedAt.Add(d) })
	}

	t.Run("valid just before expiry", func(t *testing.T) {
		_, err := at(auth.SessionTTL - time.Minute).Verify(s.Token)
		assert.NoError(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := at(auth.SessionTTL + time.Second).Verify(s.Token)
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("bad signature", func(t *testing.T) {
		other := auth.NewSessions("another-secret").WithClock(func() time.Time { return issuedAt })
		_, err := other.Verify(s.Token)
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(s.Token, ".")
		require.Len(t, parts, 3)
		parts[1] = base64.RawURLEncoding.EncodeToString(
			[]byte(`{"admin_id":"admin-2","login":"reception","exp":9999999999}`))
		_, err := sessions.Verify(strings.Join(parts, "."))
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "a.b.c", "Bearer " + s.Token} {
			_, err := sessions.Verify(raw)
			assert.ErrorIs(t, err, model.ErrUnauthorized, raw)
		}
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		claims := auth.Claims{
			AdminID: "admin-1",
			Login:   "reception",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
			},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = sessions.Verify(raw)
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := auth.Claims{AdminID: "admin-1", Login: "reception"}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = sessions.Verify(raw)
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	a, err := auth.Provision(ctx, store, " manager ", "first", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, "manager", a.Login)

	again, err := auth.Provision(ctx, store, "manager", "second", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, a.ID, again.ID, "re-provisioning keeps the account")

	creds := auth.NewCredentials(store)
	_, err = creds.VerifyPassword(ctx, "manager", "first")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = creds.VerifyPassword(ctx, "manager", "second")
	assert.NoError(t, err)

	_, err = auth.Provision(ctx, store, "", "x", bcrypt.MinCost)
	assert.Error(t, err)
}
