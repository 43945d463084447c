// Package middleware contains the echo middleware shared by the registry
// routes: session checks, rate limiting, response caching and request
// logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-guest-registry/internal/auth"
)

// SessionCookie is the cookie carrying the session token for browser
// clients.
const SessionCookie = "admin_token"

// SessionVerifier checks a raw session token.  *auth.Gate implements it.
type SessionVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// SessionGate rejects requests without a valid session before any handler
// runs.  The token is read from "Authorization: Bearer" first and from the
// admin_token cookie otherwise.  On success the admin identity is stored in
// the echo context (see CurrentAdmin).
func SessionGate(v SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := TokenFrom(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			id, err := v.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// TokenFrom extracts the raw session token from the request, or "".
func TokenFrom(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}
