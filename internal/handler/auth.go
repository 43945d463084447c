package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-guest-registry/internal/auth"
	"github.com/iliyamo/inn-guest-registry/internal/metrics"
	"github.com/iliyamo/inn-guest-registry/internal/middleware"
	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// AuthHandler serves login, logout and session verification.
type AuthHandler struct {
	Gate    *auth.Gate
	Metrics *metrics.Metrics
	// SecureCookie sets the Secure flag on the session cookie.  It is off in
	// development so the cookie works over plain HTTP.
	SecureCookie bool
}

// NewAuthHandler returns the login, logout and verify handlers.
func NewAuthHandler(gate *auth.Gate, m *metrics.Metrics, secureCookie bool) *AuthHandler {
	return &AuthHandler{Gate: gate, Metrics: m, SecureCookie: secureCookie}
}

type loginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Admin     model.Admin `json:"admin"`
}

// Login checks the credentials and returns a session token, also set as the
// admin_token cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, admin, err := h.Gate.Login(ctx, req.Login, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			h.Metrics.LoginAttempt(metrics.LoginFailure)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		h.Metrics.LoginAttempt(metrics.LoginError)
		return respondError(c, err)
	}
	h.Metrics.LoginAttempt(metrics.LoginSuccess)

	c.SetCookie(h.sessionCookie(sess.Token, int(auth.SessionTTL/time.Second)))
	return c.JSON(http.StatusOK, loginResp{Token: sess.Token, ExpiresAt: sess.ExpiresAt, Admin: admin})
}

// Logout clears the session cookie.  Tokens are stateless, so a client
// holding a bearer token simply discards it.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Verify reports the identity of the current session.  It runs behind
// SessionGate, so reaching it means the token is valid.
func (h *AuthHandler) Verify(c echo.Context) error {
	id, ok := middleware.CurrentAdmin(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"authenticated": true, "admin": id})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}
