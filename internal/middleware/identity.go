package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-guest-registry/internal/auth"
)

// Context keys set by SessionGate.
const (
	ctxAdminID = "admin_id"
	ctxLogin   = "login"
)

func setIdentity(c echo.Context, id auth.Identity) {
	c.Set(ctxAdminID, id.AdminID)
	c.Set(ctxLogin, id.Login)
}

// CurrentAdmin returns the identity SessionGate stored on c.
func CurrentAdmin(c echo.Context) (auth.Identity, bool) {
	id, _ := c.Get(ctxAdminID).(string)
	login, _ := c.Get(ctxLogin).(string)
	if id == "" {
		return auth.Identity{}, false
	}
	return auth.Identity{AdminID: id, Login: login}, true
}

// currentAdminID is the admin id for rate-limit keys and logs, "anon" before
// authentication.
func currentAdminID(c echo.Context) string {
	if id, ok := CurrentAdmin(c); ok {
		return id.AdminID
	}
	return "anon"
}
