package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-guest-registry/internal/logger"
	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// respondError maps a domain error onto its HTTP status.  Anything that is
// not one of the model error kinds is logged and answered with a generic 500
// so internals never reach the client.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		ctx := c.Request().Context()
		logger.FromContext(ctx).ErrorContext(ctx, "request failed",
			"method", c.Request().Method, "route", c.Path(), "error", err)
	}
	return c.JSON(status, echo.Map{"error": model.Message(err)})
}

// bindJSON decodes the request body into dst.
func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return model.Errorf(model.ErrInvalidInput, "invalid request body")
	}
	return nil
}
