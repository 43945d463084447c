package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ExportGuests streams every guest with their stay summary as a CSV
// attachment named after today's date.  The file is built in memory first so
// a failure still yields a clean JSON error instead of a truncated download.
func (h *RegistryHandler) ExportGuests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var buf bytes.Buffer
	if err := h.Svc.ExportAll(ctx, &buf); err != nil {
		return respondError(c, err)
	}
	name := fmt.Sprintf("guests-%s.csv", h.now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
