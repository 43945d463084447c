package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{model.Errorf(model.ErrInvalidInput, "invalid CPF"), http.StatusBadRequest, `{"error":"invalid CPF"}`},
		{model.Errorf(model.ErrConflict, "CPF taken"), http.StatusConflict, `{"error":"CPF taken"}`},
		{fmt.Errorf("load: %w", model.ErrNotFound), http.StatusNotFound, `{"error":"not found"}`},
		{model.ErrUnauthorized, http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{errors.New("dial tcp 10.0.0.5:3306: connection refused"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		assert.NoError(t, respondError(c, tc.err))
		assert.Equal(t, tc.status, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}

type pingerFunc func() error

func (f pingerFunc) PingContext(context.Context) error { return f() }

func TestReady(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		db     Pinger
		status int
	}{
		{nil, http.StatusOK},
		{pingerFunc(func() error { return nil }), http.StatusOK},
		{pingerFunc(func() error { return errors.New("down") }), http.StatusServiceUnavailable},
	} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/readyz", nil), rec)
		assert.NoError(t, Ready(tc.db)(c))
		assert.Equal(t, tc.status, rec.Code)
	}
}
