package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-guest-registry/internal/model"
	"github.com/iliyamo/inn-guest-registry/internal/registry"
)

// requestTimeout bounds every registry call made by a handler.
const requestTimeout = 5 * time.Second

// RegistryHandler serves the guest and stay endpoints.
type RegistryHandler struct {
	Svc *registry.Service
	now func() time.Time
}

// NewRegistryHandler returns handlers backed by svc.
func NewRegistryHandler(svc *registry.Service) *RegistryHandler {
	return &RegistryHandler{Svc: svc, now: time.Now}
}

// ----- DTOs -----

type guestReq struct {
	FullName  string     `json:"full_name"`
	CPF       string     `json:"cpf"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	BirthDate model.Date `json:"birth_date"`
}

func (r guestReq) input() registry.GuestInput {
	return registry.GuestInput{
		FullName:  r.FullName,
		CPF:       r.CPF,
		Email:     r.Email,
		Phone:     r.Phone,
		BirthDate: r.BirthDate,
	}
}

type registerReq struct {
	guestReq
	CheckIn  model.Date `json:"check_in"`
	CheckOut model.Date `json:"check_out"`
	Notes    string     `json:"notes"`
}

type stayReq struct {
	GuestID  string     `json:"guest_id"`
	CheckIn  model.Date `json:"check_in"`
	CheckOut model.Date `json:"check_out"`
	Notes    string     `json:"notes"`
}

type amendReq struct {
	CheckIn  model.Date        `json:"check_in"`
	CheckOut model.Date        `json:"check_out"`
	Status   *model.StayStatus `json:"status"`
	Notes    *string           `json:"notes"`
}

// ----- guests -----

// RegisterGuest creates a guest together with their first stay.
func (h *RegistryHandler) RegisterGuest(c echo.Context) error {
	var req registerReq
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	reg, err := h.Svc.RegisterGuest(ctx, registry.RegisterInput{
		Guest: req.guestReq.input(),
		Stay:  registry.StayInput{CheckIn: req.CheckIn, CheckOut: req.CheckOut, Notes: strings.TrimSpace(req.Notes)},
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, reg)
}

// ListGuests returns every guest with their stay summary.
func (h *RegistryHandler) ListGuests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.Svc.ListGuestsWithSummary(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SearchGuests filters guests by name, e-mail or CPF (?q=).  An empty term
// lists everyone.
func (h *RegistryHandler) SearchGuests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.Svc.SearchGuestsWithSummary(ctx, c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetGuest returns one guest with the full stay history.
func (h *RegistryHandler) GetGuest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.Svc.GetGuestDetail(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateGuest replaces a guest's personal fields.  Stays are untouched.
func (h *RegistryHandler) UpdateGuest(c echo.Context) error {
	var req guestReq
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	g, err := h.Svc.UpdateGuest(ctx, c.Param("id"), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// ----- stays -----

// CheckIn opens a new stay for the guest in the path, superseding their
// active stay.
func (h *RegistryHandler) CheckIn(c echo.Context) error {
	var req stayReq
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.checkIn(c, c.Param("id"), req)
}

// CheckInByBody is CheckIn with the guest id in the body, for clients of
// POST /v1/stays.
func (h *RegistryHandler) CheckInByBody(c echo.Context) error {
	var req stayReq
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	if strings.TrimSpace(req.GuestID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_id is required"})
	}
	return h.checkIn(c, strings.TrimSpace(req.GuestID), req)
}

func (h *RegistryHandler) checkIn(c echo.Context, guestID string, req stayReq) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	st, err := h.Svc.CheckIn(ctx, guestID, registry.StayInput{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Notes:    strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

// AmendStay edits a stay's dates, status or notes.
func (h *RegistryHandler) AmendStay(c echo.Context) error {
	var req amendReq
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	st, err := h.Svc.AmendStay(ctx, c.Param("id"), registry.AmendInput{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// GetStay returns one stay by id.
func (h *RegistryHandler) GetStay(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	st, err := h.Svc.GetStay(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// CancelStay marks a stay cancelled.  Stays are never deleted.
func (h *RegistryHandler) CancelStay(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	st, err := h.Svc.CancelStay(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "stay cancelled", "stay": st})
}
