package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/repository"
	"github.com/medirota/coverage-platform/internal/service"
)

// SwapHandler exposes the shift swap workflow.  Medic endpoints
// resolve the caller's roster identity from the medic_id JWT claim;
// admin endpoints resolve the admin account from user_id.
type SwapHandler struct {
	Swaps *service.Swaps
}

func NewSwapHandler(s *service.Swaps) *SwapHandler {
	if s == nil {
		panic("nil swaps service passed to NewSwapHandler")
	}
	return &SwapHandler{Swaps: s}
}

// Offer handles POST /v1/swaps.  The calling medic puts one of their
// bookings up for exchange.
func (h *SwapHandler) Offer(c echo.Context) error {
	medicID, err := getMedicID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "medic identity required"})
	}
	var body struct {
		BookingID uint64 `json:"booking_id"`
	}
	if err := c.Bind(&body); err != nil || body.BookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}

	swapID, err := h.Swaps.Offer(c.Request().Context(), body.BookingID, medicID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "offer failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "swap_id": swapID})
}

// Accept handles POST /v1/swaps/:id/accept.  The qualification check
// runs automatically but never blocks: an unqualified acceptance
// proceeds with a warning attached for the approving admin.
func (h *SwapHandler) Accept(c echo.Context) error {
	medicID, err := getMedicID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "medic identity required"})
	}
	swapID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	outcome, err := h.Swaps.Accept(c.Request().Context(), swapID, medicID)
	if err != nil {
		return swapError(c, err)
	}
	resp := echo.Map{"success": true, "qualified": outcome.Qualified}
	if outcome.Warnings != "" {
		resp["warnings"] = outcome.Warnings
	}
	return c.JSON(http.StatusOK, resp)
}

// Approve handles POST /v1/swaps/:id/approve.  On success the target
// booking has been reassigned to the accepting medic.
func (h *SwapHandler) Approve(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	swapID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.Swaps.Approve(c.Request().Context(), swapID, adminID); err != nil {
		return swapError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Deny handles POST /v1/swaps/:id/deny.  A denial reason is required
// and becomes part of the swap's audit record; the booking is left
// untouched.
func (h *SwapHandler) Deny(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	swapID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.Swaps.Deny(c.Request().Context(), swapID, adminID, body.Reason); err != nil {
		if errors.Is(err, service.ErrDenialReasonRequired) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
		}
		return swapError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Available handles GET /v1/swaps/available.  It lists swaps awaiting
// acceptance, never including the caller's own offers.
func (h *SwapHandler) Available(c echo.Context) error {
	medicID, err := getMedicID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "medic identity required"})
	}

	swaps, err := h.Swaps.Available(c.Request().Context(), medicID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
	}
	if swaps == nil {
		swaps = []model.ShiftSwap{}
	}
	return c.JSON(http.StatusOK, echo.Map{"swaps": swaps})
}

// swapError translates coordinator errors into HTTP responses shared
// by the swap endpoints.
func swapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrSwapNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "swap not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrMedicNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "medic not found"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "swap is not in a state that allows this action"})
	case errors.Is(err, repository.ErrStaleBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking was modified concurrently, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "swap operation failed"})
	}
}
