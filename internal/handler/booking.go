package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medirota/coverage-platform/internal/queue"
	"github.com/medirota/coverage-platform/internal/repository"
	"github.com/medirota/coverage-platform/internal/service"
)

// BookingHandler exposes direct admin booking actions.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Medics   *repository.MedicRepo
	Events   service.EventPublisher // may be nil
}

func NewBookingHandler(bookings *repository.BookingRepo, medics *repository.MedicRepo, events service.EventPublisher) *BookingHandler {
	if bookings == nil || medics == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Medics: medics, Events: events}
}

// Assign handles POST /v1/bookings/:id/assign, the direct admin
// reassignment path.  It uses the same version compare-and-swap as
// triage and swap approval, so a race against either answers 409
// instead of silently overwriting the other writer's medic_id.
func (h *BookingHandler) Assign(c echo.Context) error {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var body struct {
		MedicID uint64 `json:"medic_id"`
	}
	if err := c.Bind(&body); err != nil || body.MedicID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "medic_id is required"})
	}

	ctx := c.Request().Context()
	if _, err := h.Medics.GetByID(ctx, body.MedicID); err != nil {
		if errors.Is(err, repository.ErrMedicNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medic not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	b, err := h.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.Bookings.AssignMedic(ctx, b.ID, body.MedicID, b.Version); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleBooking):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking was modified concurrently, retry"})
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assignment failed"})
		}
	}

	if h.Events != nil {
		ev := queue.BookingAssignedEvent{
			BookingID:    b.ID,
			MedicID:      body.MedicID,
			SitePostcode: b.SitePostcode,
			ShiftDate:    b.ShiftDate.Format("2006-01-02"),
			Source:       "admin",
			AssignedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Events.BookingAssigned(ctx, ev); err != nil {
			log.Printf("booking: publish assigned event failed for booking %d: %v", b.ID, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
