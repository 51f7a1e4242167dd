package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medirota/coverage-platform/internal/repository"
	"github.com/medirota/coverage-platform/internal/service"
)

// CostHandler exposes the out-of-territory cost evaluation.
type CostHandler struct {
	Optimizer *service.CostOptimizer
}

func NewCostHandler(o *service.CostOptimizer) *CostHandler {
	if o == nil {
		panic("nil optimizer passed to NewCostHandler")
	}
	return &CostHandler{Optimizer: o}
}

// Evaluate handles POST /v1/coverage/out-of-territory.  It answers
// with the cheapest viable coverage strategy for the given medic and
// site, or a deny recommendation; every out-of-territory verdict is
// flagged for admin approval.
func (h *CostHandler) Evaluate(c echo.Context) error {
	var body struct {
		MedicID             uint64  `json:"medic_id"`
		BookingSitePostcode string  `json:"booking_site_postcode"`
		ShiftHours          float64 `json:"shift_hours"`
		BaseRate            float64 `json:"base_rate"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MedicID == 0 || body.BookingSitePostcode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "medic_id and booking_site_postcode are required"})
	}

	ev, err := h.Optimizer.Evaluate(c.Request().Context(), body.MedicID, body.BookingSitePostcode, body.ShiftHours, body.BaseRate)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMedicNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medic not found"})
		case errors.Is(err, service.ErrTravelCalculation):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cost evaluation failed"})
		}
	}
	return c.JSON(http.StatusOK, ev)
}
