package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medirota/coverage-platform/internal/service"
)

// TriageHandler exposes the bulk assignment triage run.
type TriageHandler struct {
	Triage *service.Triage
}

func NewTriageHandler(t *service.Triage) *TriageHandler {
	if t == nil {
		panic("nil triage service passed to NewTriageHandler")
	}
	return &TriageHandler{Triage: t}
}

// Run handles POST /v1/triage/run.  The optional limit caps how many
// unassigned bookings are swept; skip_overtime_check passes through
// to the scorer.  The run always answers 200 with per-item results
// when the sweep itself could start; only a failure to fetch the
// unassigned list fails the call.
func (h *TriageHandler) Run(c echo.Context) error {
	var body struct {
		Limit             int  `json:"limit"`
		SkipOvertimeCheck bool `json:"skip_overtime_check"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Limit < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must not be negative"})
	}

	summary, err := h.Triage.Run(c.Request().Context(), body.Limit, body.SkipOvertimeCheck)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "triage run failed"})
	}
	return c.JSON(http.StatusOK, summary)
}
