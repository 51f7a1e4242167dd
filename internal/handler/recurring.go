package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/service"
)

// RecurringHandler exposes recurring booking series creation.
type RecurringHandler struct {
	Series *service.Series
}

func NewRecurringHandler(s *service.Series) *RecurringHandler {
	if s == nil {
		panic("nil series service passed to NewRecurringHandler")
	}
	return &RecurringHandler{Series: s}
}

// Create handles POST /v1/bookings/recurring.  It expands the repeat
// rule into concrete dates and materializes one parent booking plus
// linked children.  A rule selecting no dates answers 200 with an
// empty series.
func (h *RecurringHandler) Create(c echo.Context) error {
	var body struct {
		ClientID                 uint64   `json:"client_id"`
		SiteName                 string   `json:"site_name"`
		SiteAddress              string   `json:"site_address"`
		SitePostcode             string   `json:"site_postcode"`
		StartDate                string   `json:"start_date"`
		EndDate                  string   `json:"end_date"`
		Pattern                  string   `json:"pattern"`
		DaysOfWeek               []int    `json:"days_of_week"`
		ExceptionDates           []string `json:"exception_dates"`
		StartTime                string   `json:"start_time"`
		EndTime                  string   `json:"end_time"`
		BaseRate                 float64  `json:"base_rate"`
		ShiftHours               float64  `json:"shift_hours"`
		ConfinedSpaceRequired    bool     `json:"confined_space_required"`
		TraumaSpecialistRequired bool     `json:"trauma_specialist_required"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ClientID == 0 || body.SitePostcode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id and site_postcode are required"})
	}
	switch body.Pattern {
	case model.PatternWeekly, model.PatternBiweekly, model.PatternMonthly:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pattern must be weekly, biweekly or monthly"})
	}
	if len(body.DaysOfWeek) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "days_of_week is required"})
	}
	for _, d := range body.DaysOfWeek {
		if d < 0 || d > 6 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "days_of_week values must be 0-6"})
		}
	}
	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date before start_date"})
	}
	exceptions := make([]time.Time, 0, len(body.ExceptionDates))
	for _, s := range body.ExceptionDates {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exception date: " + s})
		}
		exceptions = append(exceptions, d)
	}

	in := service.SeriesInput{
		ClientID:                 body.ClientID,
		SiteName:                 body.SiteName,
		SiteAddress:              body.SiteAddress,
		SitePostcode:             body.SitePostcode,
		StartDate:                start,
		EndDate:                  end,
		Pattern:                  body.Pattern,
		DaysOfWeek:               body.DaysOfWeek,
		ExceptionDates:           exceptions,
		StartTime:                body.StartTime,
		EndTime:                  body.EndTime,
		BaseRate:                 body.BaseRate,
		ShiftHours:               body.ShiftHours,
		ConfinedSpaceRequired:    body.ConfinedSpaceRequired,
		TraumaSpecialistRequired: body.TraumaSpecialistRequired,
	}
	result, err := h.Series.Create(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "series creation failed"})
	}
	return c.JSON(http.StatusCreated, result)
}
