package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated account ID that the JWT
// middleware stored in the echo context.  Claims decoded from JSON
// arrive as float64; tokens issued elsewhere may carry strings.
func getUserID(c echo.Context) (uint64, error) {
	return contextUint(c, "user_id")
}

// getMedicID extracts the caller's linked medic ID from the context.
// Admin accounts carry no medic_id claim, so swap endpoints that
// require a medic identity fail with an error for them.
func getMedicID(c echo.Context) (uint64, error) {
	return contextUint(c, "medic_id")
}

func contextUint(c echo.Context, key string) (uint64, error) {
	switch t := c.Get(key).(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}

// parseIDParam parses a numeric path parameter such as a swap or
// booking ID.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
