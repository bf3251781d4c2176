package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentStaffID returns a string form of the authenticated staff id
// for rate-limit key building, or "anon" when the request carries no
// valid token.  JWTAuth stores the sub claim as whatever type the JSON
// decoder produced, usually float64.
func currentStaffID(c echo.Context) string {
	v := c.Get("staff_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	}
	return "anon"
}
