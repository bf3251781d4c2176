// Package handler contains the Echo HTTP handlers.  Handlers own the
// request/response shape and the transaction boundaries; domain rules
// live in the billing, status, session and order packages, persistence
// in the repository package.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
	"github.com/iliyamo/restaurant-table-service/internal/model"
)

// getStaffID extracts the staff id placed in the context by the JWT
// middleware and converts it to uint64.
func getStaffID(c echo.Context) (uint64, error) {
	v := c.Get("staff_id")
	switch t := v.(type) {
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
	return 0, errors.New("invalid staff_id in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// respondErr maps a domain error to its HTTP response.  Validation
// failures are 422, conflicts and illegal state transitions 409,
// missing entities 404; anything else is treated as a database error.
func respondErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// ----- response shaping -----

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func sessionJSON(s *model.Session) echo.Map {
	return echo.Map{
		"id":            s.ID,
		"customer_name": s.CustomerName,
		"phone":         s.Phone,
		"notes":         s.Notes,
		"party_size":    s.PartySize,
		"status":        s.Status,
		"table_id":      s.TableID,
		"checked_in_at": s.CheckedInAt.Format(time.RFC3339),
		"seated_at":     timePtr(s.SeatedAt),
	}
}

func tableJSON(t *model.Table) echo.Map {
	return echo.Map{
		"id":        t.ID,
		"name":      t.Name,
		"capacity":  t.Capacity,
		"is_active": t.IsActive,
	}
}

func orderItemJSON(it model.OrderItem) echo.Map {
	return echo.Map{
		"id":           it.ID,
		"menu_item_id": it.MenuItemID,
		"name":         it.Name,
		"department":   it.Department,
		"quantity":     it.Quantity,
		"unit_price":   it.UnitPrice,
		"notes":        it.Notes,
		"selections":   it.Selections,
	}
}

func orderJSON(o *model.Order) echo.Map {
	items := make([]echo.Map, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemJSON(it))
	}
	return echo.Map{
		"id":              o.ID,
		"order_number":    o.OrderNumber,
		"session_id":      o.SessionID,
		"table_id":        o.TableID,
		"parent_order_id": o.ParentOrderID,
		"status":          o.Status,
		"total_amount":    o.TotalAmount,
		"ordered_at":      o.OrderedAt.Format(time.RFC3339),
		"preparing_at":    timePtr(o.PreparingAt),
		"ready_at":        timePtr(o.ReadyAt),
		"served_at":       timePtr(o.ServedAt),
		"items":           items,
	}
}

func shareJSON(sh model.Share) echo.Map {
	return echo.Map{
		"position":    sh.Position,
		"label":       sh.Label,
		"amount_owed": sh.AmountOwed,
		"amount_paid": sh.AmountPaid,
		"status":      sh.Status,
	}
}

func splitJSON(s *model.BillSplit) echo.Map {
	shares := make([]echo.Map, 0, len(s.Shares))
	for _, sh := range s.Shares {
		shares = append(shares, shareJSON(sh))
	}
	return echo.Map{
		"id":         s.ID,
		"session_id": s.SessionID,
		"strategy":   s.Strategy,
		"variance":   s.Variance,
		"created_at": s.CreatedAt.Format(time.RFC3339),
		"shares":     shares,
	}
}
