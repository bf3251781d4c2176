package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
	"github.com/iliyamo/restaurant-table-service/internal/catalog"
	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/order"
	"github.com/iliyamo/restaurant-table-service/internal/queue"
	"github.com/iliyamo/restaurant-table-service/internal/repository"
	"github.com/iliyamo/restaurant-table-service/internal/session"
	"github.com/iliyamo/restaurant-table-service/internal/status"
	queue_publisher "github.com/iliyamo/restaurant-table-service/internal/service"
)

// OrderHandler covers order submission, the status pipeline, item
// removal and the aggregated read views.  Mutations take the owning
// session's stripe lock before opening a transaction so an order's
// stored total can never drift from its items.
type OrderHandler struct {
	Orders   *repository.OrderRepo
	Sessions *repository.SessionRepo
	Catalog  catalog.Lookup
	Locks    *session.Locker
}

func NewOrderHandler(orders *repository.OrderRepo, sessions *repository.SessionRepo, cat catalog.Lookup, locks *session.Locker) *OrderHandler {
	if orders == nil || sessions == nil || cat == nil || locks == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Sessions: sessions, Catalog: cat, Locks: locks}
}

// ----- DTOs -----

type selectionReq struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type submitItemReq struct {
	MenuItemID uint64         `json:"menu_item_id"`
	Quantity   uint32         `json:"quantity"`
	Notes      *string        `json:"notes"`
	Selections []selectionReq `json:"selections"`
}

type submitReq struct {
	SessionID     uint64          `json:"session_id"`
	TableID       uint64          `json:"table_id"`
	ParentOrderID *uint64         `json:"parent_order_id"`
	Items         []submitItemReq `json:"items"`
}

type statusReq struct {
	Status string `json:"status"`
}

type bulkStatusReq struct {
	OrderIDs []uint64 `json:"order_ids"`
	Status   string   `json:"status"`
}

// orderable is the set of session states that accept new submissions:
// seated through dining.  WAITING has no table and BILLING onwards is
// settled money.
func orderable(s string) bool {
	switch s {
	case session.Seated, session.Ordering, session.Ordered, session.Dining:
		return true
	}
	return false
}

// Submit handles POST /v1/orders.  Prices and departments are captured
// from the catalog at this moment; selection add-ons raise the unit
// price and are stored verbatim on the line.  Declaring parent_order_id
// attaches the round to an existing order as a sub-order sharing its
// order number.
func (h *OrderHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SessionID == 0 || req.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id and table_id are required"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "order must contain at least one item"})
	}
	for _, it := range req.Items {
		if it.MenuItemID == 0 || it.Quantity < 1 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "every item needs a menu_item_id and quantity >= 1"})
		}
	}

	h.Locks.Lock(req.SessionID)
	defer h.Locks.Unlock(req.SessionID)

	ctx := c.Request().Context()
	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := h.Sessions.GetByIDTx(ctx, tx, req.SessionID)
	if err != nil {
		return respondErr(c, err)
	}
	if !orderable(s.Status) {
		return respondErr(c, apperr.InvalidStatef("session in status %s cannot order", s.Status))
	}
	if s.TableID == nil || *s.TableID != req.TableID {
		return respondErr(c, apperr.Validationf("session %d is not seated at table %d", req.SessionID, req.TableID))
	}

	now := time.Now().UTC()
	var orderNumber string
	if req.ParentOrderID != nil {
		parent, err := h.Orders.GetByIDTx(ctx, tx, *req.ParentOrderID)
		if err != nil {
			return respondErr(c, err)
		}
		if parent.SessionID != req.SessionID {
			return respondErr(c, apperr.Validationf("parent order %d belongs to another session", parent.ID))
		}
		if parent.ParentOrderID != nil {
			return respondErr(c, apperr.Validationf("order %d is itself a sub-order; sub-orders do not nest", parent.ID))
		}
		if status.Terminal(parent.Status) {
			return respondErr(c, apperr.InvalidStatef("parent order %d is %s", parent.ID, parent.Status))
		}
		orderNumber = parent.OrderNumber
	} else {
		orderNumber, err = h.Orders.NextOrderNumberTx(ctx, tx, now)
		if err != nil {
			return respondErr(c, err)
		}
	}

	items, err := h.buildItems(ctx, req.Items)
	if err != nil {
		return respondErr(c, err)
	}

	o := model.Order{
		OrderNumber:   orderNumber,
		SessionID:     req.SessionID,
		TableID:       req.TableID,
		ParentOrderID: req.ParentOrderID,
		Status:        status.Pending,
		TotalAmount:   order.ItemsTotal(items),
		OrderedAt:     now,
		Items:         items,
	}
	if err := h.Orders.CreateTx(ctx, tx, &o); err != nil {
		return respondErr(c, err)
	}

	if next := session.Advance(s.Status, session.AfterOrderEvent(status.Pending)); next != s.Status {
		if err := h.Sessions.AdvanceStatusTx(ctx, tx, s.ID, next); err != nil {
			return respondErr(c, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	go publishOrderPlaced(&o)

	return c.JSON(http.StatusCreated, orderJSON(&o))
}

// buildItems resolves the submitted lines against the catalog.  Unknown
// or inactive menu items fail the whole submission.
func (h *OrderHandler) buildItems(ctx context.Context, reqItems []submitItemReq) ([]model.OrderItem, error) {
	ids := make([]uint64, 0, len(reqItems))
	for _, it := range reqItems {
		ids = append(ids, it.MenuItemID)
	}
	menu, err := h.Catalog.ItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]model.OrderItem, 0, len(reqItems))
	for _, it := range reqItems {
		m, ok := menu[it.MenuItemID]
		if !ok {
			return nil, apperr.Validationf("menu item %d does not exist or is inactive", it.MenuItemID)
		}
		unit := m.Price
		var selections *string
		if len(it.Selections) > 0 {
			for _, sel := range it.Selections {
				if sel.Price.IsNegative() {
					return nil, apperr.Validationf("selection %q has negative price", sel.Name)
				}
				unit = unit.Add(sel.Price)
			}
			raw, err := json.Marshal(it.Selections)
			if err != nil {
				return nil, err
			}
			enc := string(raw)
			selections = &enc
		}
		items = append(items, model.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       m.Name,
			Department: m.Department,
			Quantity:   it.Quantity,
			UnitPrice:  unit,
			Notes:      it.Notes,
			Selections: selections,
		})
	}
	return items, nil
}

func publishOrderPlaced(o *model.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	items := make([]queue.OrderEventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, queue.OrderEventItem{
			Name:       it.Name,
			Quantity:   it.Quantity,
			Department: it.Department,
			Notes:      it.Notes,
			Selections: it.Selections,
		})
	}
	tableID := o.TableID
	_ = queue_publisher.PublishOrderPlaced(ctx, queue.OrderPlacedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		SessionID:   o.SessionID,
		TableID:     &tableID,
		IsSubOrder:  o.ParentOrderID != nil,
		Items:       items,
		TotalCents:  o.TotalAmount.Round(2).Shift(2).IntPart(),
		PlacedAt:    o.OrderedAt.Format(time.RFC3339),
	})
}

// UpdateStatus handles PATCH /v1/orders/:id/status.  The transition is
// checked against the pipeline's adjacency list; successful moves stamp
// their timestamp and may pull the owning session forward.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	to := strings.ToUpper(strings.TrimSpace(req.Status))

	o, err := h.applyStatus(c.Request().Context(), id, to)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// BulkStatus handles POST /v1/orders/status.  Each order is processed
// independently in its own transaction and reported individually; one
// bad order never hides the outcome of the others.
func (h *OrderHandler) BulkStatus(c echo.Context) error {
	var req bulkStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.OrderIDs) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "order_ids is required"})
	}
	to := strings.ToUpper(strings.TrimSpace(req.Status))

	ctx := c.Request().Context()
	results := make([]echo.Map, 0, len(req.OrderIDs))
	for _, id := range req.OrderIDs {
		o, err := h.applyStatus(ctx, id, to)
		if err != nil {
			results = append(results, echo.Map{"order_id": id, "ok": false, "error": err.Error()})
			continue
		}
		results = append(results, echo.Map{"order_id": id, "ok": true, "status": o.Status})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// applyStatus performs one guarded status transition under the owning
// session's lock.  The order is re-read inside the transaction because
// its status may have moved between the lookup and the lock.
func (h *OrderHandler) applyStatus(ctx context.Context, orderID uint64, to string) (*model.Order, error) {
	peek, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	h.Locks.Lock(peek.SessionID)
	defer h.Locks.Unlock(peek.SessionID)

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := h.Orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := status.Transition(o.Status, to); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := h.Orders.UpdateStatusTx(ctx, tx, orderID, to, now); err != nil {
		return nil, err
	}

	if target := session.AfterOrderEvent(to); target != "" {
		s, err := h.Sessions.GetByIDTx(ctx, tx, o.SessionID)
		if err != nil {
			return nil, err
		}
		if next := session.Advance(s.Status, target); next != s.Status {
			if err := h.Sessions.AdvanceStatusTx(ctx, tx, s.ID, next); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	o.Status = to
	switch to {
	case status.Preparing:
		o.PreparingAt = &now
	case status.Ready:
		o.ReadyAt = &now
	case status.Delivered:
		o.ServedAt = &now
	}
	return o, nil
}

// DeleteItem handles DELETE /v1/orders/:id/items/:itemID.  Removal is
// allowed while the order is still mutable; the stored total is
// re-derived from the surviving rows in the same transaction.
func (h *OrderHandler) DeleteItem(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx := c.Request().Context()
	peek, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		return respondErr(c, err)
	}

	h.Locks.Lock(peek.SessionID)
	defer h.Locks.Unlock(peek.SessionID)

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := h.Orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return respondErr(c, err)
	}
	if !status.Deletable(o.Status) {
		return respondErr(c, apperr.InvalidStatef("order in status %s no longer allows item removal", o.Status))
	}
	if err := h.Orders.DeleteItemTx(ctx, tx, orderID, itemID); err != nil {
		return respondErr(c, err)
	}
	total, err := h.Orders.RecomputeTotalTx(ctx, tx, orderID)
	if err != nil {
		return respondErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"order_id":     orderID,
		"item_id":      itemID,
		"total_amount": total,
	})
}

// SessionOrders handles GET /v1/sessions/:id/orders: the consolidated
// bill view.  Sub-orders roll up into their parents; the running total
// skips cancelled orders since nothing cancelled is ever billed.
func (h *OrderHandler) SessionOrders(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Sessions.GetByID(ctx, id); err != nil {
		return respondErr(c, err)
	}
	orders, err := h.Orders.ListBySession(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	groups := order.Consolidate(orders)
	running := decimal.Zero
	for _, o := range orders {
		if o.Status != status.Cancelled {
			running = running.Add(o.TotalAmount)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session_id":    id,
		"orders":        groups,
		"running_total": running.Round(2),
	})
}

// DepartmentOrders handles GET /v1/departments/:name/orders: every
// order a station still has work on, with full tickets.
func (h *OrderHandler) DepartmentOrders(c echo.Context) error {
	name := strings.ToUpper(strings.TrimSpace(c.Param("name")))
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid department"})
	}
	orders, err := h.Orders.ListPendingByDepartment(c.Request().Context(), name)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]echo.Map, 0, len(orders))
	for i := range orders {
		out = append(out, orderJSON(&orders[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"department": name, "orders": out})
}
