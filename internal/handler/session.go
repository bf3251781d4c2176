package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/repository"
	"github.com/iliyamo/restaurant-table-service/internal/session"
)

// SessionHandler drives the table-session lifecycle: check-in, seating,
// removal from the waiting list and checkout.  Every mutation takes the
// session's stripe lock and then a transaction with the session row
// locked, so lifecycle moves on one session serialize with the order
// and billing paths.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Tables   *repository.TableRepo
	Payments *repository.PaymentRepo
	Locks    *session.Locker
}

func NewSessionHandler(sessions *repository.SessionRepo, tables *repository.TableRepo, payments *repository.PaymentRepo, locks *session.Locker) *SessionHandler {
	if sessions == nil || tables == nil || payments == nil || locks == nil {
		panic("nil dependency passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: sessions, Tables: tables, Payments: payments, Locks: locks}
}

type checkInReq struct {
	PartySize    uint32  `json:"party_size"`
	CustomerName *string `json:"customer_name"`
	Phone        *string `json:"phone"`
	Notes        *string `json:"notes"`
}

type seatReq struct {
	TableID uint64 `json:"table_id"`
}

// CheckIn handles POST /v1/sessions.  A new party enters the waiting
// list; no table is involved yet.
func (h *SessionHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PartySize < 1 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "party_size must be at least 1"})
	}
	if req.CustomerName != nil {
		trimmed := strings.TrimSpace(*req.CustomerName)
		req.CustomerName = &trimmed
	}
	s := model.Session{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Notes:        req.Notes,
		PartySize:    req.PartySize,
		Status:       session.Waiting,
		CheckedInAt:  time.Now().UTC(),
	}
	if err := h.Sessions.Create(c.Request().Context(), &s); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, sessionJSON(&s))
}

// Get handles GET /v1/sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	s, err := h.Sessions.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, sessionJSON(s))
}

// Waiting handles GET /v1/sessions/waiting: the host stand's waiting
// list, oldest check-in first.
func (h *SessionHandler) Waiting(c echo.Context) error {
	sessions, err := h.Sessions.ListWaiting(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]echo.Map, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionJSON(&sessions[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// Seat handles PUT /v1/sessions/:id/seat.  Moves a WAITING session to
// SEATED at the requested table.  Seating a party larger than the
// table's capacity is allowed; the response carries a capacity_warning
// so the host can override knowingly.
func (h *SessionHandler) Seat(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req seatReq
	if err := c.Bind(&req); err != nil || req.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id is required"})
	}

	h.Locks.Lock(id)
	defer h.Locks.Unlock(id)

	ctx := c.Request().Context()
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := h.Sessions.GetByIDTx(ctx, tx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if err := session.CheckSeat(s.Status); err != nil {
		return respondErr(c, err)
	}
	t, err := h.Tables.GetByIDTx(ctx, tx, req.TableID)
	if err != nil {
		return respondErr(c, err)
	}
	if !t.IsActive {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "table is not in service"})
	}
	now := time.Now().UTC()
	if err := h.Sessions.SeatTx(ctx, tx, id, req.TableID, now); err != nil {
		return respondErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	s.Status = session.Seated
	s.TableID = &req.TableID
	s.SeatedAt = &now
	resp := sessionJSON(s)
	resp["capacity_warning"] = s.PartySize > t.Capacity
	return c.JSON(http.StatusOK, resp)
}

// Checkout handles PUT /v1/sessions/:id/checkout.  Allowed from BILLING,
// or from DINING once a payment exists; the table is freed either way.
func (h *SessionHandler) Checkout(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	h.Locks.Lock(id)
	defer h.Locks.Unlock(id)

	ctx := c.Request().Context()
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := h.Sessions.GetByIDTx(ctx, tx, id)
	if err != nil {
		return respondErr(c, err)
	}
	paid, err := h.Payments.ExistsForSessionTx(ctx, tx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if err := session.CheckCheckout(s.Status, paid); err != nil {
		return respondErr(c, err)
	}
	if err := h.Sessions.CompleteTx(ctx, tx, id); err != nil {
		return respondErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	s.Status = session.Completed
	s.TableID = nil
	return c.JSON(http.StatusOK, sessionJSON(s))
}

// Remove handles DELETE /v1/sessions/:id for parties that leave before
// being seated.  Anything past WAITING is history and stays.
func (h *SessionHandler) Remove(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	h.Locks.Lock(id)
	defer h.Locks.Unlock(id)

	ctx := c.Request().Context()
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := h.Sessions.GetByIDTx(ctx, tx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if err := session.CheckRemoveWaiting(s.Status); err != nil {
		return respondErr(c, err)
	}
	if err := h.Sessions.DeleteWaitingTx(ctx, tx, id); err != nil {
		return respondErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"message": "session removed"})
}
