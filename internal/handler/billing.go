package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
	"github.com/iliyamo/restaurant-table-service/internal/billing"
	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/queue"
	"github.com/iliyamo/restaurant-table-service/internal/repository"
	queue_publisher "github.com/iliyamo/restaurant-table-service/internal/service"
	"github.com/iliyamo/restaurant-table-service/internal/session"
	"github.com/iliyamo/restaurant-table-service/internal/status"
)

// BillingHandler settles a session's bill: it runs the calculator over
// the consolidated orders, snapshots the lines into an immutable
// payment and moves the session to BILLING.
type BillingHandler struct {
	Orders   *repository.OrderRepo
	Sessions *repository.SessionRepo
	Payments *repository.PaymentRepo
	Locks    *session.Locker
}

func NewBillingHandler(orders *repository.OrderRepo, sessions *repository.SessionRepo, payments *repository.PaymentRepo, locks *session.Locker) *BillingHandler {
	if orders == nil || sessions == nil || payments == nil || locks == nil {
		panic("nil dependency passed to NewBillingHandler")
	}
	return &BillingHandler{Orders: orders, Sessions: sessions, Payments: payments, Locks: locks}
}

type extraChargeReq struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	IsPercentage bool            `json:"is_percentage"`
}

type discountReq struct {
	Amount       decimal.Decimal `json:"amount"`
	IsPercentage bool            `json:"is_percentage"`
}

type billingReq struct {
	PaymentMethod  string           `json:"payment_method"`
	ExtraCharges   []extraChargeReq `json:"extra_charges"`
	Discount       *discountReq     `json:"discount"`
	ReceivedAmount *decimal.Decimal `json:"received_amount"`
	Reference      string           `json:"reference"`
}

// Process handles POST /v1/sessions/:id/billing.  Cancelled orders
// never reach the subtotal; the final amount is floored at zero and a
// zero bill cannot be paid.
func (h *BillingHandler) Process(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req billingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	method := strings.ToUpper(strings.TrimSpace(req.PaymentMethod))
	switch method {
	case billing.MethodCash, billing.MethodCard, billing.MethodQR:
	default:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "payment_method must be CASH, CARD or QR"})
	}
	charges := make([]billing.ExtraCharge, 0, len(req.ExtraCharges))
	for _, ch := range req.ExtraCharges {
		charges = append(charges, billing.ExtraCharge{
			Description:  ch.Description,
			Amount:       ch.Amount,
			IsPercentage: ch.IsPercentage,
		})
	}
	var discount *billing.Discount
	if req.Discount != nil {
		discount = &billing.Discount{Amount: req.Discount.Amount, IsPercentage: req.Discount.IsPercentage}
	}
	if err := billing.ValidateCharges(charges); err != nil {
		return respondErr(c, err)
	}
	if err := billing.ValidateDiscount(discount); err != nil {
		return respondErr(c, err)
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
	if !session.Active(s.Status) {
		return respondErr(c, apperr.InvalidStatef("session in status %s cannot be billed", s.Status))
	}
	paid, err := h.Payments.ExistsForSessionTx(ctx, tx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if paid {
		return respondErr(c, apperr.Conflictf("session %d already has a payment", id))
	}

	// The stripe lock keeps item mutations out while the bill is read.
	orders, err := h.Orders.ListBySession(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	subtotal := decimal.Zero
	lines := make([]model.PaymentLine, 0)
	for _, o := range orders {
		if o.Status == status.Cancelled {
			continue
		}
		subtotal = subtotal.Add(o.TotalAmount)
		for _, it := range o.Items {
			lines = append(lines, model.PaymentLine{
				Description: it.Name,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				LineTotal:   it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2),
			})
		}
	}

	totals := billing.Compute(subtotal, charges, discount).Rounded()
	change, err := billing.CheckPayment(totals.FinalAmount, method, req.ReceivedAmount)
	if err != nil {
		return respondErr(c, err)
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = uuid.NewString()
	}
	p := model.Payment{
		SessionID:     id,
		Method:        method,
		Subtotal:      totals.Subtotal,
		ExtraTotal:    totals.ExtraTotal,
		DiscountTotal: totals.DiscountTotal,
		FinalAmount:   totals.FinalAmount,
		Reference:     reference,
		Lines:         lines,
	}
	if method == billing.MethodCash {
		received := req.ReceivedAmount.Round(2)
		changeDue := change.Round(2)
		p.ReceivedAmount = &received
		p.ChangeDue = &changeDue
	}
	if err := h.Payments.CreateTx(ctx, tx, &p); err != nil {
		return respondErr(c, err)
	}
	if next := session.Advance(s.Status, session.Billing); next != s.Status {
		if err := h.Sessions.AdvanceStatusTx(ctx, tx, id, next); err != nil {
			return respondErr(c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if staffID, err := getStaffID(c); err == nil {
		log.Printf("payment %d for session %d recorded by staff %d", p.ID, id, staffID)
	}

	go publishPaymentCompleted(&p, s.TableID)

	return c.JSON(http.StatusCreated, paymentJSON(&p))
}

// List handles GET /v1/sessions/:id/payments.
func (h *BillingHandler) List(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Sessions.GetByID(ctx, id); err != nil {
		return respondErr(c, err)
	}
	payments, err := h.Payments.ListBySession(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]echo.Map, 0, len(payments))
	for i := range payments {
		out = append(out, paymentJSON(&payments[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": id, "payments": out})
}

func paymentJSON(p *model.Payment) echo.Map {
	lines := make([]echo.Map, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, echo.Map{
			"description": l.Description,
			"quantity":    l.Quantity,
			"unit_price":  l.UnitPrice,
			"line_total":  l.LineTotal,
		})
	}
	return echo.Map{
		"id":              p.ID,
		"session_id":      p.SessionID,
		"method":          p.Method,
		"subtotal":        p.Subtotal,
		"extra_total":     p.ExtraTotal,
		"discount_total":  p.DiscountTotal,
		"final_amount":    p.FinalAmount,
		"received_amount": p.ReceivedAmount,
		"change_due":      p.ChangeDue,
		"reference":       p.Reference,
		"created_at":      p.CreatedAt.Format(time.RFC3339),
		"lines":           lines,
	}
}

func publishPaymentCompleted(p *model.Payment, tableID *uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ev := queue.PaymentCompletedEvent{
		PaymentID:        p.ID,
		SessionID:        p.SessionID,
		TableID:          tableID,
		Method:           p.Method,
		FinalAmountCents: p.FinalAmount.Shift(2).IntPart(),
		PaidAt:           time.Now().UTC().Format(time.RFC3339),
	}
	if p.ChangeDue != nil {
		cents := p.ChangeDue.Shift(2).IntPart()
		ev.ChangeDueCents = &cents
	}
	_ = queue_publisher.PublishPaymentCompleted(ctx, ev)
}
