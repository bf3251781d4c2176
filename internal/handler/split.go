package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
	"github.com/iliyamo/restaurant-table-service/internal/billing"
	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/repository"
	"github.com/iliyamo/restaurant-table-service/internal/session"
	"github.com/iliyamo/restaurant-table-service/internal/status"
)

// SplitHandler creates bill splits and records per-share payments.
// The amount being split is the session's payment when one exists,
// otherwise the current consolidated total, so staff can split either
// before or after ringing the bill up.
type SplitHandler struct {
	Splits   *repository.SplitRepo
	Orders   *repository.OrderRepo
	Payments *repository.PaymentRepo
	Sessions *repository.SessionRepo
	Locks    *session.Locker
}

func NewSplitHandler(splits *repository.SplitRepo, orders *repository.OrderRepo, payments *repository.PaymentRepo, sessions *repository.SessionRepo, locks *session.Locker) *SplitHandler {
	if splits == nil || orders == nil || payments == nil || sessions == nil || locks == nil {
		panic("nil dependency passed to NewSplitHandler")
	}
	return &SplitHandler{Splits: splits, Orders: orders, Payments: payments, Sessions: sessions, Locks: locks}
}

type personReq struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type assignmentReq struct {
	ItemID uint64 `json:"item_id"`
	Payer  int    `json:"payer"`
}

type splitReq struct {
	Strategy    string          `json:"strategy"`
	People      int             `json:"people"`      // EQUAL
	Persons     []personReq     `json:"persons"`     // BY_PERSON
	Payers      int             `json:"payers"`      // BY_ITEM
	Labels      []string        `json:"labels"`      // BY_ITEM, optional
	Assignments []assignmentReq `json:"assignments"` // BY_ITEM
}

type sharePaymentReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// Create handles POST /v1/sessions/:id/splits.
func (h *SplitHandler) Create(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req splitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	strategy := strings.ToUpper(strings.TrimSpace(req.Strategy))

	h.Locks.Lock(id)
	defer h.Locks.Unlock(id)

	ctx := c.Request().Context()
	if _, err := h.Sessions.GetByID(ctx, id); err != nil {
		return respondErr(c, err)
	}
	orders, err := h.Orders.ListBySession(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	total, err := h.billTotal(c, id, orders)
	if err != nil {
		return respondErr(c, err)
	}

	var (
		shares   []billing.SplitShare
		variance decimal.Decimal
	)
	switch strategy {
	case billing.SplitEqualStrategy:
		shares, err = billing.SplitEqual(total, req.People)
	case billing.SplitByPersonStrategy:
		people := make([]billing.PersonAmount, 0, len(req.Persons))
		for _, p := range req.Persons {
			people = append(people, billing.PersonAmount{Label: p.Label, Amount: p.Amount})
		}
		shares, variance, err = billing.SplitByPerson(total, people)
	case billing.SplitByItemStrategy:
		shares, err = h.splitByItem(orders, req)
	default:
		err = apperr.Validationf("unknown split strategy %q", req.Strategy)
	}
	if err != nil {
		return respondErr(c, err)
	}

	split := model.BillSplit{SessionID: id, Strategy: strategy, Variance: variance.Round(2)}
	for i, sh := range shares {
		split.Shares = append(split.Shares, model.Share{
			Position:   uint32(i),
			Label:      sh.Label,
			AmountOwed: sh.Amount,
			AmountPaid: decimal.Zero,
			Status:     billing.ShareUnpaid,
		})
	}

	tx, err := h.Splits.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Splits.CreateTx(ctx, tx, &split); err != nil {
		return respondErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusCreated, splitJSON(&split))
}

// billTotal returns the amount a split divides: the recorded payment's
// final amount when the bill was already rung up, otherwise the sum of
// the session's non-cancelled orders.
func (h *SplitHandler) billTotal(c echo.Context, sessionID uint64, orders []model.Order) (decimal.Decimal, error) {
	payments, err := h.Payments.ListBySession(c.Request().Context(), sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(payments) > 0 {
		return payments[len(payments)-1].FinalAmount, nil
	}
	total := decimal.Zero
	for _, o := range orders {
		if o.Status != status.Cancelled {
			total = total.Add(o.TotalAmount)
		}
	}
	return total.Round(2), nil
}

// splitByItem maps the request's item assignments onto the session's
// actual items.  Items not mentioned default to payer 0; assignments
// referencing unknown items or payers fail the split.
func (h *SplitHandler) splitByItem(orders []model.Order, req splitReq) ([]billing.SplitShare, error) {
	assigned := make(map[uint64]int, len(req.Assignments))
	for _, a := range req.Assignments {
		assigned[a.ItemID] = a.Payer
	}
	known := make(map[uint64]bool)
	items := make([]billing.ItemAssignment, 0)
	for _, o := range orders {
		if o.Status == status.Cancelled {
			continue
		}
		for _, it := range o.Items {
			known[it.ID] = true
			payer, ok := assigned[it.ID]
			if !ok {
				payer = -1 // unassigned, splitter sends it to payer 0
			}
			items = append(items, billing.ItemAssignment{
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
				Payer:     payer,
			})
		}
	}
	for itemID := range assigned {
		if !known[itemID] {
			return nil, apperr.Validationf("item %d is not on this session's bill", itemID)
		}
	}
	return billing.SplitByItem(items, req.Payers, req.Labels)
}

// Get handles GET /v1/splits/:id.
func (h *SplitHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid split id"})
	}
	split, err := h.Splits.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, splitJSON(split))
}

// PayShare handles POST /v1/splits/:id/shares/:index/payments.
// Payments accumulate; a share crosses to PARTIAL and then PAID as its
// running sum reaches the owed amount.
func (h *SplitHandler) PayShare(c echo.Context) error {
	splitID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid split id"})
	}
	index, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid share index"})
	}
	var req sharePaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	split, err := h.Splits.GetByID(ctx, splitID)
	if err != nil {
		return respondErr(c, err)
	}

	h.Locks.Lock(split.SessionID)
	defer h.Locks.Unlock(split.SessionID)

	tx, err := h.Splits.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	share, err := h.Splits.GetShareTx(ctx, tx, splitID, uint32(index))
	if err != nil {
		return respondErr(c, err)
	}
	paid, newStatus, err := billing.ApplySharePayment(share.AmountOwed, share.AmountPaid, req.Amount)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Splits.UpdateShareTx(ctx, tx, share.ID, paid.Round(2), newStatus); err != nil {
		return respondErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	share.AmountPaid = paid.Round(2)
	share.Status = newStatus
	return c.JSON(http.StatusOK, shareJSON(*share))
}
