package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the immutable record of one completed billing action for a
// session.  It snapshots the line items of the orders it settles so the
// receipt survives later catalog or order changes.  Exactly one payment
// is created per billing action and it is never mutated afterwards.
//
// Fields:
//  ID             – primary key identifier.
//  SessionID      – session being settled.
//  Method         – payment method (CASH, CARD, QR).
//  Subtotal       – sum of the settled order-group totals.
//  ExtraTotal     – total of extra charges (service fee etc.).
//  DiscountTotal  – discount applied, percentage or fixed.
//  FinalAmount    – max(0, subtotal + extra - discount), rounded to 2dp.
//  ReceivedAmount – cash tendered (nil for non-cash methods).
//  ChangeDue      – change returned for cash payments (nil otherwise).
//  Reference      – external reference printed on the receipt.
//  CreatedAt      – when the payment was taken.
type Payment struct {
	ID             uint64           // payments.id
	SessionID      uint64           // payments.session_id
	Method         string           // payments.method
	Subtotal       decimal.Decimal  // payments.subtotal DECIMAL(10,2)
	ExtraTotal     decimal.Decimal  // payments.extra_total DECIMAL(10,2)
	DiscountTotal  decimal.Decimal  // payments.discount_total DECIMAL(10,2)
	FinalAmount    decimal.Decimal  // payments.final_amount DECIMAL(10,2)
	ReceivedAmount *decimal.Decimal // payments.received_amount (nullable)
	ChangeDue      *decimal.Decimal // payments.change_due (nullable)
	Reference      string           // payments.reference
	CreatedAt      time.Time        // payments.created_at

	// Lines holds the snapshotted items when the payment was loaded
	// with them.
	Lines []PaymentLine
}

// PaymentLine is one snapshotted item on a payment.  Quantities and
// prices are copied from the order items at billing time.
type PaymentLine struct {
	ID          uint64          // payment_lines.id
	PaymentID   uint64          // payment_lines.payment_id
	Description string          // payment_lines.description
	Quantity    uint32          // payment_lines.quantity
	UnitPrice   decimal.Decimal // payment_lines.unit_price DECIMAL(10,2)
	LineTotal   decimal.Decimal // payment_lines.line_total DECIMAL(10,2)
}
