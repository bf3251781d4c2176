// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedEvent is published when a submission is accepted.  It
// carries the routing information the kitchen printer consumer needs
// without a database round trip.
type OrderPlacedEvent struct {
	OrderID     uint64           `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	SessionID   uint64           `json:"session_id"`
	TableID     *uint64          `json:"table_id,omitempty"`
	IsSubOrder  bool             `json:"is_sub_order"`
	Items       []OrderEventItem `json:"items"`
	TotalCents  int64            `json:"total_cents"`
	PlacedAt    string           `json:"placed_at"`
}

// OrderEventItem is one ticket line of an OrderPlacedEvent.
type OrderEventItem struct {
	Name       string  `json:"name"`
	Quantity   uint32  `json:"quantity"`
	Department string  `json:"department"`
	Notes      *string `json:"notes,omitempty"`
	Selections *string `json:"selections,omitempty"`
}

// PaymentCompletedEvent is published after a session's bill is settled.
// Downstream consumers use it for receipts and end-of-day reporting.
type PaymentCompletedEvent struct {
	PaymentID        uint64  `json:"payment_id"`
	SessionID        uint64  `json:"session_id"`
	TableID          *uint64 `json:"table_id,omitempty"`
	Method           string  `json:"method"`
	FinalAmountCents int64   `json:"final_amount_cents"`
	ChangeDueCents   *int64  `json:"change_due_cents,omitempty"`
	PaidAt           string  `json:"paid_at"`
}
