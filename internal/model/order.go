package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one submission of items for a session.  A later round added
// to an existing table bill declares a parent order; sub-orders roll up
// into their parent for billing only, never for kitchen routing.  The
// total is derived from the items and recomputed inside the same
// transaction whenever an item is removed.
//
// Fields:
//  ID            – primary key identifier.
//  OrderNumber   – human-readable number shared by an order and its
//                  sub-orders (e.g. "ORD-20260828-0042").
//  SessionID     – owning session.
//  TableID       – table the order was placed from.
//  ParentOrderID – parent order for later rounds (nil for top-level).
//  Status        – kitchen pipeline state (see internal/status).
//  TotalAmount   – sum of unit_price * quantity over current items.
//  OrderedAt     – when the order was submitted.
//  PreparingAt   – when the kitchen started preparing (nil before).
//  ReadyAt       – when all items were ready (nil before).
//  ServedAt      – when the order was delivered to the table (nil before).
type Order struct {
	ID            uint64          // orders.id
	OrderNumber   string          // orders.order_number
	SessionID     uint64          // orders.session_id
	TableID       uint64          // orders.table_id
	ParentOrderID *uint64         // orders.parent_order_id (nullable)
	Status        string          // orders.status
	TotalAmount   decimal.Decimal // orders.total_amount DECIMAL(10,2)
	OrderedAt     time.Time       // orders.ordered_at
	PreparingAt   *time.Time      // orders.preparing_at (nullable)
	ReadyAt       *time.Time      // orders.ready_at (nullable)
	ServedAt      *time.Time      // orders.served_at (nullable)
	CreatedAt     time.Time       // orders.created_at
	UpdatedAt     time.Time       // orders.updated_at

	// Items holds the order's current line items when the order was
	// loaded with them; repositories that only need the header leave
	// it nil.
	Items []OrderItem
}

// OrderItem is a single line on an order.  The unit price is captured at
// submission time, including selection-option add-ons, and never changes
// even if the catalog price later does.
//
// Fields:
//  ID         – primary key identifier.
//  OrderID    – owning order.
//  MenuItemID – catalog item this line refers to.
//  Name       – item name snapshotted at submission time.
//  Department – fulfillment station responsible for this item.
//  Quantity   – number of units, always >= 1.
//  UnitPrice  – price per unit captured at submission time.
//  Notes      – optional free-text note ("no onions").
//  Selections – optional serialized selection-option choices (JSON).
type OrderItem struct {
	ID         uint64          // order_items.id
	OrderID    uint64          // order_items.order_id
	MenuItemID uint64          // order_items.menu_item_id
	Name       string          // order_items.name
	Department string          // order_items.department
	Quantity   uint32          // order_items.quantity
	UnitPrice  decimal.Decimal // order_items.unit_price DECIMAL(10,2)
	Notes      *string         // order_items.notes (nullable)
	Selections *string         // order_items.selections (nullable JSON)
	CreatedAt  time.Time       // order_items.created_at
}
