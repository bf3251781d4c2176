package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is the slice of the catalog this service needs: the current
// price and the fulfillment department of an item.  Catalog content
// management lives elsewhere; the price here is only ever read at order
// submission time, so later catalog changes never retroactively affect
// existing order items.
type MenuItem struct {
	ID         uint64          // menu_items.id
	Name       string          // menu_items.name
	Department string          // menu_items.department
	Price      decimal.Decimal // menu_items.price DECIMAL(10,2)
	IsActive   bool            // menu_items.is_active
	UpdatedAt  time.Time       // menu_items.updated_at
}
