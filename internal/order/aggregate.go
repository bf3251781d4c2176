// Package order contains the pure aggregation logic over order records:
// line totals, rolling sub-orders up into their parent for billing, and
// collapsing orders that share an order number into one logical group
// for display.  Persistence lives in the repository package.
package order

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/status"
)

// Group is a consolidated view over one or more order submissions: a
// top-level order with its sub-orders rolled in, or all orders sharing
// one order number.  Sub-orders never appear as independent entries.
type Group struct {
	OrderID     uint64            `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      string            `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Submissions int               `json:"submissions"`
	Items       []model.OrderItem `json:"items"`
}

// ItemsTotal sums unit_price * quantity over the given lines at full
// precision.  This is the one definition of an order's total; the
// repository recomputes it inside the same transaction after every item
// mutation so the stored total never drifts from the items.
func ItemsTotal(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Consolidate rolls sub-orders up into their parents and returns only
// top-level groups, each carrying the union of its own and its
// sub-orders' items, the summed total and the count of constituent
// submissions.  Billing and the table's running total read this view.
// A sub-order whose parent is not in the input is kept as its own group
// so no money silently disappears from the bill.
func Consolidate(orders []model.Order) []Group {
	groups := make([]Group, 0, len(orders))
	index := make(map[uint64]int, len(orders))
	statuses := make(map[uint64][]string, len(orders))

	for _, o := range orders {
		if o.ParentOrderID != nil {
			continue
		}
		index[o.ID] = len(groups)
		statuses[o.ID] = []string{o.Status}
		groups = append(groups, Group{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			TotalAmount: o.TotalAmount,
			Submissions: 1,
			Items:       append([]model.OrderItem(nil), o.Items...),
		})
	}
	for _, o := range orders {
		if o.ParentOrderID == nil {
			continue
		}
		idx, ok := index[*o.ParentOrderID]
		if !ok {
			// dangling sub-order: surface it rather than drop it
			index[o.ID] = len(groups)
			statuses[o.ID] = []string{o.Status}
			groups = append(groups, Group{
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				TotalAmount: o.TotalAmount,
				Submissions: 1,
				Items:       append([]model.OrderItem(nil), o.Items...),
			})
			continue
		}
		parentID := *o.ParentOrderID
		groups[idx].TotalAmount = groups[idx].TotalAmount.Add(o.TotalAmount)
		groups[idx].Submissions++
		groups[idx].Items = append(groups[idx].Items, o.Items...)
		statuses[parentID] = append(statuses[parentID], o.Status)
	}
	for id, idx := range index {
		groups[idx].Status = status.MostUrgent(statuses[id])
	}
	return groups
}

// GroupByNumber collapses orders sharing one order number into a single
// logical group whose status is the most urgent of its members.  The
// kitchen and waiter dashboards use this view so staff see "still needs
// attention" at a glance even when some rounds are already done.
// Groups keep the first-seen order of their numbers.
func GroupByNumber(orders []model.Order) []Group {
	groups := make([]Group, 0, len(orders))
	index := make(map[string]int, len(orders))
	statuses := make(map[string][]string, len(orders))

	for _, o := range orders {
		idx, ok := index[o.OrderNumber]
		if !ok {
			idx = len(groups)
			index[o.OrderNumber] = idx
			groups = append(groups, Group{
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
			})
		}
		groups[idx].TotalAmount = groups[idx].TotalAmount.Add(o.TotalAmount)
		groups[idx].Submissions++
		groups[idx].Items = append(groups[idx].Items, o.Items...)
		statuses[o.OrderNumber] = append(statuses[o.OrderNumber], o.Status)
	}
	for number, idx := range index {
		groups[idx].Status = status.MostUrgent(statuses[number])
	}
	return groups
}

// RoutesToDepartment reports whether any line of the order is fulfilled
// by the given department.  Department routing always looks at
// individual orders, never consolidated groups.
func RoutesToDepartment(o model.Order, department string) bool {
	for _, it := range o.Items {
		if it.Department == department {
			return true
		}
	}
	return false
}
