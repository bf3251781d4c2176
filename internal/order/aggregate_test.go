package order

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/status"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(id uint64, qty uint32, price string) model.OrderItem {
	return model.OrderItem{ID: id, Quantity: qty, UnitPrice: dec(price)}
}

func TestItemsTotal(t *testing.T) {
	items := []model.OrderItem{
		item(1, 2, "12.50"),
		item(2, 1, "8.00"),
		item(3, 3, "0.99"),
	}
	if got := ItemsTotal(items); !got.Equal(dec("35.97")) {
		t.Fatalf("ItemsTotal = %s, want 35.97", got)
	}
	if got := ItemsTotal(nil); !got.IsZero() {
		t.Fatalf("ItemsTotal(nil) = %s, want 0", got)
	}
}

func TestItemsTotalAfterRemoval(t *testing.T) {
	// the invariant: total equals the sum over current items after every
	// mutation, here simulated as removing one line at a time.
	items := []model.OrderItem{
		item(1, 1, "10.00"),
		item(2, 2, "5.50"),
		item(3, 1, "4.25"),
	}
	want := dec("25.25")
	if got := ItemsTotal(items); !got.Equal(want) {
		t.Fatalf("initial total = %s, want %s", got, want)
	}
	for len(items) > 0 {
		removed := items[0]
		items = items[1:]
		want = want.Sub(removed.UnitPrice.Mul(decimal.NewFromInt(int64(removed.Quantity))))
		if got := ItemsTotal(items); !got.Equal(want) {
			t.Fatalf("total after removing item %d = %s, want %s", removed.ID, got, want)
		}
	}
}

func parent(id uint64) *uint64 { return &id }

func TestConsolidateRollsUpSubOrders(t *testing.T) {
	orders := []model.Order{
		{
			ID: 1, OrderNumber: "ORD-1", Status: status.Delivered,
			TotalAmount: dec("30.00"),
			Items:       []model.OrderItem{item(10, 2, "15.00")},
		},
		{
			ID: 2, OrderNumber: "ORD-1", ParentOrderID: parent(1), Status: status.Pending,
			TotalAmount: dec("8.00"),
			Items:       []model.OrderItem{item(11, 1, "8.00")},
		},
		{
			ID: 3, OrderNumber: "ORD-2", Status: status.Preparing,
			TotalAmount: dec("12.00"),
			Items:       []model.OrderItem{item(12, 1, "12.00")},
		},
	}
	groups := Consolidate(orders)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	first := groups[0]
	if first.OrderID != 1 || first.Submissions != 2 {
		t.Fatalf("first group = %+v", first)
	}
	if !first.TotalAmount.Equal(dec("38.00")) {
		t.Errorf("first group total = %s, want 38.00", first.TotalAmount)
	}
	if len(first.Items) != 2 {
		t.Errorf("first group items = %d, want 2", len(first.Items))
	}
	// the pending sub-order drags the group status back to PENDING
	if first.Status != status.Pending {
		t.Errorf("first group status = %s, want PENDING", first.Status)
	}
	if groups[1].OrderID != 3 || groups[1].Status != status.Preparing {
		t.Errorf("second group = %+v", groups[1])
	}
}

func TestConsolidateKeepsDanglingSubOrder(t *testing.T) {
	orders := []model.Order{
		{ID: 5, OrderNumber: "ORD-9", ParentOrderID: parent(99), Status: status.Pending,
			TotalAmount: dec("7.00")},
	}
	groups := Consolidate(orders)
	if len(groups) != 1 || !groups[0].TotalAmount.Equal(dec("7.00")) {
		t.Fatalf("dangling sub-order dropped: %+v", groups)
	}
}

func TestGroupByNumberMostUrgent(t *testing.T) {
	orders := []model.Order{
		{ID: 1, OrderNumber: "ORD-1", Status: status.Delivered, TotalAmount: dec("20")},
		{ID: 2, OrderNumber: "ORD-1", Status: status.Confirmed, TotalAmount: dec("5")},
		{ID: 3, OrderNumber: "ORD-2", Status: status.Cancelled, TotalAmount: dec("9")},
	}
	groups := GroupByNumber(orders)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Status != status.Confirmed {
		t.Errorf("ORD-1 status = %s, want CONFIRMED", groups[0].Status)
	}
	if !groups[0].TotalAmount.Equal(dec("25")) {
		t.Errorf("ORD-1 total = %s, want 25", groups[0].TotalAmount)
	}
	if groups[0].Submissions != 2 || groups[1].Submissions != 1 {
		t.Errorf("submission counts = %d, %d", groups[0].Submissions, groups[1].Submissions)
	}
}

func TestRoutesToDepartment(t *testing.T) {
	o := model.Order{Items: []model.OrderItem{
		{Department: "kitchen"},
		{Department: "bar"},
	}}
	if !RoutesToDepartment(o, "bar") {
		t.Error("RoutesToDepartment(bar) = false, want true")
	}
	if RoutesToDepartment(o, "water-station") {
		t.Error("RoutesToDepartment(water-station) = true, want false")
	}
}
