package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/order"
)

// OrderRepo persists orders and their items.  An order's stored total
// is derived state: every mutation that touches items recomputes it
// from the rows inside the same transaction, so the invariant
// "total == Σ(unit_price × quantity)" holds after every commit.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions that
// span repositories.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = `id, order_number, session_id, table_id, parent_order_id, status,
	total_amount, ordered_at, preparing_at, ready_at, served_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var parentID sql.NullInt64
	var preparingAt, readyAt, servedAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.SessionID, &o.TableID, &parentID, &o.Status,
		&o.TotalAmount, &o.OrderedAt, &preparingAt, &readyAt, &servedAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		pid := uint64(parentID.Int64)
		o.ParentOrderID = &pid
	}
	if preparingAt.Valid {
		t := preparingAt.Time
		o.PreparingAt = &t
	}
	if readyAt.Valid {
		t := readyAt.Time
		o.ReadyAt = &t
	}
	if servedAt.Valid {
		t := servedAt.Time
		o.ServedAt = &t
	}
	return &o, nil
}

// NextOrderNumberTx allocates the next human-readable order number for
// the day, e.g. "ORD-20260828-0042".  The count is taken under the
// transaction so concurrent submissions on the same day serialize on
// the gap lock rather than handing out duplicates.
func (r *OrderRepo) NextOrderNumberTx(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	const q = `SELECT COUNT(*) FROM orders WHERE ordered_at >= ? AND ordered_at < ? FOR UPDATE`
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var count int64
	if err := tx.QueryRowContext(ctx, q, dayStart, dayStart.Add(24*time.Hour)).Scan(&count); err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), count+1), nil
}

// CreateTx inserts an order and its items within the scope of an
// existing transaction, populating generated ids and timestamps on the
// provided record.  The caller must commit or rollback the transaction.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (order_number, session_id, table_id, parent_order_id, status, total_amount, ordered_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		o.OrderNumber, o.SessionID, o.TableID, o.ParentOrderID, o.Status,
		o.TotalAmount.Round(2), o.OrderedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	if err := r.createItemsBulkTx(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}
	const sel = `SELECT created_at, updated_at FROM orders WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, o.ID).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// createItemsBulkTx inserts all items of an order in a single
// statement.  Passing an empty slice has no effect and returns nil.
func (r *OrderRepo) createItemsBulkTx(ctx context.Context, tx *sql.Tx, orderID uint64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO order_items (order_id, menu_item_id, name, department, quantity, unit_price, notes, selections) VALUES `
	args := make([]interface{}, 0, len(items)*8)
	for i := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		it := &items[i]
		it.OrderID = orderID
		args = append(args, orderID, it.MenuItemID, it.Name, it.Department,
			it.Quantity, it.UnitPrice.Round(2), it.Notes, it.Selections)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// itemsByOrderIDs loads items for a set of orders in one query, keyed
// by order id.
func (r *OrderRepo) itemsByOrderIDs(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, orderIDs []uint64) (map[uint64][]model.OrderItem, error) {
	byOrder := make(map[uint64][]model.OrderItem)
	if len(orderIDs) == 0 {
		return byOrder, nil
	}
	placeholders := make([]string, 0, len(orderIDs))
	args := make([]interface{}, 0, len(orderIDs))
	for _, id := range orderIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	query := `SELECT id, order_id, menu_item_id, name, department, quantity, unit_price, notes, selections, created_at
	          FROM order_items
	          WHERE order_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY order_id, id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Department,
			&it.Quantity, &it.UnitPrice, &it.Notes, &it.Selections, &it.CreatedAt); err != nil {
			return nil, err
		}
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	return byOrder, rows.Err()
}

// GetByID returns a single order with its items.  sql.ErrNoRows is
// returned when the order does not exist.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	items, err := r.itemsByOrderIDs(ctx, r.db, []uint64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// GetByIDTx loads an order with its items inside a transaction, locking
// the order row so concurrent status changes and item removals on the
// same order serialize.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ? FOR UPDATE`
	o, err := scanOrder(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	items, err := r.itemsByOrderIDs(ctx, tx, []uint64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// ListBySession returns all orders of a session with their items,
// oldest first.  The consolidated billing view and the table's running
// total are computed over this result.
func (r *OrderRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE session_id = ? ORDER BY ordered_at, id`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	items, err := r.itemsByOrderIDs(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// UpdateStatusTx writes a validated status transition and stamps the
// timestamp column the new status implies.  Transition legality is the
// caller's job (see internal/status); this method only persists.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, newStatus string, now time.Time) error {
	var stampCol string
	switch newStatus {
	case "PREPARING":
		stampCol = "preparing_at"
	case "READY":
		stampCol = "ready_at"
	case "DELIVERED":
		stampCol = "served_at"
	}
	if stampCol == "" {
		const q = `UPDATE orders SET status = ? WHERE id = ?`
		_, err := tx.ExecContext(ctx, q, newStatus, orderID)
		return err
	}
	q := `UPDATE orders SET status = ?, ` + stampCol + ` = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, newStatus, now, orderID)
	return err
}

// DeleteItemTx removes one item from an order.  sql.ErrNoRows is
// returned when the item does not exist on that order.  The caller must
// recompute the order total in the same transaction.
func (r *OrderRepo) DeleteItemTx(ctx context.Context, tx *sql.Tx, orderID, itemID uint64) error {
	const q = `DELETE FROM order_items WHERE id = ? AND order_id = ?`
	result, err := tx.ExecContext(ctx, q, itemID, orderID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecomputeTotalTx re-derives an order's total from its current item
// rows and writes it back, returning the new total.  Called inside the
// same transaction as any item mutation.
func (r *OrderRepo) RecomputeTotalTx(ctx context.Context, tx *sql.Tx, orderID uint64) (decimal.Decimal, error) {
	items, err := r.itemsByOrderIDs(ctx, tx, []uint64{orderID})
	if err != nil {
		return decimal.Zero, err
	}
	total := order.ItemsTotal(items[orderID]).Round(2)
	const q = `UPDATE orders SET total_amount = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, total, orderID); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListPendingByDepartment returns every order still on a department's
// board: status in the pending set and at least one item routed to the
// department.  Orders come back with all their items so the station
// sees the full ticket, not just its own lines.
func (r *OrderRepo) ListPendingByDepartment(ctx context.Context, department string) ([]model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders o
	           WHERE o.status IN ('PENDING','CONFIRMED','PREPARING')
	             AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.department = ?)
	           ORDER BY o.ordered_at, o.id`
	rows, err := r.db.QueryContext(ctx, q, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	items, err := r.itemsByOrderIDs(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}
