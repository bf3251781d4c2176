package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-table-service/internal/model"
)

// PaymentRepo persists payments and their snapshotted lines.  Payments
// are write-once: there is no update path, and the lines are copied
// from the order items at billing time so the receipt survives later
// changes to anything else.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment and its lines within the scope of an
// existing transaction and populates the generated ids on the provided
// record.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (session_id, method, subtotal, extra_total, discount_total,
	                                 final_amount, received_amount, change_due, reference)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		p.SessionID, p.Method, p.Subtotal, p.ExtraTotal, p.DiscountTotal,
		p.FinalAmount, p.ReceivedAmount, p.ChangeDue, p.Reference)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	if len(p.Lines) > 0 {
		query := `INSERT INTO payment_lines (payment_id, description, quantity, unit_price, line_total) VALUES `
		args := make([]interface{}, 0, len(p.Lines)*5)
		for i := range p.Lines {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			line := &p.Lines[i]
			line.PaymentID = p.ID
			args = append(args, p.ID, line.Description, line.Quantity, line.UnitPrice, line.LineTotal)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	const sel = `SELECT created_at FROM payments WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt)
}

// ExistsForSessionTx reports whether the session already has a payment.
// Checked under the session lock before checkout from DINING and before
// creating a second payment.
func (r *PaymentRepo) ExistsForSessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM payments WHERE session_id = ?`
	var n int64
	if err := tx.QueryRowContext(ctx, q, sessionID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListBySession returns a session's payments with their lines, oldest
// first.
func (r *PaymentRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Payment, error) {
	const q = `SELECT id, session_id, method, subtotal, extra_total, discount_total,
	                  final_amount, received_amount, change_due, reference, created_at
	           FROM payments WHERE session_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]model.Payment, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Method, &p.Subtotal, &p.ExtraTotal,
			&p.DiscountTotal, &p.FinalAmount, &p.ReceivedAmount, &p.ChangeDue,
			&p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return payments, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	lineQ := `SELECT id, payment_id, description, quantity, unit_price, line_total
	          FROM payment_lines
	          WHERE payment_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY payment_id, id`
	lrows, err := r.db.QueryContext(ctx, lineQ, args...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	index := make(map[uint64]int, len(payments))
	for i, p := range payments {
		index[p.ID] = i
	}
	for lrows.Next() {
		var line model.PaymentLine
		if err := lrows.Scan(&line.ID, &line.PaymentID, &line.Description,
			&line.Quantity, &line.UnitPrice, &line.LineTotal); err != nil {
			return nil, err
		}
		if idx, ok := index[line.PaymentID]; ok {
			payments[idx].Lines = append(payments[idx].Lines, line)
		}
	}
	return payments, lrows.Err()
}
