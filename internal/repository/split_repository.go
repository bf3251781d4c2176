package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/model"
)

// SplitRepo persists bill splits and their shares.  Share amounts are
// fixed at creation; the only mutation is accumulating payments into a
// share, done under the share's row lock.
type SplitRepo struct {
	db *sql.DB
}

// NewSplitRepo returns a new SplitRepo bound to the given database.
func NewSplitRepo(db *sql.DB) *SplitRepo { return &SplitRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions that
// span repositories.
func (r *SplitRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a bill split and its shares within the scope of an
// existing transaction and populates the generated ids on the provided
// record.
func (r *SplitRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.BillSplit) error {
	const q = `INSERT INTO bill_splits (session_id, strategy, variance) VALUES (?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, s.SessionID, s.Strategy, s.Variance)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	if len(s.Shares) > 0 {
		query := `INSERT INTO bill_split_shares (split_id, position, label, amount_owed, amount_paid, status) VALUES `
		args := make([]interface{}, 0, len(s.Shares)*6)
		for i := range s.Shares {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?)"
			share := &s.Shares[i]
			share.SplitID = s.ID
			args = append(args, s.ID, share.Position, share.Label,
				share.AmountOwed, share.AmountPaid, share.Status)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	const sel = `SELECT created_at FROM bill_splits WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt)
}

// GetByID returns a split with its shares ordered by position.
// sql.ErrNoRows is returned when the split does not exist.
func (r *SplitRepo) GetByID(ctx context.Context, id uint64) (*model.BillSplit, error) {
	const q = `SELECT id, session_id, strategy, variance, created_at FROM bill_splits WHERE id = ?`
	var s model.BillSplit
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.SessionID, &s.Strategy, &s.Variance, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	const shareQ = `SELECT id, split_id, position, label, amount_owed, amount_paid, status
	                FROM bill_split_shares WHERE split_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, shareQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sh model.Share
		if err := rows.Scan(&sh.ID, &sh.SplitID, &sh.Position, &sh.Label,
			&sh.AmountOwed, &sh.AmountPaid, &sh.Status); err != nil {
			return nil, err
		}
		s.Shares = append(s.Shares, sh)
	}
	return &s, rows.Err()
}

// SessionIDTx returns the owning session of a split, locking the split
// row.  Used to pick the right per-session lock before mutating shares.
func (r *SplitRepo) SessionIDTx(ctx context.Context, tx *sql.Tx, splitID uint64) (uint64, error) {
	const q = `SELECT session_id FROM bill_splits WHERE id = ? FOR UPDATE`
	var sessionID uint64
	err := tx.QueryRowContext(ctx, q, splitID).Scan(&sessionID)
	return sessionID, err
}

// GetShareTx loads one share by split and position inside a
// transaction, locking the row so concurrent payments on the same share
// serialize.  sql.ErrNoRows is returned when the position is out of
// range.
func (r *SplitRepo) GetShareTx(ctx context.Context, tx *sql.Tx, splitID uint64, position uint32) (*model.Share, error) {
	const q = `SELECT id, split_id, position, label, amount_owed, amount_paid, status
	           FROM bill_split_shares WHERE split_id = ? AND position = ? FOR UPDATE`
	var sh model.Share
	err := tx.QueryRowContext(ctx, q, splitID, position).Scan(
		&sh.ID, &sh.SplitID, &sh.Position, &sh.Label, &sh.AmountOwed, &sh.AmountPaid, &sh.Status)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// UpdateShareTx writes a share's accumulated payment and derived
// status.
func (r *SplitRepo) UpdateShareTx(ctx context.Context, tx *sql.Tx, shareID uint64, paid decimal.Decimal, status string) error {
	const q = `UPDATE bill_split_shares SET amount_paid = ?, status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, paid, status, shareID)
	return err
}
