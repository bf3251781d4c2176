package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/session"
)

// SessionRepo persists table sessions.  It owns the one-active-session-
// per-table invariant: SeatTx locks any active session rows referencing
// the target table before assigning it, so two concurrent seat attempts
// serialize and the loser observes the occupation.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions that
// span repositories.
func (r *SessionRepo) DB() *sql.DB { return r.db }

const sessionColumns = `id, customer_name, phone, notes, party_size, status,
	table_id, checked_in_at, seated_at, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var tableID sql.NullInt64
	var seatedAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.CustomerName, &s.Phone, &s.Notes, &s.PartySize, &s.Status,
		&tableID, &s.CheckedInAt, &seatedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tableID.Valid {
		tid := uint64(tableID.Int64)
		s.TableID = &tid
	}
	if seatedAt.Valid {
		t := seatedAt.Time
		s.SeatedAt = &t
	}
	return &s, nil
}

// Create inserts a WAITING session from a check-in and populates the
// generated id and timestamps on the provided record.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (customer_name, phone, notes, party_size, status, checked_in_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		s.CustomerName, s.Phone, s.Notes, s.PartySize, s.Status, s.CheckedInAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM sessions WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a single session.  sql.ErrNoRows is returned when the
// session does not exist.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	return scanSession(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is GetByID within a transaction, locking the session row so
// concurrent mutations on the same session serialize.
func (r *SessionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? FOR UPDATE`
	return scanSession(tx.QueryRowContext(ctx, q, id))
}

// SeatTx assigns a table to a WAITING session.  It first locks any
// active session referencing the table; if one exists, the table is
// occupied and apperr.ErrConflict is returned with both session ids so
// the caller can render a precise message.  On success the session
// moves to SEATED with its seated timestamp stamped.
func (r *SessionRepo) SeatTx(ctx context.Context, tx *sql.Tx, sessionID, tableID uint64, now time.Time) error {
	const occupiedQ = `SELECT id FROM sessions
	                   WHERE table_id = ? AND status IN ('SEATED','ORDERING','ORDERED','DINING','BILLING')
	                   FOR UPDATE`
	var occupantID uint64
	err := tx.QueryRowContext(ctx, occupiedQ, tableID).Scan(&occupantID)
	switch {
	case err == nil:
		return apperr.Conflictf("table %d is occupied by session %d", tableID, occupantID)
	case err != sql.ErrNoRows:
		return err
	}
	const upd = `UPDATE sessions SET status = ?, table_id = ?, seated_at = ? WHERE id = ?`
	_, err = tx.ExecContext(ctx, upd, session.Seated, tableID, now, sessionID)
	return err
}

// AdvanceStatusTx moves a session forward along its lifecycle ladder.
// The target is computed by the caller with session.Advance so the
// write is monotonic; writing the current status back is a harmless
// no-op.
func (r *SessionRepo) AdvanceStatusTx(ctx context.Context, tx *sql.Tx, sessionID uint64, newStatus string) error {
	const q = `UPDATE sessions SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, newStatus, sessionID)
	return err
}

// CompleteTx transitions a session to COMPLETED and detaches it from
// its table, freeing the table for the next party.  The archived row
// keeps its seated timestamp for reporting.
func (r *SessionRepo) CompleteTx(ctx context.Context, tx *sql.Tx, sessionID uint64) error {
	const q = `UPDATE sessions SET status = ?, table_id = NULL WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, session.Completed, sessionID)
	return err
}

// DeleteWaitingTx removes a session whose party left before being
// seated.  The caller has already verified the WAITING status under the
// row lock.
func (r *SessionRepo) DeleteWaitingTx(ctx context.Context, tx *sql.Tx, sessionID uint64) error {
	const q = `DELETE FROM sessions WHERE id = ? AND status = 'WAITING'`
	result, err := tx.ExecContext(ctx, q, sessionID)
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

// ListWaiting returns the waiting list ordered by check-in time, oldest
// first, for the host stand display.
func (r *SessionRepo) ListWaiting(ctx context.Context) ([]model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions
	           WHERE status = 'WAITING' ORDER BY checked_in_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// ActiveByTable returns the active session occupying each table, keyed
// by table id, for the floor overview.
func (r *SessionRepo) ActiveByTable(ctx context.Context) (map[uint64]model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions
	           WHERE status IN ('SEATED','ORDERING','ORDERED','DINING','BILLING')`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byTable := make(map[uint64]model.Session)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		if s.TableID != nil {
			byTable[*s.TableID] = *s
		}
	}
	return byTable, rows.Err()
}
