package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-table-service/internal/model"
)

// TableRepo provides CRUD operations for restaurant tables.  Tables are
// long-lived records owned by the restaurant; only managers mutate
// them.  The seating invariant is not enforced here but in
// SessionRepo.SeatTx, which locks the relevant session rows.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions that
// span repositories.
func (r *TableRepo) DB() *sql.DB { return r.db }

// Create inserts a table and populates the generated id and timestamps
// on the provided record.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const q = `INSERT INTO restaurant_tables (name, capacity, is_active) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, t.Name, t.Capacity, t.IsActive)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM restaurant_tables WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a single table.  sql.ErrNoRows is returned when the
// table does not exist.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT id, name, capacity, is_active, created_at, updated_at
	           FROM restaurant_tables WHERE id = ?`
	var t model.Table
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.Capacity, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByIDTx is GetByID within a transaction, locking the row so a
// concurrent capacity change cannot interleave with seating.
func (r *TableRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Table, error) {
	const q = `SELECT id, name, capacity, is_active, created_at, updated_at
	           FROM restaurant_tables WHERE id = ? FOR UPDATE`
	var t model.Table
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.Capacity, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tables ordered by name.  When activeOnly is set,
// inactive tables are filtered out.
func (r *TableRepo) List(ctx context.Context, activeOnly bool) ([]model.Table, error) {
	q := `SELECT id, name, capacity, is_active, created_at, updated_at
	      FROM restaurant_tables`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Update changes a table's name, capacity and active flag.  Returns
// sql.ErrNoRows when the table does not exist.
func (r *TableRepo) Update(ctx context.Context, t *model.Table) error {
	const q = `UPDATE restaurant_tables SET name = ?, capacity = ?, is_active = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, t.Name, t.Capacity, t.IsActive, t.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distinguish "no such table" from "no change": query back
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM restaurant_tables WHERE id = ?`, t.ID).Scan(&exists); err != nil {
			return err
		}
	}
	return nil
}
